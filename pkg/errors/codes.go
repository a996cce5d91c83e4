package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer of the engine.
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_003"
	ErrCodeConflict        ErrorCode = "COMMON_004"
	ErrCodeTimeout         ErrorCode = "COMMON_005"
	ErrCodeValidation      ErrorCode = "COMMON_006"
	ErrCodeSerialization   ErrorCode = "COMMON_007"
	ErrCodeDatabaseError   ErrorCode = "COMMON_008"
	ErrCodeCacheError      ErrorCode = "COMMON_009"
	ErrCodeExternalService ErrorCode = "COMMON_010"
	ErrCodeNotImplemented  ErrorCode = "COMMON_011"
)

// Discovery-pipeline error codes.
const (
	// ErrCodeInsufficientData is returned when the readiness classifier
	// decides the closed-deal corpus is too small for any analysis mode.
	ErrCodeInsufficientData ErrorCode = "ICP_001"

	// ErrCodeDiscoveryLocked is returned when another discovery run already
	// holds the per-workspace lock.
	ErrCodeDiscoveryLocked ErrorCode = "ICP_002"

	// ErrCodeProfileNotFound is returned when no ICP profile exists for the
	// requested id or workspace.
	ErrCodeProfileNotFound ErrorCode = "ICP_003"

	// ErrCodeModeNotImplemented is returned when a reserved analysis mode
	// (point_based, regression) is selected by the classifier.
	ErrCodeModeNotImplemented ErrorCode = "ICP_004"
)

// Scoring error codes.
const (
	// ErrCodeScorePersistFailed is returned when a lead-score upsert fails.
	// Score writes are the deliverable of a scoring run and are never swallowed.
	ErrCodeScorePersistFailed ErrorCode = "SCORE_001"

	// ErrCodeNoOpenRecords is returned when a scoring run finds nothing to score.
	ErrCodeNoOpenRecords ErrorCode = "SCORE_002"
)

// Sentinel codes used by Wrap and GetCode for untyped errors.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

//Personal.AI order the ending
