// Package common defines the shared primitive types used across the engine:
// identifiers, timestamps, and the typed custom-field value variant.
package common

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// WorkspaceID identifies a single tenant.  Every computation in the engine is
// scoped to exactly one workspace; there is no cross-workspace learning.
type WorkspaceID string

// NewID generates a new UUID v4.
func NewID() ID {
	return ID(uuid.New().String())
}

// Validate checks that the ID is a well-formed UUID.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid ID format: %w", err)
	}
	return nil
}

// Timestamp is a time.Time alias with RFC 3339 JSON serialization.
type Timestamp time.Time

// NewTimestamp returns the current UTC time as a Timestamp.
func NewTimestamp() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FieldValue — typed custom-field variant
// ─────────────────────────────────────────────────────────────────────────────

// FieldKind discriminates the concrete type held by a FieldValue.
type FieldKind int

const (
	FieldAbsent FieldKind = iota
	FieldNumber
	FieldString
	FieldBool
)

// FieldValue is a tagged value variant for CRM custom fields.  Custom fields
// arrive as loosely-typed JSON; modelling them as an explicit variant rather
// than an open map catches type drift at compile time.
type FieldValue struct {
	Kind   FieldKind
	Number float64
	Str    string
	Bool   bool
}

// NumberValue constructs a numeric FieldValue.
func NumberValue(v float64) FieldValue { return FieldValue{Kind: FieldNumber, Number: v} }

// StringValue constructs a string FieldValue.
func StringValue(v string) FieldValue { return FieldValue{Kind: FieldString, Str: v} }

// BoolValue constructs a boolean FieldValue.
func BoolValue(v bool) FieldValue { return FieldValue{Kind: FieldBool, Bool: v} }

// IsAbsent reports whether the value carries no data.
func (v FieldValue) IsAbsent() bool { return v.Kind == FieldAbsent }

// Label returns the canonical string form used as a segment key when grouping
// records by custom-field value.  Numbers are rendered without a trailing
// fractional part when integral, matching how CRM exports render them.
func (v FieldValue) Label() string {
	switch v.Kind {
	case FieldNumber:
		if v.Number == float64(int64(v.Number)) {
			return fmt.Sprintf("%d", int64(v.Number))
		}
		return fmt.Sprintf("%g", v.Number)
	case FieldString:
		return v.Str
	case FieldBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// MarshalJSON renders the underlying value directly, so persisted snapshots
// read like ordinary JSON documents.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FieldNumber:
		return json.Marshal(v.Number)
	case FieldString:
		return json.Marshal(v.Str)
	case FieldBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON parses a JSON scalar into the matching variant.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case nil:
		*v = FieldValue{}
	case float64:
		*v = NumberValue(val)
	case string:
		*v = StringValue(val)
	case bool:
		*v = BoolValue(val)
	default:
		return fmt.Errorf("unsupported custom-field value type %T", raw)
	}
	return nil
}

// FieldMap maps custom-field keys to typed values.
type FieldMap map[string]FieldValue

//Personal.AI order the ending
