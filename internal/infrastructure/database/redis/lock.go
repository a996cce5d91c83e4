package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	"github.com/dealsense/icp-engine/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Per-workspace discovery lock
// ─────────────────────────────────────────────────────────────────────────────

// ErrLockNotHeld is returned when releasing a lock this owner no longer holds.
var ErrLockNotHeld = errors.New(errors.ErrCodeConflict, "lock not held by this owner")

// unlockScript deletes the key only when it still carries this owner's token.
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// extendScript refreshes the TTL only when the token still matches.
var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// WorkspaceLocker serializes discovery runs per workspace.  TryLock never
// blocks: a held lock means another run is in flight and the caller rejects
// the trigger instead of queueing behind it.
type WorkspaceLocker struct {
	client *Client
	ttl    time.Duration
	logger logging.Logger
}

// NewWorkspaceLocker builds a locker with the given lock TTL.  The TTL bounds
// how long a crashed run can block its workspace.
func NewWorkspaceLocker(client *Client, ttl time.Duration, log logging.Logger) *WorkspaceLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &WorkspaceLocker{client: client, ttl: ttl, logger: log}
}

// LockHandle represents one acquired workspace lock.
type LockHandle struct {
	locker *WorkspaceLocker
	key    string
	token  string
}

// TryLock attempts to acquire the workspace's discovery lock.  It returns
// (nil, false, nil) when another holder has it.
func (l *WorkspaceLocker) TryLock(ctx context.Context, workspaceID string) (*LockHandle, bool, error) {
	key := l.client.Key("discovery-lock", workspaceID)
	token := uuid.NewString()

	acquired, err := l.client.Underlying().SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "acquire discovery lock")
	}
	if !acquired {
		return nil, false, nil
	}

	l.logger.Debug("acquired discovery lock",
		logging.String("workspace_id", workspaceID),
		logging.Duration("ttl", l.ttl))
	return &LockHandle{locker: l, key: key, token: token}, true, nil
}

// Unlock releases the lock if this handle still owns it.
func (h *LockHandle) Unlock(ctx context.Context) error {
	res, err := unlockScript.Run(ctx, h.locker.client.Underlying(), []string{h.key}, h.token).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "release discovery lock")
	}
	if n, ok := res.(int64); !ok || n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend refreshes the lock TTL for a long-running discovery.
func (h *LockHandle) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, h.locker.client.Underlying(), []string{h.key}, h.token, ttl.Milliseconds()).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "extend discovery lock")
	}
	n, ok := res.(int64)
	return ok && n == 1, nil
}

//Personal.AI order the ending
