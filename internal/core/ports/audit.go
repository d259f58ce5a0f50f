package ports

import (
	"context"
	"time"
)

// AuditEntry records a single user lifecycle action for the audit trail.
type AuditEntry struct {
	Actor  string
	Action string // "login", "create", "update", "delete"
	Target string
	At     time.Time
}

// AuditRecorder accepts audit entries for asynchronous persistence.
// Record must not block the calling request.
type AuditRecorder interface {
	Record(entry AuditEntry)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
}

// LoginThrottle limits repeated failed login attempts per account.
type LoginThrottle interface {
	// TooMany reports whether the account has exceeded the allowed number
	// of failed attempts inside the current window.
	TooMany(ctx context.Context, userName string) (bool, error)
	// Fail records a failed attempt.
	Fail(ctx context.Context, userName string) error
	// Reset clears the failure counter after a successful login.
	Reset(ctx context.Context, userName string) error
}
