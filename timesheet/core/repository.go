package core

import (
	"context"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
)

// Transaction is one atomic commit against a timesheet aggregate: the new
// timesheet state (version-checked against ExpectedVersion), any sub-log
// upserts/deletes, and at most one audit entry. All of it lands or none of it.
type Transaction struct {
	Timesheet       *model.Timesheet
	ExpectedVersion int32
	SaveSubLogs     []any
	DeleteSubLogs   []any
	Audit           *model.AuditEntry
}

// Repository is the persistence boundary for timesheet aggregates. Transient
// storage failures are retried once with backoff inside the implementation;
// whatever escapes is a *PersistenceError.
type Repository interface {
	// Load returns the timesheet with all sub-logs preloaded, or ErrNotFound.
	Load(ctx context.Context, id string) (*model.Timesheet, error)
	// Create inserts a new timesheet and its seeded sub-logs.
	Create(ctx context.Context, ts *model.Timesheet) error
	// CommitTransaction applies the writes atomically. Returns
	// ErrConcurrentModification when the version check fails.
	CommitTransaction(ctx context.Context, tx *Transaction) error
	// FindSubLog resolves a sub-log row and its owning timesheet id.
	FindSubLog(ctx context.Context, kind SubLogKind, id string) (any, string, error)
	// Delete removes a timesheet and cascades to its sub-logs. Admin only;
	// enforcement sits above this layer.
	Delete(ctx context.Context, id string) error
}

// AuditLog is the append-only change-set store. No update or delete exists.
type AuditLog interface {
	// Append writes an entry; an existing id is rejected with
	// ErrDuplicateAuditEntry, never overwritten.
	Append(ctx context.Context, entry *model.AuditEntry) error
	// ListByTimesheet returns entries newest first.
	ListByTimesheet(ctx context.Context, timesheetID string) ([]model.AuditEntry, error)
	ListByActor(ctx context.Context, userID string, since time.Time) ([]model.AuditEntry, error)
}
