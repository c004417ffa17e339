package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEntry is one persisted change-set: who changed which timesheet, when,
// why, and the field-level old/new pairs. Entries are append-only; nothing in
// the system updates or deletes them.
type AuditEntry struct {
	ID           string         `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TimesheetID  string         `gorm:"column:timesheet_id;type:varchar(36);not null;index" json:"timesheetId"`
	ChangedBy    string         `gorm:"column:changed_by;type:varchar(36);not null;index" json:"changedBy"`
	ChangedAt    time.Time      `gorm:"column:changed_at;type:timestamp;not null" json:"changedAt"`
	Changes      datatypes.JSON `gorm:"column:changes;type:json" json:"changes"`
	ChangeReason string         `gorm:"column:change_reason;type:text" json:"changeReason"`
}

func (AuditEntry) TableName() string {
	return "timesheet_audit_entries"
}
