package model

import (
	"time"
)

type WorkType string

const (
	WorkTypeLabor       WorkType = "LABOR"
	WorkTypeMechanic    WorkType = "MECHANIC"
	WorkTypeTasco       WorkType = "TASCO"
	WorkTypeTruckDriver WorkType = "TRUCK_DRIVER"
)

func (w WorkType) Valid() bool {
	switch w {
	case WorkTypeLabor, WorkTypeMechanic, WorkTypeTasco, WorkTypeTruckDriver:
		return true
	}
	return false
}

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type Timesheet struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Date       time.Time `gorm:"column:date;type:date" json:"date"`
	UserID     string    `gorm:"column:user_id;type:varchar(36);not null" json:"userId"`
	JobsiteID  string    `gorm:"column:jobsite_id;type:varchar(36);not null" json:"jobsiteId"`
	CostCodeID string    `gorm:"column:cost_code_id;type:varchar(36);not null" json:"costCodeId"`
	WorkType   WorkType  `gorm:"column:work_type;type:varchar(20);not null" json:"workType"`

	StartTime time.Time  `gorm:"column:start_time;type:timestamp" json:"startTime"`
	EndTime   *time.Time `gorm:"column:end_time;type:timestamp;null" json:"endTime"`

	Status        Status `gorm:"column:status;type:varchar(20);not null;default:DRAFT" json:"status"`
	Comment       string `gorm:"column:comment;type:text" json:"comment"`
	StatusComment string `gorm:"column:status_comment;type:text" json:"statusComment"`

	CreatedByAdmin bool    `gorm:"column:created_by_admin;not null" json:"createdByAdmin"`
	EditedByUserID *string `gorm:"column:edited_by_user_id;type:varchar(36);null" json:"editedByUserId"`
	WasInjured     bool    `gorm:"column:was_injured;not null" json:"wasInjured"`

	ClockInLat  *float64 `gorm:"column:clock_in_lat;null" json:"clockInLat"`
	ClockInLng  *float64 `gorm:"column:clock_in_lng;null" json:"clockInLng"`
	ClockOutLat *float64 `gorm:"column:clock_out_lat;null" json:"clockOutLat"`
	ClockOutLng *float64 `gorm:"column:clock_out_lng;null" json:"clockOutLng"`

	// Bumped on every committed write; optimistic lock token.
	Version int32 `gorm:"column:version;not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Jobsite  Jobsite  `gorm:"foreignKey:JobsiteID" json:"-"`
	CostCode CostCode `gorm:"foreignKey:CostCodeID" json:"-"`

	EquipmentLogs []EmployeeEquipmentLog `gorm:"foreignKey:TimesheetID" json:"equipmentLogs"`
	TascoLogs     []TascoLog             `gorm:"foreignKey:TimesheetID" json:"tascoLogs"`
	TruckingLogs  []TruckingLog          `gorm:"foreignKey:TimesheetID" json:"truckingLogs"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}

// Clone returns a deep copy used as the pre-mutation snapshot for diffing.
func (t *Timesheet) Clone() *Timesheet {
	c := *t
	if t.EndTime != nil {
		v := *t.EndTime
		c.EndTime = &v
	}
	if t.EditedByUserID != nil {
		v := *t.EditedByUserID
		c.EditedByUserID = &v
	}
	for _, p := range []struct {
		src *(*float64)
		dst *(*float64)
	}{
		{&t.ClockInLat, &c.ClockInLat},
		{&t.ClockInLng, &c.ClockInLng},
		{&t.ClockOutLat, &c.ClockOutLat},
		{&t.ClockOutLng, &c.ClockOutLng},
	} {
		if *p.src != nil {
			v := **p.src
			*p.dst = &v
		}
	}
	c.EquipmentLogs = append([]EmployeeEquipmentLog(nil), t.EquipmentLogs...)
	c.TascoLogs = append([]TascoLog(nil), t.TascoLogs...)
	c.TruckingLogs = append([]TruckingLog(nil), t.TruckingLogs...)
	return &c
}
