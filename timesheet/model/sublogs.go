package model

import "time"

// EmployeeEquipmentLog records equipment usage during a shift. Used by
// LABOR and MECHANIC timesheets, and generically by any work type that
// operates equipment.
type EmployeeEquipmentLog struct {
	ID          string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TimesheetID string     `gorm:"column:timesheet_id;type:varchar(36);not null;index" json:"timesheetId"`
	EquipmentID string     `gorm:"column:equipment_id;type:varchar(36);not null" json:"equipmentId"`
	StartTime   time.Time  `gorm:"column:start_time;type:timestamp" json:"startTime"`
	EndTime     *time.Time `gorm:"column:end_time;type:timestamp;null" json:"endTime"`

	// Flags the equipment as needing maintenance; routes a notification
	// to the equipment-break topic on attach.
	ReportedBroken bool `gorm:"column:reported_broken;not null" json:"reportedBroken"`

	RefuelLogs []RefuelLog `gorm:"foreignKey:EmployeeEquipmentLogID" json:"refuelLogs"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (EmployeeEquipmentLog) TableName() string {
	return "employee_equipment_logs"
}

type TascoShiftType string

const (
	TascoShiftDay   TascoShiftType = "DAY"
	TascoShiftNight TascoShiftType = "NIGHT"
)

// TascoLog records heavy-equipment shift work: shift/labor type, material
// moved and load counts.
type TascoLog struct {
	ID           string         `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TimesheetID  string         `gorm:"column:timesheet_id;type:varchar(36);not null;index" json:"timesheetId"`
	ShiftType    TascoShiftType `gorm:"column:shift_type;type:varchar(20)" json:"shiftType"`
	LaborType    string         `gorm:"column:labor_type;type:varchar(50)" json:"laborType"`
	MaterialType string         `gorm:"column:material_type;type:varchar(50)" json:"materialType"`
	LoadQuantity int32          `gorm:"column:load_quantity;not null;default:0" json:"loadQuantity"`
	EquipmentID  *string        `gorm:"column:equipment_id;type:varchar(36);null" json:"equipmentId"`

	RefuelLogs []RefuelLog  `gorm:"foreignKey:TascoLogID" json:"refuelLogs"`
	Loads      []TascoFLoad `gorm:"foreignKey:TascoLogID" json:"loads"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (TascoLog) TableName() string {
	return "tasco_logs"
}

// TascoFLoad is a single screened/unscreened load record under a TascoLog.
type TascoFLoad struct {
	ID         string  `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TascoLogID string  `gorm:"column:tasco_log_id;type:varchar(36);not null;index" json:"tascoLogId"`
	Screened   bool    `gorm:"column:screened;not null" json:"screened"`
	Weight     float64 `gorm:"column:weight;type:decimal(10,2)" json:"weight"`
}

func (TascoFLoad) TableName() string {
	return "tasco_f_loads"
}

// TruckingLog records a truck-driving shift: truck/trailer, odometer range,
// hauled materials and equipment, refuels and per-state mileage.
type TruckingLog struct {
	ID              string   `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TimesheetID     string   `gorm:"column:timesheet_id;type:varchar(36);not null;index" json:"timesheetId"`
	TruckID         string   `gorm:"column:truck_id;type:varchar(36);not null" json:"truckId"`
	TrailerID       *string  `gorm:"column:trailer_id;type:varchar(36);null" json:"trailerId"`
	StartingMileage int32    `gorm:"column:starting_mileage;not null" json:"startingMileage"`
	EndingMileage   *int32   `gorm:"column:ending_mileage;null" json:"endingMileage"`
	LaborType       string   `gorm:"column:labor_type;type:varchar(50)" json:"laborType"`

	Materials       []Material        `gorm:"foreignKey:TruckingLogID" json:"materials"`
	EquipmentHauled []EquipmentHauled `gorm:"foreignKey:TruckingLogID" json:"equipmentHauled"`
	RefuelLogs      []RefuelLog       `gorm:"foreignKey:TruckingLogID" json:"refuelLogs"`
	StateMileages   []StateMileage    `gorm:"foreignKey:TruckingLogID" json:"stateMileages"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (TruckingLog) TableName() string {
	return "trucking_logs"
}

// Material is one hauled-material line under a TruckingLog.
type Material struct {
	ID            string  `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TruckingLogID string  `gorm:"column:trucking_log_id;type:varchar(36);not null;index" json:"truckingLogId"`
	Name          string  `gorm:"column:name;type:varchar(100)" json:"name"`
	SourceOfMaterial string `gorm:"column:source_of_material;type:varchar(100)" json:"sourceOfMaterial"`
	Quantity      float64 `gorm:"column:quantity;type:decimal(10,2)" json:"quantity"`
	Unit          string  `gorm:"column:unit;type:varchar(20)" json:"unit"`
}

func (Material) TableName() string {
	return "materials"
}

type EquipmentHauled struct {
	ID            string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TruckingLogID string `gorm:"column:trucking_log_id;type:varchar(36);not null;index" json:"truckingLogId"`
	EquipmentID   string `gorm:"column:equipment_id;type:varchar(36);not null" json:"equipmentId"`
	Source        string `gorm:"column:source;type:varchar(100)" json:"source"`
	Destination   string `gorm:"column:destination;type:varchar(100)" json:"destination"`
}

func (EquipmentHauled) TableName() string {
	return "equipment_hauled"
}

type StateMileage struct {
	ID            string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	TruckingLogID string `gorm:"column:trucking_log_id;type:varchar(36);not null;index" json:"truckingLogId"`
	State         string `gorm:"column:state;type:varchar(2)" json:"state"`
	StateLineMileage int32 `gorm:"column:state_line_mileage;not null" json:"stateLineMileage"`
}

func (StateMileage) TableName() string {
	return "state_mileages"
}

// RefuelLog belongs to exactly one of TascoLog, TruckingLog or
// EmployeeEquipmentLog. The storage layer keeps three nullable columns; the
// "exactly one parent" invariant is enforced at the service layer.
type RefuelLog struct {
	ID              string  `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	GallonsRefueled float64 `gorm:"column:gallons_refueled;type:decimal(10,2)" json:"gallonsRefueled"`
	MilesAtFueling  *int32  `gorm:"column:miles_at_fueling;null" json:"milesAtFueling"`

	TascoLogID             *string `gorm:"column:tasco_log_id;type:varchar(36);null;index" json:"tascoLogId"`
	TruckingLogID          *string `gorm:"column:trucking_log_id;type:varchar(36);null;index" json:"truckingLogId"`
	EmployeeEquipmentLogID *string `gorm:"column:employee_equipment_log_id;type:varchar(36);null;index" json:"employeeEquipmentLogId"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
}

func (RefuelLog) TableName() string {
	return "refuel_logs"
}
