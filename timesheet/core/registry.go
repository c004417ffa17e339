package core

import (
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
)

type SubLogKind string

const (
	KindEquipmentLog SubLogKind = "EQUIPMENT_LOG"
	KindTascoLog     SubLogKind = "TASCO_LOG"
	KindTruckingLog  SubLogKind = "TRUCKING_LOG"
	KindRefuelLog    SubLogKind = "REFUEL_LOG"
)

// RefuelParentKind tags the single parent a refuel log hangs off.
type RefuelParentKind string

const (
	RefuelParentTasco     RefuelParentKind = "TASCO_LOG"
	RefuelParentTrucking  RefuelParentKind = "TRUCKING_LOG"
	RefuelParentEquipment RefuelParentKind = "EQUIPMENT_LOG"
)

// RefuelParent is the tagged union behind the three nullable FK columns.
// Exactly-one-parent is enforced here, not in storage.
type RefuelParent struct {
	Kind RefuelParentKind
	ID   string
}

// SubLogPayload is the closed set of attachable sub-record shapes. One
// variant per kind; the registry dispatches on it.
type SubLogPayload struct {
	Equipment *model.EmployeeEquipmentLog
	Tasco     *model.TascoLog
	Trucking  *model.TruckingLog
	Refuel    *model.RefuelLog
	// RefuelParent must be set when Refuel is.
	RefuelParent RefuelParent
}

// Registry centralizes which sub-log kinds a work type permits and whether a
// timesheet in a given status may still be mutated.
type Registry struct{}

func NewRegistry() Registry {
	return Registry{}
}

var permittedKinds = map[model.WorkType][]SubLogKind{
	model.WorkTypeLabor:       {KindEquipmentLog, KindRefuelLog},
	model.WorkTypeMechanic:    {KindEquipmentLog, KindRefuelLog},
	model.WorkTypeTasco:       {KindTascoLog, KindRefuelLog},
	model.WorkTypeTruckDriver: {KindTruckingLog, KindRefuelLog},
}

func (Registry) PermittedKinds(wt model.WorkType) []SubLogKind {
	return permittedKinds[wt]
}

func (r Registry) Permits(wt model.WorkType, kind SubLogKind) bool {
	for _, k := range permittedKinds[wt] {
		if k == kind {
			return true
		}
	}
	return false
}

// IsMutable reports whether timesheet fields and sub-logs may still change.
// Approved timesheets are frozen until an explicit reopen transition.
func (Registry) IsMutable(status model.Status) bool {
	return status != model.StatusApproved
}

// Validate checks a sub-log payload against its parent timesheet: kind must
// match the work type, the payload variant must match the kind, and
// kind-specific field rules must hold.
func (r Registry) Validate(ts *model.Timesheet, kind SubLogKind, payload SubLogPayload) error {
	if !r.Permits(ts.WorkType, kind) {
		return &IncompatibleWorkTypeError{Kind: kind, WorkType: ts.WorkType}
	}
	if !r.IsMutable(ts.Status) {
		return &InvalidTransitionError{From: ts.Status, To: ts.Status}
	}

	switch kind {
	case KindEquipmentLog:
		if payload.Equipment == nil {
			return NewValidationError("equipment", "payload is required")
		}
		if payload.Equipment.EquipmentID == "" {
			return NewValidationError("equipmentId", "equipment is required")
		}
		if payload.Equipment.EndTime != nil && payload.Equipment.EndTime.Before(payload.Equipment.StartTime) {
			return NewValidationError("endTime", "end time must not be before start time")
		}
	case KindTascoLog:
		if payload.Tasco == nil {
			return NewValidationError("tasco", "payload is required")
		}
		if payload.Tasco.LoadQuantity < 0 {
			return NewValidationError("loadQuantity", "load quantity must not be negative")
		}
	case KindTruckingLog:
		if payload.Trucking == nil {
			return NewValidationError("trucking", "payload is required")
		}
		if payload.Trucking.TruckID == "" {
			return NewValidationError("truckId", "truck is required")
		}
		if payload.Trucking.StartingMileage < 0 {
			return NewValidationError("startingMileage", "starting mileage must not be negative")
		}
		if payload.Trucking.EndingMileage != nil && *payload.Trucking.EndingMileage < payload.Trucking.StartingMileage {
			return NewValidationError("endingMileage", "ending mileage must not be less than starting mileage")
		}
	case KindRefuelLog:
		if payload.Refuel == nil {
			return NewValidationError("refuel", "payload is required")
		}
		if payload.Refuel.GallonsRefueled <= 0 {
			return NewValidationError("gallonsRefueled", "gallons refueled must be positive")
		}
		if err := r.validateRefuelParent(ts, payload.RefuelParent); err != nil {
			return err
		}
	default:
		return NewValidationError("kind", "unknown sub-log kind")
	}

	return nil
}

func (r Registry) validateRefuelParent(ts *model.Timesheet, parent RefuelParent) error {
	if parent.ID == "" {
		return NewValidationError("parent", "refuel log requires exactly one parent")
	}
	switch parent.Kind {
	case RefuelParentTasco:
		if ts.WorkType != model.WorkTypeTasco {
			return &IncompatibleWorkTypeError{Kind: KindTascoLog, WorkType: ts.WorkType}
		}
	case RefuelParentTrucking:
		if ts.WorkType != model.WorkTypeTruckDriver {
			return &IncompatibleWorkTypeError{Kind: KindTruckingLog, WorkType: ts.WorkType}
		}
	case RefuelParentEquipment:
		if ts.WorkType != model.WorkTypeLabor && ts.WorkType != model.WorkTypeMechanic {
			return &IncompatibleWorkTypeError{Kind: KindEquipmentLog, WorkType: ts.WorkType}
		}
	default:
		return NewValidationError("parent", "unknown refuel parent kind")
	}
	return nil
}

// ApplyRefuelParent writes the tagged parent onto the storage row, clearing
// the other two columns.
func ApplyRefuelParent(log *model.RefuelLog, parent RefuelParent) {
	log.TascoLogID = nil
	log.TruckingLogID = nil
	log.EmployeeEquipmentLogID = nil
	id := parent.ID
	switch parent.Kind {
	case RefuelParentTasco:
		log.TascoLogID = &id
	case RefuelParentTrucking:
		log.TruckingLogID = &id
	case RefuelParentEquipment:
		log.EmployeeEquipmentLogID = &id
	}
}
