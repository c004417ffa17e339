package core

import (
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
)

// Transition table for the timesheet lifecycle. APPROVED and REJECTED are not
// terminal; admins can still move them with a full audit trail.
var transitions = map[model.Status][]model.Status{
	model.StatusDraft:    {model.StatusPending},
	model.StatusPending:  {model.StatusApproved, model.StatusRejected},
	model.StatusApproved: {model.StatusPending}, // explicit reopen only
	model.StatusRejected: {model.StatusPending},
}

func CanTransition(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a status change in place. All guards run
// before the first field write.
func Transition(ts *model.Timesheet, to model.Status, statusComment string) error {
	if !CanTransition(ts.Status, to) {
		return &InvalidTransitionError{From: ts.Status, To: to}
	}

	switch to {
	case model.StatusPending:
		if ts.StartTime.IsZero() {
			return NewValidationError("startTime", "start time must be set before submission")
		}
	case model.StatusApproved:
		if err := validateForApproval(ts); err != nil {
			return err
		}
	case model.StatusRejected:
		if statusComment == "" {
			return ErrStatusCommentRequired
		}
	}

	ts.Status = to
	if statusComment != "" {
		ts.StatusComment = statusComment
	}
	return nil
}

// validateForApproval runs the unresolved-validation check gating
// PENDING -> APPROVED.
func validateForApproval(ts *model.Timesheet) error {
	if ts.EndTime == nil {
		return NewValidationError("endTime", "timesheet must be clocked out before approval")
	}
	if ts.EndTime.Before(ts.StartTime) {
		return NewValidationError("endTime", "end time must not be before start time")
	}
	for i := range ts.EquipmentLogs {
		l := &ts.EquipmentLogs[i]
		if l.EndTime != nil && l.EndTime.Before(l.StartTime) {
			return NewValidationError("equipmentLogs.endTime", "equipment log end time must not be before its start time")
		}
	}
	for i := range ts.TruckingLogs {
		l := &ts.TruckingLogs[i]
		if l.EndingMileage == nil {
			return NewValidationError("truckingLogs.endingMileage", "ending mileage is required before approval")
		}
		if *l.EndingMileage < l.StartingMileage {
			return NewValidationError("truckingLogs.endingMileage", "ending mileage must not be less than starting mileage")
		}
	}
	return nil
}
