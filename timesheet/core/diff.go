package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
)

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldDate           // compared by calendar date, not raw instant
	FieldTime
	FieldBool
	FieldNumber
	FieldJobsiteRef  // compared by id, reported by display name
	FieldCostCodeRef // compared by id, reported by display name
)

// FieldSpec describes one tracked field: how to read it, how to compare it,
// and whether a change to it flips the "status changed" flag.
type FieldSpec struct {
	Name            string
	Kind            FieldKind
	StatusAffecting bool
	// BlankIsNil normalizes "" to absent, so blank and null serializations
	// of an optional field (comments) never read as a change.
	BlankIsNil bool
	Get        func(*model.Timesheet) any
}

type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeRecord is the computed delta between two timesheet versions.
type ChangeRecord struct {
	Changes       map[string]FieldChange `json:"changes"`
	StatusChanged bool                   `json:"statusChanged"`
}

func (c ChangeRecord) NumberOfChanges() int {
	return len(c.Changes)
}

func (c ChangeRecord) Empty() bool {
	return len(c.Changes) == 0
}

// NameLookup resolves foreign keys to human-readable names for the audit
// trail. Injected rather than read from a shared cache.
type NameLookup interface {
	JobsiteName(ctx context.Context, id string) (string, error)
	CostCodeName(ctx context.Context, id string) (string, error)
}

type Differ struct {
	names NameLookup
}

func NewDiffer(names NameLookup) *Differ {
	return &Differ{names: names}
}

// Diff compares the tracked fields of two timesheet versions. It iterates the
// fixed field table, so output is deterministic and independent of struct or
// map ordering. A field absent from both sides is never reported.
func (d *Differ) Diff(ctx context.Context, original, updated *model.Timesheet, fields []FieldSpec) (ChangeRecord, error) {
	rec := ChangeRecord{Changes: map[string]FieldChange{}}

	for _, f := range fields {
		oldKey, oldPresent, oldVal := normalizeField(f, f.Get(original))
		newKey, newPresent, newVal := normalizeField(f, f.Get(updated))

		if !oldPresent && !newPresent {
			continue
		}
		if oldPresent == newPresent && oldKey == newKey {
			continue
		}

		switch f.Kind {
		case FieldJobsiteRef, FieldCostCodeRef:
			oldVal = d.displayName(ctx, f.Kind, oldVal)
			newVal = d.displayName(ctx, f.Kind, newVal)
		}

		rec.Changes[f.Name] = FieldChange{Old: oldVal, New: newVal}
		if f.StatusAffecting {
			rec.StatusChanged = true
		}
	}

	return rec, nil
}

// displayName swaps a foreign key for its display name; on lookup failure the
// raw id still lands in the audit trail rather than losing the change.
func (d *Differ) displayName(ctx context.Context, kind FieldKind, v any) any {
	id, ok := v.(string)
	if !ok || id == "" || d.names == nil {
		return v
	}
	var name string
	var err error
	if kind == FieldJobsiteRef {
		name, err = d.names.JobsiteName(ctx, id)
	} else {
		name, err = d.names.CostCodeName(ctx, id)
	}
	if err != nil || name == "" {
		return id
	}
	return name
}

// normalizeField reduces a raw field value to a comparison key, a presence
// flag and a reportable value. Dates collapse to calendar days; instants are
// compared in UTC so timezone-shifted serializations of the same moment do
// not read as a change.
func normalizeField(f FieldSpec, raw any) (key string, present bool, value any) {
	switch v := raw.(type) {
	case nil:
		return "", false, nil
	case *time.Time:
		if v == nil {
			return "", false, nil
		}
		return normalizeTime(f.Kind, *v)
	case time.Time:
		if v.IsZero() {
			return "", false, nil
		}
		return normalizeTime(f.Kind, v)
	case *string:
		if v == nil || (f.BlankIsNil && *v == "") {
			return "", false, nil
		}
		return *v, true, *v
	case string:
		if f.BlankIsNil && v == "" {
			return "", false, nil
		}
		return v, true, v
	case bool:
		return strconv.FormatBool(v), true, v
	case *float64:
		if v == nil {
			return "", false, nil
		}
		return strconv.FormatFloat(*v, 'f', -1, 64), true, *v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true, v
	case *int32:
		if v == nil {
			return "", false, nil
		}
		return strconv.FormatInt(int64(*v), 10), true, *v
	case int32:
		return strconv.FormatInt(int64(v), 10), true, v
	case int:
		return strconv.Itoa(v), true, v
	case model.Status:
		return string(v), true, string(v)
	case model.WorkType:
		return string(v), true, string(v)
	default:
		s := fmt.Sprintf("%v", v)
		return s, true, s
	}
}

func normalizeTime(kind FieldKind, t time.Time) (string, bool, any) {
	if kind == FieldDate {
		d := t.Format("2006-01-02")
		return d, true, d
	}
	u := t.UTC()
	return u.Format(time.RFC3339Nano), true, u.Format(time.RFC3339)
}

// TrackedTimesheetFields is the audit field table for timesheets. Order fixes
// nothing semantically but keeps change maps stable for readers.
func TrackedTimesheetFields() []FieldSpec {
	return []FieldSpec{
		{Name: "date", Kind: FieldDate, Get: func(t *model.Timesheet) any { return t.Date }},
		{Name: "startTime", Kind: FieldTime, Get: func(t *model.Timesheet) any { return t.StartTime }},
		{Name: "endTime", Kind: FieldTime, Get: func(t *model.Timesheet) any { return t.EndTime }},
		{Name: "jobsite", Kind: FieldJobsiteRef, Get: func(t *model.Timesheet) any { return t.JobsiteID }},
		{Name: "costCode", Kind: FieldCostCodeRef, Get: func(t *model.Timesheet) any { return t.CostCodeID }},
		{Name: "workType", Kind: FieldText, Get: func(t *model.Timesheet) any { return t.WorkType }},
		{Name: "comment", Kind: FieldText, BlankIsNil: true, Get: func(t *model.Timesheet) any { return t.Comment }},
		{Name: "statusComment", Kind: FieldText, BlankIsNil: true, Get: func(t *model.Timesheet) any { return t.StatusComment }},
		{Name: "status", Kind: FieldText, StatusAffecting: true, Get: func(t *model.Timesheet) any { return t.Status }},
		{Name: "wasInjured", Kind: FieldBool, Get: func(t *model.Timesheet) any { return t.WasInjured }},
	}
}
