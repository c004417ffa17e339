package core

import (
	"context"
	"testing"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTimesheet() *model.Timesheet {
	start := time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	return &model.Timesheet{
		ID:         "ts-1",
		Date:       time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		UserID:     "user-1",
		JobsiteID:  "site-1",
		CostCodeID: "cc-1",
		WorkType:   model.WorkTypeLabor,
		StartTime:  start,
		EndTime:    &end,
		Status:     model.StatusPending,
		Version:    1,
	}
}

func newTestDiffer() (*Differ, *MemoryStore) {
	store := NewMemoryStore()
	store.SeedJobsite("site-1", "North Pit")
	store.SeedJobsite("site-2", "South Quarry")
	store.SeedCostCode("cc-1", "Excavation")
	store.SeedCostCode("cc-2", "Hauling")
	return NewDiffer(store), store
}

func TestDiffSingleFieldChange(t *testing.T) {
	differ, _ := newTestDiffer()

	tests := []struct {
		name    string
		mutate  func(*model.Timesheet)
		field   string
		wantOld any
		wantNew any
	}{
		{
			name:    "comment",
			mutate:  func(ts *model.Timesheet) { ts.Comment = "forgot lunch break" },
			field:   "comment",
			wantOld: nil,
			wantNew: "forgot lunch break",
		},
		{
			name:    "jobsite reported by display name",
			mutate:  func(ts *model.Timesheet) { ts.JobsiteID = "site-2" },
			field:   "jobsite",
			wantOld: "North Pit",
			wantNew: "South Quarry",
		},
		{
			name:    "cost code reported by display name",
			mutate:  func(ts *model.Timesheet) { ts.CostCodeID = "cc-2" },
			field:   "costCode",
			wantOld: "Excavation",
			wantNew: "Hauling",
		},
		{
			name:    "was injured",
			mutate:  func(ts *model.Timesheet) { ts.WasInjured = true },
			field:   "wasInjured",
			wantOld: false,
			wantNew: true,
		},
		{
			name:    "date by calendar day",
			mutate:  func(ts *model.Timesheet) { ts.Date = time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC) },
			field:   "date",
			wantOld: "2024-03-11",
			wantNew: "2024-03-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := baseTimesheet()
			updated := original.Clone()
			tt.mutate(updated)

			rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
			require.NoError(t, err)
			assert.Equal(t, 1, rec.NumberOfChanges())
			change, ok := rec.Changes[tt.field]
			require.True(t, ok, "expected a change on %s", tt.field)
			assert.Equal(t, tt.wantOld, change.Old)
			assert.Equal(t, tt.wantNew, change.New)
		})
	}
}

func TestDiffIdenticalIsEmpty(t *testing.T) {
	differ, _ := newTestDiffer()

	original := baseTimesheet()
	updated := original.Clone()

	rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
	require.NoError(t, err)
	assert.Equal(t, 0, rec.NumberOfChanges())
	assert.True(t, rec.Empty())
}

func TestDiffTimezoneShiftedSameInstant(t *testing.T) {
	differ, _ := newTestDiffer()

	original := baseTimesheet()
	updated := original.Clone()
	// Same instant rendered in a different zone must not read as a change.
	denver := time.FixedZone("MST", -7*3600)
	updated.StartTime = original.StartTime.In(denver)

	rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestDiffDateIgnoresTimeOfDay(t *testing.T) {
	differ, _ := newTestDiffer()

	original := baseTimesheet()
	updated := original.Clone()
	updated.Date = original.Date.Add(3 * time.Hour) // same calendar day

	rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestDiffStatusChangeSetsFlag(t *testing.T) {
	differ, _ := newTestDiffer()

	original := baseTimesheet()
	updated := original.Clone()
	updated.Status = model.StatusApproved

	rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
	require.NoError(t, err)
	assert.True(t, rec.StatusChanged)
	assert.Equal(t, 1, rec.NumberOfChanges())
}

func TestDiffEndTimeSet(t *testing.T) {
	differ, _ := newTestDiffer()

	original := baseTimesheet()
	original.EndTime = nil
	updated := original.Clone()
	end := time.Date(2024, 3, 11, 15, 30, 0, 0, time.UTC)
	updated.EndTime = &end

	rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
	require.NoError(t, err)
	require.Equal(t, 1, rec.NumberOfChanges())
	change := rec.Changes["endTime"]
	assert.Nil(t, change.Old)
	assert.Equal(t, "2024-03-11T15:30:00Z", change.New)
}

func TestDiffBlankCommentNeverReads(t *testing.T) {
	differ, _ := newTestDiffer()

	t.Run("blank stays blank", func(t *testing.T) {
		original := baseTimesheet()
		updated := original.Clone()
		original.Comment = ""
		updated.Comment = ""

		rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
		require.NoError(t, err)
		assert.True(t, rec.Empty())
	})

	t.Run("cleared comment reports nil", func(t *testing.T) {
		original := baseTimesheet()
		original.Comment = "stale note"
		updated := original.Clone()
		updated.Comment = ""

		rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
		require.NoError(t, err)
		require.Equal(t, 1, rec.NumberOfChanges())
		change := rec.Changes["comment"]
		assert.Equal(t, "stale note", change.Old)
		assert.Nil(t, change.New)
	})

	t.Run("set status comment reports nil old", func(t *testing.T) {
		original := baseTimesheet()
		updated := original.Clone()
		updated.StatusComment = "resubmit with correct cost code"

		rec, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
		require.NoError(t, err)
		require.Equal(t, 1, rec.NumberOfChanges())
		change := rec.Changes["statusComment"]
		assert.Nil(t, change.Old)
		assert.Equal(t, "resubmit with correct cost code", change.New)
	})
}

func TestDiffDeterministic(t *testing.T) {
	differ, _ := newTestDiffer()

	original := baseTimesheet()
	updated := original.Clone()
	updated.Comment = "note"
	updated.JobsiteID = "site-2"

	first, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
	require.NoError(t, err)
	second, err := differ.Diff(context.Background(), original, updated, TrackedTimesheetFields())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.NumberOfChanges())
}
