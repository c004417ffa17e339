package report

import (
	"testing"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimesheetWorkbook(t *testing.T) {
	start := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	timesheets := []model.Timesheet{
		{
			ID:        "ts-1",
			Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			UserID:    "user-1",
			User:      model.User{ID: "user-1", FirstName: "Dana", LastName: "Reyes"},
			Jobsite:   model.Jobsite{Name: "North Pit"},
			CostCode:  model.CostCode{Code: "CC-100"},
			WorkType:  model.WorkTypeLabor,
			StartTime: start,
			EndTime:   &end,
			Status:    model.StatusApproved,
		},
		{
			ID:        "ts-2",
			Date:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			UserID:    "user-2",
			WorkType:  model.WorkTypeTasco,
			StartTime: start,
			Status:    model.StatusDraft,
		},
	}

	f, err := BuildTimesheetWorkbook(timesheets)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Status", rows[0][8])

	assert.Equal(t, "2025-06-02", rows[1][0])
	assert.Equal(t, "Dana Reyes", rows[1][1])
	assert.Equal(t, "North Pit", rows[1][2])
	assert.Equal(t, "CC-100", rows[1][3])
	assert.Equal(t, "8", rows[1][7])
	assert.Equal(t, "APPROVED", rows[1][8])

	// open timesheet falls back to the user id and leaves end/hours blank
	assert.Equal(t, "user-2", rows[2][1])
	assert.Equal(t, "DRAFT", rows[2][8])
}
