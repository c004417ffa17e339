package report

import (
	"fmt"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Timesheets"

var headers = []string{
	"Date", "Employee", "Jobsite", "Cost Code", "Work Type",
	"Start", "End", "Hours", "Status", "Status Comment", "Injured",
}

// BuildTimesheetWorkbook renders one row per timesheet. The caller owns the
// returned file and must Close it.
func BuildTimesheetWorkbook(timesheets []model.Timesheet) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	for i, ts := range timesheets {
		row := i + 2
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &[]interface{}{
			ts.Date.Format("2006-01-02"),
			employeeName(&ts),
			ts.Jobsite.Name,
			ts.CostCode.Code,
			string(ts.WorkType),
			ts.StartTime.Format("15:04"),
			endTime(&ts),
			hours(&ts),
			string(ts.Status),
			ts.StatusComment,
			ts.WasInjured,
		}); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "K", 16); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func employeeName(ts *model.Timesheet) string {
	if ts.User.ID == "" {
		return ts.UserID
	}
	return ts.User.FullName()
}

func endTime(ts *model.Timesheet) string {
	if ts.EndTime == nil {
		return ""
	}
	return ts.EndTime.Format("15:04")
}

func hours(ts *model.Timesheet) interface{} {
	if ts.EndTime == nil {
		return ""
	}
	return ts.EndTime.Sub(ts.StartTime).Hours()
}
