package timesheet

import (
	"net/http"
	"strconv"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	web "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/web/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Sort struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

type SearchParams struct {
	StartDate *web.DateOnly `json:"startDate" binding:"required"`
	EndDate   *web.DateOnly `json:"endDate" binding:"required"`
	Users     []string      `json:"users"`
	Jobsites  []string      `json:"jobsites"`
	Statuses  []string      `json:"statuses"`
	WorkTypes []string      `json:"workTypes"`
	Sorts     []Sort        `json:"sorts"`
}

const maxSearchLimit = 1000

// pageParams clamps client paging input; gorm treats negative values as
// "unbounded", which would let a client skip the row cap.
func pageParams(limitStr, offsetStr string) (int, int) {
	limit := maxSearchLimit
	offset := 0
	if val, err := strconv.Atoi(limitStr); err == nil && val > 0 && val <= maxSearchLimit {
		limit = val
	}
	if val, err := strconv.Atoi(offsetStr); err == nil && val > 0 {
		offset = val
	}
	return limit, offset
}

var sortColumns = map[string]string{
	"date":      "date",
	"startTime": "start_time",
	"endTime":   "end_time",
	"status":    "status",
	"workType":  "work_type",
	"userId":    "user_id",
}

func (ep *Endpoint) Search(c *gin.Context) {
	var searchParams SearchParams

	if err := c.ShouldBindJSON(&searchParams); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	limit, offset := pageParams(c.Query("limit"), c.Query("offset"))

	db, err := ep.base.GetDB(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	timesheets, total, err := SearchTimesheets(db, searchParams, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(timesheets, total))
}

func SearchTimesheets(db *gorm.DB, params SearchParams, limit, offset int) ([]model.Timesheet, int64, error) {
	query := db.Model(&model.Timesheet{}).
		Where("date >= ? AND date <= ?",
			params.StartDate.Format("2006-01-02"),
			params.EndDate.Format("2006-01-02"))

	if len(params.Users) > 0 {
		query = query.Where("user_id IN ?", params.Users)
	}
	if len(params.Jobsites) > 0 {
		query = query.Where("jobsite_id IN ?", params.Jobsites)
	}
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	if len(params.WorkTypes) > 0 {
		query = query.Where("work_type IN ?", params.WorkTypes)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ordered := false
	for _, s := range params.Sorts {
		col, ok := sortColumns[s.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Dir == "desc" || s.Dir == "DESC" {
			dir = "DESC"
		}
		query = query.Order(col + " " + dir)
		ordered = true
	}
	if !ordered {
		query = query.Order("date DESC, start_time DESC")
	}

	var timesheets []model.Timesheet
	err := query.
		Preload("User").
		Preload("Jobsite").
		Preload("CostCode").
		Limit(limit).
		Offset(offset).
		Find(&timesheets).Error
	if err != nil {
		return nil, 0, err
	}

	return timesheets, total, nil
}
