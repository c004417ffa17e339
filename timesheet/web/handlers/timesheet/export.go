package timesheet

import (
	"fmt"
	"net/http"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/report"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/utils"
	web "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/web/common"
	"github.com/gin-gonic/gin"
)

// Export streams the matching timesheets as an xlsx workbook. Same body as
// Search; the limit/offset query params are ignored so the export is complete.
func (ep *Endpoint) Export(c *gin.Context) {
	var searchParams SearchParams

	if err := c.ShouldBindJSON(&searchParams); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	db, err := ep.base.GetDB(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	timesheets, _, err := SearchTimesheets(db, searchParams, 100000, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	f, err := report.BuildTimesheetWorkbook(timesheets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("timesheets-%s.xlsx", utils.MountainNow().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}
}
