package timesheet

import (
	"net/http"

	web "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/web/common"
	"github.com/gin-gonic/gin"
)

func (ep *Endpoint) Get(c *gin.Context) {
	id := c.Param("id")

	ts, err := ep.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(ts))
}

// ListChangeLogs returns the audit trail for one timesheet, newest first.
func (ep *Endpoint) ListChangeLogs(c *gin.Context) {
	id := c.Param("id")

	// 404 for unknown timesheets rather than an empty list
	if _, err := ep.svc.GetByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	entries, err := ep.svc.ListChangeLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(entries))
}
