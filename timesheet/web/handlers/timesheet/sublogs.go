package timesheet

import (
	"net/http"

	tscore "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/core"
	web "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/web/common"
	"github.com/gin-gonic/gin"
)

func (ep *Endpoint) AttachSubLog(c *gin.Context) {
	id := c.Param("id")

	var dto SubLogAttachDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	rec, err := ep.svc.AttachSubRecord(c.Request.Context(), id, tscore.SubLogKind(dto.Kind), dto.toPayload())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(rec))
}

func (ep *Endpoint) DeleteSubLog(c *gin.Context) {
	kind := tscore.SubLogKind(c.Param("kind"))
	id := c.Param("id")

	if err := ep.svc.DeleteSubRecord(c.Request.Context(), kind, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{}))
}
