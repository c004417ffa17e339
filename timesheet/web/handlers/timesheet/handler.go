package timesheet

import (
	"net/http"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/core"
	tscore "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/core"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	common "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/web/common"
	web "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/web/common"
	"github.com/gin-gonic/gin"
)

type Endpoint struct {
	base common.Handler
	svc  *tscore.Service
}

func Register(r *gin.RouterGroup, dm *core.DatabaseManager, svc *tscore.Service) {
	endpoint := &Endpoint{base: common.Handler{Dm: dm}, svc: svc}

	r.POST("/timesheets", endpoint.Create)
	r.GET("/timesheets/:id", endpoint.Get)
	r.PUT("/timesheets/:id", endpoint.Update)
	r.DELETE("/timesheets/:id", endpoint.Delete)

	r.POST("/timesheets/:id/clock-out", endpoint.ClockOut)
	r.PUT("/timesheets/:id/status", endpoint.UpdateStatus)
	r.POST("/timesheets/batch-approve", endpoint.BatchApprove)

	r.GET("/timesheets/:id/changelogs", endpoint.ListChangeLogs)

	r.POST("/timesheets/:id/sublogs", endpoint.AttachSubLog)
	r.DELETE("/sublogs/:kind/:id", endpoint.DeleteSubLog)

	r.POST("/timesheets/search", endpoint.Search)
	r.POST("/timesheets/export", endpoint.Export)
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto TimesheetCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	ts, err := ep.svc.CreateTimesheet(c.Request.Context(), dto.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(ts))
}

func (ep *Endpoint) ClockOut(c *gin.Context) {
	id := c.Param("id")

	var dto ClockOutDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	ts, err := ep.svc.ClockOut(c.Request.Context(), id, tscore.ClockOutInput{
		EndTime:     dto.EndTime,
		Comment:     dto.Comment,
		WasInjured:  dto.WasInjured,
		ClockOutLat: dto.ClockOutLat,
		ClockOutLng: dto.ClockOutLng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(ts))
}

func (ep *Endpoint) Update(c *gin.Context) {
	id := c.Param("id")

	var dto TimesheetUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	ts, rec, err := ep.svc.Edit(c.Request.Context(), id, actorID(c), dto.toPatch(), dto.ChangeReason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{
		"timesheet":       ts,
		"changes":         rec.Changes,
		"numberOfChanges": rec.NumberOfChanges(),
	}))
}

func (ep *Endpoint) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var dto StatusUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	ts, err := ep.svc.UpdateStatus(c.Request.Context(), id, model.Status(dto.Status), actorID(c), dto.StatusComment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(ts))
}

func (ep *Endpoint) BatchApprove(c *gin.Context) {
	var dto BatchApproveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	res := ep.svc.BatchApprove(c.Request.Context(), dto.Ids, actorID(c), dto.StatusComment)

	out := BatchApproveResultDTO{Succeeded: res.Succeeded, Failed: map[string]string{}}
	for id, err := range res.Failed {
		out.Failed[id] = err.Error()
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(out))
}

func (ep *Endpoint) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := ep.svc.DeleteTimesheet(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{}))
}
