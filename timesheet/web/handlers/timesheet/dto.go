package timesheet

import (
	"errors"
	"net/http"
	"time"

	tscore "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/core"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	web "github.com/Streamline-Precision-Apps/shift-scan-server-sub008/web/common"
	"github.com/gin-gonic/gin"
)

type TimesheetCreateDTO struct {
	Date           *web.DateOnly `json:"date,omitempty"`
	UserID         string        `json:"userId" binding:"required"`
	JobsiteID      string        `json:"jobsiteId" binding:"required"`
	CostCodeID     string        `json:"costCodeId" binding:"required"`
	WorkType       string        `json:"workType" binding:"required"`
	StartTime      time.Time     `json:"startTime" binding:"required"`
	Comment        string        `json:"comment"`
	CreatedByAdmin bool          `json:"createdByAdmin"`
	ClockInLat     *float64      `json:"clockInLat,omitempty"`
	ClockInLng     *float64      `json:"clockInLng,omitempty"`

	// truck driver only
	TruckID         string  `json:"truckId,omitempty"`
	TrailerID       *string `json:"trailerId,omitempty"`
	StartingMileage *int32  `json:"startingMileage,omitempty"`

	// tasco only
	ShiftType    string `json:"shiftType,omitempty"`
	LaborType    string `json:"laborType,omitempty"`
	MaterialType string `json:"materialType,omitempty"`
}

func (dto *TimesheetCreateDTO) toInput() tscore.CreateTimesheetInput {
	in := tscore.CreateTimesheetInput{
		UserID:          dto.UserID,
		JobsiteID:       dto.JobsiteID,
		CostCodeID:      dto.CostCodeID,
		WorkType:        model.WorkType(dto.WorkType),
		StartTime:       dto.StartTime,
		Comment:         dto.Comment,
		CreatedByAdmin:  dto.CreatedByAdmin,
		ClockInLat:      dto.ClockInLat,
		ClockInLng:      dto.ClockInLng,
		TruckID:         dto.TruckID,
		TrailerID:       dto.TrailerID,
		StartingMileage: dto.StartingMileage,
		ShiftType:       model.TascoShiftType(dto.ShiftType),
		LaborType:       dto.LaborType,
		MaterialType:    dto.MaterialType,
	}
	if dto.Date != nil {
		in.Date = dto.Date.Time
	}
	return in
}

type ClockOutDTO struct {
	EndTime     time.Time `json:"endTime" binding:"required"`
	Comment     string    `json:"comment"`
	WasInjured  bool      `json:"wasInjured"`
	ClockOutLat *float64  `json:"clockOutLat,omitempty"`
	ClockOutLng *float64  `json:"clockOutLng,omitempty"`
}

type TimesheetUpdateDTO struct {
	Date         *web.DateOnly `json:"date,omitempty"`
	JobsiteID    *string       `json:"jobsiteId,omitempty"`
	CostCodeID   *string       `json:"costCodeId,omitempty"`
	StartTime    *time.Time    `json:"startTime,omitempty"`
	EndTime      *time.Time    `json:"endTime,omitempty"`
	Comment      *string       `json:"comment,omitempty"`
	WasInjured   *bool         `json:"wasInjured,omitempty"`
	ChangeReason string        `json:"changeReason"`
}

func (dto *TimesheetUpdateDTO) toPatch() tscore.EditPatch {
	patch := tscore.EditPatch{
		JobsiteID:  dto.JobsiteID,
		CostCodeID: dto.CostCodeID,
		StartTime:  dto.StartTime,
		EndTime:    dto.EndTime,
		Comment:    dto.Comment,
		WasInjured: dto.WasInjured,
	}
	if dto.Date != nil {
		d := dto.Date.Time
		patch.Date = &d
	}
	return patch
}

type StatusUpdateDTO struct {
	Status        string `json:"status" binding:"required"`
	StatusComment string `json:"statusComment"`
}

type BatchApproveDTO struct {
	Ids           []string `json:"ids" binding:"required,min=1"`
	StatusComment string   `json:"statusComment"`
}

type BatchApproveResultDTO struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

type RefuelParentDTO struct {
	Kind string `json:"kind" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

type SubLogAttachDTO struct {
	Kind         string                      `json:"kind" binding:"required"`
	Equipment    *model.EmployeeEquipmentLog `json:"equipment,omitempty"`
	Tasco        *model.TascoLog             `json:"tasco,omitempty"`
	Trucking     *model.TruckingLog          `json:"trucking,omitempty"`
	Refuel       *model.RefuelLog            `json:"refuel,omitempty"`
	RefuelParent *RefuelParentDTO            `json:"refuelParent,omitempty"`
}

func (dto *SubLogAttachDTO) toPayload() tscore.SubLogPayload {
	payload := tscore.SubLogPayload{
		Equipment: dto.Equipment,
		Tasco:     dto.Tasco,
		Trucking:  dto.Trucking,
		Refuel:    dto.Refuel,
	}
	if dto.RefuelParent != nil {
		payload.RefuelParent = tscore.RefuelParent{
			Kind: tscore.RefuelParentKind(dto.RefuelParent.Kind),
			ID:   dto.RefuelParent.ID,
		}
	}
	return payload
}

// respondError maps lifecycle errors onto HTTP statuses. Conflicts (stale
// version, duplicate audit id, frozen status) get 409 so clients can reload
// and retry; bad input gets 400.
func respondError(c *gin.Context, err error) {
	var ve *tscore.ValidationError
	var ite *tscore.InvalidTransitionError
	var iwe *tscore.IncompatibleWorkTypeError

	switch {
	case errors.Is(err, tscore.ErrNotFound):
		c.JSON(http.StatusNotFound, web.NewErrorResponse("Timesheet not found"))
	case errors.Is(err, tscore.ErrConcurrentModification):
		c.JSON(http.StatusConflict, web.NewErrorResponse("Timesheet was modified by another request, reload and retry"))
	case errors.Is(err, tscore.ErrDuplicateAuditEntry):
		c.JSON(http.StatusConflict, web.NewErrorResponse("Change was already recorded"))
	case errors.Is(err, tscore.ErrChangeReasonRequired):
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("A change reason is required"))
	case errors.Is(err, tscore.ErrStatusCommentRequired):
		c.JSON(http.StatusBadRequest, web.NewErrorResponse("A status comment is required"))
	case errors.As(err, &ite):
		c.JSON(http.StatusConflict, web.NewErrorResponse(err.Error()))
	case errors.As(err, &ve), errors.As(err, &iwe):
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
	}
}

func actorID(c *gin.Context) string {
	if id, ok := c.Get("userId"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
