package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserLookup resolves user ids to display names for notification text.
type UserLookup interface {
	UserName(ctx context.Context, id string) (string, error)
}

// Service orchestrates the timesheet lifecycle: create, clock-out, edit,
// status changes, sub-record attachment. Every mutation is either fully
// applied and audited or rejected with no persisted partial state.
type Service struct {
	repo       Repository
	audit      AuditLog
	registry   Registry
	differ     *Differ
	dispatcher *Dispatcher
	clock      Clock
	users      UserLookup
	log        *logrus.Logger
}

func NewService(repo Repository, audit AuditLog, differ *Differ, dispatcher *Dispatcher, clock Clock, users UserLookup, log *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		audit:      audit,
		registry:   NewRegistry(),
		differ:     differ,
		dispatcher: dispatcher,
		clock:      clock,
		users:      users,
		log:        log,
	}
}

type CreateTimesheetInput struct {
	Date           time.Time
	UserID         string
	JobsiteID      string
	CostCodeID     string
	WorkType       model.WorkType
	StartTime      time.Time
	Comment        string
	CreatedByAdmin bool
	ClockInLat     *float64
	ClockInLng     *float64

	// TRUCK_DRIVER seed fields.
	TruckID         string
	TrailerID       *string
	StartingMileage *int32

	// TASCO seed fields.
	ShiftType    model.TascoShiftType
	LaborType    string
	MaterialType string
}

// CreateTimesheet validates work-type specific required fields, creates the
// timesheet in DRAFT and seeds the initial sub-record stub for work types
// that carry one.
func (s *Service) CreateTimesheet(ctx context.Context, in CreateTimesheetInput) (*model.Timesheet, error) {
	if !in.WorkType.Valid() {
		return nil, NewValidationError("workType", "unknown work type")
	}
	if in.UserID == "" {
		return nil, NewValidationError("userId", "user is required")
	}
	if in.JobsiteID == "" {
		return nil, NewValidationError("jobsiteId", "jobsite is required")
	}
	if in.CostCodeID == "" {
		return nil, NewValidationError("costCodeId", "cost code is required")
	}
	if in.StartTime.IsZero() {
		return nil, NewValidationError("startTime", "start time is required")
	}
	if in.WorkType == model.WorkTypeTruckDriver {
		if in.TruckID == "" {
			return nil, NewValidationError("truckId", "truck is required for truck driver timesheets")
		}
		if in.StartingMileage == nil {
			return nil, NewValidationError("startingMileage", "starting mileage is required for truck driver timesheets")
		}
		if *in.StartingMileage < 0 {
			return nil, NewValidationError("startingMileage", "starting mileage must not be negative")
		}
	}

	date := in.Date
	if date.IsZero() {
		date = in.StartTime
	}

	ts := &model.Timesheet{
		ID:             uuid.NewString(),
		Date:           time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		UserID:         in.UserID,
		JobsiteID:      in.JobsiteID,
		CostCodeID:     in.CostCodeID,
		WorkType:       in.WorkType,
		StartTime:      in.StartTime,
		Status:         model.StatusDraft,
		Comment:        in.Comment,
		CreatedByAdmin: in.CreatedByAdmin,
		ClockInLat:     in.ClockInLat,
		ClockInLng:     in.ClockInLng,
		Version:        1,
	}

	switch in.WorkType {
	case model.WorkTypeTruckDriver:
		ts.TruckingLogs = []model.TruckingLog{{
			ID:              uuid.NewString(),
			TimesheetID:     ts.ID,
			TruckID:         in.TruckID,
			TrailerID:       in.TrailerID,
			StartingMileage: *in.StartingMileage,
			LaborType:       in.LaborType,
		}}
	case model.WorkTypeTasco:
		ts.TascoLogs = []model.TascoLog{{
			ID:           uuid.NewString(),
			TimesheetID:  ts.ID,
			ShiftType:    in.ShiftType,
			LaborType:    in.LaborType,
			MaterialType: in.MaterialType,
		}}
	}

	if err := s.repo.Create(ctx, ts); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"timesheetId": ts.ID, "workType": ts.WorkType}).Info("timesheet created")
	return ts, nil
}

type ClockOutInput struct {
	EndTime     time.Time
	Comment     string
	WasInjured  bool
	ClockOutLat *float64
	ClockOutLng *float64
}

// ClockOut finalizes the work session: sets the end time, closes any open
// equipment-log end times (finalizeOpenSubRecords) and runs DRAFT -> PENDING.
func (s *Service) ClockOut(ctx context.Context, id string, in ClockOutInput) (*model.Timesheet, error) {
	ts, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.EndTime.IsZero() {
		return nil, NewValidationError("endTime", "end time is required")
	}
	if in.EndTime.Before(ts.StartTime) {
		return nil, NewValidationError("endTime", "end time must not be before start time")
	}
	if ts.Status != model.StatusDraft {
		return nil, &InvalidTransitionError{From: ts.Status, To: model.StatusPending}
	}

	expected := ts.Version
	end := in.EndTime
	ts.EndTime = &end
	if in.Comment != "" {
		ts.Comment = in.Comment
	}
	ts.WasInjured = in.WasInjured
	ts.ClockOutLat = in.ClockOutLat
	ts.ClockOutLng = in.ClockOutLng

	closed := finalizeOpenSubRecords(ts, in.EndTime)

	if err := Transition(ts, model.StatusPending, ""); err != nil {
		return nil, err
	}

	tx := &Transaction{Timesheet: ts, ExpectedVersion: expected}
	for i := range closed {
		tx.SaveSubLogs = append(tx.SaveSubLogs, closed[i])
	}
	if err := s.repo.CommitTransaction(ctx, tx); err != nil {
		return nil, err
	}
	s.log.WithField("timesheetId", ts.ID).Info("timesheet clocked out")
	return ts, nil
}

// Submit runs the explicit admin DRAFT -> PENDING submission without a
// clock-out, for admin-entered timesheets that already carry both times.
func (s *Service) Submit(ctx context.Context, id, actorID string) (*model.Timesheet, error) {
	return s.UpdateStatus(ctx, id, model.StatusPending, actorID, "")
}

// EditPatch carries the mutable timesheet fields; nil leaves a field alone.
type EditPatch struct {
	Date       *time.Time
	JobsiteID  *string
	CostCodeID *string
	StartTime  *time.Time
	EndTime    *time.Time
	Comment    *string
	WasInjured *bool
}

func (p EditPatch) apply(ts *model.Timesheet) {
	if p.Date != nil {
		ts.Date = *p.Date
	}
	if p.JobsiteID != nil {
		ts.JobsiteID = *p.JobsiteID
	}
	if p.CostCodeID != nil {
		ts.CostCodeID = *p.CostCodeID
	}
	if p.StartTime != nil {
		ts.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		end := *p.EndTime
		ts.EndTime = &end
	}
	if p.Comment != nil {
		ts.Comment = *p.Comment
	}
	if p.WasInjured != nil {
		ts.WasInjured = *p.WasInjured
	}
}

// Edit applies a patch, diffs it against the pre-mutation snapshot and
// persists the new state plus one audit entry transactionally. A non-empty
// diff demands a change reason. Editing a REJECTED timesheet automatically
// resubmits it to PENDING.
func (s *Service) Edit(ctx context.Context, id, editorID string, patch EditPatch, changeReason string) (*model.Timesheet, ChangeRecord, error) {
	ts, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, ChangeRecord{}, err
	}
	if !s.registry.IsMutable(ts.Status) {
		return nil, ChangeRecord{}, &InvalidTransitionError{From: ts.Status, To: ts.Status}
	}

	snapshot := ts.Clone()
	patch.apply(ts)

	if ts.EndTime != nil && ts.EndTime.Before(ts.StartTime) {
		return nil, ChangeRecord{}, NewValidationError("endTime", "end time must not be before start time")
	}

	rec, err := s.differ.Diff(ctx, snapshot, ts, TrackedTimesheetFields())
	if err != nil {
		return nil, ChangeRecord{}, err
	}
	if rec.Empty() {
		// No-op edit: nothing persisted, nothing audited.
		return snapshot, rec, nil
	}
	if changeReason == "" {
		return nil, ChangeRecord{}, ErrChangeReasonRequired
	}

	if ts.Status == model.StatusRejected {
		if err := Transition(ts, model.StatusPending, ""); err != nil {
			return nil, ChangeRecord{}, err
		}
		rec.Changes["status"] = FieldChange{Old: string(model.StatusRejected), New: string(model.StatusPending)}
		rec.StatusChanged = true
	}

	ts.EditedByUserID = &editorID

	entry, err := s.buildAuditEntry(ts.ID, editorID, changeReason, rec)
	if err != nil {
		return nil, ChangeRecord{}, err
	}

	tx := &Transaction{Timesheet: ts, ExpectedVersion: snapshot.Version, Audit: entry}
	if err := s.repo.CommitTransaction(ctx, tx); err != nil {
		return nil, ChangeRecord{}, err
	}

	s.notifyAsync(ctx, func(nctx context.Context) {
		s.dispatcher.OnTimesheetEdited(nctx, TimesheetEditedEvent{
			TimesheetID:     ts.ID,
			AuditEntryID:    entry.ID,
			EditorName:      s.userName(nctx, editorID),
			OwnerName:       s.userName(nctx, ts.UserID),
			NumberOfChanges: rec.NumberOfChanges(),
		})
	})

	return ts, rec, nil
}

// UpdateStatus runs one state-machine transition and audits it. REJECTED
// requires a status comment; the APPROVED -> PENDING edge is the explicit
// reopen path and requires one as the change reason.
func (s *Service) UpdateStatus(ctx context.Context, id string, newStatus model.Status, actorID, statusComment string) (*model.Timesheet, error) {
	ts, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := ts.Status
	if from == model.StatusApproved && newStatus == model.StatusPending && statusComment == "" {
		return nil, ErrChangeReasonRequired
	}

	snapshot := ts.Clone()
	if err := Transition(ts, newStatus, statusComment); err != nil {
		return nil, err
	}
	ts.EditedByUserID = &actorID

	rec, err := s.differ.Diff(ctx, snapshot, ts, TrackedTimesheetFields())
	if err != nil {
		return nil, err
	}

	reason := statusComment
	if reason == "" {
		reason = fmt.Sprintf("status changed to %s", newStatus)
	}
	entry, err := s.buildAuditEntry(ts.ID, actorID, reason, rec)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{Timesheet: ts, ExpectedVersion: snapshot.Version, Audit: entry}
	if err := s.repo.CommitTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.notifyAsync(ctx, func(nctx context.Context) {
		s.dispatcher.OnStatusChanged(nctx, StatusChangedEvent{
			TimesheetID:   ts.ID,
			AuditEntryID:  entry.ID,
			ActorName:     s.userName(nctx, actorID),
			From:          from,
			To:            newStatus,
			StatusComment: statusComment,
		})
	})

	return ts, nil
}

// BatchResult reports partial success: per-id failures never abort the batch.
type BatchResult struct {
	Succeeded []string
	Failed    map[string]error
}

// BatchApprove applies UpdateStatus(APPROVED) to each id independently.
func (s *Service) BatchApprove(ctx context.Context, ids []string, actorID, statusComment string) BatchResult {
	res := BatchResult{Failed: map[string]error{}}
	for _, id := range ids {
		if _, err := s.UpdateStatus(ctx, id, model.StatusApproved, actorID, statusComment); err != nil {
			res.Failed[id] = err
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}

// AttachSubRecord validates the payload against the registry and persists it
// under the timesheet. The parent timesheet version is bumped in the same
// transaction so concurrent edits serialize.
func (s *Service) AttachSubRecord(ctx context.Context, timesheetID string, kind SubLogKind, payload SubLogPayload) (any, error) {
	ts, err := s.repo.Load(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Validate(ts, kind, payload); err != nil {
		return nil, err
	}

	var rec any
	var brokenEquipment string
	switch kind {
	case KindEquipmentLog:
		l := *payload.Equipment
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.TimesheetID = ts.ID
		if l.StartTime.IsZero() {
			l.StartTime = s.clock.Now()
		}
		if l.ReportedBroken {
			brokenEquipment = l.EquipmentID
		}
		rec = &l
	case KindTascoLog:
		l := *payload.Tasco
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.TimesheetID = ts.ID
		rec = &l
	case KindTruckingLog:
		l := *payload.Trucking
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.TimesheetID = ts.ID
		rec = &l
	case KindRefuelLog:
		l := *payload.Refuel
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if err := refuelParentExists(ts, payload.RefuelParent); err != nil {
			return nil, err
		}
		ApplyRefuelParent(&l, payload.RefuelParent)
		rec = &l
	}

	tx := &Transaction{Timesheet: ts, ExpectedVersion: ts.Version, SaveSubLogs: []any{rec}}
	if err := s.repo.CommitTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if brokenEquipment != "" {
		refID := uuid.NewString()
		s.notifyAsync(ctx, func(nctx context.Context) {
			s.dispatcher.OnEquipmentBreak(nctx, EquipmentBreakEvent{
				TimesheetID:  ts.ID,
				EquipmentID:  brokenEquipment,
				ReporterName: s.userName(nctx, ts.UserID),
				ReferenceID:  refID,
			})
		})
	}

	return rec, nil
}

// DeleteSubRecord removes a sub-log if the parent timesheet is still mutable.
func (s *Service) DeleteSubRecord(ctx context.Context, kind SubLogKind, id string) error {
	rec, timesheetID, err := s.repo.FindSubLog(ctx, kind, id)
	if err != nil {
		return err
	}
	ts, err := s.repo.Load(ctx, timesheetID)
	if err != nil {
		return err
	}
	if !s.registry.IsMutable(ts.Status) {
		return &InvalidTransitionError{From: ts.Status, To: ts.Status}
	}

	tx := &Transaction{Timesheet: ts, ExpectedVersion: ts.Version, DeleteSubLogs: []any{rec}}
	return s.repo.CommitTransaction(ctx, tx)
}

// DeleteTimesheet is the admin-only cascading delete.
func (s *Service) DeleteTimesheet(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("timesheetId", id).Info("timesheet deleted")
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*model.Timesheet, error) {
	return s.repo.Load(ctx, id)
}

func (s *Service) ListChangeLogs(ctx context.Context, timesheetID string) ([]model.AuditEntry, error) {
	return s.audit.ListByTimesheet(ctx, timesheetID)
}

func (s *Service) buildAuditEntry(timesheetID, actorID, reason string, rec ChangeRecord) (*model.AuditEntry, error) {
	blob, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal change record: %w", err)
	}
	return &model.AuditEntry{
		ID:           uuid.NewString(),
		TimesheetID:  timesheetID,
		ChangedBy:    actorID,
		ChangedAt:    s.clock.Now(),
		Changes:      blob,
		ChangeReason: reason,
	}, nil
}

// notifyAsync fires the notification off the caller's goroutine. The context
// is detached so cancelling the request after commit does not suppress the
// already-owed notification.
func (s *Service) notifyAsync(ctx context.Context, fn func(context.Context)) {
	if s.dispatcher == nil {
		return
	}
	go fn(context.WithoutCancel(ctx))
}

func (s *Service) userName(ctx context.Context, id string) string {
	if s.users == nil {
		return id
	}
	name, err := s.users.UserName(ctx, id)
	if err != nil || name == "" {
		return id
	}
	return name
}

// refuelParentExists checks that the tagged parent is a sub-log actually
// attached to this timesheet. The registry validated kind compatibility; this
// rules out dangling parent ids.
func refuelParentExists(ts *model.Timesheet, parent RefuelParent) error {
	var found bool
	switch parent.Kind {
	case RefuelParentTasco:
		found = utils.Find(ts.TascoLogs, func(l *model.TascoLog) bool { return l.ID == parent.ID }) != nil
	case RefuelParentTrucking:
		found = utils.Find(ts.TruckingLogs, func(l *model.TruckingLog) bool { return l.ID == parent.ID }) != nil
	case RefuelParentEquipment:
		found = utils.Find(ts.EquipmentLogs, func(l *model.EmployeeEquipmentLog) bool { return l.ID == parent.ID }) != nil
	}
	if !found {
		return NewValidationError("parent", "refuel parent does not exist on this timesheet")
	}
	return nil
}

// finalizeOpenSubRecords closes open equipment-log end times at clock-out by
// inheriting the clock-out time. Trucking mileage and TASCO load counts stay
// open for later entry; approval validation catches them if still missing.
func finalizeOpenSubRecords(ts *model.Timesheet, end time.Time) []*model.EmployeeEquipmentLog {
	var closed []*model.EmployeeEquipmentLog
	for i := range ts.EquipmentLogs {
		if ts.EquipmentLogs[i].EndTime == nil {
			t := end
			ts.EquipmentLogs[i].EndTime = &t
			closed = append(closed, &ts.EquipmentLogs[i])
		}
	}
	return closed
}
