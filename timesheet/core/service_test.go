package core

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSink struct {
	ch chan Message
}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan Message, 16)}
}

func (s *chanSink) Send(ctx context.Context, msg Message) error {
	s.ch <- msg
	return nil
}

func (s *chanSink) wait(t *testing.T) Message {
	t.Helper()
	select {
	case m := <-s.ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return Message{}
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService() (*Service, *MemoryStore, *chanSink) {
	store := NewMemoryStore()
	store.SeedJobsite("site-1", "North Pit")
	store.SeedJobsite("site-2", "South Quarry")
	store.SeedCostCode("cc-1", "Excavation")
	store.SeedCostCode("cc-2", "Hauling")
	store.SeedUser("user-1", "Jesse Alvarez")
	store.SeedUser("admin-1", "Dana Whitfield")

	sink := newChanSink()
	clock := FixedClock{T: time.Date(2024, 3, 11, 16, 0, 0, 0, time.UTC)}
	svc := NewService(store, store, NewDiffer(store), NewDispatcher(sink, quietLogger()), clock, store, quietLogger())
	return svc, store, sink
}

func createLaborTimesheet(t *testing.T, svc *Service) *model.Timesheet {
	t.Helper()
	ts, err := svc.CreateTimesheet(context.Background(), CreateTimesheetInput{
		UserID:     "user-1",
		JobsiteID:  "site-1",
		CostCodeID: "cc-1",
		WorkType:   model.WorkTypeLabor,
		StartTime:  time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return ts
}

func clockOut(t *testing.T, svc *Service, id string) *model.Timesheet {
	t.Helper()
	ts, err := svc.ClockOut(context.Background(), id, ClockOutInput{
		EndTime: time.Date(2024, 3, 11, 15, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return ts
}

func TestCreateTimesheetValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	t.Run("truck driver requires starting mileage", func(t *testing.T) {
		_, err := svc.CreateTimesheet(ctx, CreateTimesheetInput{
			UserID:     "user-1",
			JobsiteID:  "site-1",
			CostCodeID: "cc-1",
			WorkType:   model.WorkTypeTruckDriver,
			StartTime:  time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC),
			TruckID:    "truck-1",
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "startingMileage", ve.Field)
	})

	t.Run("truck driver seeds trucking log", func(t *testing.T) {
		miles := int32(1000)
		ts, err := svc.CreateTimesheet(ctx, CreateTimesheetInput{
			UserID:          "user-1",
			JobsiteID:       "site-1",
			CostCodeID:      "cc-1",
			WorkType:        model.WorkTypeTruckDriver,
			StartTime:       time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC),
			TruckID:         "truck-1",
			StartingMileage: &miles,
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusDraft, ts.Status)
		require.Len(t, ts.TruckingLogs, 1)
		assert.Equal(t, int32(1000), ts.TruckingLogs[0].StartingMileage)
		assert.Nil(t, ts.TruckingLogs[0].EndingMileage)
	})

	t.Run("unknown work type", func(t *testing.T) {
		_, err := svc.CreateTimesheet(ctx, CreateTimesheetInput{WorkType: "GARDENER"})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestClockOutTransitionsToPending(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	out := clockOut(t, svc, ts.ID)

	assert.Equal(t, model.StatusPending, out.Status)
	require.NotNil(t, out.EndTime)

	stored, err := svc.GetByID(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestClockOutFinalizesOpenEquipmentLogs(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	_, err := svc.AttachSubRecord(ctx, ts.ID, KindEquipmentLog, SubLogPayload{
		Equipment: &model.EmployeeEquipmentLog{
			EquipmentID: "eq-1",
			StartTime:   time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	end := time.Date(2024, 3, 11, 15, 30, 0, 0, time.UTC)
	_, err = svc.ClockOut(ctx, ts.ID, ClockOutInput{EndTime: end})
	require.NoError(t, err)

	stored, err := svc.GetByID(ctx, ts.ID)
	require.NoError(t, err)
	require.Len(t, stored.EquipmentLogs, 1)
	require.NotNil(t, stored.EquipmentLogs[0].EndTime)
	assert.True(t, stored.EquipmentLogs[0].EndTime.Equal(end))
}

func TestClockOutLeavesTruckingMileageOpen(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	miles := int32(1000)
	ts, err := svc.CreateTimesheet(ctx, CreateTimesheetInput{
		UserID:          "user-1",
		JobsiteID:       "site-1",
		CostCodeID:      "cc-1",
		WorkType:        model.WorkTypeTruckDriver,
		StartTime:       time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC),
		TruckID:         "truck-1",
		StartingMileage: &miles,
	})
	require.NoError(t, err)

	out := clockOut(t, svc, ts.ID)
	assert.Equal(t, model.StatusPending, out.Status)

	stored, err := svc.GetByID(ctx, ts.ID)
	require.NoError(t, err)
	require.Len(t, stored.TruckingLogs, 1)
	assert.Nil(t, stored.TruckingLogs[0].EndingMileage, "mileage stays open for later entry")
}

func TestEditRequiresChangeReason(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)

	comment := "adjusted for missed break"
	_, _, err := svc.Edit(ctx, ts.ID, "admin-1", EditPatch{Comment: &comment}, "")
	assert.ErrorIs(t, err, ErrChangeReasonRequired)

	// Same patch with a reason succeeds and writes exactly one audit entry.
	updated, rec, err := svc.Edit(ctx, ts.ID, "admin-1", EditPatch{Comment: &comment}, "employee request")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.NumberOfChanges())
	assert.Equal(t, comment, updated.Comment)

	entries, err := svc.ListChangeLogs(ctx, ts.ID)
	require.NoError(t, err)
	// The status-change audit from clock-out is not written; only the edit is.
	require.Len(t, entries, 1)
	assert.Equal(t, "admin-1", entries[0].ChangedBy)
	assert.Equal(t, "employee request", entries[0].ChangeReason)

	var stored ChangeRecord
	require.NoError(t, json.Unmarshal(entries[0].Changes, &stored))
	assert.Contains(t, stored.Changes, "comment")
}

func TestEditNoOpIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)

	same := ts.JobsiteID
	_, rec, err := svc.Edit(ctx, ts.ID, "admin-1", EditPatch{JobsiteID: &same}, "")
	require.NoError(t, err)
	assert.True(t, rec.Empty())

	entries, err := svc.ListChangeLogs(ctx, ts.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEditRejectedAutoResubmits(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)
	_, err := svc.UpdateStatus(ctx, ts.ID, model.StatusRejected, "admin-1", "wrong cost code")
	require.NoError(t, err)

	cc := "cc-2"
	updated, rec, err := svc.Edit(ctx, ts.ID, "user-1", EditPatch{CostCodeID: &cc}, "corrected cost code")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, updated.Status)
	assert.True(t, rec.StatusChanged)
	assert.Contains(t, rec.Changes, "status")
}

func TestEditApprovedIsRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)
	_, err := svc.UpdateStatus(ctx, ts.ID, model.StatusApproved, "admin-1", "")
	require.NoError(t, err)

	comment := "late change"
	_, _, err = svc.Edit(ctx, ts.ID, "admin-1", EditPatch{Comment: &comment}, "reason")
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, model.StatusApproved, ite.From)
}

func TestReopenRequiresReason(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)
	_, err := svc.UpdateStatus(ctx, ts.ID, model.StatusApproved, "admin-1", "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ts.ID, model.StatusPending, "admin-1", "")
	assert.ErrorIs(t, err, ErrChangeReasonRequired)

	reopened, err := svc.UpdateStatus(ctx, ts.ID, model.StatusPending, "admin-1", "payroll correction")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reopened.Status)
}

func TestUpdateStatusRejectRequiresComment(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)

	_, err := svc.UpdateStatus(ctx, ts.ID, model.StatusRejected, "admin-1", "")
	assert.ErrorIs(t, err, ErrStatusCommentRequired)

	stored, err := svc.GetByID(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestBatchApprovePartialSuccess(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first := createLaborTimesheet(t, svc)
	clockOut(t, svc, first.ID)
	third := createLaborTimesheet(t, svc)
	clockOut(t, svc, third.ID)

	res := svc.BatchApprove(ctx, []string{first.ID, "missing-id", third.ID}, "admin-1", "")

	assert.Equal(t, []string{first.ID, third.ID}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed["missing-id"], ErrNotFound)
}

func TestAttachSubRecordWorkTypeGate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	miles := int32(1000)
	truck, err := svc.CreateTimesheet(ctx, CreateTimesheetInput{
		UserID:          "user-1",
		JobsiteID:       "site-1",
		CostCodeID:      "cc-1",
		WorkType:        model.WorkTypeTruckDriver,
		StartTime:       time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC),
		TruckID:         "truck-1",
		StartingMileage: &miles,
	})
	require.NoError(t, err)

	_, err = svc.AttachSubRecord(ctx, truck.ID, KindTascoLog, SubLogPayload{Tasco: &model.TascoLog{}})
	var iw *IncompatibleWorkTypeError
	require.ErrorAs(t, err, &iw)

	tasco, err := svc.CreateTimesheet(ctx, CreateTimesheetInput{
		UserID:     "user-1",
		JobsiteID:  "site-1",
		CostCodeID: "cc-1",
		WorkType:   model.WorkTypeTasco,
		StartTime:  time.Date(2024, 3, 11, 7, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	rec, err := svc.AttachSubRecord(ctx, tasco.ID, KindTascoLog, SubLogPayload{
		Tasco: &model.TascoLog{ShiftType: model.TascoShiftDay, LoadQuantity: 4},
	})
	require.NoError(t, err)
	log, ok := rec.(*model.TascoLog)
	require.True(t, ok)
	assert.Equal(t, tasco.ID, log.TimesheetID)
}

func TestAttachRefuelLogParentRules(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	rec, err := svc.AttachSubRecord(ctx, ts.ID, KindEquipmentLog, SubLogPayload{
		Equipment: &model.EmployeeEquipmentLog{
			EquipmentID: "eq-1",
			StartTime:   time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	equipmentLogID := rec.(*model.EmployeeEquipmentLog).ID

	t.Run("unknown parent id", func(t *testing.T) {
		_, err := svc.AttachSubRecord(ctx, ts.ID, KindRefuelLog, SubLogPayload{
			Refuel:       &model.RefuelLog{GallonsRefueled: 12.5},
			RefuelParent: RefuelParent{Kind: RefuelParentEquipment, ID: "nope"},
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "parent", ve.Field)
	})

	t.Run("parent kind must match work type", func(t *testing.T) {
		_, err := svc.AttachSubRecord(ctx, ts.ID, KindRefuelLog, SubLogPayload{
			Refuel:       &model.RefuelLog{GallonsRefueled: 12.5},
			RefuelParent: RefuelParent{Kind: RefuelParentTrucking, ID: equipmentLogID},
		})
		var iw *IncompatibleWorkTypeError
		require.ErrorAs(t, err, &iw)
	})

	t.Run("attaches under the equipment log", func(t *testing.T) {
		rec, err := svc.AttachSubRecord(ctx, ts.ID, KindRefuelLog, SubLogPayload{
			Refuel:       &model.RefuelLog{GallonsRefueled: 12.5},
			RefuelParent: RefuelParent{Kind: RefuelParentEquipment, ID: equipmentLogID},
		})
		require.NoError(t, err)
		refuel := rec.(*model.RefuelLog)
		require.NotNil(t, refuel.EmployeeEquipmentLogID)
		assert.Equal(t, equipmentLogID, *refuel.EmployeeEquipmentLogID)
		assert.Nil(t, refuel.TascoLogID)
		assert.Nil(t, refuel.TruckingLogID)

		reloaded, err := svc.GetByID(ctx, ts.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.EquipmentLogs, 1)
		require.Len(t, reloaded.EquipmentLogs[0].RefuelLogs, 1)
	})
}

func TestDeleteSubRecordBlockedWhenApproved(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	rec, err := svc.AttachSubRecord(ctx, ts.ID, KindEquipmentLog, SubLogPayload{
		Equipment: &model.EmployeeEquipmentLog{
			EquipmentID: "eq-1",
			StartTime:   time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	logID := rec.(*model.EmployeeEquipmentLog).ID

	clockOut(t, svc, ts.ID)
	_, err = svc.UpdateStatus(ctx, ts.ID, model.StatusApproved, "admin-1", "")
	require.NoError(t, err)

	err = svc.DeleteSubRecord(ctx, KindEquipmentLog, logID)
	var ite *InvalidTransitionError
	assert.ErrorAs(t, err, &ite)
}

func TestConcurrentEditSecondWriterFails(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)

	// Both writers hold the same loaded version.
	stale, err := store.Load(ctx, ts.ID)
	require.NoError(t, err)

	comment := "first writer"
	_, _, err = svc.Edit(ctx, ts.ID, "admin-1", EditPatch{Comment: &comment}, "first")
	require.NoError(t, err)

	stale.Comment = "second writer"
	err = store.CommitTransaction(ctx, &Transaction{Timesheet: stale, ExpectedVersion: stale.Version})
	assert.ErrorIs(t, err, ErrConcurrentModification)

	stored, err := svc.GetByID(ctx, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, "first writer", stored.Comment, "second writer must not silently overwrite")
}

func TestEditSendsNotification(t *testing.T) {
	svc, _, sink := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)

	comment := "adjusted"
	_, _, err := svc.Edit(ctx, ts.ID, "admin-1", EditPatch{Comment: &comment}, "fix")
	require.NoError(t, err)

	msg := sink.wait(t)
	assert.Equal(t, TopicTimecardChanges, msg.Topic)
	assert.Contains(t, msg.Body, "Dana Whitfield")
	assert.Contains(t, msg.Body, "Jesse Alvarez")
	assert.NotEmpty(t, msg.ReferenceID)
}

func TestStatusChangeSendsNotification(t *testing.T) {
	svc, _, sink := newTestService()
	ctx := context.Background()

	ts := createLaborTimesheet(t, svc)
	clockOut(t, svc, ts.ID)

	_, err := svc.UpdateStatus(ctx, ts.ID, model.StatusApproved, "admin-1", "")
	require.NoError(t, err)

	msg := sink.wait(t)
	assert.Equal(t, TopicTimecardStatus, msg.Topic)
	assert.Contains(t, msg.Body, "PENDING")
	assert.Contains(t, msg.Body, "APPROVED")
}
