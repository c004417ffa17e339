package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *recordingSink) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSink) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func TestDispatcherSuppressesDuplicates(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, quietLogger())

	ev := TimesheetEditedEvent{
		TimesheetID:     "ts-1",
		AuditEntryID:    "audit-1",
		EditorName:      "Dana",
		OwnerName:       "Jesse",
		NumberOfChanges: 2,
	}

	// At-least-once redelivery from upstream: same audit entry twice.
	d.OnTimesheetEdited(context.Background(), ev)
	d.OnTimesheetEdited(context.Background(), ev)

	msgs := sink.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "audit-1", msgs[0].ReferenceID)
}

func TestDispatcherDistinctEntriesBothSent(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, quietLogger())

	d.OnStatusChanged(context.Background(), StatusChangedEvent{
		TimesheetID: "ts-1", AuditEntryID: "audit-1", ActorName: "Dana",
		From: model.StatusPending, To: model.StatusApproved,
	})
	d.OnStatusChanged(context.Background(), StatusChangedEvent{
		TimesheetID: "ts-1", AuditEntryID: "audit-2", ActorName: "Dana",
		From: model.StatusApproved, To: model.StatusPending, StatusComment: "payroll correction",
	})

	msgs := sink.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, TopicTimecardStatus, msgs[0].Topic)
	assert.Contains(t, msgs[1].Body, "payroll correction")
}

func TestDispatcherDedupeSetIsBounded(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, quietLogger())
	d.limit = 2

	assert.True(t, d.markSeen("audit-1"))
	assert.True(t, d.markSeen("audit-2"))
	assert.True(t, d.markSeen("audit-3"))

	// audit-1 was evicted as the oldest entry; the newer two still dedupe
	assert.False(t, d.markSeen("audit-2"))
	assert.False(t, d.markSeen("audit-3"))
	assert.True(t, d.markSeen("audit-1"))

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.LessOrEqual(t, len(d.seen), 2)
	assert.LessOrEqual(t, len(d.order), 2)
}

func TestDispatcherSwallowsSendFailures(t *testing.T) {
	sink := &recordingSink{err: errors.New("slack unreachable")}
	d := NewDispatcher(sink, quietLogger())

	// Must not panic or propagate.
	d.OnEquipmentBreak(context.Background(), EquipmentBreakEvent{
		TimesheetID: "ts-1", EquipmentID: "eq-9", ReporterName: "Jesse", ReferenceID: "ref-1",
	})
	assert.Empty(t, sink.messages())
}

func TestDispatcherEquipmentBreakTopic(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, quietLogger())

	d.OnEquipmentBreak(context.Background(), EquipmentBreakEvent{
		TimesheetID: "ts-1", EquipmentID: "eq-9", ReporterName: "Jesse", ReferenceID: "ref-1",
	})

	msgs := sink.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, TopicEquipmentBreak, msgs[0].Topic)
	assert.Equal(t, "/equipment/eq-9", msgs[0].Link)
}
