package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"github.com/sirupsen/logrus"
)

// Notification topics. The mapping from event kind to topic is fixed here;
// routing a topic to a channel belongs to the sink.
const (
	TopicTimecardChanges = "timecards-changes"
	TopicTimecardStatus  = "timecards-status"
	TopicEquipmentBreak  = "equipment-break"
)

type Message struct {
	Topic       string `json:"topic"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Link        string `json:"link"`
	ReferenceID string `json:"referenceId"`
}

// Sink delivers a notification message. Transport is out of scope; Slack,
// push, whatever implements this.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

type TimesheetEditedEvent struct {
	TimesheetID     string
	AuditEntryID    string
	EditorName      string
	OwnerName       string
	NumberOfChanges int
}

type StatusChangedEvent struct {
	TimesheetID   string
	AuditEntryID  string
	ActorName     string
	From          model.Status
	To            model.Status
	StatusComment string
}

type EquipmentBreakEvent struct {
	TimesheetID  string
	EquipmentID  string
	ReporterName string
	ReferenceID  string
}

// Oldest dedupe keys are dropped past this point; redeliveries arrive within
// seconds of the original, so a few thousand entries is a generous window.
const seenLimit = 4096

// Dispatcher maps lifecycle events to messages and hands them to the sink.
// Duplicate events for the same audit entry are suppressed so an upstream
// at-least-once redelivery cannot double-notify. The dedupe set is bounded;
// insertion order decides eviction. Send failures are logged and swallowed;
// they never propagate to the caller.
type Dispatcher struct {
	sink Sink
	log  *logrus.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	limit int
}

func NewDispatcher(sink Sink, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, log: log, seen: map[string]struct{}{}, limit: seenLimit}
}

func (d *Dispatcher) OnTimesheetEdited(ctx context.Context, ev TimesheetEditedEvent) {
	if !d.markSeen(ev.AuditEntryID) {
		return
	}
	d.send(ctx, Message{
		Topic:       TopicTimecardChanges,
		Title:       "Timecard updated",
		Body:        fmt.Sprintf("%s changed %d field(s) on %s's timecard", ev.EditorName, ev.NumberOfChanges, ev.OwnerName),
		Link:        "/timesheets/" + ev.TimesheetID,
		ReferenceID: ev.AuditEntryID,
	})
}

func (d *Dispatcher) OnStatusChanged(ctx context.Context, ev StatusChangedEvent) {
	if !d.markSeen(ev.AuditEntryID) {
		return
	}
	body := fmt.Sprintf("%s moved a timecard from %s to %s", ev.ActorName, ev.From, ev.To)
	if ev.StatusComment != "" {
		body += ": " + ev.StatusComment
	}
	d.send(ctx, Message{
		Topic:       TopicTimecardStatus,
		Title:       "Timecard " + string(ev.To),
		Body:        body,
		Link:        "/timesheets/" + ev.TimesheetID,
		ReferenceID: ev.AuditEntryID,
	})
}

func (d *Dispatcher) OnEquipmentBreak(ctx context.Context, ev EquipmentBreakEvent) {
	if !d.markSeen(ev.ReferenceID) {
		return
	}
	d.send(ctx, Message{
		Topic:       TopicEquipmentBreak,
		Title:       "Equipment reported broken",
		Body:        fmt.Sprintf("%s flagged equipment %s for maintenance", ev.ReporterName, ev.EquipmentID),
		Link:        "/equipment/" + ev.EquipmentID,
		ReferenceID: ev.ReferenceID,
	})
}

func (d *Dispatcher) markSeen(key string) bool {
	if key == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	for len(d.order) > d.limit {
		delete(d.seen, d.order[0])
		d.order = d.order[1:]
	}
	return true
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Send(ctx, msg); err != nil && d.log != nil {
		d.log.WithFields(logrus.Fields{
			"topic":       msg.Topic,
			"referenceId": msg.ReferenceID,
		}).WithError(err).Warn("notification delivery failed")
	}
}
