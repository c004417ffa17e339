package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
)

// MemoryStore is an in-memory Repository + AuditLog + NameLookup used by unit
// tests and local development.
type MemoryStore struct {
	mu         sync.Mutex
	timesheets map[string]*model.Timesheet
	audits     map[string]model.AuditEntry
	jobsites   map[string]string
	costCodes  map[string]string
	users      map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		timesheets: map[string]*model.Timesheet{},
		audits:     map[string]model.AuditEntry{},
		jobsites:   map[string]string{},
		costCodes:  map[string]string{},
		users:      map[string]string{},
	}
}

func (m *MemoryStore) SeedUser(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = name
}

func (m *MemoryStore) SeedJobsite(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobsites[id] = name
}

func (m *MemoryStore) SeedCostCode(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costCodes[id] = name
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*model.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.timesheets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ts.Clone(), nil
}

func (m *MemoryStore) Create(ctx context.Context, ts *model.Timesheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timesheets[ts.ID] = ts.Clone()
	return nil
}

func (m *MemoryStore) CommitTransaction(ctx context.Context, tx *Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.timesheets[tx.Timesheet.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != tx.ExpectedVersion {
		return ErrConcurrentModification
	}
	if tx.Audit != nil {
		if _, exists := m.audits[tx.Audit.ID]; exists {
			return ErrDuplicateAuditEntry
		}
	}

	next := tx.Timesheet.Clone()
	next.Version = tx.ExpectedVersion + 1
	m.applySubLogs(next, tx.SaveSubLogs, tx.DeleteSubLogs)
	m.timesheets[next.ID] = next
	tx.Timesheet.Version = next.Version

	if tx.Audit != nil {
		m.audits[tx.Audit.ID] = *tx.Audit
	}
	return nil
}

func (m *MemoryStore) applySubLogs(ts *model.Timesheet, saves, deletes []any) {
	for _, s := range saves {
		switch v := s.(type) {
		case *model.EmployeeEquipmentLog:
			ts.EquipmentLogs = upsertByID(ts.EquipmentLogs, *v, func(l model.EmployeeEquipmentLog) string { return l.ID })
		case *model.TascoLog:
			ts.TascoLogs = upsertByID(ts.TascoLogs, *v, func(l model.TascoLog) string { return l.ID })
		case *model.TruckingLog:
			ts.TruckingLogs = upsertByID(ts.TruckingLogs, *v, func(l model.TruckingLog) string { return l.ID })
		case *model.RefuelLog:
			m.attachRefuel(ts, *v)
		}
	}
	for _, d := range deletes {
		switch v := d.(type) {
		case *model.EmployeeEquipmentLog:
			ts.EquipmentLogs = removeByID(ts.EquipmentLogs, v.ID, func(l model.EmployeeEquipmentLog) string { return l.ID })
		case *model.TascoLog:
			ts.TascoLogs = removeByID(ts.TascoLogs, v.ID, func(l model.TascoLog) string { return l.ID })
		case *model.TruckingLog:
			ts.TruckingLogs = removeByID(ts.TruckingLogs, v.ID, func(l model.TruckingLog) string { return l.ID })
		case *model.RefuelLog:
			m.detachRefuel(ts, v.ID)
		}
	}
}

func (m *MemoryStore) attachRefuel(ts *model.Timesheet, r model.RefuelLog) {
	switch {
	case r.TascoLogID != nil:
		for i := range ts.TascoLogs {
			if ts.TascoLogs[i].ID == *r.TascoLogID {
				ts.TascoLogs[i].RefuelLogs = upsertByID(ts.TascoLogs[i].RefuelLogs, r, func(l model.RefuelLog) string { return l.ID })
			}
		}
	case r.TruckingLogID != nil:
		for i := range ts.TruckingLogs {
			if ts.TruckingLogs[i].ID == *r.TruckingLogID {
				ts.TruckingLogs[i].RefuelLogs = upsertByID(ts.TruckingLogs[i].RefuelLogs, r, func(l model.RefuelLog) string { return l.ID })
			}
		}
	case r.EmployeeEquipmentLogID != nil:
		for i := range ts.EquipmentLogs {
			if ts.EquipmentLogs[i].ID == *r.EmployeeEquipmentLogID {
				ts.EquipmentLogs[i].RefuelLogs = upsertByID(ts.EquipmentLogs[i].RefuelLogs, r, func(l model.RefuelLog) string { return l.ID })
			}
		}
	}
}

func (m *MemoryStore) detachRefuel(ts *model.Timesheet, id string) {
	for i := range ts.TascoLogs {
		ts.TascoLogs[i].RefuelLogs = removeByID(ts.TascoLogs[i].RefuelLogs, id, func(l model.RefuelLog) string { return l.ID })
	}
	for i := range ts.TruckingLogs {
		ts.TruckingLogs[i].RefuelLogs = removeByID(ts.TruckingLogs[i].RefuelLogs, id, func(l model.RefuelLog) string { return l.ID })
	}
	for i := range ts.EquipmentLogs {
		ts.EquipmentLogs[i].RefuelLogs = removeByID(ts.EquipmentLogs[i].RefuelLogs, id, func(l model.RefuelLog) string { return l.ID })
	}
}

func (m *MemoryStore) FindSubLog(ctx context.Context, kind SubLogKind, id string) (any, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ts := range m.timesheets {
		switch kind {
		case KindEquipmentLog:
			for i := range ts.EquipmentLogs {
				if ts.EquipmentLogs[i].ID == id {
					l := ts.EquipmentLogs[i]
					return &l, ts.ID, nil
				}
			}
		case KindTascoLog:
			for i := range ts.TascoLogs {
				if ts.TascoLogs[i].ID == id {
					l := ts.TascoLogs[i]
					return &l, ts.ID, nil
				}
			}
		case KindTruckingLog:
			for i := range ts.TruckingLogs {
				if ts.TruckingLogs[i].ID == id {
					l := ts.TruckingLogs[i]
					return &l, ts.ID, nil
				}
			}
		case KindRefuelLog:
			if l, ok := findRefuel(ts, id); ok {
				return l, ts.ID, nil
			}
		}
	}
	return nil, "", ErrNotFound
}

func findRefuel(ts *model.Timesheet, id string) (*model.RefuelLog, bool) {
	for i := range ts.TascoLogs {
		for j := range ts.TascoLogs[i].RefuelLogs {
			if ts.TascoLogs[i].RefuelLogs[j].ID == id {
				l := ts.TascoLogs[i].RefuelLogs[j]
				return &l, true
			}
		}
	}
	for i := range ts.TruckingLogs {
		for j := range ts.TruckingLogs[i].RefuelLogs {
			if ts.TruckingLogs[i].RefuelLogs[j].ID == id {
				l := ts.TruckingLogs[i].RefuelLogs[j]
				return &l, true
			}
		}
	}
	for i := range ts.EquipmentLogs {
		for j := range ts.EquipmentLogs[i].RefuelLogs {
			if ts.EquipmentLogs[i].RefuelLogs[j].ID == id {
				l := ts.EquipmentLogs[i].RefuelLogs[j]
				return &l, true
			}
		}
	}
	return nil, false
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timesheets[id]; !ok {
		return ErrNotFound
	}
	delete(m.timesheets, id)
	return nil
}

func (m *MemoryStore) Append(ctx context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.audits[entry.ID]; exists {
		return ErrDuplicateAuditEntry
	}
	m.audits[entry.ID] = *entry
	return nil
}

func (m *MemoryStore) ListByTimesheet(ctx context.Context, timesheetID string) ([]model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range m.audits {
		if e.TimesheetID == timesheetID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChangedAt.After(out[j].ChangedAt) })
	return out, nil
}

func (m *MemoryStore) ListByActor(ctx context.Context, userID string, since time.Time) ([]model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range m.audits {
		if e.ChangedBy == userID && !e.ChangedAt.Before(since) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChangedAt.After(out[j].ChangedAt) })
	return out, nil
}

func (m *MemoryStore) JobsiteName(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobsites[id], nil
}

func (m *MemoryStore) CostCodeName(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.costCodes[id], nil
}

func (m *MemoryStore) UserName(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func upsertByID[T any](list []T, item T, id func(T) string) []T {
	for i := range list {
		if id(list[i]) == id(item) {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

func removeByID[T any](list []T, target string, id func(T) string) []T {
	out := list[:0]
	for _, v := range list {
		if id(v) != target {
			out = append(out, v)
		}
	}
	return out
}
