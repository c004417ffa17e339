package core

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
	"gorm.io/gorm"
)

const commitRetryBackoff = 200 * time.Millisecond

// GormRepository implements Repository, AuditLog and NameLookup over a gorm
// handle. One Transaction maps to one database transaction; the timesheet
// row carries the optimistic version column.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func preloadSubLogs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("EquipmentLogs").
		Preload("EquipmentLogs.RefuelLogs").
		Preload("TascoLogs").
		Preload("TascoLogs.RefuelLogs").
		Preload("TascoLogs.Loads").
		Preload("TruckingLogs").
		Preload("TruckingLogs.Materials").
		Preload("TruckingLogs.EquipmentHauled").
		Preload("TruckingLogs.RefuelLogs").
		Preload("TruckingLogs.StateMileages")
}

func (r *GormRepository) Load(ctx context.Context, id string) (*model.Timesheet, error) {
	var ts model.Timesheet
	err := r.withRetry(ctx, "load timesheet", func() error {
		return preloadSubLogs(r.db.WithContext(ctx)).First(&ts, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ts, nil
}

func (r *GormRepository) Create(ctx context.Context, ts *model.Timesheet) error {
	return r.withRetry(ctx, "create timesheet", func() error {
		return r.db.WithContext(ctx).Create(ts).Error
	})
}

func (r *GormRepository) CommitTransaction(ctx context.Context, tx *Transaction) error {
	commit := func() error {
		return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
			ts := tx.Timesheet
			res := db.Model(&model.Timesheet{}).
				Where("id = ? AND version = ?", ts.ID, tx.ExpectedVersion).
				Select("date", "user_id", "jobsite_id", "cost_code_id", "work_type",
					"start_time", "end_time", "status", "comment", "status_comment",
					"edited_by_user_id", "was_injured",
					"clock_in_lat", "clock_in_lng", "clock_out_lat", "clock_out_lng",
					"version").
				Updates(map[string]any{
					"date":              ts.Date,
					"user_id":           ts.UserID,
					"jobsite_id":        ts.JobsiteID,
					"cost_code_id":      ts.CostCodeID,
					"work_type":         ts.WorkType,
					"start_time":        ts.StartTime,
					"end_time":          ts.EndTime,
					"status":            ts.Status,
					"comment":           ts.Comment,
					"status_comment":    ts.StatusComment,
					"edited_by_user_id": ts.EditedByUserID,
					"was_injured":       ts.WasInjured,
					"clock_in_lat":      ts.ClockInLat,
					"clock_in_lng":      ts.ClockInLng,
					"clock_out_lat":     ts.ClockOutLat,
					"clock_out_lng":     ts.ClockOutLng,
					"version":           tx.ExpectedVersion + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			// Zero rows means either a vanished row or a version mismatch;
			// disambiguate so callers get the right retry hint.
			if res.RowsAffected == 0 {
				var count int64
				if err := db.Model(&model.Timesheet{}).Where("id = ?", ts.ID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return ErrNotFound
				}
				return ErrConcurrentModification
			}

			for _, s := range tx.SaveSubLogs {
				if err := db.Save(s).Error; err != nil {
					return err
				}
			}
			for _, d := range tx.DeleteSubLogs {
				if err := db.Delete(d).Error; err != nil {
					return err
				}
			}
			if tx.Audit != nil {
				if err := db.Create(tx.Audit).Error; err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return ErrDuplicateAuditEntry
					}
					return err
				}
			}
			ts.Version = tx.ExpectedVersion + 1
			return nil
		})
	}
	return r.withRetry(ctx, "commit timesheet transaction", commit)
}

func (r *GormRepository) FindSubLog(ctx context.Context, kind SubLogKind, id string) (any, string, error) {
	var rec any
	var timesheetID string
	err := r.withRetry(ctx, "find sub-log", func() error {
		switch kind {
		case KindEquipmentLog:
			var l model.EmployeeEquipmentLog
			if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
				return err
			}
			rec, timesheetID = &l, l.TimesheetID
		case KindTascoLog:
			var l model.TascoLog
			if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
				return err
			}
			rec, timesheetID = &l, l.TimesheetID
		case KindTruckingLog:
			var l model.TruckingLog
			if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
				return err
			}
			rec, timesheetID = &l, l.TimesheetID
		case KindRefuelLog:
			var l model.RefuelLog
			if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
				return err
			}
			rec = &l
			return r.refuelOwner(ctx, &l, &timesheetID)
		default:
			return NewValidationError("kind", "unknown sub-log kind")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return rec, timesheetID, nil
}

func (r *GormRepository) refuelOwner(ctx context.Context, l *model.RefuelLog, timesheetID *string) error {
	switch {
	case l.TascoLogID != nil:
		var p model.TascoLog
		if err := r.db.WithContext(ctx).First(&p, "id = ?", *l.TascoLogID).Error; err != nil {
			return err
		}
		*timesheetID = p.TimesheetID
	case l.TruckingLogID != nil:
		var p model.TruckingLog
		if err := r.db.WithContext(ctx).First(&p, "id = ?", *l.TruckingLogID).Error; err != nil {
			return err
		}
		*timesheetID = p.TimesheetID
	case l.EmployeeEquipmentLogID != nil:
		var p model.EmployeeEquipmentLog
		if err := r.db.WithContext(ctx).First(&p, "id = ?", *l.EmployeeEquipmentLogID).Error; err != nil {
			return err
		}
		*timesheetID = p.TimesheetID
	}
	return nil
}

// Delete removes a timesheet with all owned sub-records in one transaction.
// Every statement result is checked: MySQL keeps a transaction alive after a
// failed statement, so an unchecked child delete would commit a partial
// cascade. The snapshot driving the cascade is read through the transaction
// handle for the same reason.
func (r *GormRepository) Delete(ctx context.Context, id string) error {
	return r.withRetry(ctx, "delete timesheet", func() error {
		return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
			var ts model.Timesheet
			if err := preloadSubLogs(db).First(&ts, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			for i := range ts.EquipmentLogs {
				if err := db.Where("employee_equipment_log_id = ?", ts.EquipmentLogs[i].ID).Delete(&model.RefuelLog{}).Error; err != nil {
					return err
				}
			}
			for i := range ts.TascoLogs {
				tid := ts.TascoLogs[i].ID
				if err := db.Where("tasco_log_id = ?", tid).Delete(&model.RefuelLog{}).Error; err != nil {
					return err
				}
				if err := db.Where("tasco_log_id = ?", tid).Delete(&model.TascoFLoad{}).Error; err != nil {
					return err
				}
			}
			for i := range ts.TruckingLogs {
				tl := ts.TruckingLogs[i].ID
				for _, m := range []any{&model.RefuelLog{}, &model.Material{}, &model.EquipmentHauled{}, &model.StateMileage{}} {
					if err := db.Where("trucking_log_id = ?", tl).Delete(m).Error; err != nil {
						return err
					}
				}
			}
			for _, m := range []any{&model.EmployeeEquipmentLog{}, &model.TascoLog{}, &model.TruckingLog{}} {
				if err := db.Where("timesheet_id = ?", id).Delete(m).Error; err != nil {
					return err
				}
			}
			return db.Delete(&model.Timesheet{}, "id = ?", id).Error
		})
	})
}

func (r *GormRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	return r.withRetry(ctx, "append audit entry", func() error {
		err := r.db.WithContext(ctx).Create(entry).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAuditEntry
		}
		return err
	})
}

func (r *GormRepository) ListByTimesheet(ctx context.Context, timesheetID string) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	err := r.withRetry(ctx, "list audit entries", func() error {
		return r.db.WithContext(ctx).
			Where("timesheet_id = ?", timesheetID).
			Order("changed_at DESC").
			Find(&out).Error
	})
	return out, err
}

func (r *GormRepository) ListByActor(ctx context.Context, userID string, since time.Time) ([]model.AuditEntry, error) {
	var out []model.AuditEntry
	err := r.withRetry(ctx, "list audit entries by actor", func() error {
		return r.db.WithContext(ctx).
			Where("changed_by = ? AND changed_at >= ?", userID, since).
			Order("changed_at DESC").
			Find(&out).Error
	})
	return out, err
}

func (r *GormRepository) JobsiteName(ctx context.Context, id string) (string, error) {
	var name string
	err := r.db.WithContext(ctx).Model(&model.Jobsite{}).
		Where("id = ?", id).
		Pluck("name", &name).Error
	return name, err
}

func (r *GormRepository) CostCodeName(ctx context.Context, id string) (string, error) {
	var name string
	err := r.db.WithContext(ctx).Model(&model.CostCode{}).
		Where("id = ?", id).
		Pluck("name", &name).Error
	return name, err
}

func (r *GormRepository) UserName(ctx context.Context, id string) (string, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Select("first_name", "last_name").First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return u.FullName(), nil
}

// withRetry retries fn once after a short backoff when the failure looks
// transient (dead connection, network blip). Domain errors pass straight
// through; anything else is wrapped so storage internals do not leak.
func (r *GormRepository) withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if isTransient(err) {
		select {
		case <-time.After(commitRetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		err = fn()
		if err == nil {
			return nil
		}
	}
	if isDomainError(err) || errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isDomainError(err error) bool {
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrDuplicateAuditEntry) {
		return true
	}
	var ve *ValidationError
	var it *InvalidTransitionError
	var iw *IncompatibleWorkTypeError
	return errors.As(err, &ve) || errors.As(err, &it) || errors.As(err, &iw)
}
