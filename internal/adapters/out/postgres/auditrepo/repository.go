package auditrepo

import (
	"context"
	"iter"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormAuditTrail implements ports.AuditTrail using GORM. Records are only
// ever inserted.
type GormAuditTrail struct {
	db *gorm.DB
}

func NewGormAuditTrail(db *gorm.DB) *GormAuditTrail {
	return &GormAuditTrail{db: db}
}

// Append inserts one record. Inside a unit of work the row becomes visible
// to readers only when the transaction commits.
func (t *GormAuditTrail) Append(ctx context.Context, record *audit.StatusChangeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	return t.db.WithContext(ctx).Create(&dto).Error
}

// History streams the records of one order, oldest first. Version order is
// the order in which changes were applied. The rows stay open until the
// caller stops iterating.
func (t *GormAuditTrail) History(ctx context.Context, orderID kernel.UUID) iter.Seq2[*audit.StatusChangeRecord, error] {
	return func(yield func(*audit.StatusChangeRecord, error) bool) {
		if err := orderID.Validate(); err != nil {
			yield(nil, err)
			return
		}

		rows, err := t.db.WithContext(ctx).
			Model(&StatusChangeRecordDTO{}).
			Where("order_id = ?", orderID.Bytes()).
			Order("version").
			Rows()
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var dto StatusChangeRecordDTO
			if err = t.db.ScanRows(rows, &dto); err != nil {
				yield(nil, err)
				return
			}

			record, convErr := toDomain(dto)
			if convErr != nil {
				yield(nil, convErr)
				return
			}

			if !yield(record, nil) {
				return
			}
		}

		if err = rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}
