// Package auditrepo stores the append-only status history of orders in the
// order_status_history table.
package auditrepo

import (
	"time"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/core/domain/model/kernel"
	"orderlifecycle/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// StatusChangeRecordDTO is a row of order_status_history. The unique
// (order_id, version) index allows at most one record per applied change.
type StatusChangeRecordDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_status_history_order_version,priority:1"`
	Version    int64     `gorm:"not null;uniqueIndex:idx_order_status_history_order_version,priority:2"`
	FromStatus int       `gorm:"type:smallint;not null"`
	ToStatus   int       `gorm:"type:smallint;not null"`
	OperatorID string    `gorm:"type:varchar(128);not null"`
	Notes      string    `gorm:"type:text;not null;default:''"`
	ChangedAt  time.Time `gorm:"type:timestamptz;not null"`
	Outcome    string    `gorm:"type:varchar(32);not null"`
}

func (StatusChangeRecordDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(r *audit.StatusChangeRecord) StatusChangeRecordDTO {
	return StatusChangeRecordDTO{
		ID:         r.ID().Bytes(),
		OrderID:    r.OrderID().Bytes(),
		Version:    r.Version(),
		FromStatus: int(r.FromStatus()),
		ToStatus:   int(r.ToStatus()),
		OperatorID: r.OperatorID(),
		Notes:      r.Notes(),
		ChangedAt:  r.Timestamp(),
		Outcome:    string(r.Outcome()),
	}
}

func toDomain(dto StatusChangeRecordDTO) (*audit.StatusChangeRecord, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return audit.RestoreStatusChangeRecord(
		id,
		orderID,
		order.Status(dto.FromStatus),
		order.Status(dto.ToStatus),
		dto.OperatorID,
		dto.Notes,
		dto.ChangedAt,
		audit.Outcome(dto.Outcome),
		dto.Version,
	)
}
