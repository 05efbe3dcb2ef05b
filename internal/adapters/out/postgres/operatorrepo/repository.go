package operatorrepo

import (
	"context"
	"errors"
	"fmt"

	"orderlifecycle/internal/core/domain/model/operator"
	"orderlifecycle/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOperatorRepository implements ports.PermissionService using GORM.
type GormOperatorRepository struct {
	db *gorm.DB
}

func NewGormOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// RoleOf returns the role of an active operator. Unknown and deactivated
// operators yield *errs.ObjectNotFoundError.
func (r *GormOperatorRepository) RoleOf(ctx context.Context, op operator.Operator) (operator.Role, error) {
	if err := op.Validate(); err != nil {
		return operator.RoleUnknown, err
	}

	var dto OperatorDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ? AND active", op.ID()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return operator.RoleUnknown, errs.NewObjectNotFoundError("operator", op.ID())
	}
	if err != nil {
		return operator.RoleUnknown, err
	}

	role, err := operator.ParseRole(dto.Role)
	if err != nil {
		return operator.RoleUnknown, fmt.Errorf("operator %s: %w", op.ID(), err)
	}
	return role, nil
}

// Save creates the operator or replaces its role and reactivates it.
func (r *GormOperatorRepository) Save(ctx context.Context, op operator.Operator, role operator.Role) error {
	if err := op.Validate(); err != nil {
		return err
	}
	if err := role.Validate(); err != nil {
		return err
	}

	dto := OperatorDTO{ID: op.ID(), Role: role.String(), Active: true}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "active", "updated_at"}),
		}).
		Create(&dto).Error
}
