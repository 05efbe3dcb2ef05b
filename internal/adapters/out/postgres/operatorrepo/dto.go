// Package operatorrepo resolves operator roles from the operators table.
// Roles are stored by name so that the table can be maintained by hand.
package operatorrepo

import "time"

type OperatorDTO struct {
	ID        string    `gorm:"type:varchar(128);primaryKey"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Active    bool      `gorm:"not null;default:true"`
	UpdatedAt time.Time `gorm:"type:timestamptz"`
}

func (OperatorDTO) TableName() string {
	return "operators"
}
