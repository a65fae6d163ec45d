package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashShift is a cash-drawer session. At most one shift with EndTime = NULL
// may exist per (user, tenant) at any instant; the shift service enforces
// this inside a serializable transaction.
type CashShift struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"not null;index" json:"tenant_id"`
	UserID   uint `gorm:"not null;index" json:"user_id"`

	StartAmount decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"start_amount"`
	EndAmount   *decimal.Decimal `gorm:"type:decimal(10,2)" json:"end_amount,omitempty"`
	StartTime   time.Time        `gorm:"not null" json:"start_time"`
	EndTime     *time.Time       `gorm:"index" json:"end_time,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (s *CashShift) IsOpen() bool {
	return s.EndTime == nil
}
