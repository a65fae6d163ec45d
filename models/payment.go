package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents money received against an order. Every payment belongs
// to the cash shift that was open when it was taken.
//
// Invariant: for any order, sum(Payment.Amount) <= Order.Total + 0.01.
type Payment struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	OrderID uint      `gorm:"not null;index" json:"order_id"`
	Order   *Order    `gorm:"foreignKey:OrderID" json:"-"`
	ShiftID uint      `gorm:"not null;index" json:"shift_id"`
	Shift   *CashShift `gorm:"foreignKey:ShiftID" json:"-"`

	// Method selalu salah satu dari canonical methods (lihat order_status.go)
	Method string          `gorm:"type:varchar(20);not null;default:'cash'" json:"method"`
	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
