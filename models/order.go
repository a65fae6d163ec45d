package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the aggregate root of the transaction engine. It is only ever
// mutated inside a database transaction opened by the order service.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TenantID    uint   `gorm:"not null;index;uniqueIndex:idx_orders_number,priority:1" json:"tenant_id"`
	OrderNumber int64  `gorm:"not null;uniqueIndex:idx_orders_number,priority:3" json:"order_number"`
	ShardKey    string `gorm:"type:varchar(16);not null;uniqueIndex:idx_orders_number,priority:2" json:"shard_key"`

	Status        string `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Channel       string `gorm:"type:varchar(20);not null;default:'dine_in'" json:"channel"`

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	Tip      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tip"`
	// Total = Subtotal - Discount; tip di-track terpisah
	Total decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	BusinessDate time.Time `gorm:"not null;index" json:"business_date"`

	TableID  *uint  `gorm:"index" json:"table_id,omitempty"`
	Table    *Table `gorm:"foreignKey:TableID" json:"table,omitempty"`
	ClientID *uint  `gorm:"index" json:"client_id,omitempty"`
	ServerID uint   `gorm:"not null" json:"server_id"`
	ShiftID  uint   `gorm:"not null;index" json:"shift_id"`

	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	Payments   []Payment   `gorm:"foreignKey:OrderID" json:"payments"`
}

// IsClosed reports whether the order reached a terminal display state.
func (o *Order) IsClosed() bool {
	return IsTerminalOrderStatus(o.Status)
}

// PaidAmount sums the recorded payments. Caller must have preloaded or
// re-read Payments inside the transaction that relies on this value.
func (o *Order) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range o.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}
