package models

import "time"

const (
	TableStatusFree     = "free"
	TableStatusOccupied = "occupied"
)

// Table invariant: Status = occupied iff CurrentOrderID references an order
// that is not yet closed. Both sides of the invariant are always written in
// the same transaction.
type Table struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	TenantID       uint   `gorm:"not null;index" json:"tenant_id"`
	TableNumber    string `gorm:"type:varchar(50);not null" json:"table_number"`
	Status         string `gorm:"type:varchar(20);not null;default:'free'" json:"status"`
	CurrentOrderID *uint  `json:"current_order_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
