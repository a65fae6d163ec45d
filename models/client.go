package models

import "time"

// Client is a registered customer; LoyaltyPoints is only ever incremented
// through the loyalty service, inside the order transaction.
type Client struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      uint      `gorm:"not null;index" json:"tenant_id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone         string    `gorm:"type:varchar(30)" json:"phone"`
	LoyaltyPoints int       `gorm:"not null;default:0" json:"loyalty_points"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
