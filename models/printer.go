package models

import "time"

// Printer routing is exported as part of the sync pull snapshot so offline
// terminals can route kitchen tickets locally. Driver logic lives elsewhere.

type Printer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	Address   string    `gorm:"type:varchar(255);not null" json:"address"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// PrinterRule routes a category's items to a printer.
type PrinterRule struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PrinterID  uint `gorm:"not null;index" json:"printer_id"`
	CategoryID uint `gorm:"not null;index" json:"category_id"`
}
