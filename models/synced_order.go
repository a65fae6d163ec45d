package models

import "time"

// SyncedOrder dedupes offline replays: one row per (device, temp id). A
// second push of the same temp id finds this row and returns the original
// mapping instead of creating a duplicate order.
type SyncedOrder struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TenantID       uint      `gorm:"not null;index" json:"tenant_id"`
	ClientDeviceID string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_synced_device_temp,priority:1" json:"client_device_id"`
	TempID         string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_synced_device_temp,priority:2" json:"temp_id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	OrderNumber    int64     `gorm:"not null" json:"order_number"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}
