package models

import "time"

type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	Action     string    `gorm:"type:varchar(60);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(60);not null" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(60)" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
