package models

import "time"

// FeatureFlag rows are read through the flag service's TTL cache; every
// write must go through the service so the cache gets invalidated.
type FeatureFlag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;uniqueIndex:idx_flags_tenant_name,priority:1" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(60);not null;uniqueIndex:idx_flags_tenant_name,priority:2" json:"name"`
	Enabled   bool      `gorm:"not null;default:false" json:"enabled"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
