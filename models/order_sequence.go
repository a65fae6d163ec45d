package models

import "time"

// OrderSequence holds one monotonically increasing counter per shard key
// (business date, optionally plus hour). Rows are created lazily on the
// first order of a shard and only ever touched under the caller's
// transaction, so committed numbers are gap-free.
type OrderSequence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;uniqueIndex:idx_sequences_shard,priority:1" json:"tenant_id"`
	ShardKey  string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_sequences_shard,priority:2" json:"shard_key"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
