package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
)

// SequenceService hands out gap-free, monotonically increasing order numbers
// per (tenant, shard key). Next must run on the caller's transaction: the
// locked read-increment-write only commits together with the order itself,
// so committed numbers never repeat and never skip.
type SequenceService struct {
	runner *database.TxRunner
}

func NewSequenceService(runner *database.TxRunner) *SequenceService {
	return &SequenceService{runner: runner}
}

// Next returns the next number for the shard, creating the counter row
// lazily at 1. A concurrent first insert for the same shard surfaces as a
// duplicate-key error, which the order service retries.
func (s *SequenceService) Next(tx *gorm.DB, tenantID uint, shardKey string) (int64, error) {
	var seq models.OrderSequence
	err := s.runner.Locked(tx).
		Where("tenant_id = ? AND shard_key = ?", tenantID, shardKey).
		First(&seq).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.OrderSequence{
			TenantID:  tenantID,
			ShardKey:  shardKey,
			LastValue: 1,
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	seq.LastValue++
	if err := tx.Model(&seq).Updates(map[string]interface{}{
		"last_value": seq.LastValue,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
