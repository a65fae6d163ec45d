package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// AuditService writes audit rows outside the caller's transaction. Failures
// are logged locally and never propagated: an unavailable audit table must
// not block a sale.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Log(action, entityType, entityID string, actor AuthContext, details string) {
	entry := models.AuditLog{
		TenantID:   actor.TenantID,
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("audit log write failed (action=%s entity=%s/%s): %v",
			action, entityType, entityID, err)
	}
}
