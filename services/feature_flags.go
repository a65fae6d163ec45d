package services

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const flagCacheTTL = 30 * time.Second

type cachedFlags struct {
	flags     map[string]bool
	expiresAt time.Time
}

// FlagService reads tenant feature flags with a short-lived in-process cache.
// Every flag write must go through SetFlag so the tenant entry gets
// invalidated; there are no other writers of the cache.
type FlagService struct {
	db  *gorm.DB
	ttl time.Duration

	mu    sync.RWMutex
	cache map[uint]cachedFlags
}

func NewFlagService(db *gorm.DB) *FlagService {
	return &FlagService{
		db:    db,
		ttl:   flagCacheTTL,
		cache: make(map[uint]cachedFlags),
	}
}

func (s *FlagService) IsEnabled(name string, tenantID uint) bool {
	s.mu.RLock()
	entry, ok := s.cache[tenantID]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		entry = s.load(tenantID)
	}
	return entry.flags[name]
}

func (s *FlagService) load(tenantID uint) cachedFlags {
	var rows []models.FeatureFlag
	if err := s.db.Where("tenant_id = ?", tenantID).Find(&rows).Error; err != nil {
		utils.ErrorLogger.Printf("failed to load feature flags for tenant %d: %v", tenantID, err)
		// Jangan cache hasil error
		return cachedFlags{flags: map[string]bool{}}
	}

	flags := make(map[string]bool, len(rows))
	for _, row := range rows {
		flags[row.Name] = row.Enabled
	}

	entry := cachedFlags{flags: flags, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Lock()
	s.cache[tenantID] = entry
	s.mu.Unlock()
	return entry
}

// SetFlag upserts a flag row and invalidates the tenant's cache entry.
func (s *FlagService) SetFlag(tenantID uint, name string, enabled bool) error {
	var flag models.FeatureFlag
	err := s.db.Where("tenant_id = ? AND name = ?", tenantID, name).First(&flag).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		flag = models.FeatureFlag{TenantID: tenantID, Name: name, Enabled: enabled}
		err = s.db.Create(&flag).Error
	case err == nil:
		err = s.db.Model(&flag).Update("enabled", enabled).Error
	}
	if err != nil {
		return err
	}
	s.Invalidate(tenantID)
	return nil
}

// Invalidate drops the cached entry for a tenant; next read hits the store.
func (s *FlagService) Invalidate(tenantID uint) {
	s.mu.Lock()
	delete(s.cache, tenantID)
	s.mu.Unlock()
}
