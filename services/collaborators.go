package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
)

// External collaborators consumed by the transaction engine. The engine only
// depends on these interfaces; the default implementations in this package
// write to the same database, but printers, loyalty providers etc. can be
// swapped without touching the order service.

// StockLedger records stock movements. Called inside the order transaction
// (tx) so a failed order never leaves stock decremented.
type StockLedger interface {
	Register(tx *gorm.DB, ingredientID uint, moveType string, quantity decimal.Decimal, reason string) error
}

// LoyaltyService awards points for fully paid orders with a known client,
// inside the same transaction as the order write.
type LoyaltyService interface {
	AwardPoints(tx *gorm.DB, clientID uint, orderTotal decimal.Decimal) (int, error)
}

// Broadcaster pushes fire-and-forget notifications to kitchen displays.
// Always called after commit; failures are logged, never returned.
type Broadcaster interface {
	BroadcastNewOrder(order models.Order)
	BroadcastOrderUpdate(order models.Order)
	BroadcastTableUpdate(table models.Table)
}

// AuditLogger records actions for later review. Implementations must swallow
// their own failures.
type AuditLogger interface {
	Log(action, entityType, entityID string, actor AuthContext, details string)
}

// FeatureFlags is a read-only, cached view of per-tenant flags.
type FeatureFlags interface {
	IsEnabled(name string, tenantID uint) bool
}

// AuthContext identifies the caller; filled by the auth middleware.
type AuthContext struct {
	UserID   uint
	TenantID uint
	Role     string
}

// Feature flag names the engine consults.
const (
	FlagStockControl = "stock_control"
	FlagHourlyShards = "hourly_order_shards"
)
