package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	catalogCachePrefix = "sync:catalog:"
	catalogCacheTTL    = 5 * time.Minute
)

// Sync error/warning codes
const (
	CodeOrderSyncFailed   = "ORDER_SYNC_FAILED"
	CodePaymentSyncFailed = "PAYMENT_SYNC_FAILED"
	CodeShiftReassigned   = "SHIFT_REASSIGNED"
	CodePaymentCapped     = "PAYMENT_CAPPED"
)

// Mapping statuses
const (
	MappingCreated   = "CREATED"
	MappingDuplicate = "DUPLICATE"
	MappingError     = "ERROR"
)

type PendingOrder struct {
	TempID   string           `json:"temp_id" binding:"required"`
	Items    []OrderItemInput `json:"items" binding:"required"`
	Channel  string           `json:"channel"`
	TableID  *uint            `json:"table_id,omitempty"`
	ClientID *uint            `json:"client_id,omitempty"`
	Discount decimal.Decimal  `json:"discount"`
	Method   string           `json:"payment_method"`
	ShiftID  *uint            `json:"shift_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type PendingPayment struct {
	TempOrderID string          `json:"temp_order_id" binding:"required"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PushRequest struct {
	ClientID        string           `json:"client_id" binding:"required"`
	PendingOrders   []PendingOrder   `json:"pending_orders"`
	PendingPayments []PendingPayment `json:"pending_payments"`
}

type OrderMapping struct {
	TempID      string `json:"temp_id"`
	RealID      *uint  `json:"real_id"`
	OrderNumber *int64 `json:"order_number"`
	Status      string `json:"status"`
}

type SyncIssue struct {
	TempID  string `json:"temp_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PushResponse struct {
	Success       bool           `json:"success"`
	OrderMappings []OrderMapping `json:"order_mappings"`
	Errors        []SyncIssue    `json:"errors"`
	Warnings      []SyncIssue    `json:"warnings"`
	SyncedAt      time.Time      `json:"synced_at"`
}

type CatalogSnapshot struct {
	Products     []models.Product     `json:"products"`
	Categories   []models.Category    `json:"categories"`
	Printers     []models.Printer     `json:"printers"`
	PrinterRules []models.PrinterRule `json:"printer_rules"`
}

type PullResponse struct {
	Catalog    CatalogSnapshot `json:"catalog"`
	ServerTime time.Time       `json:"server_time"`
	SyncToken  string          `json:"sync_token"`
}

// SyncService replays batches of client-queued orders and payments against
// the order service, mapping client temporary ids to server-assigned real
// ids. Failures are isolated per record: one malformed offline order never
// blocks the rest of the batch.
type SyncService struct {
	runner *database.TxRunner
	orders *OrderService
	shifts *ShiftService
	audit  AuditLogger
	// cache is optional; nil means every pull hits the store
	cache *redis.Client
}

func NewSyncService(runner *database.TxRunner, orders *OrderService, shifts *ShiftService, audit AuditLogger, cache *redis.Client) *SyncService {
	return &SyncService{
		runner: runner,
		orders: orders,
		shifts: shifts,
		audit:  audit,
		cache:  cache,
	}
}

// Pull exports the catalog snapshot terminals need to operate offline.
// Read-only; identical catalogs yield identical snapshots apart from
// ServerTime and SyncToken.
func (s *SyncService) Pull(ctx context.Context, tenantID uint) (*PullResponse, error) {
	resp := &PullResponse{
		ServerTime: time.Now(),
		SyncToken:  uuid.NewString(),
	}

	if snapshot := s.cachedCatalog(ctx, tenantID); snapshot != nil {
		resp.Catalog = *snapshot
		return resp, nil
	}

	var snapshot CatalogSnapshot
	db := s.runner.DB()
	if err := db.Preload("ModifierGroups.Options").Preload("Recipe.Ingredient").
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Find(&snapshot.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Where("tenant_id = ?", tenantID).Order("sort_order").
		Find(&snapshot.Categories).Error; err != nil {
		return nil, err
	}
	if err := db.Where("tenant_id = ? AND active = ?", tenantID, true).
		Find(&snapshot.Printers).Error; err != nil {
		return nil, err
	}
	if len(snapshot.Printers) > 0 {
		printerIDs := make([]uint, 0, len(snapshot.Printers))
		for _, p := range snapshot.Printers {
			printerIDs = append(printerIDs, p.ID)
		}
		if err := db.Where("printer_id IN ?", printerIDs).
			Find(&snapshot.PrinterRules).Error; err != nil {
			return nil, err
		}
	}

	s.storeCatalog(ctx, tenantID, &snapshot)
	resp.Catalog = snapshot
	return resp, nil
}

func (s *SyncService) cachedCatalog(ctx context.Context, tenantID uint) *CatalogSnapshot {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, fmt.Sprintf("%s%d", catalogCachePrefix, tenantID)).Bytes()
	if err != nil {
		return nil
	}
	var snapshot CatalogSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

func (s *SyncService) storeCatalog(ctx context.Context, tenantID uint, snapshot *CatalogSnapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, fmt.Sprintf("%s%d", catalogCachePrefix, tenantID), raw, catalogCacheTTL).Err(); err != nil {
		utils.ErrorLogger.Printf("catalog cache write failed for tenant %d: %v", tenantID, err)
	}
}

// Push processes pending orders strictly before pending payments: payments
// reference orders by the client's temporary id and need the real id first.
func (s *SyncService) Push(ctx context.Context, actor AuthContext, req PushRequest) (*PushResponse, error) {
	resp := &PushResponse{SyncedAt: time.Now()}
	realIDs := map[string]uint{}

	currentShift, shiftErr := s.shifts.CurrentOpen(s.runner.DB(), actor.TenantID, actor.UserID)

	for _, pending := range req.PendingOrders {
		// Dedupe: temp id yang sudah pernah direplay tidak boleh bikin order baru
		if existing := s.findSynced(actor.TenantID, req.ClientID, pending.TempID); existing != nil {
			realIDs[pending.TempID] = existing.OrderID
			resp.OrderMappings = append(resp.OrderMappings, OrderMapping{
				TempID:      pending.TempID,
				RealID:      &existing.OrderID,
				OrderNumber: &existing.OrderNumber,
				Status:      MappingDuplicate,
			})
			continue
		}

		if shiftErr != nil {
			resp.Errors = append(resp.Errors, SyncIssue{
				TempID:  pending.TempID,
				Code:    CodeOrderSyncFailed,
				Message: shiftErr.Error(),
			})
			resp.OrderMappings = append(resp.OrderMappings, OrderMapping{
				TempID: pending.TempID,
				Status: MappingError,
			})
			continue
		}

		if pending.ShiftID != nil && *pending.ShiftID != currentShift.ID {
			// Non-fatal: order tetap dibuat di shift yang sekarang aktif
			resp.Warnings = append(resp.Warnings, SyncIssue{
				TempID: pending.TempID,
				Code:   CodeShiftReassigned,
				Message: fmt.Sprintf("offline order was opened on shift %d, recorded on current shift %d",
					*pending.ShiftID, currentShift.ID),
			})
		}

		createdAt := pending.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		order, err := s.orders.Create(ctx, actor, CreateOrderInput{
			Items:         pending.Items,
			Channel:       pending.Channel,
			TableID:       pending.TableID,
			ClientID:      pending.ClientID,
			Discount:      pending.Discount,
			PaymentMethod: pending.Method,
			CreatedAt:     &createdAt,
		})
		if err != nil {
			resp.Errors = append(resp.Errors, SyncIssue{
				TempID:  pending.TempID,
				Code:    CodeOrderSyncFailed,
				Message: err.Error(),
			})
			resp.OrderMappings = append(resp.OrderMappings, OrderMapping{
				TempID: pending.TempID,
				Status: MappingError,
			})
			continue
		}

		s.recordSynced(actor.TenantID, req.ClientID, pending.TempID, order)
		realIDs[pending.TempID] = order.ID
		resp.OrderMappings = append(resp.OrderMappings, OrderMapping{
			TempID:      pending.TempID,
			RealID:      &order.ID,
			OrderNumber: &order.OrderNumber,
			Status:      MappingCreated,
		})
	}

	for _, pending := range req.PendingPayments {
		orderID, ok := realIDs[pending.TempOrderID]
		if !ok {
			if existing := s.findSynced(actor.TenantID, req.ClientID, pending.TempOrderID); existing != nil {
				orderID = existing.OrderID
			} else {
				resp.Errors = append(resp.Errors, SyncIssue{
					TempID:  pending.TempOrderID,
					Code:    CodePaymentSyncFailed,
					Message: "unknown temp order id",
				})
				continue
			}
		}

		// Each payment runs in its own serializable scope that re-reads
		// paid-to-date, so two terminals replaying payments for the same
		// order cannot push it past the total.
		_, capped, err := s.orders.AddPayment(ctx, actor, orderID, pending.Method, pending.Amount, true)
		if err != nil {
			resp.Errors = append(resp.Errors, SyncIssue{
				TempID:  pending.TempOrderID,
				Code:    CodePaymentSyncFailed,
				Message: err.Error(),
			})
			continue
		}
		if capped {
			resp.Warnings = append(resp.Warnings, SyncIssue{
				TempID:  pending.TempOrderID,
				Code:    CodePaymentCapped,
				Message: "payment exceeded remaining balance and was capped",
			})
		}
	}

	resp.Success = len(resp.Errors) == 0
	s.audit.Log("sync_push", "sync_batch", req.ClientID, actor,
		fmt.Sprintf("orders=%d payments=%d errors=%d warnings=%d",
			len(req.PendingOrders), len(req.PendingPayments), len(resp.Errors), len(resp.Warnings)))
	return resp, nil
}

func (s *SyncService) findSynced(tenantID uint, deviceID, tempID string) *models.SyncedOrder {
	var synced models.SyncedOrder
	err := s.runner.DB().
		Where("tenant_id = ? AND client_device_id = ? AND temp_id = ?", tenantID, deviceID, tempID).
		First(&synced).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		utils.ErrorLogger.Printf("synced order lookup failed (%s/%s): %v", deviceID, tempID, err)
		return nil
	}
	return &synced
}

func (s *SyncService) recordSynced(tenantID uint, deviceID, tempID string, order *models.Order) {
	synced := models.SyncedOrder{
		TenantID:       tenantID,
		ClientDeviceID: deviceID,
		TempID:         tempID,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		CreatedAt:      time.Now(),
	}
	if err := s.runner.DB().Create(&synced).Error; err != nil {
		// Unique index tetap menjaga dedupe kalau dua push balapan
		utils.ErrorLogger.Printf("failed to record synced order %s/%s: %v", deviceID, tempID, err)
	}
}
