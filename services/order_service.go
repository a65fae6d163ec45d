package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// maxCreateAttempts bounds transparent retries on deadlocks and order-number
// collisions before the conflict is surfaced to the caller.
const maxCreateAttempts = 3

// CreateOrderInput carries everything a terminal sends to open an order.
type CreateOrderInput struct {
	Items         []OrderItemInput `json:"items" binding:"required"`
	Channel       string           `json:"channel"`
	TableID       *uint            `json:"table_id,omitempty"`
	ClientID      *uint            `json:"client_id,omitempty"`
	Discount      decimal.Decimal  `json:"discount"`
	Tip           decimal.Decimal  `json:"tip"`
	PaymentMethod string           `json:"payment_method"`
	SplitPayments []SplitPayment   `json:"split_payments"`
	// CreatedAt is set for offline orders replayed by the sync service;
	// online orders use the server clock.
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// OrderService orchestrates order creation, item addition and status changes.
// All aggregate mutations happen inside transactions opened here; broadcasts
// run strictly after commit.
type OrderService struct {
	runner      *database.TxRunner
	sequences   *SequenceService
	pricer      *PricingService
	allocator   *PaymentAllocator
	shifts      *ShiftService
	flags       FeatureFlags
	stock       StockLedger
	loyalty     LoyaltyService
	broadcaster Broadcaster
	audit       AuditLogger
}

func NewOrderService(
	runner *database.TxRunner,
	sequences *SequenceService,
	pricer *PricingService,
	allocator *PaymentAllocator,
	shifts *ShiftService,
	flags FeatureFlags,
	stock StockLedger,
	loyalty LoyaltyService,
	broadcaster Broadcaster,
	audit AuditLogger,
) *OrderService {
	return &OrderService{
		runner:      runner,
		sequences:   sequences,
		pricer:      pricer,
		allocator:   allocator,
		shifts:      shifts,
		flags:       flags,
		stock:       stock,
		loyalty:     loyalty,
		broadcaster: broadcaster,
		audit:       audit,
	}
}

// Create opens an order under a serializable transaction. Steps, in order:
// open-shift check, pricing, sequence number, payment allocation, aggregate
// write, table re-check, stock deduction, loyalty award. Everything commits
// together or not at all; the kitchen broadcast happens after commit and is
// never allowed to fail the sale.
func (s *OrderService) Create(ctx context.Context, actor AuthContext, input CreateOrderInput) (*models.Order, error) {
	if input.Channel == "" {
		input.Channel = models.ChannelDineIn
	}

	// Flag reads are cheap and cached; keep them outside the transaction so
	// they never hold a lock.
	stockCheck := s.flags.IsEnabled(FlagStockControl, actor.TenantID)
	hourlyShards := s.flags.IsEnabled(FlagHourlyShards, actor.TenantID)

	var order *models.Order
	var attemptErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		order, attemptErr = s.createOnce(ctx, actor, input, stockCheck, hourlyShards)
		if attemptErr == nil {
			break
		}
		if !utils.IsRetryable(attemptErr) {
			return nil, attemptErr
		}
		utils.InfoLogger.Warnf("order create attempt %d/%d failed, retrying: %v",
			attempt, maxCreateAttempts, attemptErr)
	}
	if attemptErr != nil {
		return nil, utils.NewConflictError("order", "could not create order after %d attempts: %v",
			maxCreateAttempts, attemptErr)
	}

	s.notify(func() { s.broadcaster.BroadcastNewOrder(*order) })
	s.audit.Log("order_create", "order", fmt.Sprintf("%d", order.ID), actor,
		fmt.Sprintf("number=%d total=%s", order.OrderNumber, utils.FormatMoney(order.Total)))
	return order, nil
}

func (s *OrderService) createOnce(ctx context.Context, actor AuthContext, input CreateOrderInput, stockCheck, hourlyShards bool) (*models.Order, error) {
	var order models.Order

	err := s.runner.RunSerializable(ctx, database.TxOptions{Resource: "order"}, func(tx *gorm.DB) error {
		shift, err := s.shifts.CurrentOpen(tx, actor.TenantID, actor.UserID)
		if err != nil {
			return err
		}

		pricing, err := s.pricer.Resolve(tx, actor.TenantID, input.Items, stockCheck)
		if err != nil {
			return err
		}

		createdAt := time.Now()
		if input.CreatedAt != nil {
			createdAt = *input.CreatedAt
		}
		shardKey := utils.DayShardKey(createdAt)
		if hourlyShards {
			shardKey = utils.HourShardKey(createdAt)
		}

		number, err := s.sequences.Next(tx, actor.TenantID, shardKey)
		if err != nil {
			return err
		}

		total := pricing.Subtotal.Sub(input.Discount)
		if total.LessThan(decimal.Zero) {
			return utils.NewValidationError("discount %s exceeds subtotal %s",
				utils.FormatMoney(input.Discount), utils.FormatMoney(pricing.Subtotal))
		}

		alloc, err := s.allocator.Allocate(total, shift.ID, input.PaymentMethod, input.SplitPayments)
		if err != nil {
			return err
		}

		status := models.OrderStatusOpen
		if alloc.FullyPaid {
			status = models.OrderStatusConfirmed
		}

		order = models.Order{
			TenantID:      actor.TenantID,
			OrderNumber:   number,
			ShardKey:      shardKey,
			Status:        status,
			PaymentStatus: alloc.PaymentStatus,
			Channel:       input.Channel,
			Subtotal:      pricing.Subtotal,
			Discount:      input.Discount,
			Tip:           input.Tip,
			Total:         total,
			BusinessDate:  utils.BusinessDate(createdAt),
			ClientID:      input.ClientID,
			ServerID:      actor.UserID,
			ShiftID:       shift.ID,
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		for _, line := range pricing.Lines {
			item := models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Notes:     line.Notes,
				Status:    models.ItemStatusPending,
				CreatedAt: createdAt,
				UpdatedAt: createdAt,
			}
			for _, m := range line.Modifiers {
				item.Modifiers = append(item.Modifiers, models.OrderItemModifier{
					ModifierOptionID: m.ModifierOptionID,
					PriceCharged:     m.PriceCharged,
					CreatedAt:        createdAt,
				})
			}
			order.OrderItems = append(order.OrderItems, item)
		}
		order.Payments = alloc.Payments

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Meja hanya dipakai untuk dine-in; delivery/takeaway tidak menyentuh meja
		if input.TableID != nil && input.Channel == models.ChannelDineIn {
			if err := s.occupyTable(tx, actor.TenantID, *input.TableID, order.ID); err != nil {
				return err
			}
			order.TableID = input.TableID
			if err := tx.Model(&order).Update("table_id", *input.TableID).Error; err != nil {
				return err
			}
		}

		if stockCheck {
			if err := s.applyDeductions(tx, pricing.Requirements, order.OrderNumber); err != nil {
				return err
			}
		}

		if alloc.FullyPaid && input.ClientID != nil {
			if _, err := s.loyalty.AwardPoints(tx, *input.ClientID, total); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// occupyTable re-reads the table under lock immediately before taking it.
// Without this re-check two concurrent creates could both pass an earlier
// "is it free?" read and double-book the table; only one transaction can win
// here.
func (s *OrderService) occupyTable(tx *gorm.DB, tenantID, tableID, orderID uint) error {
	var table models.Table
	err := s.runner.Locked(tx).
		Where("tenant_id = ?", tenantID).
		First(&table, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &utils.NotFoundError{Entity: "table", ID: tableID}
	}
	if err != nil {
		return err
	}
	if table.Status != models.TableStatusFree {
		return utils.NewConflictError(fmt.Sprintf("table %s", table.TableNumber),
			"table is already occupied")
	}

	return tx.Model(&table).Updates(map[string]interface{}{
		"status":           models.TableStatusOccupied,
		"current_order_id": orderID,
	}).Error
}

func (s *OrderService) applyDeductions(tx *gorm.DB, requirements []StockRequirement, orderNumber int64) error {
	reason := fmt.Sprintf("order #%d", orderNumber)
	for _, req := range requirements {
		if err := s.stock.Register(tx, req.IngredientID, models.StockMoveOut, req.Quantity, reason); err != nil {
			return err
		}
	}
	return nil
}

// AddItems applies a pricing/stock delta to an existing order. A fully paid
// or closed order can no longer be modified; an order the kitchen already
// marked ready is reopened so the new items show up on displays again.
func (s *OrderService) AddItems(ctx context.Context, actor AuthContext, orderID uint, items []OrderItemInput) (*models.Order, error) {
	stockCheck := s.flags.IsEnabled(FlagStockControl, actor.TenantID)

	var order models.Order
	err := s.runner.RunSerializable(ctx, database.TxOptions{Resource: fmt.Sprintf("order %d", orderID)}, func(tx *gorm.DB) error {
		err := tx.Preload("OrderItems.Modifiers").Preload("Payments").
			Where("tenant_id = ?", actor.TenantID).
			First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Entity: "order", ID: orderID}
		}
		if err != nil {
			return err
		}

		if order.IsClosed() {
			return utils.NewConflictError(fmt.Sprintf("order %d", orderID),
				"order is %s and can no longer be modified", order.Status)
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			return utils.NewConflictError(fmt.Sprintf("order %d", orderID),
				"order is fully paid and can no longer be modified")
		}

		pricing, err := s.pricer.Resolve(tx, actor.TenantID, items, stockCheck)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, line := range pricing.Lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Notes:     line.Notes,
				Status:    models.ItemStatusPending,
				CreatedAt: now,
				UpdatedAt: now,
			}
			for _, m := range line.Modifiers {
				item.Modifiers = append(item.Modifiers, models.OrderItemModifier{
					ModifierOptionID: m.ModifierOptionID,
					PriceCharged:     m.PriceCharged,
					CreatedAt:        now,
				})
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.OrderItems = append(order.OrderItems, item)
		}

		order.Subtotal = order.Subtotal.Add(pricing.Subtotal)
		order.Total = order.Subtotal.Sub(order.Discount)
		// Total naik, jadi status pembayaran bisa turun dari paid ke partial
		order.PaymentStatus = DerivePaymentStatus(order.PaidAmount(), order.Total)

		updates := map[string]interface{}{
			"subtotal":       order.Subtotal,
			"total":          order.Total,
			"payment_status": order.PaymentStatus,
			"updated_at":     now,
		}
		// Reopen orders the kitchen already finished so new items reappear.
		if order.Status == models.OrderStatusReady || order.Status == models.OrderStatusOnRoute {
			order.Status = models.OrderStatusPreparing
			updates["status"] = order.Status
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		if stockCheck {
			return s.applyDeductions(tx, pricing.Requirements, order.OrderNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(func() { s.broadcaster.BroadcastOrderUpdate(order) })
	s.audit.Log("order_add_items", "order", fmt.Sprintf("%d", orderID), actor,
		fmt.Sprintf("items=%d total=%s", len(items), utils.FormatMoney(order.Total)))
	return &order, nil
}

// ChangeStatus moves an order through the lifecycle graph. The order row is
// locked and its status re-read immediately before the check, which is what
// stops two racing requests from resurrecting a just-cancelled order.
func (s *OrderService) ChangeStatus(ctx context.Context, actor AuthContext, orderID uint, to string) (*models.Order, error) {
	var order models.Order
	var freedTable *models.Table

	err := s.runner.RunWithLock(ctx, database.TxOptions{Resource: fmt.Sprintf("order %d", orderID)}, func(tx *gorm.DB) error {
		freedTable = nil
		err := s.runner.Locked(tx).
			Where("tenant_id = ?", actor.TenantID).
			First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Entity: "order", ID: orderID}
		}
		if err != nil {
			return err
		}

		if err := models.AssertTransition(order.Status, to); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     to,
			"updated_at": now,
		}
		if models.IsTerminalOrderStatus(to) {
			order.ClosedAt = &now
			updates["closed_at"] = now
		}
		order.Status = to
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		if models.IsTerminalOrderStatus(to) && order.TableID != nil {
			table, err := s.releaseTable(tx, actor.TenantID, *order.TableID, order.ID)
			if err != nil {
				return err
			}
			freedTable = table
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(func() {
		s.broadcaster.BroadcastOrderUpdate(order)
		if freedTable != nil {
			s.broadcaster.BroadcastTableUpdate(*freedTable)
		}
	})
	s.audit.Log("order_status", "order", fmt.Sprintf("%d", orderID), actor, to)
	return &order, nil
}

// releaseTable frees the table only if this order still holds it.
func (s *OrderService) releaseTable(tx *gorm.DB, tenantID, tableID, orderID uint) (*models.Table, error) {
	var table models.Table
	err := s.runner.Locked(tx).
		Where("tenant_id = ?", tenantID).
		First(&table, tableID).Error
	if err != nil {
		return nil, err
	}
	if table.CurrentOrderID == nil || *table.CurrentOrderID != orderID {
		return nil, nil
	}
	if err := tx.Model(&table).Updates(map[string]interface{}{
		"status":           models.TableStatusFree,
		"current_order_id": nil,
	}).Error; err != nil {
		return nil, err
	}
	table.Status = models.TableStatusFree
	table.CurrentOrderID = nil
	return &table, nil
}

// AddPayment records an additional payment inside its own serializable scope
// that re-reads paid-to-date first. With capToBalance (used by offline-sync
// replay) an overshooting payment is trimmed to the remaining balance and a
// redundant payment on an already-paid order is skipped; online callers get
// a conflict instead.
//
// Returns the created payment (nil when skipped) and whether it was capped.
func (s *OrderService) AddPayment(ctx context.Context, actor AuthContext, orderID uint, method string, amount decimal.Decimal, capToBalance bool) (*models.Payment, bool, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, false, utils.NewValidationError("payment amount must be positive")
	}

	var payment *models.Payment
	var capped bool
	var order models.Order

	err := s.runner.RunSerializable(ctx, database.TxOptions{Resource: fmt.Sprintf("order %d", orderID)}, func(tx *gorm.DB) error {
		payment, capped = nil, false

		err := tx.Preload("Payments").
			Where("tenant_id = ?", actor.TenantID).
			First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Entity: "order", ID: orderID}
		}
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return utils.NewConflictError(fmt.Sprintf("order %d", orderID),
				"cannot pay a cancelled order")
		}

		shift, err := s.shifts.CurrentOpen(tx, actor.TenantID, actor.UserID)
		if err != nil {
			return err
		}

		paid := order.PaidAmount()
		remaining := order.Total.Sub(paid)

		if remaining.LessThanOrEqual(PaymentEpsilon) {
			if capToBalance {
				// Already paid in full; the replayed payment is redundant.
				return nil
			}
			return utils.NewConflictError(fmt.Sprintf("order %d", orderID),
				"order is already fully paid")
		}

		if amount.GreaterThan(remaining.Add(PaymentEpsilon)) {
			if !capToBalance {
				return utils.NewConflictError(fmt.Sprintf("order %d", orderID),
					"payment %s exceeds remaining balance %s",
					utils.FormatMoney(amount), utils.FormatMoney(remaining))
			}
			amount = remaining
			capped = true
		}

		p := models.Payment{
			OrderID:   order.ID,
			ShiftID:   shift.ID,
			Method:    s.allocator.CanonicalMethod(method),
			Amount:    amount,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		payment = &p

		order.Payments = append(order.Payments, p)
		order.PaymentStatus = DerivePaymentStatus(order.PaidAmount(), order.Total)
		updates := map[string]interface{}{
			"payment_status": order.PaymentStatus,
			"updated_at":     time.Now(),
		}
		if order.PaymentStatus == models.PaymentStatusPaid && order.Status == models.OrderStatusOpen {
			order.Status = models.OrderStatusConfirmed
			updates["status"] = order.Status
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		return nil, false, err
	}

	if payment != nil {
		s.notify(func() { s.broadcaster.BroadcastOrderUpdate(order) })
		s.audit.Log("order_payment", "order", fmt.Sprintf("%d", orderID), actor,
			fmt.Sprintf("method=%s amount=%s capped=%v", payment.Method, utils.FormatMoney(payment.Amount), capped))
	}
	return payment, capped, nil
}

// Get loads one order with its items, modifiers and payments.
func (s *OrderService) Get(tenantID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.runner.DB().
		Preload("OrderItems.Modifiers").
		Preload("Payments").
		Where("tenant_id = ?", tenantID).
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &utils.NotFoundError{Entity: "order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a tenant's orders for one business date, newest first.
func (s *OrderService) List(tenantID uint, businessDate time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.runner.DB().
		Preload("OrderItems").
		Where("tenant_id = ? AND business_date = ?", tenantID, businessDate).
		Order("order_number DESC").
		Find(&orders).Error
	return orders, err
}

// notify runs a broadcast callback, logging (never raising) anything that
// goes wrong. The financial transaction has already committed at this point.
func (s *OrderService) notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			utils.ErrorLogger.Printf("broadcast failed: %v", r)
		}
	}()
	fn()
}
