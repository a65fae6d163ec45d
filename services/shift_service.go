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

// ShiftService manages cash-drawer sessions. The "at most one open shift per
// user" invariant is enforced by re-checking inside a serializable
// transaction, not by the earlier read a client may have done.
type ShiftService struct {
	runner *database.TxRunner
	audit  AuditLogger
}

func NewShiftService(runner *database.TxRunner, audit AuditLogger) *ShiftService {
	return &ShiftService{runner: runner, audit: audit}
}

func (s *ShiftService) Open(ctx context.Context, actor AuthContext, startAmount decimal.Decimal) (*models.CashShift, error) {
	if startAmount.LessThan(decimal.Zero) {
		return nil, utils.NewValidationError("start amount cannot be negative")
	}

	var shift models.CashShift
	err := s.runner.RunSerializable(ctx, database.TxOptions{Resource: "cash shift"}, func(tx *gorm.DB) error {
		var existing models.CashShift
		err := tx.Where("tenant_id = ? AND user_id = ? AND end_time IS NULL", actor.TenantID, actor.UserID).
			First(&existing).Error
		if err == nil {
			return utils.NewConflictError("cash shift",
				"user %d already has an open shift (id %d)", actor.UserID, existing.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		shift = models.CashShift{
			TenantID:    actor.TenantID,
			UserID:      actor.UserID,
			StartAmount: startAmount,
			StartTime:   now,
		}
		return tx.Create(&shift).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log("shift_open", "cash_shift", fmt.Sprintf("%d", shift.ID), actor, "")
	return &shift, nil
}

// Close is the shift's single permitted mutation; a closed shift is immutable.
func (s *ShiftService) Close(ctx context.Context, actor AuthContext, shiftID uint, endAmount decimal.Decimal) (*models.CashShift, error) {
	var shift models.CashShift
	err := s.runner.RunWithLock(ctx, database.TxOptions{Resource: fmt.Sprintf("cash shift %d", shiftID)}, func(tx *gorm.DB) error {
		err := s.runner.Locked(tx).
			Where("tenant_id = ?", actor.TenantID).
			First(&shift, shiftID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Entity: "cash shift", ID: shiftID}
		}
		if err != nil {
			return err
		}
		if !shift.IsOpen() {
			return utils.NewConflictError("cash shift", "shift %d is already closed", shiftID)
		}

		now := time.Now()
		shift.EndAmount = &endAmount
		shift.EndTime = &now
		return tx.Model(&shift).Updates(map[string]interface{}{
			"end_amount": endAmount,
			"end_time":   now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log("shift_close", "cash_shift", fmt.Sprintf("%d", shiftID), actor, "")
	return &shift, nil
}

// CurrentOpen finds the caller's open shift on the given transaction handle.
// Order creation requires it: selling without an open drawer is disallowed.
func (s *ShiftService) CurrentOpen(tx *gorm.DB, tenantID, userID uint) (*models.CashShift, error) {
	var shift models.CashShift
	err := tx.Where("tenant_id = ? AND user_id = ? AND end_time IS NULL", tenantID, userID).
		First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewConflictError("cash shift", "user %d has no open shift", userID)
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}
