package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// StockLedgerService is the default StockLedger: one movement row per
// deduction plus an atomic decrement of the ingredient balance, both on the
// caller's transaction handle.
type StockLedgerService struct{}

func NewStockLedgerService() *StockLedgerService {
	return &StockLedgerService{}
}

func (s *StockLedgerService) Register(tx *gorm.DB, ingredientID uint, moveType string, quantity decimal.Decimal, reason string) error {
	movement := models.StockMovement{
		IngredientID: ingredientID,
		MoveType:     moveType,
		Quantity:     quantity,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}
	if err := tx.Create(&movement).Error; err != nil {
		return err
	}

	var expr string
	switch moveType {
	case models.StockMoveOut:
		expr = "stock - ?"
	case models.StockMoveIn:
		expr = "stock + ?"
	default:
		return utils.NewValidationError("unknown stock move type %q", moveType)
	}

	result := tx.Model(&models.Ingredient{}).
		Where("id = ?", ingredientID).
		Update("stock", gorm.Expr(expr, quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &utils.NotFoundError{Entity: "ingredient", ID: ingredientID}
	}
	return nil
}
