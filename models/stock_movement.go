package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StockMoveIn         = "in"
	StockMoveOut        = "out"
	StockMoveAdjustment = "adjustment"
)

// StockMovement is the ledger row written by the stock collaborator for every
// deduction, always in the same transaction as the order that caused it.
type StockMovement struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	MoveType     string          `gorm:"type:varchar(20);not null" json:"move_type"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Reason       string          `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
}
