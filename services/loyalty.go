package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Satu poin per 10.00 dibelanjakan, dibulatkan ke bawah.
var loyaltyPointDivisor = decimal.NewFromInt(10)

// LoyaltyPointService is the default LoyaltyService: a single atomic
// increment on the client row, inside the order transaction.
type LoyaltyPointService struct{}

func NewLoyaltyPointService() *LoyaltyPointService {
	return &LoyaltyPointService{}
}

func (s *LoyaltyPointService) AwardPoints(tx *gorm.DB, clientID uint, orderTotal decimal.Decimal) (int, error) {
	points := int(orderTotal.Div(loyaltyPointDivisor).IntPart())
	if points <= 0 {
		return 0, nil
	}

	result := tx.Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, &utils.NotFoundError{Entity: "client", ID: clientID}
	}
	return points, nil
}
