package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order     *Order  `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	// UnitPrice adalah snapshot harga katalog saat item dibuat, tidak pernah dihitung ulang
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Notes     string          `gorm:"type:text" json:"notes"`
	Status    string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	Modifiers []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// OrderItemModifier records a chosen modifier option with the price that was
// actually charged. PriceCharged is always resolved server-side.
type OrderItemModifier struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderItemID      uint            `gorm:"not null;index" json:"order_item_id"`
	ModifierOptionID uint            `gorm:"not null" json:"modifier_option_id"`
	ModifierOption   ModifierOption  `gorm:"foreignKey:ModifierOptionID" json:"modifier_option"`
	PriceCharged     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_charged"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
}

// LineTotal = (unit price + modifier charges) * quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	unit := i.UnitPrice
	for _, m := range i.Modifiers {
		unit = unit.Add(m.PriceCharged)
	}
	return unit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
