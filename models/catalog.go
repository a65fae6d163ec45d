package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog adalah read-side untuk pricer dan sync pull. CRUD-nya dikelola di
// luar engine ini; engine hanya membaca.

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TenantID   uint            `gorm:"not null;index" json:"tenant_id"`
	CategoryID uint            `gorm:"not null;index" json:"category_id"`
	Category   Category        `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Active     bool            `gorm:"not null;default:true" json:"active"`

	Recipe         []RecipeItem    `gorm:"foreignKey:ProductID" json:"recipe,omitempty"`
	ModifierGroups []ModifierGroup `gorm:"many2many:product_modifier_groups" json:"modifier_groups,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type ModifierGroup struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	TenantID  uint             `gorm:"not null;index" json:"tenant_id"`
	Name      string           `gorm:"type:varchar(120);not null" json:"name"`
	MaxPicks  int              `json:"max_picks"`
	Options   []ModifierOption `gorm:"foreignKey:GroupID" json:"options"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

type ModifierOption struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	GroupID   uint            `gorm:"not null;index" json:"group_id"`
	Name      string          `gorm:"type:varchar(120);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Active    bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

type Ingredient struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	TenantID uint            `gorm:"not null;index" json:"tenant_id"`
	Name     string          `gorm:"type:varchar(120);not null" json:"name"`
	Unit     string          `gorm:"type:varchar(20);not null;default:'unit'" json:"unit"`
	Stock    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// RecipeItem: berapa banyak bahan yang dipakai satu unit produk.
type RecipeItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	Ingredient   Ingredient      `gorm:"foreignKey:IngredientID" json:"ingredient"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
}
