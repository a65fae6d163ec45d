package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// OrderItemInput is what terminals send. UnitPrice is accepted in the JSON
// body for backwards compatibility but never read: prices always come from
// the catalog, which closes the price-tampering hole.
type OrderItemInput struct {
	ProductID            uint             `json:"product_id" binding:"required"`
	Quantity             int              `json:"quantity" binding:"required"`
	Notes                string           `json:"notes"`
	UnitPrice            *decimal.Decimal `json:"unit_price,omitempty"`
	ModifierOptionIDs    []uint           `json:"modifier_option_ids"`
	RemovedIngredientIDs []uint           `json:"removed_ingredient_ids"`
}

type PricedModifier struct {
	ModifierOptionID uint
	Name             string
	PriceCharged     decimal.Decimal
}

type PricedLine struct {
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Notes       string
	Modifiers   []PricedModifier
	LineTotal   decimal.Decimal
}

// StockRequirement is the per-ingredient total the deduction step applies.
type StockRequirement struct {
	IngredientID   uint
	IngredientName string
	ProductName    string
	Quantity       decimal.Decimal
}

type PricingResult struct {
	Lines        []PricedLine
	Requirements []StockRequirement
	Subtotal     decimal.Decimal
}

// PricingService resolves client item lists against the catalog: authoritative
// prices, stock requirements, and the order subtotal.
type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// Resolve batch-loads every referenced product, modifier option and recipe in
// one query each (per-item lookups would be an N+1 defect at service scale).
// checkStock=false still computes requirements for the deduction step but
// does not treat a shortage as an error.
func (s *PricingService) Resolve(tx *gorm.DB, tenantID uint, items []OrderItemInput, checkStock bool) (*PricingResult, error) {
	if len(items) == 0 {
		return nil, utils.NewValidationError("order must contain at least one item")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, utils.NewValidationError("product %d: quantity must be positive", item.ProductID)
		}
	}

	productIDs := make([]uint, 0, len(items))
	modifierIDs := make([]uint, 0)
	seenProducts := map[uint]bool{}
	seenModifiers := map[uint]bool{}
	for _, item := range items {
		if !seenProducts[item.ProductID] {
			seenProducts[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
		for _, id := range item.ModifierOptionIDs {
			if !seenModifiers[id] {
				seenModifiers[id] = true
				modifierIDs = append(modifierIDs, id)
			}
		}
	}

	products, err := s.loadProducts(tx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	options, err := s.loadModifierOptions(tx, modifierIDs)
	if err != nil {
		return nil, err
	}
	recipes, err := s.loadRecipes(tx, productIDs)
	if err != nil {
		return nil, err
	}

	result := &PricingResult{Subtotal: decimal.Zero}
	// required per ingredient, diakumulasi lintas item
	required := map[uint]*StockRequirement{}

	for _, item := range items {
		product := products[item.ProductID]

		line := PricedLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Notes:       item.Notes,
		}

		for _, optID := range item.ModifierOptionIDs {
			opt, ok := options[optID]
			if !ok || !opt.Active {
				return nil, utils.NewValidationError("modifier option %d is unknown or inactive", optID)
			}
			line.Modifiers = append(line.Modifiers, PricedModifier{
				ModifierOptionID: opt.ID,
				Name:             opt.Name,
				PriceCharged:     opt.Price,
			})
		}

		removed := map[uint]bool{}
		for _, id := range item.RemovedIngredientIDs {
			removed[id] = true
		}

		var removedNames []string
		qty := decimal.NewFromInt(int64(item.Quantity))
		for _, recipe := range recipes[item.ProductID] {
			if removed[recipe.IngredientID] {
				removedNames = append(removedNames, recipe.Ingredient.Name)
				continue
			}
			need := recipe.Quantity.Mul(qty)
			if req, ok := required[recipe.IngredientID]; ok {
				req.Quantity = req.Quantity.Add(need)
			} else {
				required[recipe.IngredientID] = &StockRequirement{
					IngredientID:   recipe.IngredientID,
					IngredientName: recipe.Ingredient.Name,
					ProductName:    product.Name,
					Quantity:       need,
				}
			}
		}
		if len(removedNames) > 0 {
			note := fmt.Sprintf("removed: %s", strings.Join(removedNames, ", "))
			if line.Notes != "" {
				line.Notes = line.Notes + " | " + note
			} else {
				line.Notes = note
			}
		}

		unit := line.UnitPrice
		for _, m := range line.Modifiers {
			unit = unit.Add(m.PriceCharged)
		}
		line.LineTotal = unit.Mul(qty)
		result.Subtotal = result.Subtotal.Add(line.LineTotal)
		result.Lines = append(result.Lines, line)
	}

	for _, req := range required {
		result.Requirements = append(result.Requirements, *req)
	}

	if checkStock {
		if err := s.checkAvailability(tx, result.Requirements); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *PricingService) loadProducts(tx *gorm.DB, tenantID uint, ids []uint) (map[uint]models.Product, error) {
	var rows []models.Product
	if err := tx.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make(map[uint]models.Product, len(rows))
	for _, p := range rows {
		if p.Active {
			products[p.ID] = p
		}
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, utils.NewValidationError("product %d is unknown or inactive", id)
		}
	}
	return products, nil
}

func (s *PricingService) loadModifierOptions(tx *gorm.DB, ids []uint) (map[uint]models.ModifierOption, error) {
	options := make(map[uint]models.ModifierOption, len(ids))
	if len(ids) == 0 {
		return options, nil
	}
	var rows []models.ModifierOption
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, o := range rows {
		options[o.ID] = o
	}
	return options, nil
}

func (s *PricingService) loadRecipes(tx *gorm.DB, productIDs []uint) (map[uint][]models.RecipeItem, error) {
	var rows []models.RecipeItem
	if err := tx.Preload("Ingredient").Where("product_id IN ?", productIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	recipes := make(map[uint][]models.RecipeItem)
	for _, r := range rows {
		recipes[r.ProductID] = append(recipes[r.ProductID], r)
	}
	return recipes, nil
}

func (s *PricingService) checkAvailability(tx *gorm.DB, requirements []StockRequirement) error {
	if len(requirements) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(requirements))
	for _, req := range requirements {
		ids = append(ids, req.IngredientID)
	}
	var rows []models.Ingredient
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	stock := make(map[uint]decimal.Decimal, len(rows))
	for _, ing := range rows {
		stock[ing.ID] = ing.Stock
	}
	for _, req := range requirements {
		if stock[req.IngredientID].LessThan(req.Quantity) {
			return &utils.InsufficientStockError{
				Product:    req.ProductName,
				Ingredient: req.IngredientName,
				Required:   req.Quantity,
				Available:  stock[req.IngredientID],
			}
		}
	}
	return nil
}
