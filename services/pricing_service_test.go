package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/utils"
)

func TestResolveUsesCatalogPrices(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	pricer := NewPricingService()

	// Terminal mencoba kirim unit_price sendiri; harga tetap dari katalog
	tampered := money("0.01")
	result, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 2, UnitPrice: &tampered},
	}, false)
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	assert.True(t, result.Lines[0].UnitPrice.Equal(money("10.00")),
		"unit price mismatch: %s", result.Lines[0].UnitPrice)
	assert.True(t, result.Lines[0].LineTotal.Equal(money("20.00")))
	assert.True(t, result.Subtotal.Equal(money("20.00")))
}

func TestResolveRejectsUnknownAndInactiveProducts(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	pricer := NewPricingService()

	_, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 999, Quantity: 1},
	}, false)
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "999")

	// Produk 3 ada tapi inactive -> perlakuan sama dengan unknown
	_, err = pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 3, Quantity: 1},
	}, false)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "3")
}

func TestResolveRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	pricer := NewPricingService()

	_, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 0},
	}, false)
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = pricer.Resolve(db, testTenant, nil, false)
	require.ErrorAs(t, err, &verr)
}

func TestResolveModifierPricing(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	pricer := NewPricingService()

	result, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 2, ModifierOptionIDs: []uint{1}},
	}, false)
	require.NoError(t, err)

	line := result.Lines[0]
	require.Len(t, line.Modifiers, 1)
	assert.Equal(t, "Extra Egg", line.Modifiers[0].Name)
	assert.True(t, line.Modifiers[0].PriceCharged.Equal(money("1.50")))
	// (10.00 + 1.50) * 2
	assert.True(t, line.LineTotal.Equal(money("23.00")), "line total: %s", line.LineTotal)

	_, err = pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 1, ModifierOptionIDs: []uint{404}},
	}, false)
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestResolveRemovedIngredients(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	pricer := NewPricingService()

	// Egg (id 2) dihapus: masuk ke notes, keluar dari requirements
	result, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 2, Notes: "spicy", RemovedIngredientIDs: []uint{2}},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "spicy | removed: Egg", result.Lines[0].Notes)
	require.Len(t, result.Requirements, 1)
	assert.Equal(t, uint(1), result.Requirements[0].IngredientID)
	assert.True(t, result.Requirements[0].Quantity.Equal(money("0.500")))
}

func TestResolveAggregatesRequirementsAcrossLines(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	pricer := NewPricingService()

	result, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, Quantity: 2, Notes: "no ice"},
	}, false)
	require.NoError(t, err)

	byIngredient := map[uint]string{}
	for _, req := range result.Requirements {
		byIngredient[req.IngredientID] = req.Quantity.String()
	}
	// 3 porsi total: rice 0.250*3, egg 2*3
	assert.Equal(t, "0.75", byIngredient[1])
	assert.Equal(t, "6", byIngredient[2])
}

func TestResolveInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	pricer := NewPricingService()

	// Stok egg hanya 4, resep butuh 2 per porsi -> 3 porsi gagal
	_, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 3},
	}, true)
	var stockErr *utils.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Egg", stockErr.Ingredient)
	assert.Equal(t, "Fried Rice", stockErr.Product)
	assert.True(t, stockErr.Required.Equal(money("6")))
	assert.True(t, stockErr.Available.Equal(money("4.000")))

	// Tanpa checkStock requirement tetap dihitung, tidak jadi error
	result, err := pricer.Resolve(db, testTenant, []OrderItemInput{
		{ProductID: 1, Quantity: 3},
	}, false)
	require.NoError(t, err)
	assert.Len(t, result.Requirements, 2)
}
