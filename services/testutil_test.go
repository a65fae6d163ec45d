package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/models"
)

const testTenant uint = 1

// setupTestDB -> in-memory SQLite unik per test + migrasi semua model
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// recordingBroadcaster captures broadcast events instead of pushing them to
// websocket clients.
type recordingBroadcaster struct {
	mu     sync.Mutex
	Events []string
}

func (b *recordingBroadcaster) record(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, event)
}

func (b *recordingBroadcaster) BroadcastNewOrder(models.Order)    { b.record("new_order") }
func (b *recordingBroadcaster) BroadcastOrderUpdate(models.Order) { b.record("order_update") }
func (b *recordingBroadcaster) BroadcastTableUpdate(models.Table) { b.record("table_update") }

type testEnv struct {
	db         *gorm.DB
	runner     *database.TxRunner
	flags      *FlagService
	shifts     *ShiftService
	orders     *OrderService
	sync       *SyncService
	broadcasts *recordingBroadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	runner := database.NewTxRunner(db)
	flags := NewFlagService(db)
	audit := NewAuditService(db)
	shifts := NewShiftService(runner, audit)
	broadcasts := &recordingBroadcaster{}
	orders := NewOrderService(
		runner,
		NewSequenceService(runner),
		NewPricingService(),
		NewPaymentAllocator(),
		shifts,
		flags,
		NewStockLedgerService(),
		NewLoyaltyPointService(),
		broadcasts,
		audit,
	)
	return &testEnv{
		db:         db,
		runner:     runner,
		flags:      flags,
		shifts:     shifts,
		orders:     orders,
		sync:       NewSyncService(runner, orders, shifts, audit, nil),
		broadcasts: broadcasts,
	}
}

func testActor() AuthContext {
	return AuthContext{UserID: 1, TenantID: testTenant, Role: "staff"}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedCatalog creates the fixture the order tests run against:
// two products (10.00 and 50.00), a recipe, a modifier, a table, a client.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now()

	require.NoError(t, db.Create(&models.User{ID: 1, TenantID: testTenant, Name: "Test Waiter", Role: "staff"}).Error)
	require.NoError(t, db.Create(&models.Client{ID: 1, TenantID: testTenant, Name: "Regular Guest"}).Error)

	require.NoError(t, db.Create(&models.Category{ID: 1, TenantID: testTenant, Name: "Mains", CreatedAt: now, UpdatedAt: now}).Error)

	require.NoError(t, db.Create(&models.Product{
		ID: 1, TenantID: testTenant, CategoryID: 1,
		Name: "Fried Rice", Price: money("10.00"), Active: true,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		ID: 2, TenantID: testTenant, CategoryID: 1,
		Name: "Family Platter", Price: money("50.00"), Active: true,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		ID: 3, TenantID: testTenant, CategoryID: 1,
		Name: "Discontinued Soup", Price: money("5.00"), Active: false,
		CreatedAt: now, UpdatedAt: now,
	}).Error)

	require.NoError(t, db.Create(&models.Ingredient{
		ID: 1, TenantID: testTenant, Name: "Rice", Unit: "kg", Stock: money("10.000"),
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.Ingredient{
		ID: 2, TenantID: testTenant, Name: "Egg", Unit: "unit", Stock: money("4.000"),
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.RecipeItem{ID: 1, ProductID: 1, IngredientID: 1, Quantity: money("0.250")}).Error)
	require.NoError(t, db.Create(&models.RecipeItem{ID: 2, ProductID: 1, IngredientID: 2, Quantity: money("2.000")}).Error)

	require.NoError(t, db.Create(&models.ModifierGroup{ID: 1, TenantID: testTenant, Name: "Extras", CreatedAt: now, UpdatedAt: now}).Error)
	require.NoError(t, db.Create(&models.ModifierOption{
		ID: 1, GroupID: 1, Name: "Extra Egg", Price: money("1.50"), Active: true,
		CreatedAt: now, UpdatedAt: now,
	}).Error)

	require.NoError(t, db.Create(&models.Table{
		ID: 1, TenantID: testTenant, TableNumber: "A1", Status: models.TableStatusFree,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
}

// openTestShift opens a shift for the default actor.
func openTestShift(t *testing.T, env *testEnv) *models.CashShift {
	t.Helper()
	shift, err := env.shifts.Open(context.Background(), testActor(), money("100.00"))
	require.NoError(t, err)
	return shift
}
