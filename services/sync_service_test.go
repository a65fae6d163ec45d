package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

func TestPushReplaysOrdersAndPayments(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)
	openTestShift(t, env)

	resp, err := env.sync.Push(context.Background(), testActor(), PushRequest{
		ClientID: "tablet-7",
		PendingOrders: []PendingOrder{
			{
				TempID:    "tmp-1",
				Items:     []OrderItemInput{{ProductID: 1, Quantity: 2}},
				Channel:   models.ChannelTakeaway,
				CreatedAt: time.Now().Add(-30 * time.Minute),
			},
		},
		PendingPayments: []PendingPayment{
			{TempOrderID: "tmp-1", Method: "cash", Amount: money("20.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Empty(t, resp.Errors)
	require.Len(t, resp.OrderMappings, 1)
	mapping := resp.OrderMappings[0]
	assert.Equal(t, "tmp-1", mapping.TempID)
	assert.Equal(t, MappingCreated, mapping.Status)
	require.NotNil(t, mapping.RealID)

	order, err := env.orders.Get(testTenant, *mapping.RealID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}

func TestPushDuplicateTempIDDoesNotCreateSecondOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)
	openTestShift(t, env)

	req := PushRequest{
		ClientID: "tablet-7",
		PendingOrders: []PendingOrder{
			{TempID: "tmp-1", Items: []OrderItemInput{{ProductID: 1, Quantity: 1}}},
		},
	}

	first, err := env.sync.Push(context.Background(), testActor(), req)
	require.NoError(t, err)
	require.Equal(t, MappingCreated, first.OrderMappings[0].Status)

	// Retry batch yang sama (mis. response pertama hilang di jalan)
	second, err := env.sync.Push(context.Background(), testActor(), req)
	require.NoError(t, err)
	require.Len(t, second.OrderMappings, 1)
	assert.Equal(t, MappingDuplicate, second.OrderMappings[0].Status)
	assert.Equal(t, *first.OrderMappings[0].RealID, *second.OrderMappings[0].RealID)

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Temp id yang sama dari device lain adalah order berbeda
	req.ClientID = "tablet-9"
	third, err := env.sync.Push(context.Background(), testActor(), req)
	require.NoError(t, err)
	assert.Equal(t, MappingCreated, third.OrderMappings[0].Status)
}

func TestPushCapsOverlappingPayments(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)
	openTestShift(t, env)

	// Order 100.00; dua terminal sempat mencatat 60.00 masing-masing
	resp, err := env.sync.Push(context.Background(), testActor(), PushRequest{
		ClientID: "tablet-7",
		PendingOrders: []PendingOrder{
			{TempID: "tmp-1", Items: []OrderItemInput{{ProductID: 2, Quantity: 2}}},
		},
		PendingPayments: []PendingPayment{
			{TempOrderID: "tmp-1", Method: "cash", Amount: money("60.00")},
			{TempOrderID: "tmp-1", Method: "card", Amount: money("60.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, CodePaymentCapped, resp.Warnings[0].Code)

	order, err := env.orders.Get(testTenant, *resp.OrderMappings[0].RealID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	// Total pembayaran tidak pernah melewati total order
	assert.True(t, order.PaidAmount().Equal(money("100.00")), "paid: %s", order.PaidAmount())
	require.Len(t, order.Payments, 2)
	assert.True(t, order.Payments[1].Amount.Equal(money("40.00")))
}

func TestPushShiftReassignedWarning(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)
	shift := openTestShift(t, env)
	staleShiftID := shift.ID + 40

	resp, err := env.sync.Push(context.Background(), testActor(), PushRequest{
		ClientID: "tablet-7",
		PendingOrders: []PendingOrder{
			{
				TempID:  "tmp-1",
				Items:   []OrderItemInput{{ProductID: 1, Quantity: 1}},
				ShiftID: &staleShiftID,
			},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, CodeShiftReassigned, resp.Warnings[0].Code)

	// Order tercatat di shift yang aktif sekarang
	order, err := env.orders.Get(testTenant, *resp.OrderMappings[0].RealID)
	require.NoError(t, err)
	assert.Equal(t, shift.ID, order.ShiftID)
}

func TestPushIsolatesFailuresPerOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)
	openTestShift(t, env)

	resp, err := env.sync.Push(context.Background(), testActor(), PushRequest{
		ClientID: "tablet-7",
		PendingOrders: []PendingOrder{
			{TempID: "tmp-bad", Items: []OrderItemInput{{ProductID: 999, Quantity: 1}}},
			{TempID: "tmp-good", Items: []OrderItemInput{{ProductID: 1, Quantity: 1}}},
		},
	})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "tmp-bad", resp.Errors[0].TempID)
	assert.Equal(t, CodeOrderSyncFailed, resp.Errors[0].Code)

	byTemp := map[string]OrderMapping{}
	for _, m := range resp.OrderMappings {
		byTemp[m.TempID] = m
	}
	assert.Equal(t, MappingError, byTemp["tmp-bad"].Status)
	assert.Equal(t, MappingCreated, byTemp["tmp-good"].Status)
}

func TestPushWithoutOpenShiftFailsEveryOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)

	resp, err := env.sync.Push(context.Background(), testActor(), PushRequest{
		ClientID: "tablet-7",
		PendingOrders: []PendingOrder{
			{TempID: "tmp-1", Items: []OrderItemInput{{ProductID: 1, Quantity: 1}}},
		},
	})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeOrderSyncFailed, resp.Errors[0].Code)
	assert.Contains(t, resp.Errors[0].Message, "no open shift")
}

func TestPushPaymentForUnknownTempOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)
	openTestShift(t, env)

	resp, err := env.sync.Push(context.Background(), testActor(), PushRequest{
		ClientID: "tablet-7",
		PendingPayments: []PendingPayment{
			{TempOrderID: "tmp-ghost", Method: "cash", Amount: money("10.00")},
		},
	})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodePaymentSyncFailed, resp.Errors[0].Code)
	assert.Equal(t, "unknown temp order id", resp.Errors[0].Message)
}

func TestPushUsesOfflineTimestampForBusinessDate(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)
	openTestShift(t, env)

	// Order jam 02:00 pagi milik business date hari sebelumnya
	createdAt := time.Date(2025, 1, 16, 2, 0, 0, 0, time.Local)
	resp, err := env.sync.Push(context.Background(), testActor(), PushRequest{
		ClientID: "tablet-7",
		PendingOrders: []PendingOrder{
			{TempID: "tmp-1", Items: []OrderItemInput{{ProductID: 1, Quantity: 1}}, CreatedAt: createdAt},
		},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	order, err := env.orders.Get(testTenant, *resp.OrderMappings[0].RealID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", order.BusinessDate.Format("2006-01-02"))
	assert.Equal(t, "20250115", order.ShardKey)
}

func TestPullCatalogSnapshot(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env.db)

	resp, err := env.sync.Pull(context.Background(), testTenant)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SyncToken)

	// Hanya produk aktif yang diekspor
	require.Len(t, resp.Catalog.Products, 2)
	for _, p := range resp.Catalog.Products {
		assert.True(t, p.Active)
	}
	require.Len(t, resp.Catalog.Categories, 1)

	// Pull kedua menghasilkan snapshot yang sama, token berbeda
	again, err := env.sync.Pull(context.Background(), testTenant)
	require.NoError(t, err)
	assert.NotEqual(t, resp.SyncToken, again.SyncToken)
	assert.Len(t, again.Catalog.Products, 2)
}
