package models

import "github.com/yeremiapane/restaurant-pos/utils"

// Order status
const (
	OrderStatusOpen      = "open"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusOnRoute   = "on_route"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment status
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Canonical payment methods
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodQR       = "qr"
	PaymentMethodOther    = "other"
)

// Order channels
const (
	ChannelDineIn   = "dine_in"
	ChannelTakeaway = "takeaway"
	ChannelDelivery = "delivery"
)

// Item status
const (
	ItemStatusPending = "pending"
	ItemStatusCooking = "cooking"
	ItemStatusReady   = "ready"
	ItemStatusServed  = "served"
)

// orderTransitions is the full lifecycle graph. delivered and cancelled are
// terminal: no outgoing edges, so a closed order can never be resurrected.
var orderTransitions = map[string][]string{
	OrderStatusOpen:      {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusDelivered, OrderStatusOnRoute, OrderStatusCancelled},
	OrderStatusOnRoute:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

var itemTransitions = map[string][]string{
	ItemStatusPending: {ItemStatusCooking},
	ItemStatusCooking: {ItemStatusReady},
	ItemStatusReady:   {ItemStatusServed},
	ItemStatusServed:  {},
}

// IsValidTransition checks the order lifecycle graph. Pure function, no I/O.
func IsValidTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AssertTransition fails with an error naming both states so the client can
// decide whether a retry makes sense.
func AssertTransition(from, to string) error {
	if !IsValidTransition(from, to) {
		return &utils.InvalidStateTransitionError{From: from, To: to}
	}
	return nil
}

func IsTerminalOrderStatus(status string) bool {
	next, known := orderTransitions[status]
	return known && len(next) == 0
}

// IsValidItemTransition checks the kitchen-side item graph.
func IsValidItemTransition(from, to string) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func AssertItemTransition(from, to string) error {
	if !IsValidItemTransition(from, to) {
		return &utils.InvalidStateTransitionError{From: from, To: to}
	}
	return nil
}
