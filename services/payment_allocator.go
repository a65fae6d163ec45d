package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// PaymentEpsilon absorbs rounding: an order is fully paid once payments are
// within one cent of the total.
var PaymentEpsilon = decimal.NewFromFloat(0.01)

// methodAliases maps free-form/legacy method codes coming from old terminals
// onto the canonical set. Unknown codes fall back to cash with a warning,
// never a failed order.
var methodAliases = map[string]string{
	"cash":           models.PaymentMethodCash,
	"efectivo":       models.PaymentMethodCash,
	"contado":        models.PaymentMethodCash,
	"card":           models.PaymentMethodCard,
	"tarjeta":        models.PaymentMethodCard,
	"credit_card":    models.PaymentMethodCard,
	"debit_card":     models.PaymentMethodCard,
	"debit":          models.PaymentMethodCard,
	"pos":            models.PaymentMethodCard,
	"transfer":       models.PaymentMethodTransfer,
	"transferencia":  models.PaymentMethodTransfer,
	"bank_transfer":  models.PaymentMethodTransfer,
	"qr":             models.PaymentMethodQR,
	"qris":           models.PaymentMethodQR,
	"yape":           models.PaymentMethodQR,
	"plin":           models.PaymentMethodQR,
	"mercado_pago":   models.PaymentMethodQR,
	"other":          models.PaymentMethodOther,
	"otro":           models.PaymentMethodOther,
	"gift_card":      models.PaymentMethodOther,
	"house_account":  models.PaymentMethodOther,
}

// SplitPayment is one leg of an explicit split.
type SplitPayment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type Allocation struct {
	Payments      []models.Payment
	PaymentStatus string
	FullyPaid     bool
}

type PaymentAllocator struct{}

func NewPaymentAllocator() *PaymentAllocator {
	return &PaymentAllocator{}
}

// CanonicalMethod resolves an incoming method code. Unrecognized codes
// default to cash rather than failing the order.
func (a *PaymentAllocator) CanonicalMethod(code string) string {
	if method, ok := methodAliases[code]; ok {
		return method
	}
	utils.InfoLogger.Warnf("unrecognized payment method %q, defaulting to cash", code)
	return models.PaymentMethodCash
}

// Allocate maps payment instructions to payment rows and derives the payment
// status. Either singleMethod covers the full total, or splits list explicit
// (method, amount) legs; both empty means an unpaid (pending) order.
func (a *PaymentAllocator) Allocate(total decimal.Decimal, shiftID uint, singleMethod string, splits []SplitPayment) (*Allocation, error) {
	now := time.Now()
	alloc := &Allocation{}

	switch {
	case len(splits) > 0:
		for _, split := range splits {
			if split.Amount.LessThanOrEqual(decimal.Zero) {
				return nil, utils.NewValidationError("split payment amount must be positive")
			}
			alloc.Payments = append(alloc.Payments, models.Payment{
				ShiftID:   shiftID,
				Method:    a.CanonicalMethod(split.Method),
				Amount:    split.Amount,
				CreatedAt: now,
			})
		}
	case singleMethod != "":
		alloc.Payments = append(alloc.Payments, models.Payment{
			ShiftID:   shiftID,
			Method:    a.CanonicalMethod(singleMethod),
			Amount:    total,
			CreatedAt: now,
		})
	}

	paid := decimal.Zero
	for _, p := range alloc.Payments {
		paid = paid.Add(p.Amount)
	}

	alloc.PaymentStatus = DerivePaymentStatus(paid, total)
	alloc.FullyPaid = alloc.PaymentStatus == models.PaymentStatusPaid
	return alloc, nil
}

// DerivePaymentStatus: paid when payments reach the total within epsilon,
// partial when something but not enough, pending when nothing.
func DerivePaymentStatus(paid, total decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total.Sub(PaymentEpsilon)) && paid.GreaterThan(decimal.Zero):
		return models.PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return models.PaymentStatusPartial
	default:
		return models.PaymentStatusPending
	}
}
