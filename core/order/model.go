// Package order implements the order engine and the settlement ledger. An
// order and its sale record are created together, mutated together, and only
// ever reach their terminal states in lock-step.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	Pending   OrderStatus = "pending"
	Completed OrderStatus = "completed"
	Canceled  OrderStatus = "canceled"
)

func ParseOrderStatus(v string) (OrderStatus, error) {
	switch v {
	case string(Pending):
		return Pending, nil
	case string(Completed):
		return Completed, nil
	case string(Canceled):
		return Canceled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

type SaleStatus string

const (
	SalePending  SaleStatus = "pending"
	SaleHalfPaid SaleStatus = "half-paid"
	SalePaid     SaleStatus = "paid"
	SaleRefunded SaleStatus = "refunded"
)

type PaymentMethod string

const (
	MethodNone   PaymentMethod = "none"
	MethodCash   PaymentMethod = "cash"
	MethodCard   PaymentMethod = "card"
	MethodMobile PaymentMethod = "mobile"
)

func ParsePaymentMethod(v string) (PaymentMethod, error) {
	switch v {
	case string(MethodNone):
		return MethodNone, nil
	case string(MethodCash):
		return MethodCash, nil
	case string(MethodCard):
		return MethodCard, nil
	case string(MethodMobile):
		return MethodMobile, nil
	default:
		return "", errors.New("invalid payment method")
	}
}

// OrderItem is an entity. Price is snapshotted when the order is created and
// never follows later catalog price changes.
type OrderItem struct {
	ID        uint64          `json:"id"`
	OrderID   uint64          `json:"orderId"`
	ProductID uint64          `json:"productId"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is an entity. Owns its line items and is created with a 1:1 sale.
type Order struct {
	ID            uint64          `json:"id"`
	Customer      string          `json:"customer"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Items         []OrderItem     `json:"items"`
	Discount      decimal.Decimal `json:"discount"`
	TaxPercent    decimal.Decimal `json:"taxPercent"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        OrderStatus     `json:"status"`
	Created       time.Time       `json:"created"`
}

// Sale is an entity. The settlement record tracking how much of an order's
// total has been paid, including partial and excess payment.
type Sale struct {
	ID              uint64          `json:"id"`
	OrderID         uint64          `json:"orderId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	OverPaid        decimal.Decimal `json:"overPaid"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Notes           string          `json:"notes,omitempty"`
	Status          SaleStatus      `json:"status"`
	Created         time.Time       `json:"created"`
	Updated         time.Time       `json:"updated"`
}

// ApplyPayment adds amount to the sale and recomputes the derived fields so
// that remaining + amountPaid - overPaid == totalAmount always holds.
func (s *Sale) ApplyPayment(amount decimal.Decimal) {
	s.AmountPaid = s.AmountPaid.Add(amount)
	s.recompute()
}

// Rebase replaces the sale total, preserving what has already been paid, and
// recomputes remaining, overpaid and status.
func (s *Sale) Rebase(total decimal.Decimal) {
	s.TotalAmount = total
	s.recompute()
}

func (s *Sale) recompute() {
	s.RemainingAmount = s.TotalAmount.Sub(s.AmountPaid)
	s.OverPaid = decimal.Zero
	if s.RemainingAmount.IsNegative() {
		s.OverPaid = s.RemainingAmount.Neg()
		s.RemainingAmount = decimal.Zero
	}
	switch {
	case s.AmountPaid.IsZero():
		s.Status = SalePending
	case s.RemainingAmount.IsZero():
		s.Status = SalePaid
	default:
		s.Status = SaleHalfPaid
	}
}

type ItemRequest struct {
	ProductID uint64          `json:"productId"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderRequest struct {
	Customer string          `json:"customer"`
	Items    []ItemRequest   `json:"items"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
}

type PaymentRequest struct {
	OrderID uint64          `json:"orderId"`
	Method  PaymentMethod   `json:"paymentMethod"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   string          `json:"notes"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotal derives the order total from its items: the discount comes off
// the subtotal first, then tax is applied as a percentage of the discounted
// amount. Identical on create and update.
func ComputeTotal(items []OrderItem, discount, taxPercent decimal.Decimal) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	discounted := subtotal.Sub(discount)
	return discounted.Mul(oneHundred.Add(taxPercent)).Div(oneHundred).Round(2)
}

// Subtotal is the undiscounted, untaxed sum of the line items.
func Subtotal(items []OrderItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return subtotal
}

func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}
