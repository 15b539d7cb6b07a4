package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes limit orders from market orders.
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// OrderSide indicates whether an order buys or sells.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// TimeInForce governs how long an order may remain open.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "DAY" // open until session close
	TimeInForceIOC TimeInForce = "IOC" // fill immediately, cancel remainder
	TimeInForceFOK TimeInForce = "FOK" // fill entirely immediately or cancel in full
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPendingNew      OrderStatus = "PENDING_NEW"
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusPendingCancel   OrderStatus = "PENDING_CANCEL"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

// IsOpen reports whether an order in this status can still be filled.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusNew || s == OrderStatusPartiallyFilled
}

// IsCancelable reports whether an order in this status accepts a cancel
// request.
func (s OrderStatus) IsCancelable() bool {
	return s.IsOpen()
}

const defaultRejectReason = "order rejected"

// Order is the aggregate root for order lifecycle and state transitions.
// Identity and terms are immutable after creation; filled/remaining
// quantities and status advance only through the transition methods.
type Order struct {
	ID             string
	Seq            int64 // store-assigned, creation-order tie-break
	AccountID      int64
	IdempotencyKey string
	Symbol         string
	Side           OrderSide
	OrderType      OrderType
	TimeInForce    TimeInForce
	LimitPrice     *decimal.Decimal // present iff LIMIT
	Quantity       decimal.Decimal
	FilledQuantity decimal.Decimal
	RemainingQty   decimal.Decimal
	Status         OrderStatus
	RejectReason   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
}

// NewPendingOrder creates an order in PENDING_NEW with nothing filled.
func NewPendingOrder(
	accountID int64,
	idempotencyKey string,
	symbol string,
	side OrderSide,
	orderType OrderType,
	tif TimeInForce,
	limitPrice *decimal.Decimal,
	quantity decimal.Decimal,
) *Order {
	return &Order{
		AccountID:      accountID,
		IdempotencyKey: idempotencyKey,
		Symbol:         symbol,
		Side:           side,
		OrderType:      orderType,
		TimeInForce:    tif,
		LimitPrice:     limitPrice,
		Quantity:       quantity,
		FilledQuantity: decimal.Zero,
		RemainingQty:   quantity,
		Status:         OrderStatusPendingNew,
	}
}

// IsOpen reports whether the order can still be filled.
func (o *Order) IsOpen() bool {
	return o.Status.IsOpen()
}

// MarkAccepted transitions PENDING_NEW → NEW and clears any reject reason.
func (o *Order) MarkAccepted() error {
	if o.Status != OrderStatusPendingNew {
		return ErrInvalidState
	}
	o.Status = OrderStatusNew
	o.RejectReason = ""
	return nil
}

// Reject transitions PENDING_NEW or NEW → REJECTED. An empty reason is
// replaced by a generic message.
func (o *Order) Reject(reason string) error {
	if o.Status != OrderStatusPendingNew && o.Status != OrderStatusNew {
		return ErrInvalidState
	}
	if reason == "" {
		reason = defaultRejectReason
	}
	o.Status = OrderStatusRejected
	o.RejectReason = reason
	return nil
}

// ApplyFill moves qty from remaining to filled. The order becomes FILLED
// when remaining reaches exactly zero, PARTIALLY_FILLED otherwise.
func (o *Order) ApplyFill(qty decimal.Decimal) error {
	if !o.IsOpen() {
		return ErrInvalidState
	}
	if qty.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if qty.GreaterThan(o.RemainingQty) {
		return ErrInvalidAmount
	}

	o.FilledQuantity = o.FilledQuantity.Add(qty)
	o.RemainingQty = o.RemainingQty.Sub(qty)

	if o.RemainingQty.IsZero() {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartiallyFilled
	}
	return nil
}

// MarkCancelPending transitions a cancelable order to PENDING_CANCEL while
// the venue-side cancel round-trip is in flight.
func (o *Order) MarkCancelPending() error {
	if !o.Status.IsCancelable() {
		return ErrInvalidState
	}
	o.Status = OrderStatusPendingCancel
	return nil
}

// MarkCanceled finalizes a cancellation.
func (o *Order) MarkCanceled() error {
	switch o.Status {
	case OrderStatusPendingCancel, OrderStatusNew, OrderStatusPartiallyFilled:
		o.Status = OrderStatusCanceled
		return nil
	default:
		return ErrInvalidState
	}
}

// MarkExpired transitions an open order to EXPIRED. Driven by the
// session-close sweep.
func (o *Order) MarkExpired() error {
	if !o.IsOpen() {
		return ErrInvalidState
	}
	o.Status = OrderStatusExpired
	return nil
}

// AmendLimitOrder replaces the limit price and shrinks the open remainder.
// Amendment never touches the filled quantity: the order total is rebuilt
// as filled + newRemainingQty.
func (o *Order) AmendLimitOrder(newPrice decimal.Decimal, newRemainingQty decimal.Decimal) error {
	if !o.IsOpen() {
		return ErrInvalidState
	}
	if o.OrderType != OrderTypeLimit {
		return ErrAmendNotAllowed
	}
	if newRemainingQty.GreaterThan(o.RemainingQty) {
		return ErrInvalidAmendQuantity
	}

	price := newPrice
	o.LimitPrice = &price
	o.RemainingQty = newRemainingQty
	o.Quantity = o.FilledQuantity.Add(newRemainingQty)
	return nil
}

// Clone returns a deep copy. Stores hand out clones so callers can stage
// mutations without touching persisted state.
func (o *Order) Clone() *Order {
	c := *o
	if o.LimitPrice != nil {
		p := *o.LimitPrice
		c.LimitPrice = &p
	}
	return &c
}
