package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func newTestOrder(t *testing.T, side OrderSide, orderType OrderType, tif TimeInForce, limitPrice *decimal.Decimal, qty string) *Order {
	t.Helper()
	o := NewPendingOrder(1, "idem-1", "AAPL", side, orderType, tif, limitPrice, dec(t, qty))
	o.ID = "order-1"
	return o
}

func TestNewPendingOrder(t *testing.T) {
	o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")

	if o.Status != OrderStatusPendingNew {
		t.Errorf("got status %q, want %q", o.Status, OrderStatusPendingNew)
	}
	if !o.FilledQuantity.IsZero() {
		t.Errorf("got filled %s, want 0", o.FilledQuantity)
	}
	if !o.RemainingQty.Equal(dec(t, "100")) {
		t.Errorf("got remaining %s, want 100", o.RemainingQty)
	}
}

func TestMarkAccepted(t *testing.T) {
	o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")

	if err := o.MarkAccepted(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != OrderStatusNew {
		t.Errorf("got status %q, want %q", o.Status, OrderStatusNew)
	}

	// Accepting twice is a state violation.
	if err := o.MarkAccepted(); err != ErrInvalidState {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
}

func TestReject(t *testing.T) {
	t.Run("from pending with reason", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
		if err := o.Reject("bad account"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status != OrderStatusRejected {
			t.Errorf("got status %q, want %q", o.Status, OrderStatusRejected)
		}
		if o.RejectReason != "bad account" {
			t.Errorf("got reason %q, want %q", o.RejectReason, "bad account")
		}
	})

	t.Run("empty reason gets default", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
		if err := o.Reject(""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.RejectReason != defaultRejectReason {
			t.Errorf("got reason %q, want default", o.RejectReason)
		}
	})

	t.Run("not allowed from filled", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
		mustAccept(t, o)
		mustFill(t, o, "100")
		if err := o.Reject("late"); err != ErrInvalidState {
			t.Errorf("got %v, want ErrInvalidState", err)
		}
	})
}

func TestApplyFill(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
		mustAccept(t, o)

		if err := o.ApplyFill(dec(t, "30")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status != OrderStatusPartiallyFilled {
			t.Errorf("got status %q, want %q", o.Status, OrderStatusPartiallyFilled)
		}
		if !o.FilledQuantity.Equal(dec(t, "30")) || !o.RemainingQty.Equal(dec(t, "70")) {
			t.Errorf("got filled/remaining %s/%s, want 30/70", o.FilledQuantity, o.RemainingQty)
		}

		if err := o.ApplyFill(dec(t, "70")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status != OrderStatusFilled {
			t.Errorf("got status %q, want %q", o.Status, OrderStatusFilled)
		}
		if !o.FilledQuantity.Add(o.RemainingQty).Equal(o.Quantity) {
			t.Errorf("filled+remaining != quantity: %s + %s != %s", o.FilledQuantity, o.RemainingQty, o.Quantity)
		}
	})

	t.Run("guards", func(t *testing.T) {
		tests := []struct {
			name    string
			prep    func(t *testing.T, o *Order)
			qty     string
			wantErr error
		}{
			{"zero quantity", func(t *testing.T, o *Order) { mustAccept(t, o) }, "0", ErrInvalidAmount},
			{"negative quantity", func(t *testing.T, o *Order) { mustAccept(t, o) }, "-5", ErrInvalidAmount},
			{"exceeds remaining", func(t *testing.T, o *Order) { mustAccept(t, o) }, "101", ErrInvalidAmount},
			{"not open", func(t *testing.T, o *Order) {}, "10", ErrInvalidState},
			{"terminal", func(t *testing.T, o *Order) {
				mustAccept(t, o)
				mustFill(t, o, "100")
			}, "10", ErrInvalidState},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
				tt.prep(t, o)
				if err := o.ApplyFill(dec(t, tt.qty)); err != tt.wantErr {
					t.Errorf("got %v, want %v", err, tt.wantErr)
				}
			})
		}
	})
}

func TestCancelTransitions(t *testing.T) {
	o := newTestOrder(t, OrderSideSell, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
	mustAccept(t, o)

	if err := o.MarkCancelPending(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != OrderStatusPendingCancel {
		t.Errorf("got status %q, want %q", o.Status, OrderStatusPendingCancel)
	}
	if err := o.MarkCanceled(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != OrderStatusCanceled {
		t.Errorf("got status %q, want %q", o.Status, OrderStatusCanceled)
	}

	// Terminal orders cannot re-enter cancellation.
	if err := o.MarkCancelPending(); err != ErrInvalidState {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
	if err := o.MarkCanceled(); err != ErrInvalidState {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
}

func TestMarkExpired(t *testing.T) {
	o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
	mustAccept(t, o)
	mustFill(t, o, "40")

	if err := o.MarkExpired(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != OrderStatusExpired {
		t.Errorf("got status %q, want %q", o.Status, OrderStatusExpired)
	}
	if err := o.MarkExpired(); err != ErrInvalidState {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
}

func TestAmendLimitOrder(t *testing.T) {
	t.Run("shrinks remaining and rebuilds quantity", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
		mustAccept(t, o)
		mustFill(t, o, "30")

		if err := o.AmendLimitOrder(dec(t, "145"), dec(t, "50")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !o.LimitPrice.Equal(dec(t, "145")) {
			t.Errorf("got limit %s, want 145", o.LimitPrice)
		}
		if !o.RemainingQty.Equal(dec(t, "50")) {
			t.Errorf("got remaining %s, want 50", o.RemainingQty)
		}
		if !o.Quantity.Equal(dec(t, "80")) {
			t.Errorf("got quantity %s, want 80 (filled 30 + remaining 50)", o.Quantity)
		}
		if !o.FilledQuantity.Equal(dec(t, "30")) {
			t.Errorf("amend must not touch filled quantity, got %s", o.FilledQuantity)
		}
	})

	t.Run("cannot grow remaining", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
		mustAccept(t, o)
		if err := o.AmendLimitOrder(dec(t, "150"), dec(t, "101")); err != ErrInvalidAmendQuantity {
			t.Errorf("got %v, want ErrInvalidAmendQuantity", err)
		}
	})

	t.Run("market orders not amendable", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeMarket, TimeInForceIOC, nil, "100")
		mustAccept(t, o)
		if err := o.AmendLimitOrder(dec(t, "150"), dec(t, "50")); err != ErrAmendNotAllowed {
			t.Errorf("got %v, want ErrAmendNotAllowed", err)
		}
	})

	t.Run("closed orders not amendable", func(t *testing.T) {
		o := newTestOrder(t, OrderSideBuy, OrderTypeLimit, TimeInForceDay, decPtr(t, "150"), "100")
		mustAccept(t, o)
		mustFill(t, o, "100")
		if err := o.AmendLimitOrder(dec(t, "150"), dec(t, "50")); err != ErrInvalidState {
			t.Errorf("got %v, want ErrInvalidState", err)
		}
	})
}

func mustAccept(t *testing.T, o *Order) {
	t.Helper()
	if err := o.MarkAccepted(); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

func mustFill(t *testing.T, o *Order, qty string) {
	t.Helper()
	if err := o.ApplyFill(dec(t, qty)); err != nil {
		t.Fatalf("fill: %v", err)
	}
}
