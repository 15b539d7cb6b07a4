package domain

import "testing"

func TestOrderHoldConsume(t *testing.T) {
	h := NewOrderHold("order-1", 1, HoldTypeCash, dec(t, "1000"))

	if err := h.Consume(dec(t, "400")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.RemainingAmount().Equal(dec(t, "600")) {
		t.Errorf("got remaining %s, want 600", h.RemainingAmount())
	}

	if err := h.Consume(dec(t, "600.0001")); err != ErrInvalidAmount {
		t.Errorf("consume over remaining: got %v, want ErrInvalidAmount", err)
	}
	if err := h.Consume(dec(t, "0")); err != ErrInvalidAmount {
		t.Errorf("consume zero: got %v, want ErrInvalidAmount", err)
	}
}

func TestOrderHoldRelease(t *testing.T) {
	h := NewOrderHold("order-1", 1, HoldTypeQuantity, dec(t, "100"))

	if err := h.Release(dec(t, "40")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.RemainingAmount().Equal(dec(t, "60")) {
		t.Errorf("got remaining %s, want 60", h.RemainingAmount())
	}
	if err := h.Release(dec(t, "61")); err != ErrInvalidAmount {
		t.Errorf("release over remaining: got %v, want ErrInvalidAmount", err)
	}
}

func TestOrderHoldReleaseRemaining(t *testing.T) {
	h := NewOrderHold("order-1", 1, HoldTypeCash, dec(t, "1000"))
	if err := h.Consume(dec(t, "300")); err != nil {
		t.Fatalf("consume: %v", err)
	}

	released := h.ReleaseRemaining()
	if !released.Equal(dec(t, "700")) {
		t.Errorf("got released %s, want 700", released)
	}
	if !h.RemainingAmount().IsZero() {
		t.Errorf("got remaining %s, want 0", h.RemainingAmount())
	}
	// Full lifecycle: consumed + released == total.
	if !h.ConsumedAmount.Add(h.ReleasedAmount).Equal(h.TotalAmount) {
		t.Errorf("consumed %s + released %s != total %s", h.ConsumedAmount, h.ReleasedAmount, h.TotalAmount)
	}

	// Releasing again is a no-op returning zero.
	if again := h.ReleaseRemaining(); !again.IsZero() {
		t.Errorf("second release returned %s, want 0", again)
	}
}

func TestOrderHoldIncreaseTotal(t *testing.T) {
	h := NewOrderHold("order-1", 1, HoldTypeCash, dec(t, "1000"))

	if err := h.IncreaseTotal(dec(t, "250")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.TotalAmount.Equal(dec(t, "1250")) {
		t.Errorf("got total %s, want 1250", h.TotalAmount)
	}
	if err := h.IncreaseTotal(dec(t, "-1")); err != ErrInvalidAmount {
		t.Errorf("got %v, want ErrInvalidAmount", err)
	}
}
