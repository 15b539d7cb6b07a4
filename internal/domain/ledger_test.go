package domain

import "testing"

func TestCashBalanceHold(t *testing.T) {
	c := NewCashBalance(1, dec(t, "1000"))

	if err := c.Hold(dec(t, "400")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.AvailableCash.Equal(dec(t, "600")) || !c.HeldCash.Equal(dec(t, "400")) {
		t.Errorf("got available/held %s/%s, want 600/400", c.AvailableCash, c.HeldCash)
	}

	if err := c.Hold(dec(t, "600.0001")); err != ErrInsufficientBalance {
		t.Errorf("hold over available: got %v, want ErrInsufficientBalance", err)
	}
	if err := c.Hold(dec(t, "0")); err != ErrInvalidAmount {
		t.Errorf("hold zero: got %v, want ErrInvalidAmount", err)
	}
}

func TestCashBalanceConsumeHeld(t *testing.T) {
	c := NewCashBalance(1, dec(t, "1000"))
	if err := c.Hold(dec(t, "400")); err != nil {
		t.Fatalf("hold: %v", err)
	}

	if err := c.ConsumeHeld(dec(t, "150")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Consuming held cash spends it; available is untouched.
	if !c.AvailableCash.Equal(dec(t, "600")) || !c.HeldCash.Equal(dec(t, "250")) {
		t.Errorf("got available/held %s/%s, want 600/250", c.AvailableCash, c.HeldCash)
	}
	if err := c.ConsumeHeld(dec(t, "250.0001")); err != ErrInsufficientBalance {
		t.Errorf("consume over held: got %v, want ErrInsufficientBalance", err)
	}
}

func TestCashBalanceReleaseHeld(t *testing.T) {
	c := NewCashBalance(1, dec(t, "1000"))
	if err := c.Hold(dec(t, "400")); err != nil {
		t.Fatalf("hold: %v", err)
	}

	if err := c.ReleaseHeld(dec(t, "400")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.AvailableCash.Equal(dec(t, "1000")) || !c.HeldCash.IsZero() {
		t.Errorf("got available/held %s/%s, want 1000/0", c.AvailableCash, c.HeldCash)
	}
	if err := c.ReleaseHeld(dec(t, "1")); err != ErrInsufficientBalance {
		t.Errorf("release with nothing held: got %v, want ErrInsufficientBalance", err)
	}
}

func TestCashBalanceAddAvailable(t *testing.T) {
	c := NewCashBalance(1, dec(t, "100"))

	if err := c.AddAvailable(dec(t, "49.9985")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.AvailableCash.Equal(dec(t, "149.9985")) {
		t.Errorf("got available %s, want 149.9985", c.AvailableCash)
	}
	if err := c.AddAvailable(dec(t, "-1")); err != ErrInvalidAmount {
		t.Errorf("got %v, want ErrInvalidAmount", err)
	}
}

func TestPositionHoldAndRelease(t *testing.T) {
	p := NewPosition(1, "AAPL", dec(t, "100"), dec(t, "120"))

	if err := p.Hold(dec(t, "60")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.AvailableQty.Equal(dec(t, "40")) || !p.HeldQty.Equal(dec(t, "60")) {
		t.Errorf("got available/held %s/%s, want 40/60", p.AvailableQty, p.HeldQty)
	}
	if err := p.Hold(dec(t, "41")); err != ErrInsufficientHoldings {
		t.Errorf("hold over available: got %v, want ErrInsufficientHoldings", err)
	}

	if err := p.ConsumeHeld(dec(t, "25")); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := p.ReleaseHeld(dec(t, "35")); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !p.AvailableQty.Equal(dec(t, "75")) || !p.HeldQty.IsZero() {
		t.Errorf("got available/held %s/%s, want 75/0", p.AvailableQty, p.HeldQty)
	}
}

func TestPositionAddBoughtQuantity(t *testing.T) {
	tests := []struct {
		name     string
		startQty string
		startAvg string
		qty      string
		price    string
		wantQty  string
		wantAvg  string
	}{
		{"first buy sets basis", "0", "0", "10", "150", "10", "150"},
		{"weighted average", "10", "100", "10", "200", "20", "150"},
		{"rounds half-up to 4 decimals", "3", "100", "4", "101", "7", "100.5714"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPosition(1, "AAPL", dec(t, tt.startQty), dec(t, tt.startAvg))
			if err := p.AddBoughtQuantity(dec(t, tt.qty), dec(t, tt.price)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !p.AvailableQty.Equal(dec(t, tt.wantQty)) {
				t.Errorf("got qty %s, want %s", p.AvailableQty, tt.wantQty)
			}
			if !p.AveragePrice.Equal(dec(t, tt.wantAvg)) {
				t.Errorf("got avg %s, want %s", p.AveragePrice, tt.wantAvg)
			}
		})
	}

	t.Run("rejects non-positive input", func(t *testing.T) {
		p := NewPosition(1, "AAPL", dec(t, "10"), dec(t, "100"))
		if err := p.AddBoughtQuantity(dec(t, "0"), dec(t, "100")); err != ErrInvalidAmount {
			t.Errorf("zero qty: got %v, want ErrInvalidAmount", err)
		}
		if err := p.AddBoughtQuantity(dec(t, "10"), dec(t, "0")); err != ErrInvalidAmount {
			t.Errorf("zero price: got %v, want ErrInvalidAmount", err)
		}
	})
}

func TestToMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.00005", "1.0001"},  // half-up
		{"1.00004", "1"},       // below the midpoint rounds down
		{"0.15", "0.15"},       // already in scale
		{"1234.56789", "1234.5679"},
	}
	for _, tt := range tests {
		if got := ToMoney(dec(t, tt.in)); !got.Equal(dec(t, tt.want)) {
			t.Errorf("ToMoney(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsWholeShare(t *testing.T) {
	if !IsWholeShare(dec(t, "100")) {
		t.Error("100 should be whole")
	}
	if !IsWholeShare(dec(t, "100.0000")) {
		t.Error("100.0000 should be whole")
	}
	if IsWholeShare(dec(t, "100.5")) {
		t.Error("100.5 should not be whole")
	}
}
