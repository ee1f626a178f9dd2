package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestQuantity_MulFactor(t *testing.T) {
	tests := []struct {
		name   string
		qty    Quantity
		factor Quantity
		want   Quantity
	}{
		{"whole units", NewQuantityFromInt(3), NewQuantityFromInt(12), NewQuantityFromInt(36)},
		{"fractional quantity", NewQuantityFromFloat64(2.5), NewQuantityFromInt(12), NewQuantityFromInt(30)},
		{"identity factor", NewQuantityFromInt(7), NewQuantityFromInt(1), NewQuantityFromInt(7)},
		{"zero quantity", 0, NewQuantityFromInt(12), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.qty.MulFactor(tt.factor)
			if err != nil {
				t.Fatalf("MulFactor() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MulFactor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQuantity_MulFactorOverflow(t *testing.T) {
	huge := Quantity(math.MaxInt64 / 2)

	if _, err := huge.MulFactor(huge); err == nil {
		t.Error("MulFactor() expected overflow error, got nil")
	}
	if _, err := huge.MulFactor(NewQuantityFromInt(-1000)); err == nil {
		t.Error("MulFactor() expected overflow error for negative factor, got nil")
	}

	// A large quantity whose scaled product still fits stays exact.
	large := Quantity(math.MaxInt64 / QuantityScale)
	got, err := large.MulFactor(NewQuantityFromInt(1))
	if err != nil {
		t.Fatalf("MulFactor() error = %v", err)
	}
	if got != large {
		t.Errorf("MulFactor() = %s, want %s", got, large)
	}
}

func TestQuantity_WholeUnitsBy(t *testing.T) {
	tests := []struct {
		name   string
		qty    Quantity
		factor Quantity
		want   Quantity
	}{
		{"exact multiple", NewQuantityFromInt(36), NewQuantityFromInt(12), NewQuantityFromInt(3)},
		{"partial unit floors", NewQuantityFromInt(30), NewQuantityFromInt(12), NewQuantityFromInt(2)},
		{"below one unit is zero", NewQuantityFromInt(11), NewQuantityFromInt(12), 0},
		{"zero stock", 0, NewQuantityFromInt(12), 0},
		{"invalid factor", NewQuantityFromInt(10), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.qty.WholeUnitsBy(tt.factor)
			if got != tt.want {
				t.Errorf("WholeUnitsBy() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQuantity_String(t *testing.T) {
	tests := []struct {
		qty  Quantity
		want string
	}{
		{NewQuantityFromInt(12), "12.0000"},
		{NewQuantityFromFloat64(2.5), "2.5000"},
		{NewQuantityFromFloat64(-1.25), "-1.2500"},
		{0, "0.0000"},
	}

	for _, tt := range tests {
		if got := tt.qty.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Quantity
	}{
		{"number", "12.5", NewQuantityFromFloat64(12.5)},
		{"string", `"3.25"`, NewQuantityFromFloat64(3.25)},
		{"negative", "-4", NewQuantityFromInt(-4)},
		{"extra digits truncated", "1.00009", NewQuantityFromInt(1)},
		{"null", "null", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			if err := json.Unmarshal([]byte(tt.in), &q); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.in, err)
			}
			if q != tt.want {
				t.Errorf("Unmarshal(%s) = %s, want %s", tt.in, q, tt.want)
			}
		})
	}
}

func TestQuantity_UnmarshalRejectsGarbage(t *testing.T) {
	var q Quantity
	if err := json.Unmarshal([]byte(`"abc"`), &q); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestQuantity_Decimal(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	price := NewMoney(1000)

	total := price.Mul(q.Decimal())
	if !total.Equal(NewMoney(2500)) {
		t.Errorf("price * quantity = %s, want 2500", total)
	}
}
