package decimal

import (
	"testing"

	stddec "github.com/shopspring/decimal"
)

func TestConstructors(t *testing.T) {
	m := NewMoney(12.345)
	if !m.Decimal.Equal(stddec.NewFromFloat(12.345)) {
		t.Fatalf("NewMoney mismatch: got %s", m.Decimal)
	}

	d := stddec.NewFromFloat(10.125)
	m2 := NewMoneyFromDecimal(d)
	if !m2.Decimal.Equal(d) {
		t.Fatalf("NewMoneyFromDecimal mismatch: got %s want %s", m2.Decimal, d)
	}

	m3, err := NewMoneyFromString("123.45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m3.StringFixed(2) != "123.45" {
		t.Fatalf("NewMoneyFromString mismatch: got %s", m3.StringFixed(2))
	}

	if _, err := NewMoneyFromString("not-a-number"); err == nil {
		t.Fatal("expected error for invalid string")
	}
}

func TestRounding(t *testing.T) {
	cases := []struct{ in, out string }{
		{"2.344", "2.34"},
		{"2.345", "2.35"},
		{"2.355", "2.36"},
		{"1234.567", "1234.57"},
	}
	for _, c := range cases {
		m, _ := NewMoneyFromString(c.in)
		got := m.Round().StringFixed(2)
		if got != c.out {
			t.Errorf("round(%s) got %s want %s", c.in, got, c.out)
		}
	}
}

func TestPeriodConversions(t *testing.T) {
	m := NewMoney(100)
	if got := m.Annual().StringFixed(2); got != "1200.00" {
		t.Errorf("Annual got %s", got)
	}
	if got := m.Annual().Monthly().Round().StringFixed(2); got != "100.00" {
		t.Errorf("Monthly after Annual got %s", got)
	}
}

func TestArithmetic(t *testing.T) {
	a := NewMoney(100.50)
	b := NewMoney(0.75)

	if got := a.Add(b).StringFixed(2); got != "101.25" {
		t.Errorf("Add got %s", got)
	}
	if got := a.Sub(b).StringFixed(2); got != "99.75" {
		t.Errorf("Sub got %s", got)
	}
	if !a.Sub(NewMoney(200)).IsNegative() {
		t.Error("Expected a negative result")
	}
	if b.IsNegative() {
		t.Error("Expected a positive amount")
	}
}
