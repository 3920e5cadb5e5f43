package model

import (
	"math"
	"testing"
)

func TestCentsFromDollars(t *testing.T) {
	tests := []struct {
		dollars float64
		want    Cents
	}{
		{0, 0},
		{0.01, 1},
		{0.70, 70},
		{1.47, 147},
		{14.70, 1470},
		{-0.50, -50},
	}

	for _, tt := range tests {
		if got := CentsFromDollars(tt.dollars); got != tt.want {
			t.Errorf("CentsFromDollars(%v) = %d, want %d", tt.dollars, got, tt.want)
		}
	}
}

func TestCents_String(t *testing.T) {
	if got := Cents(147).String(); got != "$1.47" {
		t.Errorf("String() = %q, want %q", got, "$1.47")
	}
	if got := Cents(-5).String(); got != "-$0.05" {
		t.Errorf("String() = %q, want %q", got, "-$0.05")
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in   string
		want Side
	}{
		{"buy", SideBuy},
		{"BUY", SideBuy},
		{"sell", SideSell},
		{"hold", SideInvalid},
		{"", SideInvalid},
	}

	for _, tt := range tests {
		if got := ParseSide(tt.in); got != tt.want {
			t.Errorf("ParseSide(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarketSide_Opposite(t *testing.T) {
	if got := MarketSideYes.Opposite(); got != MarketSideNo {
		t.Errorf("yes.Opposite() = %q, want no", got)
	}
	if got := MarketSideNo.Opposite(); got != MarketSideYes {
		t.Errorf("no.Opposite() = %q, want yes", got)
	}
	if got := MarketSideInvalid.Opposite(); got != MarketSideInvalid {
		t.Errorf("invalid.Opposite() = %q, want invalid", got)
	}
}

func TestTemperature_Conversions(t *testing.T) {
	temp := TempFromFahrenheit(75)
	if got := temp.Fahrenheit(); math.Abs(got-75) > 1e-9 {
		t.Errorf("Fahrenheit() = %v, want 75", got)
	}
	if got := TempFromFahrenheit(32).Celsius(); math.Abs(got) > 1e-9 {
		t.Errorf("32F = %vC, want 0", got)
	}

	// ±Inf bounds pass through both conversions untouched.
	if got := TempFromFahrenheit(math.Inf(1)).Fahrenheit(); !math.IsInf(got, 1) {
		t.Errorf("+Inf round trip = %v", got)
	}
}

func TestTempMarket_Contains(t *testing.T) {
	m := TempMarket{
		Ticker:      "KXHIGHNY-25AUG30-B72.5",
		FloorStrike: TempFromFahrenheit(72),
		CapStrike:   TempFromFahrenheit(73),
	}

	tests := []struct {
		tempF float64
		want  bool
	}{
		{72, true},
		{72.5, true},
		{73, true},
		{71.9, false},
		{73.1, false},
	}

	for _, tt := range tests {
		if got := m.Contains(TempFromFahrenheit(tt.tempF)); got != tt.want {
			t.Errorf("Contains(%vF) = %v, want %v", tt.tempF, got, tt.want)
		}
	}
}

func TestTempMarket_Contains_Unbounded(t *testing.T) {
	below := TempMarket{
		Ticker:      "KXHIGHNY-25AUG30-T70",
		FloorStrike: TempFromFahrenheit(math.Inf(-1)),
		CapStrike:   TempFromFahrenheit(70),
	}
	if !below.Contains(TempFromFahrenheit(-40)) {
		t.Error("open-floor market should contain arbitrarily low temps")
	}
	if below.Contains(TempFromFahrenheit(70.5)) {
		t.Error("open-floor market should not contain temps above its cap")
	}

	above := TempMarket{
		Ticker:      "KXHIGHNY-25AUG30-T90",
		FloorStrike: TempFromFahrenheit(90),
		CapStrike:   TempFromFahrenheit(math.Inf(1)),
	}
	if !above.Contains(TempFromFahrenheit(120)) {
		t.Error("open-cap market should contain arbitrarily high temps")
	}
}

func TestCandidateOrder_Notional(t *testing.T) {
	o := CandidateOrder{Count: 100, PriceCents: 70}
	if got := o.Notional(); got != 7000 {
		t.Errorf("Notional() = %d, want 7000", got)
	}
}

func TestActionRequest_Empty(t *testing.T) {
	var nilReq *ActionRequest
	if !nilReq.Empty() {
		t.Error("nil request should be empty")
	}
	if !(&ActionRequest{Strategy: "x"}).Empty() {
		t.Error("request without orders should be empty")
	}
	req := &ActionRequest{Orders: []CandidateOrder{{Ticker: "T"}}}
	if req.Empty() {
		t.Error("request with orders should not be empty")
	}
}
