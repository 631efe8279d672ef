package normalize

import (
	"math"
	"testing"
)

func TestComputeTrend(t *testing.T) {
	testCases := []struct {
		name      string
		current   float64
		previous  float64
		delta     float64
		direction Direction
		text      string
	}{
		{"improving", 7.8, 7.2, 0.6, Up, "+0.6"},
		{"declining", 5.5, 6.0, -0.5, Down, "-0.5"},
		{"flat", 6.0, 6.0, 0, Stable, "0.0"},
		{"from nothing", 6.2, 0, 6.2, Up, "+6.2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trend := ComputeTrend(tc.current, tc.previous)
			if math.Abs(trend.Delta-tc.delta) > 1e-9 {
				t.Errorf("expected delta %v, got %v", tc.delta, trend.Delta)
			}
			if trend.Direction != tc.direction {
				t.Errorf("expected direction %s, got %s", tc.direction, trend.Direction)
			}
			if trend.String() != tc.text {
				t.Errorf("expected %q, got %q", tc.text, trend.String())
			}
		})
	}

	if ComputeTrend(2, 1).Arrow() != "↑" || ComputeTrend(1, 2).Arrow() != "↓" || ComputeTrend(1, 1).Arrow() != "→" {
		t.Error("unexpected trend arrows")
	}
}

func TestParseRecencyDays(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		days     int
		expectOK bool
	}{
		{"days ago string", "3 days ago", 3, true},
		{"padded string", "  14 days ago", 14, true},
		{"number", 5.0, 5, true},
		{"int", 9, 9, true},
		{"never", "never", 0, false},
		{"plain numeric string", "5", 0, false},
		{"days ago without number", "days ago", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			days, ok := ParseRecencyDays(tc.value)
			if ok != tc.expectOK {
				t.Fatalf("expected ok=%v, got %v", tc.expectOK, ok)
			}
			if days != tc.days {
				t.Errorf("expected %d days, got %d", tc.days, days)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(7, 10); got != 70 {
		t.Errorf("expected 70, got %v", got)
	}
	if got := Percentage(3, 10); got != 30 {
		t.Errorf("expected 30, got %v", got)
	}
	if got := Percentage(3, 0); got != 0 {
		t.Errorf("expected 0 for zero total, got %v", got)
	}
}

func TestBarWidth(t *testing.T) {
	testCases := map[float64]float64{-5: 0, 0: 0, 45: 45, 100: 100, 130: 100}
	for in, expected := range testCases {
		if got := BarWidth(in); got != expected {
			t.Errorf("BarWidth(%v) = %v, expected %v", in, got, expected)
		}
	}
}

func TestFormatIncome(t *testing.T) {
	testCases := map[float64]string{
		0:        "₹0",
		950:      "₹950",
		120000:   "₹120,000",
		1234567:  "₹1,234,567",
		45000.5:  "₹45,000.5",
		-2500:    "₹-2,500",
	}
	for in, expected := range testCases {
		if got := FormatIncome(in); got != expected {
			t.Errorf("FormatIncome(%v) = %q, expected %q", in, got, expected)
		}
	}
}
