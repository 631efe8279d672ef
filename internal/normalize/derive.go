package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Direction of a metric between two readings
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Stable Direction = "stable"
)

// Trend is the change between a previous and a current reading
type Trend struct {
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
}

// ComputeTrend returns current - previous and its direction. No smoothing.
func ComputeTrend(current, previous float64) Trend {
	delta := current - previous
	switch {
	case delta > 0:
		return Trend{Delta: delta, Direction: Up}
	case delta < 0:
		return Trend{Delta: delta, Direction: Down}
	default:
		return Trend{Delta: 0, Direction: Stable}
	}
}

// Arrow returns the glyph for the trend direction
func (t Trend) Arrow() string {
	switch t.Direction {
	case Up:
		return "↑"
	case Down:
		return "↓"
	default:
		return "→"
	}
}

// String formats the delta with one decimal, signed when positive
func (t Trend) String() string {
	if t.Delta > 0 {
		return fmt.Sprintf("+%.1f", t.Delta)
	}
	return fmt.Sprintf("%.1f", t.Delta)
}

// ParseRecencyDays reads a day count from either a number or a string such as
// "3 days ago". Anything else reports false.
func ParseRecencyDays(v any) (int, bool) {
	if s, ok := v.(string); ok {
		if !strings.Contains(s, "days ago") {
			return 0, false
		}
		return leadingInt(s)
	}
	if f, ok := numeric(v); ok {
		return int(f), true
	}
	return 0, false
}

// leadingInt parses an optionally signed integer prefix after leading spaces
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Percentage returns submitted/total*100, or 0 when total is not positive
func Percentage(submitted, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return submitted / total * 100
}

// BarWidth clamps a percentage into the drawable 0-100 range
func BarWidth(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// FormatIncome renders an amount in rupees with thousands separators
func FormatIncome(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := strconv.FormatFloat(amount, 'f', -1, 64)
	frac := ""
	if i := strings.IndexByte(whole, '.'); i >= 0 {
		whole, frac = whole[:i], whole[i:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "₹" + sign + b.String() + frac
}
