package severity

import "strings"

// Level is the ordinal severity of a numeric metric
type Level string

const (
	Danger  Level = "danger"
	Warning Level = "warning"
	Good    Level = "good"
)

// Thresholds are the inclusive upper bounds of the danger and warning tiers
type Thresholds struct {
	Danger  float64 `json:"danger"`
	Warning float64 `json:"warning"`
}

// Presentation policy for the engagement card
var (
	Attendance           = Thresholds{Danger: 50, Warning: 75}
	CGPA                 = Thresholds{Danger: 5, Warning: 6.5}
	AssignmentCompletion = Thresholds{Danger: 40, Warning: 70}
)

// Classify maps v onto a level. Each tier includes its upper bound:
// v <= Danger is danger, v <= Warning is warning, anything above is good.
func Classify(v float64, t Thresholds) Level {
	if v <= t.Danger {
		return Danger
	}
	if v <= t.Warning {
		return Warning
	}
	return Good
}

// Rank orders levels from most to least severe
func (l Level) Rank() int {
	switch l {
	case Danger:
		return 0
	case Warning:
		return 1
	default:
		return 2
	}
}

// Label returns the human readable name used in card footers
func (l Level) Label() string {
	switch l {
	case Danger:
		return "Critical"
	case Warning:
		return "Needs Attention"
	default:
		return "On Track"
	}
}

// RiskLevel maps a backend risk level (LOW/MEDIUM/HIGH) onto a severity.
// Unknown values are treated as low risk.
func RiskLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "HIGH":
		return Danger
	case "MEDIUM":
		return Warning
	default:
		return Good
	}
}

// RiskGlyph returns the coloured circle shown next to a risk level
func RiskGlyph(level string) string {
	switch RiskLevel(level) {
	case Danger:
		return "🔴"
	case Warning:
		return "🟡"
	default:
		return "🟢"
	}
}

// Counts tallies levels for a summary footer
type Counts struct {
	Danger  int `json:"danger"`
	Warning int `json:"warning"`
	Good    int `json:"good"`
}

// Tally counts how many of the given levels fall in each tier
func Tally(levels ...Level) Counts {
	var c Counts
	for _, l := range levels {
		switch l {
		case Danger:
			c.Danger++
		case Warning:
			c.Warning++
		default:
			c.Good++
		}
	}
	return c
}
