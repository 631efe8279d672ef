package severity

import (
	"strconv"
	"strings"
)

// Flag is a two-state status for yes/no style metrics. These metrics never go
// through Classify.
type Flag string

const (
	Clear  Flag = "clear"
	Raised Flag = "raised"
)

// InactiveLoginDays is the LMS recency after which a student counts as inactive
const InactiveLoginDays = 7

// Raised reports whether the flag needs attention
func (f Flag) Raised() bool {
	return f == Raised
}

// FeeFlag is clear only when fees are paid
func FeeFlag(status string) Flag {
	if status == "Paid" {
		return Clear
	}
	return Raised
}

// CounselorFlag is raised when the student has any recorded counselor visits
func CounselorFlag(visits string) Flag {
	v := strings.TrimSpace(visits)
	if v == "" || v == "0" {
		return Clear
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil && n == 0 {
		return Clear
	}
	return Raised
}

// ParticipationFlag is raised for labels such as "No participation"
func ParticipationFlag(label string) Flag {
	if strings.Contains(label, "No") {
		return Raised
	}
	return Clear
}

// LoginFlag is raised when the last LMS login is more than InactiveLoginDays old.
// An unknown recency is not flagged.
func LoginFlag(days int, known bool) Flag {
	if known && days > InactiveLoginDays {
		return Raised
	}
	return Clear
}

// LibraryFlag is raised when no library visits were recorded
func LibraryFlag(visits float64) Flag {
	if visits <= 0 {
		return Raised
	}
	return Clear
}
