package severity

import "testing"

// TestTwoStateFlags tests the yes/no classifications separately from Classify
func TestTwoStateFlags(t *testing.T) {
	testCases := []struct {
		name     string
		got      Flag
		expected Flag
	}{
		{"fee paid", FeeFlag("Paid"), Clear},
		{"fee pending", FeeFlag("Pending"), Raised},
		{"fee free text", FeeFlag("Delayed 2 months"), Raised},
		{"no counselor visits", CounselorFlag("0"), Clear},
		{"empty counselor visits", CounselorFlag(""), Clear},
		{"counselor visits as float zero", CounselorFlag("0.0"), Clear},
		{"counselor visits", CounselorFlag("3"), Raised},
		{"counselor free text", CounselorFlag("Twice this term"), Raised},
		{"active participation", ParticipationFlag("Active participation"), Clear},
		{"no participation", ParticipationFlag("No participation"), Raised},
		{"recent login", LoginFlag(3, true), Clear},
		{"login at limit", LoginFlag(InactiveLoginDays, true), Clear},
		{"stale login", LoginFlag(12, true), Raised},
		{"unknown login", LoginFlag(0, false), Clear},
		{"library visits", LibraryFlag(4), Clear},
		{"no library visits", LibraryFlag(0), Raised},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, tc.got)
			}
			if tc.got.Raised() != (tc.expected == Raised) {
				t.Errorf("Raised() disagrees with flag value %s", tc.got)
			}
		})
	}
}
