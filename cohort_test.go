package main

import (
	"errors"
	"testing"
	"time"

	"dropoutwatch/internal/normalize"
)

func loadTestCohort(t *testing.T) *CohortStore {
	t.Helper()
	store := SetupTestCohort(t)

	opts := normalize.DefaultOptions()
	students := []normalize.Record{
		MockStudentRecord("2023CS101", "Kiran Rao"),
		MockHealthyStudentRecord("2023PH201", "Asha Menon"),
	}
	for _, rec := range students {
		if err := store.Add(normalize.Student(rec, opts)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return store
}

// TestNewCohortStore tests that a fresh store starts empty
func TestNewCohortStore(t *testing.T) {
	store := SetupTestCohort(t)

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected empty cohort, got %d", n)
	}

	overview, err := store.Overview()
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if overview["students"] != int64(0) {
		t.Errorf("Expected 0 students in overview, got %v", overview["students"])
	}
}

// TestCohortAddReplaces tests that adding a roll number twice keeps one row
func TestCohortAddReplaces(t *testing.T) {
	store := loadTestCohort(t)

	rec := MockStudentRecord("2023CS101", "Kiran Rao")
	rec["attendance_percentage"] = 80
	if err := store.Add(normalize.Student(rec, normalize.DefaultOptions())); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 students, got %d", n)
	}

	rows, err := store.ExecuteQuery("SELECT attendance_level FROM cohort WHERE roll_no = '2023CS101'")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["attendance_level"] != "good" {
		t.Errorf("Expected replaced row with good attendance, got %v", rows)
	}
}

// TestCohortOverview tests averages and flag counts
func TestCohortOverview(t *testing.T) {
	store := loadTestCohort(t)

	overview, err := store.Overview()
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	testCases := []struct {
		key      string
		expected interface{}
	}{
		{"students", int64(2)},
		{"avg_attendance", 68.5},
		{"avg_assignment_pct", 60.0},
		{"cgpa_declining", int64(1)},
		{"inactive_lms", int64(1)},
		{"fees_pending", int64(1)},
		{"counselor_visits", int64(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			if overview[tc.key] != tc.expected {
				t.Errorf("Expected %s = %v, got %v (%T)", tc.key, tc.expected, overview[tc.key], overview[tc.key])
			}
		})
	}
}

// TestCohortBreakdown tests per-metric level counts
func TestCohortBreakdown(t *testing.T) {
	store := loadTestCohort(t)

	rows, err := store.Breakdown()
	if err != nil {
		t.Fatalf("Breakdown failed: %v", err)
	}

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row["metric"].(string)+"/"+row["level"].(string)] = row["students"].(int64)
	}

	expected := map[string]int64{
		"assignments/danger": 1,
		"assignments/good":   1,
		"attendance/danger":  1,
		"attendance/good":    1,
		"cgpa/warning":       1,
		"cgpa/good":          1,
	}
	if len(counts) != len(expected) {
		t.Errorf("Expected %d breakdown rows, got %d: %v", len(expected), len(counts), counts)
	}
	for key, want := range expected {
		if counts[key] != want {
			t.Errorf("Expected %s = %d, got %d", key, want, counts[key])
		}
	}

	if rows[0]["metric"] != "assignments" || rows[0]["level"] != "danger" {
		t.Errorf("Expected danger rows first, got %v", rows[0])
	}
}

// TestCohortAtRisk tests the danger-tier listing
func TestCohortAtRisk(t *testing.T) {
	store := loadTestCohort(t)

	rows, err := store.AtRisk()
	if err != nil {
		t.Fatalf("AtRisk failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 at-risk student, got %d", len(rows))
	}
	if rows[0]["roll_no"] != "2023CS101" {
		t.Errorf("Expected 2023CS101, got %v", rows[0]["roll_no"])
	}
	if rows[0]["danger_metrics"] != int32(2) && rows[0]["danger_metrics"] != int64(2) {
		t.Errorf("Expected 2 danger metrics, got %v (%T)", rows[0]["danger_metrics"], rows[0]["danger_metrics"])
	}
}

// TestCohortExecuteQueryError tests that bad SQL is reported
func TestCohortExecuteQueryError(t *testing.T) {
	store := SetupTestCohort(t)

	if _, err := store.ExecuteQuery("SELECT nope FROM missing_table"); err == nil {
		t.Error("Expected an error for invalid SQL")
	}
}

// TestExplanationCache tests fingerprint and age checks
func TestExplanationCache(t *testing.T) {
	store := SetupTestCohort(t)

	if _, err := store.LoadExplanation("2023CS101", "fp", time.Hour); !errors.Is(err, errCacheMiss) {
		t.Errorf("Expected cache miss on empty cache, got %v", err)
	}

	if err := store.SaveExplanation("2023CS101", "HIGH|81.5|", "## Summary", "claude-haiku-4-5"); err != nil {
		t.Fatalf("SaveExplanation failed: %v", err)
	}

	testCases := []struct {
		name        string
		fingerprint string
		maxAge      time.Duration
		expectHit   bool
	}{
		{name: "matching fingerprint", fingerprint: "HIGH|81.5|", maxAge: time.Hour, expectHit: true},
		{name: "changed prediction", fingerprint: "MEDIUM|50|", maxAge: time.Hour, expectHit: false},
		{name: "expired", fingerprint: "HIGH|81.5|", maxAge: -time.Second, expectHit: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			md, err := store.LoadExplanation("2023CS101", tc.fingerprint, tc.maxAge)
			if tc.expectHit {
				if err != nil {
					t.Fatalf("Expected cache hit, got %v", err)
				}
				if md != "## Summary" {
					t.Errorf("Expected cached markdown, got %q", md)
				}
				return
			}
			if !errors.Is(err, errCacheMiss) {
				t.Errorf("Expected cache miss, got %v", err)
			}
		})
	}
}
