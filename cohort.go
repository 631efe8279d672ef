package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"dropoutwatch/internal/normalize"
)

// CohortStore is an in-memory DuckDB table of normalized student metrics.
// It lives only as long as the process.
type CohortStore struct {
	conn *sql.DB
}

// NewCohortStore opens an in-memory database and creates the cohort table
func NewCohortStore() (*CohortStore, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open in-memory DuckDB", "error", err)
		}
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	// one connection keeps every statement on the same in-memory catalog
	db.SetMaxOpenConns(1)

	s := &CohortStore{conn: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *CohortStore) createTables() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cohort (
			roll_no VARCHAR PRIMARY KEY,
			name VARCHAR,
			course VARCHAR,
			attendance DOUBLE,
			attendance_level VARCHAR,
			cgpa DOUBLE,
			cgpa_level VARCHAR,
			cgpa_delta DOUBLE,
			cgpa_direction VARCHAR,
			assignment_pct DOUBLE,
			assignment_level VARCHAR,
			login_days INTEGER,
			login_flag VARCHAR,
			library_flag VARCHAR,
			participation_flag VARCHAR,
			fee_flag VARCHAR,
			counselor_flag VARCHAR
		)
	`)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to create cohort table", "error", err)
		}
		return fmt.Errorf("failed to create cohort table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS explanation_cache (
			roll_no VARCHAR PRIMARY KEY,
			fingerprint VARCHAR,
			markdown_content TEXT,
			model VARCHAR,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to create explanation_cache table", "error", err)
		}
		return fmt.Errorf("failed to create explanation_cache table: %w", err)
	}
	return nil
}

// errCacheMiss is returned when no usable explanation is cached
var errCacheMiss = errors.New("no cache entry found")

// SaveExplanation caches an explanation for a roll number. The fingerprint
// identifies the prediction it was written for.
func (s *CohortStore) SaveExplanation(rollNo, fingerprint, markdown, model string) error {
	query := `
		INSERT INTO explanation_cache (roll_no, fingerprint, markdown_content, model, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (roll_no) DO UPDATE SET
			fingerprint = EXCLUDED.fingerprint,
			markdown_content = EXCLUDED.markdown_content,
			model = EXCLUDED.model,
			created_at = EXCLUDED.created_at
	`

	if _, err := s.conn.Exec(query, rollNo, fingerprint, markdown, model, time.Now().UTC()); err != nil {
		if logger != nil {
			logger.Error("Failed to save explanation cache", "error", err, "roll_no", rollNo)
		}
		return fmt.Errorf("failed to save explanation cache: %w", err)
	}
	return nil
}

// LoadExplanation returns a cached explanation if it matches the fingerprint
// and is younger than maxAge
func (s *CohortStore) LoadExplanation(rollNo, fingerprint string, maxAge time.Duration) (string, error) {
	query := `
		SELECT fingerprint, markdown_content, created_at
		FROM explanation_cache
		WHERE roll_no = $1
	`

	var cachedFingerprint, markdown string
	var createdAt time.Time
	err := s.conn.QueryRow(query, rollNo).Scan(&cachedFingerprint, &markdown, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errCacheMiss
		}
		if logger != nil {
			logger.Error("Failed to load explanation cache", "error", err, "roll_no", rollNo)
		}
		return "", fmt.Errorf("failed to load explanation cache: %w", err)
	}

	if cachedFingerprint != fingerprint || time.Since(createdAt) > maxAge {
		return "", errCacheMiss
	}
	return markdown, nil
}

// Close releases the in-memory database
func (s *CohortStore) Close() error {
	return s.conn.Close()
}

// Add inserts or replaces one student's metrics
func (s *CohortStore) Add(v normalize.StudentView) error {
	query := `
		INSERT INTO cohort (
			roll_no, name, course,
			attendance, attendance_level,
			cgpa, cgpa_level, cgpa_delta, cgpa_direction,
			assignment_pct, assignment_level,
			login_days, login_flag, library_flag, participation_flag, fee_flag, counselor_flag
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (roll_no) DO UPDATE SET
			name = EXCLUDED.name,
			course = EXCLUDED.course,
			attendance = EXCLUDED.attendance,
			attendance_level = EXCLUDED.attendance_level,
			cgpa = EXCLUDED.cgpa,
			cgpa_level = EXCLUDED.cgpa_level,
			cgpa_delta = EXCLUDED.cgpa_delta,
			cgpa_direction = EXCLUDED.cgpa_direction,
			assignment_pct = EXCLUDED.assignment_pct,
			assignment_level = EXCLUDED.assignment_level,
			login_days = EXCLUDED.login_days,
			login_flag = EXCLUDED.login_flag,
			library_flag = EXCLUDED.library_flag,
			participation_flag = EXCLUDED.participation_flag,
			fee_flag = EXCLUDED.fee_flag,
			counselor_flag = EXCLUDED.counselor_flag
	`

	loginDays := sql.NullInt64{Int64: int64(v.LoginDays), Valid: v.LoginKnown}

	_, err := s.conn.Exec(query,
		v.RollNo, v.Name, v.Course,
		v.Attendance.Value, string(v.Attendance.Level),
		v.CGPA.Value, string(v.CGPA.Level), v.CGPATrend.Delta, string(v.CGPATrend.Direction),
		v.Assignments.Value, string(v.Assignments.Level),
		loginDays, string(v.LastLMSLogin.Flag), string(v.LibraryVisits.Flag),
		string(v.Extracurricular.Flag), string(v.FeeStatus.Flag), string(v.CounselorVisits.Flag),
	)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to add student to cohort", "error", err, "roll_no", v.RollNo)
		}
		return fmt.Errorf("failed to add %s to cohort: %w", v.RollNo, err)
	}
	return nil
}

// Count returns the number of students loaded
func (s *CohortStore) Count() (int, error) {
	var n int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM cohort`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cohort: %w", err)
	}
	return n, nil
}

// Breakdown counts students per severity level for each numeric metric
func (s *CohortStore) Breakdown() ([]map[string]interface{}, error) {
	return s.ExecuteQuery(`
		SELECT metric, level, COUNT(*) AS students
		FROM (
			SELECT 'assignments' AS metric, assignment_level AS level FROM cohort
			UNION ALL
			SELECT 'attendance', attendance_level FROM cohort
			UNION ALL
			SELECT 'cgpa', cgpa_level FROM cohort
		)
		GROUP BY metric, level
		ORDER BY metric, CASE level WHEN 'danger' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END
	`)
}

// Overview returns cohort-wide averages and flag counts
func (s *CohortStore) Overview() (map[string]interface{}, error) {
	rows, err := s.ExecuteQuery(`
		SELECT
			COUNT(*) AS students,
			ROUND(AVG(attendance), 1) AS avg_attendance,
			ROUND(AVG(cgpa), 2) AS avg_cgpa,
			ROUND(AVG(assignment_pct), 1) AS avg_assignment_pct,
			COUNT(*) FILTER (WHERE cgpa_direction = 'down') AS cgpa_declining,
			COUNT(*) FILTER (WHERE login_flag = 'raised') AS inactive_lms,
			COUNT(*) FILTER (WHERE fee_flag = 'raised') AS fees_pending,
			COUNT(*) FILTER (WHERE counselor_flag = 'raised') AS counselor_visits
		FROM cohort
	`)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]interface{}{}, nil
	}
	return rows[0], nil
}

// AtRisk lists students with at least one metric in the danger tier
func (s *CohortStore) AtRisk() ([]map[string]interface{}, error) {
	return s.ExecuteQuery(`
		SELECT roll_no, name, attendance, cgpa, assignment_pct,
			(CASE WHEN attendance_level = 'danger' THEN 1 ELSE 0 END
			 + CASE WHEN cgpa_level = 'danger' THEN 1 ELSE 0 END
			 + CASE WHEN assignment_level = 'danger' THEN 1 ELSE 0 END) AS danger_metrics
		FROM cohort
		WHERE attendance_level = 'danger' OR cgpa_level = 'danger' OR assignment_level = 'danger'
		ORDER BY danger_metrics DESC, attendance ASC, roll_no
	`)
}

// ExecuteQuery runs arbitrary SQL against the cohort and returns rows as maps
func (s *CohortStore) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	rows, err := s.conn.Query(query)
	if err != nil {
		if logger != nil {
			logger.Error("Cohort query failed", "error", err, "query", query)
		}
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
