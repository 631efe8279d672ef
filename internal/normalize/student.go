package normalize

import (
	"fmt"

	"dropoutwatch/internal/severity"
)

// DefaultAssignmentsTotal is used when a record carries no assignment total
const DefaultAssignmentsTotal = 10

// Options tune the student normalizer
type Options struct {
	DefaultAssignmentsTotal float64
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{DefaultAssignmentsTotal: DefaultAssignmentsTotal}
}

func (o Options) assignmentsTotal() float64 {
	if o.DefaultAssignmentsTotal > 0 {
		return o.DefaultAssignmentsTotal
	}
	return DefaultAssignmentsTotal
}

// Student field table. Chains list the preferred spelling first.
var (
	FieldName            = Field{Canonical: "name", Chain: []string{"name"}, Default: "Unknown"}
	FieldRollNo          = Field{Canonical: "roll_no", Chain: []string{"roll_no", "rollNo"}, Default: "N/A"}
	FieldCourse          = Field{Canonical: "course", Chain: []string{"course"}, Default: "N/A"}
	FieldYear            = Field{Canonical: "year", Chain: []string{"year_string", "year"}, Default: "N/A"}
	FieldIncomeFormatted = Field{Canonical: "family_income", Chain: []string{"family_income_formatted", "familyIncome"}}
	FieldIncomeRaw       = Field{Canonical: "family_income_raw", Chain: []string{"family_income"}}
	FieldParentEducation = Field{Canonical: "parent_education", Chain: []string{"parent_education", "parentEducation"}, Default: "N/A"}
	FieldDistanceKm      = Field{Canonical: "distance_km", Chain: []string{"distance_from_college"}}
	FieldDistanceText    = Field{Canonical: "distance", Chain: []string{"distanceFromCollege"}, Default: "N/A"}
	FieldAccommodation   = Field{Canonical: "accommodation", Chain: []string{"hostel_day_scholar", "accommodation"}, Default: "N/A"}

	FieldAttendance      = Field{Canonical: "attendance", Chain: []string{"attendance_percentage", "attendance"}, Default: 0.0}
	FieldCGPACurrent     = Field{Canonical: "cgpa_current", Chain: []string{"cgpa_current", "currentCGPA"}, Default: 0.0}
	FieldCGPAPrevious    = Field{Canonical: "cgpa_previous", Chain: []string{"cgpa_previous", "previousCGPA"}, Default: 0.0}
	FieldSubmitted       = Field{Canonical: "assignments_submitted", Chain: []string{"assignments_submitted", "assignmentsSubmitted"}, Default: 0.0}
	FieldTotal           = Field{Canonical: "assignments_total", Chain: []string{"assignments_total", "assignmentsTotal"}}
	FieldLibraryMonthly  = Field{Canonical: "library_visits_monthly", Chain: []string{"library_visits_monthly"}}
	FieldLibraryText     = Field{Canonical: "library_visits", Chain: []string{"libraryVisits"}, Default: "0 visits"}
	FieldLMSLogin        = Field{Canonical: "lms_last_login", Chain: []string{"lms_last_login_days", "lastLMSLogin"}}
	FieldLMSLoginText    = Field{Canonical: "lms_last_login_text", Chain: []string{"lastLMSLogin"}, Default: "Never"}
	FieldExtracurricular = Field{Canonical: "extracurricular_participation", Chain: []string{"extracurricular_participation"}}
	FieldExtraText       = Field{Canonical: "extracurricular", Chain: []string{"extracurricular"}, Default: "No participation"}
	FieldFeesUpToDate    = Field{Canonical: "tuition_fees_up_to_date", Chain: []string{"tuition_fees_up_to_date"}}
	FieldFeeText         = Field{Canonical: "fee_status", Chain: []string{"feeStatus"}, Default: "Pending"}
	FieldCounselorVisits = Field{Canonical: "counselor_visits", Chain: []string{"counselor_visits", "counselorVisits"}, Default: "0"}
)

// StudentFields is the full student table, in display order
var StudentFields = []Field{
	FieldName, FieldRollNo, FieldCourse, FieldYear,
	FieldIncomeFormatted, FieldIncomeRaw, FieldParentEducation,
	FieldDistanceKm, FieldDistanceText, FieldAccommodation,
	FieldAttendance, FieldCGPACurrent, FieldCGPAPrevious,
	FieldSubmitted, FieldTotal,
	FieldLibraryMonthly, FieldLibraryText,
	FieldLMSLogin, FieldLMSLoginText,
	FieldExtracurricular, FieldExtraText,
	FieldFeesUpToDate, FieldFeeText,
	FieldCounselorVisits,
}

// Metric is a numeric reading with its severity
type Metric struct {
	Value float64        `json:"value"`
	Level severity.Level `json:"level"`
}

// Status is a displayed string with its two-state flag
type Status struct {
	Text string        `json:"text"`
	Flag severity.Flag `json:"flag"`
}

// Profile holds the identifying and demographic fields
type Profile struct {
	Name            string `json:"name"`
	RollNo          string `json:"roll_no"`
	Course          string `json:"course"`
	Year            string `json:"year"`
	FamilyIncome    string `json:"family_income"`
	ParentEducation string `json:"parent_education"`
	Distance        string `json:"distance"`
	Accommodation   string `json:"accommodation"`
}

// StudentView is the canonical, render-ready form of a student record
type StudentView struct {
	Profile

	Attendance    Metric  `json:"attendance"`
	AttendanceBar float64 `json:"attendance_bar"`

	CGPA         Metric  `json:"cgpa"`
	PreviousCGPA float64 `json:"cgpa_previous"`
	CGPATrend    Trend   `json:"cgpa_trend"`

	AssignmentsSubmitted float64 `json:"assignments_submitted"`
	AssignmentsTotal     float64 `json:"assignments_total"`
	Assignments          Metric  `json:"assignment_completion"`
	AssignmentsBar       float64 `json:"assignment_bar"`

	LibraryVisits   Status `json:"library_visits"`
	LastLMSLogin    Status `json:"last_lms_login"`
	LoginDays       int    `json:"login_days"`
	LoginKnown      bool   `json:"login_known"`
	Extracurricular Status `json:"extracurricular"`
	FeeStatus       Status `json:"fee_status"`
	CounselorVisits Status `json:"counselor_visits"`

	Summary severity.Counts `json:"summary"`
}

// ProfileOf resolves only the identifying fields of a record
func ProfileOf(rec Record) Profile {
	return Profile{
		Name:            Text(ResolveField(rec, FieldName), "Unknown"),
		RollNo:          Text(ResolveField(rec, FieldRollNo), "N/A"),
		Course:          Text(ResolveField(rec, FieldCourse), "N/A"),
		Year:            Text(ResolveField(rec, FieldYear), "N/A"),
		FamilyIncome:    familyIncome(rec),
		ParentEducation: Text(ResolveField(rec, FieldParentEducation), "N/A"),
		Distance:        distance(rec),
		Accommodation:   Text(ResolveField(rec, FieldAccommodation), "N/A"),
	}
}

// Student builds the full view of a student record
func Student(rec Record, opts Options) StudentView {
	v := StudentView{Profile: ProfileOf(rec)}

	attendance := Number(ResolveField(rec, FieldAttendance), 0)
	v.Attendance = Metric{Value: attendance, Level: severity.Classify(attendance, severity.Attendance)}
	v.AttendanceBar = BarWidth(attendance)

	current := Number(ResolveField(rec, FieldCGPACurrent), 0)
	previous := Number(ResolveField(rec, FieldCGPAPrevious), 0)
	v.CGPA = Metric{Value: current, Level: severity.Classify(current, severity.CGPA)}
	v.PreviousCGPA = previous
	v.CGPATrend = ComputeTrend(current, previous)

	v.AssignmentsSubmitted = Number(ResolveField(rec, FieldSubmitted), 0)
	v.AssignmentsTotal = Number(Resolve(rec, FieldTotal.Chain, opts.assignmentsTotal()), opts.assignmentsTotal())
	pct := Percentage(v.AssignmentsSubmitted, v.AssignmentsTotal)
	v.Assignments = Metric{Value: pct, Level: severity.Classify(pct, severity.AssignmentCompletion)}
	v.AssignmentsBar = BarWidth(pct)

	v.LibraryVisits = libraryVisits(rec)

	v.LoginDays, v.LoginKnown = ParseRecencyDays(ResolveField(rec, FieldLMSLogin))
	if v.LoginKnown {
		v.LastLMSLogin.Text = fmt.Sprintf("%d days ago", v.LoginDays)
	} else {
		v.LastLMSLogin.Text = Text(ResolveField(rec, FieldLMSLoginText), "Never")
	}
	v.LastLMSLogin.Flag = severity.LoginFlag(v.LoginDays, v.LoginKnown)

	if Truthy(ResolveField(rec, FieldExtracurricular)) {
		v.Extracurricular.Text = "Active participation"
	} else {
		v.Extracurricular.Text = Text(ResolveField(rec, FieldExtraText), "No participation")
	}
	v.Extracurricular.Flag = severity.ParticipationFlag(v.Extracurricular.Text)

	if Truthy(ResolveField(rec, FieldFeesUpToDate)) {
		v.FeeStatus.Text = "Paid"
	} else {
		v.FeeStatus.Text = Text(ResolveField(rec, FieldFeeText), "Pending")
	}
	v.FeeStatus.Flag = severity.FeeFlag(v.FeeStatus.Text)

	v.CounselorVisits.Text = Text(ResolveField(rec, FieldCounselorVisits), "0")
	v.CounselorVisits.Flag = severity.CounselorFlag(v.CounselorVisits.Text)

	v.Summary = severity.Tally(v.Levels()...)
	return v
}

// Levels lists the severity of every metric on the card. Flags only enter
// this footer tally: raised counts as warning, clear as good.
func (v StudentView) Levels() []severity.Level {
	levels := []severity.Level{v.Attendance.Level, v.CGPA.Level, v.Assignments.Level}
	for _, s := range []Status{v.LibraryVisits, v.LastLMSLogin, v.Extracurricular, v.FeeStatus, v.CounselorVisits} {
		if s.Flag.Raised() {
			levels = append(levels, severity.Warning)
		} else {
			levels = append(levels, severity.Good)
		}
	}
	return levels
}

// AtRisk reports whether any numeric metric is in the danger tier
func (v StudentView) AtRisk() bool {
	return v.Attendance.Level == severity.Danger ||
		v.CGPA.Level == severity.Danger ||
		v.Assignments.Level == severity.Danger
}

// familyIncome prefers a preformatted string, then the raw amount
func familyIncome(rec Record) string {
	if v := ResolveField(rec, FieldIncomeFormatted); v != nil {
		return Text(v, "N/A")
	}
	if v := ResolveField(rec, FieldIncomeRaw); v != nil {
		if amount := Number(v, 0); amount != 0 {
			return FormatIncome(amount)
		}
		return Text(v, "N/A")
	}
	return "N/A"
}

func distance(rec Record) string {
	if v := ResolveField(rec, FieldDistanceKm); v != nil {
		return Text(v, "") + " km"
	}
	return Text(ResolveField(rec, FieldDistanceText), "N/A")
}

func libraryVisits(rec Record) Status {
	if v := ResolveField(rec, FieldLibraryMonthly); v != nil {
		return Status{
			Text: Text(v, "0") + " visits/month",
			Flag: severity.LibraryFlag(Number(v, 0)),
		}
	}
	text := Text(ResolveField(rec, FieldLibraryText), "0 visits")
	count, _ := leadingInt(text)
	return Status{Text: text, Flag: severity.LibraryFlag(float64(count))}
}
