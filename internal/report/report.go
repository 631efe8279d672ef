// Package report renders a student view and optional prediction as markdown.
// The output is plain GitHub-flavoured markdown so it can be printed raw,
// copied to the clipboard, or rendered for the terminal with glamour.
package report

import (
	"fmt"
	"strings"

	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/severity"
)

// LevelEmoji maps a severity level to the marker used in report tables
func LevelEmoji(l severity.Level) string {
	switch l {
	case severity.Danger:
		return "🔴"
	case severity.Warning:
		return "🟡"
	default:
		return "🟢"
	}
}

// FlagEmoji maps a two-state flag to a report marker
func FlagEmoji(f severity.Flag) string {
	if f.Raised() {
		return "⚠️"
	}
	return "✅"
}

// Markdown builds the full report. A nil prediction omits the risk sections.
func Markdown(v normalize.StudentView, p *normalize.PredictionView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s)\n\n", v.Name, v.RollNo)
	fmt.Fprintf(&b, "**Course:** %s | **Year:** %s\n\n", v.Course, v.Year)

	if p != nil {
		writeRiskAlert(&b, *p)
	}

	b.WriteString("## Profile\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Family income | %s |\n", v.FamilyIncome)
	fmt.Fprintf(&b, "| Parent education | %s |\n", v.ParentEducation)
	fmt.Fprintf(&b, "| Distance from college | %s |\n", v.Distance)
	fmt.Fprintf(&b, "| Accommodation | %s |\n\n", v.Accommodation)

	writeMetrics(&b, v)

	if p != nil {
		writeFactors(&b, p.RiskFactors)
		writeRecommendations(&b, p.Recommendations)
	}

	fmt.Fprintf(&b, "---\n\n%s %d critical · %s %d need attention · %s %d on track\n",
		LevelEmoji(severity.Danger), v.Summary.Danger,
		LevelEmoji(severity.Warning), v.Summary.Warning,
		LevelEmoji(severity.Good), v.Summary.Good,
	)

	return b.String()
}

func writeRiskAlert(b *strings.Builder, p normalize.PredictionView) {
	fmt.Fprintf(b, "> %s **%s RISK**: %s%% probability of dropout\n\n",
		p.Glyph, p.RiskLevel, normalize.FormatNumber(p.RiskPercentage))
}

func writeMetrics(b *strings.Builder, v normalize.StudentView) {
	b.WriteString("## Academic & Engagement Metrics\n\n")
	b.WriteString("| Metric | Value | Status |\n|---|---|---|\n")

	fmt.Fprintf(b, "| Attendance | %s%% | %s %s |\n",
		normalize.FormatNumber(v.Attendance.Value), LevelEmoji(v.Attendance.Level), v.Attendance.Level.Label())
	fmt.Fprintf(b, "| CGPA | %.2f (%s %s from %.2f) | %s %s |\n",
		v.CGPA.Value, v.CGPATrend.Arrow(), v.CGPATrend.String(), v.PreviousCGPA,
		LevelEmoji(v.CGPA.Level), v.CGPA.Level.Label())
	fmt.Fprintf(b, "| Assignments | %s/%s (%s%%) | %s %s |\n",
		normalize.FormatNumber(v.AssignmentsSubmitted), normalize.FormatNumber(v.AssignmentsTotal),
		normalize.FormatNumber(v.Assignments.Value), LevelEmoji(v.Assignments.Level), v.Assignments.Level.Label())

	for _, row := range []struct {
		label  string
		status normalize.Status
	}{
		{"Library visits", v.LibraryVisits},
		{"Last LMS login", v.LastLMSLogin},
		{"Extracurricular", v.Extracurricular},
		{"Fee status", v.FeeStatus},
		{"Counselor visits", v.CounselorVisits},
	} {
		fmt.Fprintf(b, "| %s | %s | %s |\n", row.label, row.status.Text, FlagEmoji(row.status.Flag))
	}
	b.WriteString("\n")
}

func writeFactors(b *strings.Builder, factors []normalize.RiskFactor) {
	b.WriteString("## Risk Factors\n\n")
	if len(factors) == 0 {
		b.WriteString("_No risk factors reported._\n\n")
		return
	}
	for _, f := range factors {
		name := f.Name
		if f.Icon != "" {
			name = f.Icon + " " + name
		}
		fmt.Fprintf(b, "- **%s**: %s%%", name, normalize.FormatNumber(f.Contribution))
		if f.Description != "" {
			fmt.Fprintf(b, ": %s", f.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeRecommendations(b *strings.Builder, recs []normalize.Recommendation) {
	b.WriteString("## Recommended Interventions\n\n")
	if len(recs) == 0 {
		b.WriteString("_No recommendations reported._\n\n")
		return
	}
	for i, r := range recs {
		title := r.Title
		if r.Icon != "" {
			title = r.Icon + " " + title
		}
		fmt.Fprintf(b, "%d. **%s** (%s priority)", i+1, title, r.Priority)
		if r.Text != "" {
			fmt.Fprintf(b, "\n   %s", r.Text)
		}
		if r.Action != "" {
			fmt.Fprintf(b, "\n   _Action:_ %s", r.Action)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
