package normalize

import "dropoutwatch/internal/severity"

// Prediction field table
var (
	FieldRiskLevel       = Field{Canonical: "risk_level", Chain: []string{"risk_level", "riskLevel"}, Default: "UNKNOWN"}
	FieldRiskPercentage  = Field{Canonical: "risk_percentage", Chain: []string{"risk_percentage", "riskPercentage"}, Default: 0.0}
	FieldRiskFactors     = Field{Canonical: "risk_factors", Chain: []string{"risk_factors", "riskFactors"}}
	FieldRecommendations = Field{Canonical: "recommendations", Chain: []string{"recommendations"}}
	FieldStudentInfo     = Field{Canonical: "student_info", Chain: []string{"student_info", "studentInfo"}}

	FieldFactorName         = Field{Canonical: "name", Chain: []string{"name"}, Default: "Unknown"}
	FieldFactorIcon         = Field{Canonical: "icon", Chain: []string{"icon"}, Default: ""}
	FieldFactorContribution = Field{Canonical: "contribution", Chain: []string{"contribution"}, Default: 0.0}
	FieldFactorDescription  = Field{Canonical: "description", Chain: []string{"description"}, Default: ""}

	FieldRecIcon     = Field{Canonical: "icon", Chain: []string{"icon"}, Default: ""}
	FieldRecTitle    = Field{Canonical: "title", Chain: []string{"title"}, Default: "Recommendation"}
	FieldRecText     = Field{Canonical: "text", Chain: []string{"description", "text"}, Default: ""}
	FieldRecPriority = Field{Canonical: "priority", Chain: []string{"priority"}, Default: "medium"}
	FieldRecAction   = Field{Canonical: "action", Chain: []string{"action"}, Default: ""}
)

// PredictionFields is the top-level prediction table
var PredictionFields = []Field{
	FieldRiskLevel, FieldRiskPercentage, FieldRiskFactors, FieldRecommendations, FieldStudentInfo,
}

// RiskFactor is one contributing factor. Contributions are independent
// percentages and need not sum to 100.
type RiskFactor struct {
	Name         string  `json:"name"`
	Icon         string  `json:"icon,omitempty"`
	Contribution float64 `json:"contribution"`
	Description  string  `json:"description,omitempty"`
	Bar          float64 `json:"bar"`
}

// Recommendation is one suggested intervention
type Recommendation struct {
	Icon     string `json:"icon,omitempty"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Priority string `json:"priority"`
	Action   string `json:"action,omitempty"`
}

// PredictionView is the canonical, render-ready form of a prediction record
type PredictionView struct {
	Student         Profile          `json:"student"`
	RiskLevel       string           `json:"risk_level"`
	RiskPercentage  float64          `json:"risk_percentage"`
	Severity        severity.Level   `json:"severity"`
	Glyph           string           `json:"glyph"`
	RiskFactors     []RiskFactor     `json:"risk_factors"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Prediction builds the view of a prediction record. The student summary comes
// from the student record when one is given, else from the prediction's own
// student_info object.
func Prediction(rec Record, student Record) PredictionView {
	level := Text(ResolveField(rec, FieldRiskLevel), "UNKNOWN")
	v := PredictionView{
		RiskLevel:       level,
		RiskPercentage:  Number(ResolveField(rec, FieldRiskPercentage), 0),
		Severity:        severity.RiskLevel(level),
		Glyph:           severity.RiskGlyph(level),
		RiskFactors:     []RiskFactor{},
		Recommendations: []Recommendation{},
	}

	if student == nil {
		if info, ok := ResolveField(rec, FieldStudentInfo).(map[string]any); ok {
			student = Record(info)
		}
	}
	v.Student = ProfileOf(student)

	for _, f := range records(ResolveField(rec, FieldRiskFactors)) {
		contribution := Number(ResolveField(f, FieldFactorContribution), 0)
		v.RiskFactors = append(v.RiskFactors, RiskFactor{
			Name:         Text(ResolveField(f, FieldFactorName), "Unknown"),
			Icon:         Text(ResolveField(f, FieldFactorIcon), ""),
			Contribution: contribution,
			Description:  Text(ResolveField(f, FieldFactorDescription), ""),
			Bar:          BarWidth(contribution),
		})
	}

	for _, r := range records(ResolveField(rec, FieldRecommendations)) {
		v.Recommendations = append(v.Recommendations, Recommendation{
			Icon:     Text(ResolveField(r, FieldRecIcon), ""),
			Title:    Text(ResolveField(r, FieldRecTitle), "Recommendation"),
			Text:     Text(ResolveField(r, FieldRecText), ""),
			Priority: Text(ResolveField(r, FieldRecPriority), "medium"),
			Action:   Text(ResolveField(r, FieldRecAction), ""),
		})
	}

	return v
}
