package main

// MockStudentRecord creates a snake_case student record as the backend sends it.
// The default shape is the at-risk 2023CS101 case: attendance 45, CGPA 5.5 down
// from 6.0, 3 of 10 assignments.
func MockStudentRecord(rollNo, name string) map[string]interface{} {
	return map[string]interface{}{
		"roll_no":                 rollNo,
		"name":                    name,
		"course":                  "B.Tech CSE",
		"year":                    2,
		"year_string":             "2nd Year",
		"family_income":           250000,
		"family_income_formatted": "₹2,50,000",
		"parent_education":        "Graduate",
		"distance_from_college":   12,
		"hostel_day_scholar":      "Day Scholar",
		"attendance_percentage":   45,
		"cgpa_current":            5.5,
		"cgpa_previous":           6.0,
		"assignments_submitted":   3,
		"assignments_total":       10,
		"library_visits_monthly":  0,
		"lms_last_login_days":     9,
		"extracurricular_participation": false,
		"tuition_fees_up_to_date":       false,
		"counselor_visits":              2,
	}
}

// MockHealthyStudentRecord creates a camelCase record for a student on track
func MockHealthyStudentRecord(rollNo, name string) map[string]interface{} {
	return map[string]interface{}{
		"rollNo":               rollNo,
		"name":                 name,
		"course":               "B.Sc Physics",
		"year":                 "3rd Year",
		"familyIncome":         "₹6,00,000",
		"parentEducation":      "Post Graduate",
		"distanceFromCollege":  "3 km",
		"accommodation":        "Hostel",
		"attendance":           92,
		"currentCGPA":          8.4,
		"previousCGPA":         8.1,
		"assignmentsSubmitted": 9,
		"assignmentsTotal":     10,
		"libraryVisits":        "6 visits/month",
		"lastLMSLogin":         "1 days ago",
		"extracurricular":      "Active participation",
		"feeStatus":            "Paid",
		"counselorVisits":      "0",
	}
}

// MockPredictionRecord creates a HIGH risk prediction with two factors and
// two recommendations
func MockPredictionRecord(rollNo string) map[string]interface{} {
	return map[string]interface{}{
		"roll_no":         rollNo,
		"risk_level":      "HIGH",
		"risk_percentage": 81.5,
		"risk_factors": []interface{}{
			map[string]interface{}{
				"name":         "Low attendance",
				"icon":         "📉",
				"contribution": 35,
				"description":  "Attendance is below 50%",
			},
			map[string]interface{}{
				"name":         "Falling CGPA",
				"contribution": 20,
			},
		},
		"recommendations": []interface{}{
			map[string]interface{}{
				"icon":        "🧑‍🏫",
				"title":       "Mentor meeting",
				"description": "Schedule weekly check-ins with a faculty mentor",
				"priority":    "high",
				"action":      "Assign mentor",
			},
			map[string]interface{}{
				"title": "Fee support",
				"text":  "Refer to the scholarship office",
			},
		},
	}
}
