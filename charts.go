package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dropoutwatch/internal/severity"
)

// Severity colours shared by every widget
var (
	dangerColor  = lipgloss.Color("196") // Red
	warningColor = lipgloss.Color("214") // Orange
	goodColor    = lipgloss.Color("82")  // Green
	mutedColor   = lipgloss.Color("240")
)

// levelColor maps a severity level to its terminal colour
func levelColor(l severity.Level) lipgloss.Color {
	switch l {
	case severity.Danger:
		return dangerColor
	case severity.Warning:
		return warningColor
	default:
		return goodColor
	}
}

// flagColor maps a two-state flag to its terminal colour
func flagColor(f severity.Flag) lipgloss.Color {
	if f.Raised() {
		return warningColor
	}
	return goodColor
}

func fill(width int, ratio float64) int {
	filled := int(float64(width) * ratio)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return filled
}

// BarChart creates a horizontal bar chart
func BarChart(label string, value, max float64, width int, color lipgloss.Color) string {
	if max == 0 {
		max = value
	}

	ratio := 0.0
	if max > 0 {
		ratio = value / max
	}
	filledWidth := fill(width, ratio)

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	barStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(mutedColor)

	return fmt.Sprintf("%s %s%s %.0f%%",
		label,
		barStyle.Render(filled),
		emptyStyle.Render(empty),
		value,
	)
}

// SeverityBar draws a 0-100 progress bar coloured by the metric's level
func SeverityBar(label string, percentage float64, level severity.Level, width int) string {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	filledWidth := fill(width, percentage/100)
	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	barStyle := lipgloss.NewStyle().Foreground(levelColor(level))
	emptyStyle := lipgloss.NewStyle().Foreground(mutedColor)

	return fmt.Sprintf("%s %s%s %.1f%%",
		label,
		barStyle.Render(filled),
		emptyStyle.Render(empty),
		percentage,
	)
}

// GaugeChart places a marker for the dropout probability on a 0-100 scale
func GaugeChart(percentage float64, level severity.Level, width int) string {
	if width < 1 {
		width = 1
	}
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	position := int((percentage / 100) * float64(width))
	if position >= width {
		position = width - 1
	}

	var gauge strings.Builder
	gauge.WriteString("│")
	for i := 0; i < width; i++ {
		if i == position {
			gauge.WriteString("●")
		} else {
			gauge.WriteString("─")
		}
	}
	gauge.WriteString("│")

	gaugeStyle := lipgloss.NewStyle().Foreground(levelColor(level))
	return gaugeStyle.Render(gauge.String())
}

// InfoBox creates a styled info box with a value
func InfoBox(label string, value string, color lipgloss.Color) string {
	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(mutedColor).
		Width(18).
		Align(lipgloss.Left)

	valueStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Width(16).
		Align(lipgloss.Right)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		labelStyle.Render(label),
		valueStyle.Render(value),
	)

	return boxStyle.Render(content)
}

// MetricCard creates a card for one numeric metric with its severity bar
func MetricCard(title, value, subtitle string, percentage float64, level severity.Level) string {
	color := levelColor(level)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62"))

	valueStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(color)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(30)

	content := titleStyle.Render(title) + "\n" +
		valueStyle.Render(value) + "  " + subtitleStyle.Render(subtitle)

	// a negative percentage means the metric has no bar
	if percentage >= 0 {
		content += "\n" + SeverityBar("", percentage, level, 18)
	}

	return cardStyle.Render(content)
}

// Segment is one slice of a DistributionBar
type Segment struct {
	Label string
	Value float64
	Color lipgloss.Color
}

// SummarySegments turns the card footer counts into bar segments
func SummarySegments(c severity.Counts) []Segment {
	return []Segment{
		{Label: severity.Danger.Label(), Value: float64(c.Danger), Color: dangerColor},
		{Label: severity.Warning.Label(), Value: float64(c.Warning), Color: warningColor},
		{Label: severity.Good.Label(), Value: float64(c.Good), Color: goodColor},
	}
}

// DistributionBar shows multiple segments
func DistributionBar(segments []Segment, width int) string {
	total := 0.0
	for _, seg := range segments {
		total += seg.Value
	}

	if total == 0 {
		return "No data"
	}

	var bar strings.Builder
	remaining := width

	for i, seg := range segments {
		segWidth := int(math.Round((seg.Value / total) * float64(width)))

		// Adjust last segment to fill exactly
		if i == len(segments)-1 {
			segWidth = remaining
		}

		if segWidth > remaining {
			segWidth = remaining
		}

		style := lipgloss.NewStyle().Foreground(seg.Color)
		bar.WriteString(style.Render(strings.Repeat("█", segWidth)))
		remaining -= segWidth
	}

	return bar.String()
}
