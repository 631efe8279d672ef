package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dropoutwatch/cmd"
	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/report"
	"dropoutwatch/internal/riskapi"
)

// uiState is the presenter state. Exactly one holds at a time.
type uiState int

const (
	stateIdle uiState = iota
	stateLoading
	stateError
)

var errNoStudent = errors.New("Search for a student before requesting a prediction")

type model struct {
	ctx       context.Context
	settings  *cmd.Settings
	explainer cmd.ExplainerInterface
	seq       *riskapi.Sequencer

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	state        uiState
	loadingLabel string
	err          error
	notice       string

	lookup      *cmd.Lookup
	explanation string

	width         int
	height        int
	viewportReady bool
}

type studentMsg struct {
	gen    uint64
	lookup *cmd.Lookup
	err    error
}

type predictionMsg struct {
	gen    uint64
	lookup *cmd.Lookup
	err    error
}

type explainMsg struct {
	gen      uint64
	markdown string
	err      error
}

func requestStudent(ctx context.Context, s *cmd.Settings, roll string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		l, err := cmd.FetchStudent(ctx, s, roll)
		return studentMsg{gen: gen, lookup: l, err: err}
	}
}

// requestPrediction works on a copy so the shown lookup is untouched until the
// response is accepted
func requestPrediction(ctx context.Context, s *cmd.Settings, current *cmd.Lookup, gen uint64) tea.Cmd {
	next := *current
	next.Prediction = nil
	return func() tea.Msg {
		err := cmd.AttachPrediction(ctx, s, &next)
		return predictionMsg{gen: gen, lookup: &next, err: err}
	}
}

func requestExplanation(ctx context.Context, explainer cmd.ExplainerInterface, l *cmd.Lookup, gen uint64) tea.Cmd {
	student, prediction := l.Student, *l.Prediction
	return func() tea.Msg {
		md, err := explainer.Explain(ctx, student, prediction)
		return explainMsg{gen: gen, markdown: md, err: err}
	}
}

func initialModel(ctx context.Context, s *cmd.Settings, explainer cmd.ExplainerInterface) model {
	ti := textinput.New()
	ti.Placeholder = "Enter a roll number, e.g. 2023CS101"
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return model{
		ctx:       ctx,
		settings:  s,
		explainer: explainer,
		seq:       &riskapi.Sequencer{},
		input:     ti,
		spinner:   sp,
		viewport:  vp,
		state:     stateIdle,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// header, input box, status line and help text
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 8
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		m.viewportReady = true
		m.updateViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case studentMsg:
		if !m.seq.IsCurrent(msg.gen) {
			m.logStale("student", msg.gen)
			return m, nil
		}
		if msg.err != nil {
			m.fail(msg.err, "Student lookup failed")
			return m, nil
		}

		m.lookup = msg.lookup
		m.explanation = ""
		m.state = stateIdle
		m.err = nil
		m.viewport.GotoTop()
		m.updateViewport()
		if logger != nil {
			logger.Info("Student loaded", "roll_no", msg.lookup.Roll, "at_risk", msg.lookup.Student.AtRisk())
		}

		if m.settings.Config.AutoPredict {
			return m.startPrediction()
		}
		return m, nil

	case predictionMsg:
		if !m.seq.IsCurrent(msg.gen) {
			m.logStale("prediction", msg.gen)
			return m, nil
		}
		if msg.err != nil {
			m.fail(msg.err, "Prediction failed")
			return m, nil
		}

		m.lookup = msg.lookup
		m.explanation = ""
		m.state = stateIdle
		m.err = nil
		m.updateViewport()
		if logger != nil {
			logger.Info("Prediction loaded", "roll_no", msg.lookup.Roll, "risk_level", msg.lookup.Prediction.RiskLevel,
				"risk_percentage", msg.lookup.Prediction.RiskPercentage)
		}
		return m, nil

	case explainMsg:
		if !m.seq.IsCurrent(msg.gen) {
			m.logStale("explanation", msg.gen)
			return m, nil
		}
		if msg.err != nil {
			m.fail(fmt.Errorf("AI explanation failed: %w", msg.err), "AI explanation failed")
			return m, nil
		}

		m.explanation = msg.markdown
		m.state = stateIdle
		m.err = nil
		m.updateViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		roll := strings.TrimSpace(m.input.Value())
		if roll == "" {
			return m, nil
		}
		gen := m.seq.Next()
		m.state = stateLoading
		m.loadingLabel = "Looking up " + roll + "..."
		m.notice = ""
		return m, tea.Batch(m.spinner.Tick, requestStudent(m.ctx, m.settings, roll, gen))

	case tea.KeyCtrlP:
		if m.state == stateLoading {
			return m, nil
		}
		if m.lookup == nil {
			m.state = stateError
			m.err = errNoStudent
			return m, nil
		}
		return m.startPrediction()

	case tea.KeyCtrlE:
		if m.state == stateLoading || m.lookup == nil || m.explainer == nil {
			return m, nil
		}
		if m.lookup.Prediction == nil {
			m.state = stateError
			m.err = errors.New("Run a prediction (Ctrl+P) before asking for an explanation")
			return m, nil
		}
		gen := m.seq.Next()
		m.state = stateLoading
		m.loadingLabel = "Asking Claude to explain the prediction..."
		m.notice = ""
		return m, tea.Batch(m.spinner.Tick, requestExplanation(m.ctx, m.explainer, m.lookup, gen))

	case tea.KeyCtrlY:
		if m.lookup == nil {
			return m, nil
		}
		if err := clipboard.WriteAll(report.Markdown(m.lookup.Student, m.lookup.Prediction)); err != nil {
			m.fail(fmt.Errorf("copy failed: %w", err), "Clipboard write failed")
			return m, nil
		}
		m.notice = "Report copied to clipboard"
		return m, nil

	// Scrolling keys
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) startPrediction() (tea.Model, tea.Cmd) {
	gen := m.seq.Next()
	m.state = stateLoading
	m.loadingLabel = "Predicting dropout risk..."
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, requestPrediction(m.ctx, m.settings, m.lookup, gen))
}

// fail moves to the error state. Whatever is on screen stays.
func (m *model) fail(err error, logMsg string) {
	m.state = stateError
	m.err = err
	if logger != nil {
		logger.Error(logMsg, "error", err, "query", strings.TrimSpace(m.input.Value()))
	}
}

func (m model) logStale(kind string, gen uint64) {
	if logger != nil {
		logger.Debug("Dropped stale response", "kind", kind, "generation", gen, "current", m.seq.Current())
	}
}

func (m *model) updateViewport() {
	if !m.viewportReady || m.lookup == nil {
		return
	}
	m.viewport.SetContent(renderLookup(m.lookup, m.explanation, m.width))
}

func (m model) View() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62"))
	b.WriteString(headerStyle.Render("🎓 Dropout Watch"))
	b.WriteString("\n")

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")

	switch m.state {
	case stateLoading:
		b.WriteString(m.spinner.View() + " " + m.loadingLabel)
	case stateError:
		errorStyle := lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)
		b.WriteString(errorStyle.Render("❌ " + riskapi.Message(m.err)))
	default:
		if m.notice != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(goodColor).Bold(true).Render("✓ " + m.notice))
		}
	}
	b.WriteString("\n")

	if m.lookup != nil && m.viewportReady {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	help := "Enter: Search | Ctrl+P: Predict | Ctrl+Y: Copy report | ↑/↓/PgUp/PgDn: Scroll | Esc: Quit"
	if m.explainer != nil {
		help = "Enter: Search | Ctrl+P: Predict | Ctrl+E: Explain | Ctrl+Y: Copy report | ↑/↓/PgUp/PgDn: Scroll | Esc: Quit"
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// renderLookup draws the student card, the prediction when there is one and
// the explanation
func renderLookup(l *cmd.Lookup, explanation string, width int) string {
	var b strings.Builder
	v := l.Student

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).MarginTop(1)
	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", v.Name, v.RollNo)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s | %s | %s | %s", v.Course, v.Year, v.Accommodation, v.Distance)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Family income %s | Parent education %s", v.FamilyIncome, v.ParentEducation)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Academic performance"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		MetricCard("Attendance", normalize.FormatNumber(v.Attendance.Value)+"%", v.Attendance.Level.Label(), v.AttendanceBar, v.Attendance.Level),
		MetricCard("CGPA", fmt.Sprintf("%.2f", v.CGPA.Value),
			fmt.Sprintf("%s %s from %.2f", v.CGPATrend.Arrow(), v.CGPATrend, v.PreviousCGPA), -1, v.CGPA.Level),
		MetricCard("Assignments", fmt.Sprintf("%s/%s", normalize.FormatNumber(v.AssignmentsSubmitted), normalize.FormatNumber(v.AssignmentsTotal)),
			fmt.Sprintf("%.0f%% %s", v.Assignments.Value, v.Assignments.Level.Label()), v.AssignmentsBar, v.Assignments.Level),
	))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Engagement"))
	b.WriteString("\n")
	statuses := []struct {
		label  string
		status normalize.Status
	}{
		{"Library visits", v.LibraryVisits},
		{"Last LMS login", v.LastLMSLogin},
		{"Extracurricular", v.Extracurricular},
		{"Fee status", v.FeeStatus},
		{"Counselor visits", v.CounselorVisits},
	}
	var boxes []string
	for _, s := range statuses {
		boxes = append(boxes, InfoBox(s.label, s.status.Text, flagColor(s.status.Flag)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes[:3]...))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes[3:]...))
	b.WriteString("\n")

	barWidth := 40
	if width > 0 && width/2 < barWidth {
		barWidth = width / 2
	}
	b.WriteString(DistributionBar(SummarySegments(v.Summary), barWidth))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s  %s",
		lipgloss.NewStyle().Foreground(dangerColor).Render(fmt.Sprintf("%d critical", v.Summary.Danger)),
		lipgloss.NewStyle().Foreground(warningColor).Render(fmt.Sprintf("%d need attention", v.Summary.Warning)),
		lipgloss.NewStyle().Foreground(goodColor).Render(fmt.Sprintf("%d on track", v.Summary.Good)),
	))
	b.WriteString("\n")

	if p := l.Prediction; p != nil {
		b.WriteString(sectionStyle.Render("Dropout prediction"))
		b.WriteString("\n")
		riskStyle := lipgloss.NewStyle().Bold(true).Foreground(levelColor(p.Severity))
		b.WriteString(riskStyle.Render(fmt.Sprintf("%s %s RISK: %s%% probability of dropout",
			p.Glyph, p.RiskLevel, normalize.FormatNumber(p.RiskPercentage))))
		b.WriteString("\n")
		b.WriteString(GaugeChart(p.RiskPercentage, p.Severity, barWidth))
		b.WriteString("\n\n")

		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Risk factors"))
		b.WriteString("\n")
		if len(p.RiskFactors) == 0 {
			b.WriteString(mutedStyle.Render("No risk factors reported."))
			b.WriteString("\n")
		}
		for _, f := range p.RiskFactors {
			label := fmt.Sprintf("%-28s", strings.TrimSpace(f.Icon+" "+f.Name))
			b.WriteString(BarChart(label, f.Contribution, 100, 20, dangerColor))
			b.WriteString("\n")
			if f.Description != "" {
				b.WriteString(mutedStyle.Render("  " + f.Description))
				b.WriteString("\n")
			}
		}

		b.WriteString(lipgloss.NewStyle().Bold(true).MarginTop(1).Render("Recommendations"))
		b.WriteString("\n")
		if len(p.Recommendations) == 0 {
			b.WriteString(mutedStyle.Render("No recommendations reported."))
			b.WriteString("\n")
		}
		for i, r := range p.Recommendations {
			b.WriteString(fmt.Sprintf("%d. %s (%s priority)\n", i+1, strings.TrimSpace(r.Icon+" "+r.Title), r.Priority))
			if r.Text != "" {
				b.WriteString("   " + r.Text + "\n")
			}
			if r.Action != "" {
				b.WriteString(mutedStyle.Render("   Action: "+r.Action) + "\n")
			}
		}
	}

	if explanation != "" {
		b.WriteString(sectionStyle.Render("AI explanation"))
		b.WriteString("\n")
		rendered, err := renderMarkdown(explanation, width)
		if err != nil {
			rendered = explanation
		}
		b.WriteString(rendered)
	}

	return b.String()
}

// launchTUI is the cmd.LaunchTUI hook
func launchTUI(s *cmd.Settings) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var explainer cmd.ExplainerInterface
	cache, err := NewCohortStore()
	if err != nil {
		if logger != nil {
			logger.Warn("Explanation cache unavailable", "error", err)
		}
	} else {
		defer cache.Close()
	}
	if s.Config.AnthropicAPIKey != "" {
		if e, err := NewExplainerService(s.Config.AnthropicAPIKey, s.Config.AIModel, cache); err == nil {
			explainer = e
		} else if logger != nil {
			logger.Warn("Explainer initialization failed", "error", err)
		}
	}

	fmt.Println("\n📊 Dropout Watch Configuration:")
	fmt.Printf("   • Backend: %s\n", s.Client.BaseURL())
	if s.Config.AutoPredict {
		fmt.Println("   • Auto-Predict: ✓ Enabled (unset DROPOUT_AUTO_PREDICT to disable)")
	} else {
		fmt.Println("   • Auto-Predict: ✗ Disabled (set DROPOUT_AUTO_PREDICT=1 to enable)")
	}
	if explainer != nil {
		fmt.Println("   • AI Explanations: ✓ Available")
	} else {
		fmt.Println("   • AI Explanations: ✗ Not configured (set ANTHROPIC_API_KEY)")
	}
	fmt.Println()

	p := tea.NewProgram(
		initialModel(ctx, s, explainer),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
