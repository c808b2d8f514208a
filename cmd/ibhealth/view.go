package main

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/ibhealth/internal/scorer"
)

// Styles, adapted from xtop's ui/styles.go color palette for a static
// report browser rather than a live dashboard.
var (
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorGray   = lipgloss.Color("#6272A4")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	warnStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	helpStyle     = lipgloss.NewStyle().Foreground(colorGray)
	selectedStyle = lipgloss.NewStyle().Background(colorGray).Bold(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

// scoreColor picks a style for a 0-100 health score where higher is
// better, the inverse sense of xtop's load-percentage scoreColor.
func scoreColor(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return okStyle
	case score >= 50:
		return warnStyle
	default:
		return critStyle
	}
}

func severityStyle(sev string) lipgloss.Style {
	switch sev {
	case "critical":
		return critStyle
	case "warning":
		return warnStyle
	default:
		return okStyle
	}
}

// reportModel is the bubbletea Model for the "view" subcommand: a
// read-only, paged browser over one AnalyzeIBDiagnet payload. Unlike
// xtop's live ui.Model, there is no ticker/refresh loop — the data is
// fixed for the process lifetime, so Init is a no-op and Update only
// handles navigation keys.
type reportModel struct {
	report scorer.Report
	tabs   []string
	tab    int
	scroll int
	width  int
	height int
}

func newReportModel(payload map[string]any) reportModel {
	report, _ := payload["health"].(scorer.Report)
	tabs := []string{"overview", "issues"}
	tabs = append(tabs, analyzerTabNames(payload)...)
	return reportModel{report: report, tabs: tabs}
}

// analyzerTabNames derives the sorted set of "<name>_data" keys present
// in the payload, stripped of their suffix, so the view gets one tab per
// analyzer result in the payload, including analyzers that produced no
// rows (§6 output payload list).
func analyzerTabNames(payload map[string]any) []string {
	var names []string
	for key := range payload {
		if strings.HasSuffix(key, "_data") && !strings.HasSuffix(key, "_issue_rows") {
			names = append(names, strings.TrimSuffix(key, "_data"))
		}
	}
	sort.Strings(names)
	return names
}

func (m reportModel) Init() tea.Cmd { return nil }

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "tab":
			m.tab = (m.tab + 1) % len(m.tabs)
			m.scroll = 0
		case "left", "h", "shift+tab":
			m.tab = (m.tab - 1 + len(m.tabs)) % len(m.tabs)
			m.scroll = 0
		case "down", "j":
			m.scroll++
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		}
	}
	return m, nil
}

func (m reportModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ibhealth report") + "\n")
	b.WriteString(m.renderTabBar() + "\n\n")

	switch m.tabs[m.tab] {
	case "overview":
		b.WriteString(m.renderOverview())
	case "issues":
		b.WriteString(m.renderIssues())
	default:
		b.WriteString(m.renderAnalyzer(m.tabs[m.tab]))
	}

	b.WriteString("\n" + helpStyle.Render("←/→ switch tab  ↑/↓ scroll  q quit"))
	return b.String()
}

func (m reportModel) renderTabBar() string {
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.tab {
			parts[i] = selectedStyle.Render(" " + t + " ")
		} else {
			parts[i] = labelStyle.Render(" " + t + " ")
		}
	}
	return strings.Join(parts, "")
}

func (m reportModel) renderOverview() string {
	r := m.report
	lines := []string{
		headerStyle.Render("Health"),
		fmt.Sprintf("%s  %s  %s", scoreColor(r.Score).Render(fmt.Sprintf("%d", r.Score)), r.Grade, r.Status),
		fmt.Sprintf("%s %d   %s %d", labelStyle.Render("nodes"), r.TotalNodes, labelStyle.Render("ports"), r.TotalPorts),
		fmt.Sprintf("%s %s  %s %s  %s %s",
			critStyle.Render("critical"), fmt.Sprintf("%d", r.Summary.Critical),
			warnStyle.Render("warning"), fmt.Sprintf("%d", r.Summary.Warning),
			labelStyle.Render("info"), fmt.Sprintf("%d", r.Summary.Info)),
		"",
		headerStyle.Render("Category scores"),
	}
	names := make([]string, 0, len(r.CategoryScores))
	for name := range r.CategoryScores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %-12s %.1f", name, r.CategoryScores[name]))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m reportModel) renderIssues() string {
	if len(m.report.Issues) == 0 {
		return panelStyle.Render(okStyle.Render("no issues"))
	}
	var lines []string
	for _, iss := range visibleSlice(len(m.report.Issues), m.scroll, m.height) {
		is := m.report.Issues[iss]
		sev := severityStyle(string(is.Severity)).Render(strings.ToUpper(string(is.Severity)))
		lines = append(lines, fmt.Sprintf("%-10s %-12s %-20s %s", sev, is.Category, is.NodeGUID, is.Description))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m reportModel) renderAnalyzer(name string) string {
	return panelStyle.Render(labelStyle.Render(fmt.Sprintf("%s: row data is available in the JSON payload (ibhealth analyze --format json)", name)))
}

// visibleSlice returns the row indices visible for a scroll offset, used
// by renderIssues to page through a long issue list without pulling in a
// full viewport component (the view subcommand has no text input, so
// bubbles' viewport isn't needed for this).
func visibleSlice(total, scroll, height int) []int {
	pageSize := height - 10
	if pageSize < 5 {
		pageSize = 20
	}
	if scroll > total {
		scroll = total
	}
	end := scroll + pageSize
	if end > total {
		end = total
	}
	out := make([]int, 0, end-scroll)
	for i := scroll; i < end; i++ {
		out = append(out, i)
	}
	return out
}

// runView starts the bubbletea program for the view subcommand.
func runView(payload map[string]any) error {
	p := tea.NewProgram(newReportModel(payload), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
