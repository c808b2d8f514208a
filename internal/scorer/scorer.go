// Package scorer implements the Health Scorer (§4.6): a deterministic
// reducer over every analyzer's output rows plus heuristic row-level
// rules, producing a 0-100 score, a letter grade, and an issue list (in
// source/row order; SortIssuesBySeverity ranks it for display) with
// attached knowledge-base entries.
package scorer

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/kb"
)

// Row is one scorer input row: a loosely-typed field map, mirroring the
// heterogeneous per-analyzer record shape described in §4.6. Values are
// whatever the analyzer put there — string, float64, int, bool.
type Row map[string]any

// Source is one named set of rows (one of the seven primary sources, or an
// orchestrator-supplied extra).
type Source struct {
	Name string
	Rows []Row
}

// weight budget, fixed per §4.6 step 1; order fixed for deterministic
// category iteration.
var categoryOrder = []anomaly.Category{
	anomaly.CategoryBER,
	anomaly.CategoryErrors,
	anomaly.CategoryCongestion,
	anomaly.CategoryLatency,
	anomaly.CategoryBalance,
	anomaly.CategoryConfig,
	anomaly.CategoryAnomaly,
}

var categoryWeight = map[anomaly.Category]float64{
	anomaly.CategoryBER:        25,
	anomaly.CategoryErrors:     25,
	anomaly.CategoryCongestion: 20,
	anomaly.CategoryLatency:    10,
	anomaly.CategoryBalance:    5,
	anomaly.CategoryConfig:     13,
	anomaly.CategoryAnomaly:    2,
}

const (
	severityMultCritical = 3.0
	severityMultWarning  = 1.5
	severityMultInfo     = 0.5
)

func severityMultiplier(s anomaly.Severity) float64 {
	switch s {
	case anomaly.Critical:
		return severityMultCritical
	case anomaly.Warning:
		return severityMultWarning
	default:
		return severityMultInfo
	}
}

// Issue is one scored finding attached to the final report.
type Issue struct {
	Severity    anomaly.Severity `json:"severity"`
	Category    anomaly.Category `json:"category"`
	Description string           `json:"description"`
	Weight      float64          `json:"weight"`
	NodeGUID    string           `json:"node_guid,omitempty"`
	PortNumber  *int             `json:"port_number,omitempty"`
	Details     map[string]any   `json:"details,omitempty"`
}

// Summary is the severity-count summary attached to the report.
type Summary struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// Report is the final, JSON-serializable Health Scorer output (§6).
type Report struct {
	Score          int                `json:"score"`
	Grade          string             `json:"grade"`
	Status         string             `json:"status"`
	TotalNodes     int                `json:"total_nodes"`
	TotalPorts     int                `json:"total_ports"`
	Summary        Summary            `json:"summary"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Issues         []Issue            `json:"issues"`
}

// Score runs the Health Scorer algorithm (§4.6) over the seven primary
// sources plus any orchestrator-supplied extras, in order.
func Score(brief, cable, xmit, ber, hca, fan, histogram []Row, extras []Source) Report {
	sources := []Source{
		{"brief", brief},
		{"cable", cable},
		{"xmit", xmit},
		{"ber", ber},
		{"hca", hca},
		{"fan", fan},
		{"histogram", histogram},
	}
	sources = append(sources, extras...)

	deduction := make(map[anomaly.Category]float64, len(categoryOrder))
	for _, c := range categoryOrder {
		deduction[c] = 0
	}

	var issues []Issue
	totalPorts := 0
	nodeGUIDs := make(map[string]struct{})
	nodeOrder := 0
	_ = nodeOrder

	for _, src := range sources {
		for _, row := range src.Rows {
			totalPorts++
			guid := rowString(row, "NodeGUID")
			if guid != "" {
				nodeGUIDs[guid] = struct{}{}
			}
			port := rowPort(row)

			for _, kind := range parseAnomalyColumn(row) {
				weight := rowFloat(row, "IBH Anomaly Weight")
				if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
					continue
				}
				cat := anomaly.CategoryOf(kind)
				sev := anomaly.SeverityOf(kind)
				issue := Issue{
					Severity:    sev,
					Category:    cat,
					Description: anomaly.Display(kind),
					Weight:      weight,
					NodeGUID:    guid,
					PortNumber:  port,
				}
				if e, ok := kb.ForKind(kind); ok {
					issue.Details = map[string]any{"kb": e}
				}
				issues = append(issues, issue)
				deduction[cat] += weight * severityMultiplier(sev)
			}

			issues, deduction = applyHeuristics(row, guid, port, issues, deduction)
		}
	}

	categoryScores := make(map[string]float64, len(categoryOrder))
	for _, c := range categoryOrder {
		w := categoryWeight[c]
		clamp := 2 * w
		d := deduction[c]
		if d > clamp {
			d = clamp
		}
		score := 100 - d/clamp*100
		if score < 0 {
			score = 0
		}
		categoryScores[string(c)] = score
	}

	var weighted float64
	for _, c := range categoryOrder {
		weighted += categoryScores[string(c)] * categoryWeight[c] / 100
	}
	overall := int(math.Round(weighted))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	grade, status := gradeFor(overall)

	summary := Summary{}
	for _, is := range issues {
		switch is.Severity {
		case anomaly.Critical:
			summary.Critical++
		case anomaly.Warning:
			summary.Warning++
		default:
			summary.Info++
		}
	}

	return Report{
		Score:          overall,
		Grade:          grade,
		Status:         status,
		TotalNodes:     len(nodeGUIDs),
		TotalPorts:     totalPorts,
		Summary:        summary,
		CategoryScores: categoryScores,
		Issues:         issues,
	}
}

func gradeFor(score int) (grade, status string) {
	switch {
	case score >= 90:
		return "A", "Healthy"
	case score >= 80:
		return "B", "Healthy"
	case score >= 70:
		return "C", "Warning"
	case score >= 60:
		return "D", "Warning"
	default:
		return "F", "Critical"
	}
}

// parseAnomalyColumn splits the row's "IBH Anomaly" column (a
// comma-separated list of canonical display names) into resolved kinds,
// ignoring entries that don't resolve to a known kind.
func parseAnomalyColumn(row Row) []anomaly.Kind {
	raw := rowString(row, "IBH Anomaly")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]anomaly.Kind, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		if k, ok := anomaly.KindByDisplay(name); ok {
			out = append(out, k)
		}
	}
	return out
}

func rowString(row Row, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return strings.TrimSpace(strconv.FormatFloat(toFloat(v), 'f', -1, 64))
	}
}

func rowFloat(row Row, key string) float64 {
	v, ok := row[key]
	if !ok || v == nil {
		return 0
	}
	return toFloat(v)
}

func rowPort(row Row) *int {
	v, ok := row["PortNumber"]
	if !ok || v == nil {
		return nil
	}
	f := toFloat(v)
	if math.IsNaN(f) {
		return nil
	}
	p := int(f)
	return &p
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func rowBool(row Row, key string) bool {
	v, ok := row[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1" || s == "yes"
	default:
		return toFloat(v) != 0
	}
}

// applyHeuristics implements §4.6 step 2's per-row heuristic rules, which
// fire independently of the row's explicit anomaly column.
func applyHeuristics(row Row, guid string, port *int, issues []Issue, deduction map[anomaly.Category]float64) ([]Issue, map[anomaly.Category]float64) {
	add := func(sev anomaly.Severity, cat anomaly.Category, desc string, weight float64, kbKey string) {
		if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return
		}
		issue := Issue{Severity: sev, Category: cat, Description: desc, Weight: weight, NodeGUID: guid, PortNumber: port}
		if e, ok := kb.Lookup(kbKey); ok {
			issue.Details = map[string]any{"kb": e}
		}
		issues = append(issues, issue)
		deduction[cat] += weight * severityMultiplier(sev)
	}

	if temp, ok := row["Temperature (c)"]; ok && temp != nil {
		v := toFloat(temp)
		switch {
		case v >= 80:
			add(anomaly.Critical, anomaly.CategoryErrors, "High temperature critical", v-60, kb.HeuristicHighTemperature)
		case v >= 70:
			add(anomaly.Warning, anomaly.CategoryErrors, "High temperature warning", v-60, kb.HeuristicHighTemperature)
		}
	}

	linkDown := rowFloat(row, "LinkDownedCounter") + rowFloat(row, "LinkDownedCounterExt")
	if linkDown > 0 {
		add(anomaly.Critical, anomaly.CategoryErrors, "Link downed counter non-zero", linkDown, kb.HeuristicLinkDownCounter)
	}

	recovery := rowFloat(row, "LinkErrorRecoveryCounter") + rowFloat(row, "LinkErrorRecoveryCounterExt")
	switch {
	case recovery >= 10:
		add(anomaly.Critical, anomaly.CategoryErrors, "Link error recovery elevated", recovery, kb.HeuristicLinkErrorRecovery)
	case recovery >= 3:
		add(anomaly.Warning, anomaly.CategoryErrors, "Link error recovery elevated", recovery, kb.HeuristicLinkErrorRecovery)
	}

	if rowBool(row, "NeighborIsActive") {
		state := rowString(row, "PortState")
		phy := rowString(row, "PortPhyState")
		if !strings.Contains(state, "Active") && !strings.Contains(state, "4") ||
			!strings.Contains(phy, "LinkUp") {
			add(anomaly.Warning, anomaly.CategoryErrors, "Neighbor active but local port state stale", 1.0, kb.HeuristicNeighborStateStale)
		}
	}

	return issues, deduction
}

// SortIssuesBySeverity orders issues critical-first, matching typical
// report-rendering expectations; the scorer itself appends issues in
// source/row order for determinism (I3/P6), so callers sort only for
// display.
func SortIssuesBySeverity(issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	copy(out, issues)
	rank := map[anomaly.Severity]int{anomaly.Critical: 0, anomaly.Warning: 1, anomaly.Info: 2}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Severity] < rank[out[j].Severity] })
	return out
}
