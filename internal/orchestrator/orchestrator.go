// Package orchestrator implements the Orchestrator (§4.7): the lifecycle
// of a single analysis request, from dataset acquisition through the
// bounded analyzer fan-out, brief/score/index assembly, sanitization, and
// dataset release. Fan-out follows the same errgroup-with-a-concurrency-
// limit shape as AleutianLocal's EnhancedAnalyzer, generalized from
// priority groups to one flat bounded pool (§5's "worker pool of bounded
// parallelism").
package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ftahirops/ibhealth/internal/analyzer"
	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/brief"
	"github.com/ftahirops/ibhealth/internal/config"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/metrics"
	"github.com/ftahirops/ibhealth/internal/observability"
	"github.com/ftahirops/ibhealth/internal/sanitize"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// ErrNoDumpFile is returned when extractedDir contains no *.db_csv
// consolidated dump to analyze.
var ErrNoDumpFile = errors.New("orchestrator: no .db_csv dump file found")

// names of the seven primary scorer sources (§4.6); the rest of the
// analyzer set is fed to the scorer as extras.
var primaryNames = []string{"brief", "cable", "xmit", "ber", "hca", "fan", "histogram"}

// analysisIndexNames are merged into the "analysis" super-index (§4.7
// step 7: "Merge the cable|xmit|ber|hca indexes").
var analysisIndexNames = []string{"cable", "xmit", "ber", "hca"}

// Orchestrator runs one analysis request against a process-wide Dataset
// Inventory registry.
type Orchestrator struct {
	Registry *dataset.Registry
	Config   *config.Config
	FWPolicy analyzer.FirmwarePolicy
	Logger   *observability.Logger
	Metrics  *metrics.Metrics
}

// New builds an Orchestrator with sane defaults for any nil field.
func New(cfg *config.Config, reg *dataset.Registry, fwPolicy analyzer.FirmwarePolicy, logger *observability.Logger) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	if reg == nil {
		reg = dataset.NewRegistry()
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Orchestrator{Registry: reg, Config: cfg, FWPolicy: fwPolicy, Logger: logger, Metrics: metrics.New()}
}

// AnalyzeIBDiagnet runs §4.7 over the consolidated dump found under
// extractedDir and returns the serializable payload described in §6.
func (o *Orchestrator) AnalyzeIBDiagnet(ctx context.Context, extractedDir string) (map[string]any, error) {
	requestID := uuid.New().String()
	log := o.Logger.With("request_id", requestID)

	dumpPath, err := findDumpFile(extractedDir)
	if err != nil {
		log.Warnw("no dump file found", "dir", extractedDir, "error", err)
		return nil, err
	}
	log.Infow("analysis started", "dump_path", dumpPath)

	inv, err := o.Registry.Acquire(dumpPath)
	if err != nil {
		log.Errorw("dataset acquire failed", "dump_path", dumpPath, "error", err)
		return nil, err
	}
	defer func() {
		o.Registry.Release(dumpPath)
		log.Infow("dataset released", "dump_path", dumpPath)
	}()

	results := o.fanOut(ctx, inv, log)

	briefRows := brief.Merge(
		rowsOf(results, "xmit"),
		rowsOf(results, "cable"),
		rowsOf(results, "ber"),
		rowsOf(results, "hca"),
	)
	results["brief"] = analyzer.Result{Rows: briefRows, Summary: map[string]any{"total_rows": len(briefRows)}}

	report := o.score(results)
	o.Metrics.LastScore.Set(float64(report.Score))
	log.Infow("analysis finished", "score", report.Score, "grade", report.Grade)

	indexes := make(map[string]*anomaly.Index, len(results))
	var analysisFrames []anomaly.Frame
	for name, res := range results {
		indexes[name] = anomaly.NewIndex(res.Anomalies)
		if contains(analysisIndexNames, name) {
			analysisFrames = append(analysisFrames, res.Anomalies)
		}
	}
	indexes["analysis"] = anomaly.NewIndex(anomaly.Merge(analysisFrames...))

	payload := map[string]any{
		"request_id":         requestID,
		"health":             report,
		"warnings_by_category": map[string]any{},
		"warnings_summary":      map[string]any{},
		"debug_stdout":          "",
		"debug_stderr":          "",
		"preview_row_limit":     o.Config.PreviewRowLimit(),
		"issues":                report.Issues,
	}

	briefIdx := indexes["analysis"]
	data, issueRows := splitDataIssueRows(briefRows, briefIdx)
	payload["data"] = rowsToAny(truncate(data, o.Config.PreviewRowLimit()))
	payload["data_issue_rows"] = rowsToAny(issueRows)
	payload["data_total_rows"] = len(data)

	for name, res := range results {
		idx := indexes[name]
		d, issues := splitDataIssueRows(res.Rows, idx)
		payload[name+"_data"] = rowsToAny(truncate(d, o.Config.PreviewRowLimit()))
		payload[name+"_issue_rows"] = rowsToAny(issues)
		payload[name+"_total_rows"] = len(d)
		if res.Summary != nil {
			payload[name+"_summary"] = res.Summary
		} else {
			payload[name+"_summary"] = map[string]any{"total_rows": len(d)}
		}
	}

	return sanitize.Map(payload), nil
}

// fanOut runs the analyzer set on a bounded worker pool (§5), capturing
// per-analyzer panics/timeouts as empty results rather than failing the
// whole request (§7 "Analyzer faulty").
func (o *Orchestrator) fanOut(ctx context.Context, inv *dataset.Inventory, log *observability.Logger) map[string]analyzer.Result {
	analyzers := analyzer.All(o.Config, o.FWPolicy)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.Config.WorkerPoolSize())

	var mu sync.Mutex
	results := make(map[string]analyzer.Result, len(analyzers))
	timeout := time.Duration(o.Config.AnalyzerTimeoutSeconds()) * time.Second

	for _, a := range analyzers {
		a := a
		g.Go(func() error {
			taskCtx, cancel := context.WithTimeout(gCtx, timeout)
			defer cancel()
			res := o.runOne(taskCtx, a, inv, log)
			mu.Lock()
			results[a.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-analyzer errors are swallowed inside runOne; never fatal

	return results
}

// runOne executes one analyzer, converting a panic or context
// cancellation into an empty result plus a logged error (§7).
func (o *Orchestrator) runOne(ctx context.Context, a analyzer.Analyzer, inv *dataset.Inventory, log *observability.Logger) (res analyzer.Result) {
	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("analyzer panicked", "analyzer", a.Name(), "panic", r)
				o.Metrics.AnalyzerFaults.WithLabelValues(a.Name(), "panic").Inc()
				res = analyzer.Result{}
			}
			close(done)
		}()
		res = a.Analyze(inv)
	}()

	select {
	case <-done:
		o.Metrics.AnalyzerDuration.WithLabelValues(a.Name()).Observe(time.Since(start).Seconds())
		return res
	case <-ctx.Done():
		log.Warnw("analyzer timed out", "analyzer", a.Name())
		o.Metrics.AnalyzerFaults.WithLabelValues(a.Name(), "timeout").Inc()
		return analyzer.Result{}
	}
}

func (o *Orchestrator) score(results map[string]analyzer.Result) scorer.Report {
	extras := make([]scorer.Source, 0, len(results))
	var names []string
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic extras order (I3/P6); primary seven are addressed by name below

	for _, name := range names {
		if contains(primaryNames, name) {
			continue
		}
		extras = append(extras, scorer.Source{Name: name, Rows: results[name].Rows})
	}

	return scorer.Score(
		rowsOf(results, "brief"),
		rowsOf(results, "cable"),
		rowsOf(results, "xmit"),
		rowsOf(results, "ber"),
		rowsOf(results, "hca"),
		rowsOf(results, "fan"),
		rowsOf(results, "histogram"),
		extras,
	)
}

func rowsOf(results map[string]analyzer.Result, name string) []scorer.Row {
	return results[name].Rows
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(rows []scorer.Row, limit int) []scorer.Row {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}

// rowsToAny widens scorer.Row (a named map type) into the plain
// map[string]any/[]any shape sanitize.Map recurses into, so NaN/Inf
// values nested in analyzer output rows are cleaned at the payload
// boundary along with everything else.
func rowsToAny(rows []scorer.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = map[string]any(r)
	}
	return out
}

// splitDataIssueRows implements §4.7 step 8: issue_rows is the subset of
// data whose (guid, port) is covered by idx; if idx has no strict
// matches at all for this dataset, fall back to the heuristic problem
// markers (§4.7).
func splitDataIssueRows(rows []scorer.Row, idx *anomaly.Index) ([]scorer.Row, []scorer.Row) {
	var issues []scorer.Row
	for _, r := range rows {
		guid, _ := r["NodeGUID"].(string)
		port := portOfRow(r)
		if idx.Matches(guid, port) {
			issues = append(issues, r)
		}
	}
	if len(issues) == 0 {
		for _, r := range rows {
			if heuristicProblemMarkers(r) {
				issues = append(issues, r)
			}
		}
	}
	return rows, issues
}

func portOfRow(row scorer.Row) int {
	switch v := row["PortNumber"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

var heuristicTerms = []string{"fail", "error", "linkdown", "critical", "down"}
var healthySeverityStrings = map[string]bool{"ok": true, "normal": true, "healthy": true, "info": true, "pass": true, "": true}

// heuristicProblemMarkers is the best-effort fallback described in §4.7
// step 8 and flagged as an Open Question in §9 ("may evolve"): presence
// of fail/error/linkdown-like terms in any string value, or a
// SymbolBERSeverity value outside the known-healthy set (no other
// severity column is checked). It is deliberately approximate, not a strict
// anomaly-index match.
func heuristicProblemMarkers(row scorer.Row) bool {
	for _, v := range row {
		s, ok := v.(string)
		if !ok {
			continue
		}
		lower := strings.ToLower(s)
		for _, term := range heuristicTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	if sev, ok := row["SymbolBERSeverity"].(string); ok {
		if !healthySeverityStrings[strings.ToLower(sev)] {
			return true
		}
	}
	return false
}

// findDumpFile locates the single *.db_csv consolidated dump under dir
// (§1/§3).
func findDumpFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.db_csv"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrNoDumpFile
	}
	sort.Strings(matches)
	return matches[0], nil
}
