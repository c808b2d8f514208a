package analyzer

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/config"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/netdumpext"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// BER implements Family C (§4.4): bit error rate severity derived from
// the companion *.net_dump_ext file, merged with PERFQUERY_EXT_ERRORS (or
// PM) symbol error counters, plus the WARNINGS_SYMBOL_BER_CHECK table.
type BER struct {
	Config *config.Config
}

func (b BER) Name() string { return "ber" }

var warningEventSeverity = map[string]anomaly.Severity{
	"BER_THRESHOLD_EXCEEDED":          anomaly.Critical,
	"BER_NEAR_THRESHOLD":              anomaly.Warning,
	"BER_RS_FEC_EXCESSIVE_ERRORS":     anomaly.Critical,
	"BER_RS_FEC_HIGH_ERRORS":          anomaly.Warning,
	"BER_NO_THRESHOLD_IS_SUPPORTED":   anomaly.Info,
}

func (b BER) Analyze(inv *dataset.Inventory) Result {
	cfg := b.Config
	if cfg == nil {
		cfg = config.Default()
	}

	netDumpRows, _ := netdumpext.Parse(netDumpExtPath(inv.Path()))
	if len(netDumpRows) == 0 {
		return Result{Summary: summaryCount(nil, 0)}
	}

	errCounters := inv.ReadTable("PERFQUERY_EXT_ERRORS")
	if errCounters.Empty() {
		errCounters = inv.ReadTable("PM")
	}
	errByKey := indexPortsByKey(errCounters)

	warnings := inv.ReadTable("WARNINGS_SYMBOL_BER_CHECK")
	warnByKey := make(map[model.PortKey][]model.Row)
	for _, r := range warnings.Rows {
		guid := model.NormalizeGUID(r.GetString("NodeGUID"))
		port := portFromRow(r, "PortNumber")
		k := model.PortKey{GUID: guid, Port: port}
		warnByKey[k] = append(warnByKey[k], r)
	}

	topo := inv.Topology()
	var rows []scorer.Row
	var frame anomaly.Frame

	for _, nd := range netDumpRows {
		guid := nd.NodeGUID
		port := nd.PortNum
		row := annotateRow(topo, guid, port)

		row["RawBER"] = nd.RawBER
		row["EffectiveBER"] = nd.EffectiveBER
		row["SymbolBER"] = nd.SymbolBER
		row["Log10 Raw BER"] = log10OrNull(nd.RawBER)
		row["Log10 Effective BER"] = log10OrNull(nd.EffectiveBER)
		row["Log10 Symbol BER"] = log10OrNull(nd.SymbolBER)

		symbolErrors := nd.SymbolErrorCount
		if c, ok := errByKey[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]; ok {
			if v, ok := c.GetFloat("SymbolErrorCounter"); ok {
				symbolErrors += v
			}
			if v, ok := c.GetFloat("SymbolErrorCounterExt"); ok {
				symbolErrors += v
			}
		}
		row["SymbolErrorCounter"] = symbolErrors

		sev := symbolBERSeverity(nd.SymbolBER, cfg)
		if symbolErrors >= cfg.BERFallbackMin() {
			sev = escalateByCrossCheck(sev, nd.EffectiveBER, nd.RawBER, cfg)
		}
		row["SymbolBERSeverity"] = string(sev)

		var anomalies []string
		var weights []float64
		switch sev {
		case anomaly.Critical:
			frame.Add(guid, port, anomaly.HighSymbolBER, 1.0)
			anomalies = append(anomalies, anomaly.Display(anomaly.HighSymbolBER))
			weights = append(weights, 1.0)
		case anomaly.Warning:
			frame.Add(guid, port, anomaly.HighSymbolBER, 0.5)
			anomalies = append(anomalies, anomaly.Display(anomaly.HighSymbolBER))
			weights = append(weights, 0.5)
		}

		if warnRows, ok := warnByKey[model.PortKey{GUID: model.NormalizeGUID(guid), Port: port}]; ok {
			for _, wr := range warnRows {
				event := wr.GetString("EventName")
				if s, ok := warningEventSeverity[event]; ok {
					w := 1.0
					if s == anomaly.Warning {
						w = 0.5
					} else if s == anomaly.Info {
						w = 0.2
					}
					frame.Add(guid, port, anomaly.HighSymbolBER, w)
					anomalies = append(anomalies, event)
					weights = append(weights, w)
				}
			}
		}

		if len(anomalies) > 0 {
			row["IBH Anomaly"] = joinStrings(anomalies)
			row["IBH Anomaly Weight"] = sumFloats(weights)
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: frame, Summary: summaryCount(rows, len(frame.Rows))}
}

func log10OrNull(v float64) any {
	if v <= 0 {
		return nil
	}
	return math.Log10(v)
}

// symbolBERSeverity classifies severity by comparing log10(symbol BER)
// against the two env-overridable thresholds (§4.4). A non-positive BER,
// or one whose log10 is below IBA_BER_SYMBOL_VALID_MIN_LOG10, is info.
func symbolBERSeverity(symbolBER float64, cfg *config.Config) anomaly.Severity {
	if symbolBER <= 0 {
		return anomaly.Info // "unknown" collapses to info for scoring purposes
	}
	logVal := math.Log10(symbolBER)
	if logVal < cfg.BERSymbolValidMinLog10() {
		return anomaly.Info
	}
	critLog := math.Log10(cfg.BERCriticalThreshold())
	warnLog := math.Log10(cfg.BERWarnThreshold())
	switch {
	case logVal >= critLog:
		return anomaly.Critical
	case logVal >= warnLog:
		return anomaly.Warning
	default:
		return anomaly.Info
	}
}

// escalateByCrossCheck bumps severity when effective/raw BER independently
// look bad, used once the error count crosses IBA_BER_FALLBACK_MIN (§4.4).
func escalateByCrossCheck(sev anomaly.Severity, effective, raw float64, cfg *config.Config) anomaly.Severity {
	critLog := math.Log10(cfg.BERCriticalThreshold())
	if effective > 0 && math.Log10(effective) >= critLog {
		return anomaly.Critical
	}
	if raw > 0 && math.Log10(raw) >= critLog && sev != anomaly.Critical {
		return anomaly.Warning
	}
	return sev
}

// netDumpExtPath derives the *.net_dump_ext companion path (§6): the
// consolidated dump's base name with its extension replaced by
// .net_dump_ext, in the dump's own directory. No directory search is made.
func netDumpExtPath(dumpPath string) string {
	dir := filepath.Dir(dumpPath)
	base := strings.TrimSuffix(filepath.Base(dumpPath), filepath.Ext(dumpPath))
	return filepath.Join(dir, base+".net_dump_ext")
}
