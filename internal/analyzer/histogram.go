package analyzer

import (
	"github.com/ftahirops/ibhealth/internal/anomaly"
	"github.com/ftahirops/ibhealth/internal/dataset"
	"github.com/ftahirops/ibhealth/internal/model"
	"github.com/ftahirops/ibhealth/internal/scorer"
)

// Histogram implements Family G (§4.4): latency percentile estimation
// from PERFORMANCE_HISTOGRAM_PORTS_DATA bin counts.
type Histogram struct{}

func (Histogram) Name() string { return "histogram" }

func (Histogram) Analyze(inv *dataset.Inventory) Result {
	frame := inv.ReadTable("PERFORMANCE_HISTOGRAM_PORTS_DATA")
	if frame.Empty() {
		return Result{Summary: summaryCount(nil, 0)}
	}
	topo := inv.Topology()

	var rows []scorer.Row
	var anomalyFrame anomaly.Frame
	for _, r := range frame.Rows {
		guid := r.GetString("NodeGUID")
		port := portFromRow(r, "PortNumber")
		row := annotateRow(topo, guid, port)

		bins := extractBins(r)
		minSampled, _ := r.GetFloat("min_sampled")
		maxSampled, _ := r.GetFloat("max_sampled")

		median, p99, upperRatio, total := percentileStats(bins, minSampled, maxSampled)
		row["MedianLatency"] = median
		row["P99Latency"] = p99
		row["UpperTwoBucketRatio"] = upperRatio
		row["TotalSamples"] = total

		outlier := false
		if median > 0 && p99/median >= 3 {
			outlier = true
		}
		if upperRatio >= 0.1 {
			outlier = true
		}
		row["RttOutlier"] = outlier

		if outlier {
			ratio := 0.0
			if median > 0 {
				ratio = p99 / median
			}
			w := clamp(0.1, 5.0, ratio/5+upperRatio*2)
			anomalyFrame.Add(guid, port, anomaly.LatencyOutlier, w)
			row["IBH Anomaly"] = anomaly.Display(anomaly.LatencyOutlier)
			row["IBH Anomaly Weight"] = w
		}

		rows = append(rows, row)
	}

	return Result{Rows: rows, Anomalies: anomalyFrame, Summary: summaryCount(rows, len(anomalyFrame.Rows))}
}

// extractBins reads bin[0]..bin[N] columns in order until one is absent.
func extractBins(r model.Row) []float64 {
	var bins []float64
	for i := 0; ; i++ {
		col := "bin[" + itoa(i) + "]"
		v, ok := r.GetFloat(col)
		if !ok {
			if i == 0 {
				continue // some dumps 1-index; tolerate a missing bin[0]
			}
			break
		}
		bins = append(bins, v)
	}
	return bins
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// percentileStats walks cumulative bin counts to estimate the median and
// p99 sample value, per §4.4 Family G / scenario test 6: bucket index is
// the first bucket whose cumulative count crosses q*total, mapped into
// [min_sampled, max_sampled] via min + span*(idx+0.5)/n_bins.
func percentileStats(bins []float64, minSampled, maxSampled float64) (median, p99, upperRatio, total float64) {
	n := len(bins)
	if n == 0 {
		return 0, 0, 0, 0
	}
	for _, b := range bins {
		total += b
	}
	if total == 0 {
		return 0, 0, 0, 0
	}
	span := maxSampled - minSampled

	bucketValue := func(idx int) float64 {
		return minSampled + span*(float64(idx)+0.5)/float64(n)
	}

	medianIdx := quantileBucket(bins, total, 0.5)
	p99Idx := quantileBucket(bins, total, 0.99)
	median = bucketValue(medianIdx)
	p99 = bucketValue(p99Idx)

	if n >= 2 {
		upper := bins[n-2] + bins[n-1]
		upperRatio = upper / total
	}

	return median, p99, upperRatio, total
}

func quantileBucket(bins []float64, total, q float64) int {
	threshold := q * total
	cum := 0.0
	for i, b := range bins {
		cum += b
		if cum >= threshold {
			return i
		}
	}
	return len(bins) - 1
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
