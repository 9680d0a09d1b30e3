package qcsummary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/qcsummary/internal/types"
)

const (
	reasonNotAvailable   = "Data not available in report"
	reasonNotImplemented = "Rule not implemented"

	noPeak = -1
)

/*
Usage:

report, err := fastqc.ParseFile(path)
verdicts := qcsummary.Evaluate(extract.Extract(report), qcsummary.DefaultCatalog())
if verdicts[qcsummary.MetricPerBaseSequenceQuality].Status == qcsummary.StatusFail {
    fmt.Println("Low quality positions!")
}
*/

// Verdict is the classification of one metric with the evidence that triggered it.
type Verdict struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// Verdicts maps each catalog metric to its verdict.
type Verdicts map[Metric]Verdict

// MarshalJSON writes the verdicts as an object keyed by catalog key, in catalog order.
func (v Verdicts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true

	for _, metric := range Metrics() {
		verdict, ok := v[metric]
		if !ok {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		key, err := json.Marshal(metric.String())
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(verdict)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Worst returns the most severe status among the verdicts, ignoring UNKNOWN.
func (v Verdicts) Worst() Status {
	worst := StatusUnknown

	for _, verdict := range v {
		worst = worse(worst, verdict.Status)
	}

	return worst
}

// Count returns how many verdicts carry the given status.
func (v Verdicts) Count(status Status) int {
	count := 0

	for _, verdict := range v {
		if verdict.Status == status {
			count++
		}
	}

	return count
}

// Evaluate classifies every metric of the catalog. Absent metrics are UNKNOWN.
func Evaluate(metrics *types.Metrics, catalog *Catalog) Verdicts {
	verdicts := make(Verdicts, metricCount)

	for _, rule := range catalog.Rules() {
		if !available(metrics, rule.Metric) {
			verdicts[rule.Metric] = Verdict{Status: StatusUnknown, Reason: reasonNotAvailable}

			continue
		}

		verdicts[rule.Metric] = evaluateRule(metrics, rule)
	}

	return verdicts
}

func available(metrics *types.Metrics, metric Metric) bool {
	switch metric {
	case MetricBasicStatistics:
		return metrics.BasicStatistics != nil
	case MetricPerBaseSequenceQuality:
		return metrics.PerBaseSequenceQuality != nil
	case MetricPerSequenceQualityScores:
		return metrics.PerSequenceQualityScores != nil
	case MetricPerBaseSequenceContent:
		return metrics.PerBaseSequenceContent != nil
	case MetricPerBaseGCContent:
		return metrics.PerBaseGCContent != nil
	case MetricPerSequenceGCContent:
		return metrics.PerSequenceGCContent != nil
	case MetricPerBaseNContent:
		return metrics.PerBaseNContent != nil
	case MetricSequenceLengthDistribution:
		return metrics.SequenceLengthDistribution != nil
	case MetricDuplicateSequences:
		return metrics.DuplicateSequences != nil
	case MetricOverrepresentedSequences:
		return metrics.OverrepresentedSequences != nil
	case MetricOverrepresentedKmers:
		return metrics.OverrepresentedKmers != nil
	case metricCount:
	}

	return false
}

//nolint:forcetypeassert // shapes are enforced by Catalog.Validate
func evaluateRule(metrics *types.Metrics, rule Rule) Verdict {
	switch rule.Metric {
	case MetricBasicStatistics:
		return Verdict{Status: StatusPass, Reason: "Basic statistics loaded."}
	case MetricPerBaseSequenceQuality:
		return perBaseQuality(metrics.PerBaseSequenceQuality, rule.Thresholds.(QualityBands))
	case MetricPerSequenceQualityScores:
		return peakQuality(metrics.PerSequenceQualityScores, rule.Thresholds.(Bands))
	case MetricPerBaseSequenceContent:
		return baseContent(metrics.PerBaseSequenceContent, rule.Thresholds.(Bands))
	case MetricPerBaseGCContent:
		return baseGC(metrics.PerBaseGCContent, rule.Thresholds.(Bands))
	case MetricPerSequenceGCContent:
		return sequenceGC(metrics.PerSequenceGCContent, rule.Thresholds.(Bands))
	case MetricPerBaseNContent:
		return baseN(metrics.PerBaseNContent, rule.Thresholds.(Bands))
	case MetricSequenceLengthDistribution:
		return lengthDistribution(metrics.SequenceLengthDistribution, rule.Thresholds.(LengthPolicy))
	case MetricDuplicateSequences:
		return duplication(metrics.DuplicateSequences, rule.Thresholds.(Bands))
	case MetricOverrepresentedSequences:
		return overrepresented(metrics.OverrepresentedSequences, rule.Thresholds.(Bands))
	case MetricOverrepresentedKmers:
		return kmers(metrics.OverrepresentedKmers, rule.Thresholds.(Bands))
	case metricCount:
	}

	return Verdict{Status: StatusUnknown, Reason: reasonNotImplemented}
}

// tally counts failing and warning items. An item counted as failing is never counted as warning.
type tally struct {
	failures int
	warnings int
}

func (t *tally) add(status Status) {
	switch status {
	case StatusFail:
		t.failures++
	case StatusWarn:
		t.warnings++
	case StatusPass, StatusUnknown:
	}
}

// verdict picks FAIL, then WARN, then PASS, formatting the matching reason with the item count.
func (t tally) verdict(failFormat, warnFormat, pass string, failArgs, warnArgs []any) Verdict {
	if t.failures > 0 {
		return Verdict{Status: StatusFail, Reason: fmt.Sprintf(failFormat, append([]any{t.failures}, failArgs...)...)}
	}

	if t.warnings > 0 {
		return Verdict{Status: StatusWarn, Reason: fmt.Sprintf(warnFormat, append([]any{t.warnings}, warnArgs...)...)}
	}

	return Verdict{Status: StatusPass, Reason: pass}
}

func perBaseQuality(points []types.BaseQuality, bands QualityBands) Verdict {
	var counts tally

	for _, point := range points {
		counts.add(bands.Match(point.LowerQuartile, point.Median))
	}

	return counts.verdict(
		"Low quality at %d positions. Thresholds: LQ < %g or Med < %g.",
		"Reduced quality at %d positions. Thresholds: LQ < %g or Med < %g.",
		"All bases passed quality thresholds.",
		[]any{bands.LowerQuartile.Fail, bands.Median.Fail},
		[]any{bands.LowerQuartile.Warn, bands.Median.Warn},
	)
}

// peakQuality classifies the most frequent mean quality. Ties go to the first bin. Only counts above
// noPeak qualify: an empty or degenerate distribution has no peak and reports noPeak.
func peakQuality(bins []types.QualityCount, bands Bands) Verdict {
	peak := noPeak

	if len(bins) > 0 {
		counts := make([]float64, len(bins))
		for i, bin := range bins {
			counts[i] = bin.Count
		}

		if idx := floats.MaxIdx(counts); counts[idx] > noPeak {
			peak = bins[idx].Quality
		}
	}

	switch bands.Match(float64(peak)) {
	case StatusFail:
		return Verdict{
			Status: StatusFail,
			Reason: fmt.Sprintf("Most frequent mean quality is %d (< %g).", peak, bands.Fail),
		}
	case StatusWarn:
		return Verdict{
			Status: StatusWarn,
			Reason: fmt.Sprintf("Most frequent mean quality is %d (< %g).", peak, bands.Warn),
		}
	case StatusPass, StatusUnknown:
	}

	return Verdict{Status: StatusPass, Reason: fmt.Sprintf("Most frequent mean quality is %d (>= %g).", peak, bands.Warn)}
}

func baseContent(points []types.BaseContent, bands Bands) Verdict {
	var counts tally

	for _, point := range points {
		diffAT := math.Abs(point.A - point.T)
		diffGC := math.Abs(point.G - point.C)
		counts.add(worse(bands.Match(diffAT), bands.Match(diffGC)))
	}

	return counts.verdict(
		"High base imbalance (>%[2]g%%) at %[1]d positions.",
		"Moderate base imbalance (>%[2]g%%) at %[1]d positions.",
		"Base content balance is within limits.",
		[]any{bands.Fail},
		[]any{bands.Warn},
	)
}

func baseGC(points []types.BaseGC, bands Bands) Verdict {
	var counts tally

	for _, point := range points {
		counts.add(bands.Match(math.Abs(point.GC - point.MeanGC)))
	}

	return counts.verdict(
		"GC content deviates >%[2]g%% from mean at %[1]d positions.",
		"GC content deviates >%[2]g%% from mean at %[1]d positions.",
		"Per base GC content is consistent with mean.",
		[]any{bands.Fail},
		[]any{bands.Warn},
	)
}

// sequenceGC relays the upstream tool's own verdict.
func sequenceGC(status *types.ModuleStatus, bands Bands) Verdict {
	switch strings.ToUpper(strings.TrimSpace(status.Status)) {
	case "FAIL":
		return Verdict{
			Status: StatusFail,
			Reason: fmt.Sprintf("Sum of deviations from normal distribution > %g%%.", bands.Fail),
		}
	case "WARN":
		return Verdict{
			Status: StatusWarn,
			Reason: fmt.Sprintf("Sum of deviations from normal distribution > %g%%.", bands.Warn),
		}
	case "PASS":
		return Verdict{Status: StatusPass, Reason: "GC distribution follows normal distribution."}
	}

	return Verdict{Status: StatusUnknown, Reason: "Could not evaluate distribution."}
}

func baseN(points []types.BaseN, bands Bands) Verdict {
	var counts tally

	for _, point := range points {
		counts.add(bands.Match(point.NContent))
	}

	return counts.verdict(
		"N content > %[2]g%% at %[1]d positions.",
		"N content > %[2]g%% at %[1]d positions.",
		"N content is low.",
		[]any{bands.Fail},
		[]any{bands.Warn},
	)
}

func lengthDistribution(bins []types.LengthCount, policy LengthPolicy) Verdict {
	distinct := make(map[string]struct{}, len(bins))
	zero := false

	for _, bin := range bins {
		length := strings.TrimSpace(bin.Length)
		distinct[length] = struct{}{}

		if length == "0" {
			zero = true
		}
	}

	triggered := func(tag string) (string, bool) {
		switch tag {
		case PolicyZeroLength:
			return "Sequences with zero length detected.", zero
		case PolicyAllNotSame:
			return "Sequences have different lengths.", len(distinct) > 1
		}

		return "", false
	}

	if reason, ok := triggered(policy.Fail); ok {
		return Verdict{Status: StatusFail, Reason: reason}
	}

	if reason, ok := triggered(policy.Warn); ok {
		return Verdict{Status: StatusWarn, Reason: reason}
	}

	return Verdict{Status: StatusPass, Reason: "All sequences have the same length."}
}

func duplication(dup *types.Duplication, bands Bands) Verdict {
	switch bands.Match(dup.Rate) {
	case StatusFail:
		return Verdict{
			Status: StatusFail,
			Reason: fmt.Sprintf("Duplication rate is %.2f%% (> %g%%).", dup.Rate, bands.Fail),
		}
	case StatusWarn:
		return Verdict{
			Status: StatusWarn,
			Reason: fmt.Sprintf("Duplication rate is %.2f%% (> %g%%).", dup.Rate, bands.Warn),
		}
	case StatusPass, StatusUnknown:
	}

	return Verdict{
		Status: StatusPass,
		Reason: fmt.Sprintf("Duplication rate is %.2f%% (<= %g%%).", dup.Rate, bands.Warn),
	}
}

func overrepresented(items []types.Overrepresented, bands Bands) Verdict {
	var counts tally

	for _, item := range items {
		counts.add(bands.Match(item.Percentage))
	}

	return counts.verdict(
		"Found %d sequences > %g%% of total.",
		"Found %d sequences > %g%% of total.",
		"No overrepresented sequences found.",
		[]any{bands.Fail},
		[]any{bands.Warn},
	)
}

func kmers(items []types.Kmer, bands Bands) Verdict {
	var counts tally

	for _, item := range items {
		counts.add(bands.Match(item.Enrichment))
	}

	return counts.verdict(
		"Found %d kmers enriched > %g-fold.",
		"Found %d kmers enriched > %g-fold.",
		"No highly enriched kmers found.",
		[]any{bands.Fail},
		[]any{bands.Warn},
	)
}
