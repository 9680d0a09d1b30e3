// Package output provides shared verdict serialization for qcsummary console, JSON and markdown output.
package output

import (
	"fmt"

	"github.com/farcloser/qcsummary"
)

// VerdictsToMap converts the verdicts of one report into the canonical map structure
// used for detailed output. Metrics are listed in catalog order.
func VerdictsToMap(verdicts qcsummary.Verdicts, catalog *qcsummary.Catalog) map[string]any {
	metrics := make([]any, 0, len(verdicts))

	for _, rule := range catalog.Rules() {
		verdict, ok := verdicts[rule.Metric]
		if !ok {
			continue
		}

		metrics = append(metrics, map[string]any{
			"metric":     rule.Metric.String(),
			"name":       rule.Name,
			"status":     verdict.Status.String(),
			"reason":     verdict.Reason,
			"thresholds": rule.Thresholds.String(),
		})
	}

	return map[string]any{
		"summary": SummaryToMap(verdicts),
		"metrics": metrics,
	}
}

// SummaryToMap counts verdicts per status.
func SummaryToMap(verdicts qcsummary.Verdicts) map[string]any {
	return map[string]any{
		"pass":    verdicts.Count(qcsummary.StatusPass),
		"warn":    verdicts.Count(qcsummary.StatusWarn),
		"fail":    verdicts.Count(qcsummary.StatusFail),
		"unknown": verdicts.Count(qcsummary.StatusUnknown),
		"worst":   verdicts.Worst().String(),
	}
}

// FriendlyMap renders verdicts as one readable line per metric, flagging anything that is not PASS.
func FriendlyMap(verdicts qcsummary.Verdicts, catalog *qcsummary.Catalog) map[string]any {
	lines := make([]any, 0, len(verdicts))

	for _, rule := range catalog.Rules() {
		verdict, ok := verdicts[rule.Metric]
		if !ok {
			continue
		}

		marker := "  "
		if verdict.Status == qcsummary.StatusWarn || verdict.Status == qcsummary.StatusFail {
			marker = "!!"
		}

		lines = append(lines, fmt.Sprintf("%s [%s] %s: %s", marker, verdict.Status, rule.Metric, verdict.Reason))
	}

	return map[string]any{
		"summary": fmt.Sprintf("%d failed, %d warnings, %d passed, %d unknown (worst: %s)",
			verdicts.Count(qcsummary.StatusFail),
			verdicts.Count(qcsummary.StatusWarn),
			verdicts.Count(qcsummary.StatusPass),
			verdicts.Count(qcsummary.StatusUnknown),
			verdicts.Worst(),
		),
		"verdicts": lines,
	}
}

// RuleToMap describes one catalog rule.
func RuleToMap(rule qcsummary.Rule) map[string]any {
	return map[string]any{
		"name":        rule.Name,
		"description": rule.Description,
		"thresholds":  rule.Thresholds.String(),
	}
}
