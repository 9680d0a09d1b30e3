package output

import (
	"fmt"

	"github.com/farcloser/qcsummary"
	"github.com/farcloser/qcsummary/internal/digest"
)

// DigestToMap converts a digest into the structure printed by the digest command.
func DigestToMap(result *digest.Digest) map[string]any {
	samples := make([]any, 0, len(result.Samples))
	for _, sample := range result.Samples {
		samples = append(samples, fmt.Sprintf("[%s] %s: %s", sample.Worst, sample.Name, countsLine(sample.Counts)))
	}

	metrics := make(map[string]any, len(result.Metrics))
	for _, breakdown := range result.Metrics {
		metrics[breakdown.Metric.String()] = countsLine(breakdown.Counts)
	}

	meta := map[string]any{
		"summary": fmt.Sprintf("%d samples: %d failed, %d warned, %d passed, %d unknown",
			len(result.Samples), result.Worst.Fail, result.Worst.Warn, result.Worst.Pass, result.Worst.Unknown),
		"pass_rate": fmt.Sprintf("%.1f%% mean, %.1f sd", result.PassRateMean*100, result.PassRateStdDev*100),
		"samples":   samples,
		"metrics":   metrics,
	}

	if len(result.Errors) > 0 {
		unreadable := make([]any, 0, len(result.Errors))
		for _, failure := range result.Errors {
			unreadable = append(unreadable, fmt.Sprintf("%s: %v", failure.File, failure.Err))
		}

		meta["unreadable"] = unreadable
	}

	return meta
}

// AffectedToMap lists the samples flagged for one metric.
func AffectedToMap(metric qcsummary.Metric, entries []digest.Entry) map[string]any {
	lines := make([]any, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", entry.Verdict.Status, entry.Sample, entry.Verdict.Reason))
	}

	return map[string]any{
		"summary": fmt.Sprintf("%d samples flagged for %s", len(entries), metric),
		"samples": lines,
	}
}

func countsLine(counts digest.Counts) string {
	return fmt.Sprintf("fail %d, warn %d, pass %d, unknown %d", counts.Fail, counts.Warn, counts.Pass, counts.Unknown)
}
