// Package extract maps the generic module table of a parsed report onto typed metric records.
//
// Every function is pure. Rows whose required fields are missing or not numeric are dropped whole.
package extract

import (
	"strconv"
	"strings"

	"github.com/farcloser/qcsummary/internal/fastqc"
	"github.com/farcloser/qcsummary/internal/types"
)

const gcKey = "%GC"

// Extract builds every catalog metric from a parsed report.
func Extract(report *fastqc.Report) *types.Metrics {
	metrics := &types.Metrics{
		BasicStatistics:            BasicStatistics(report),
		PerBaseSequenceQuality:     PerBaseSequenceQuality(report),
		PerSequenceQualityScores:   PerSequenceQualityScores(report),
		PerBaseSequenceContent:     PerBaseSequenceContent(report),
		PerSequenceGCContent:       PerSequenceGCContent(report),
		PerBaseNContent:            PerBaseNContent(report),
		SequenceLengthDistribution: SequenceLengthDistribution(report),
		DuplicateSequences:         DuplicateSequences(report),
		OverrepresentedSequences:   OverrepresentedSequences(report),
		OverrepresentedKmers:       OverrepresentedKmers(report),
	}

	metrics.PerBaseGCContent = PerBaseGCContent(metrics.PerBaseSequenceContent, metrics.BasicStatistics)

	return metrics
}

// BasicStatistics maps each measure to its value.
func BasicStatistics(report *fastqc.Report) map[string]string {
	module, ok := report.Module(fastqc.ModuleBasicStatistics)
	if !ok {
		return nil
	}

	stats := make(map[string]string, len(module.Rows))

	for _, row := range module.Rows {
		if len(row) >= 2 {
			stats[row[0]] = row[1]
		}
	}

	return stats
}

// PerBaseSequenceQuality reads median (column 2) and lower quartile (column 3) per position.
func PerBaseSequenceQuality(report *fastqc.Report) []types.BaseQuality {
	module, ok := report.Module(fastqc.ModulePerBaseSequenceQuality)
	if !ok {
		return nil
	}

	points := make([]types.BaseQuality, 0, len(module.Rows))

	for _, row := range module.Rows {
		median, ok := floatAt(row, 2)
		if !ok {
			continue
		}

		lowerQuartile, ok := floatAt(row, 3)
		if !ok {
			continue
		}

		points = append(points, types.BaseQuality{Base: row[0], Median: median, LowerQuartile: lowerQuartile})
	}

	return points
}

// PerSequenceQualityScores reads integer quality bins and their read counts.
func PerSequenceQualityScores(report *fastqc.Report) []types.QualityCount {
	module, ok := report.Module(fastqc.ModulePerSequenceQualityScores)
	if !ok {
		return nil
	}

	bins := make([]types.QualityCount, 0, len(module.Rows))

	for _, row := range module.Rows {
		quality, ok := intAt(row, 0)
		if !ok {
			continue
		}

		count, ok := floatAt(row, 1)
		if !ok {
			continue
		}

		bins = append(bins, types.QualityCount{Quality: quality, Count: count})
	}

	return bins
}

// PerBaseSequenceContent reads the G, A, T, C columns, in that order.
func PerBaseSequenceContent(report *fastqc.Report) []types.BaseContent {
	module, ok := report.Module(fastqc.ModulePerBaseSequenceContent)
	if !ok {
		return nil
	}

	points := make([]types.BaseContent, 0, len(module.Rows))

	for _, row := range module.Rows {
		values, ok := floatsAt(row, 1, 2, 3, 4)
		if !ok {
			continue
		}

		points = append(points, types.BaseContent{
			Base: row[0],
			G:    values[0],
			A:    values[1],
			T:    values[2],
			C:    values[3],
		})
	}

	return points
}

// PerBaseGCContent derives G+C per position from the sequence content, next to the sample-wide %GC.
// It is absent when either input is absent or empty, or when %GC is not a number. A missing %GC
// measure counts as zero.
func PerBaseGCContent(content []types.BaseContent, stats map[string]string) []types.BaseGC {
	if len(content) == 0 || len(stats) == 0 {
		return nil
	}

	var meanGC float64

	if raw, ok := stats[gcKey]; ok {
		value, err := parseFloat(raw)
		if err != nil {
			return nil
		}

		meanGC = value
	}

	points := make([]types.BaseGC, 0, len(content))

	for _, point := range content {
		points = append(points, types.BaseGC{Base: point.Base, GC: point.G + point.C, MeanGC: meanGC})
	}

	return points
}

// PerSequenceGCContent only carries the upstream status of the module.
func PerSequenceGCContent(report *fastqc.Report) *types.ModuleStatus {
	module, ok := report.Module(fastqc.ModulePerSequenceGCContent)
	if !ok {
		return nil
	}

	return &types.ModuleStatus{Status: module.Status}
}

// PerBaseNContent reads the N percentage per position.
func PerBaseNContent(report *fastqc.Report) []types.BaseN {
	module, ok := report.Module(fastqc.ModulePerBaseNContent)
	if !ok {
		return nil
	}

	points := make([]types.BaseN, 0, len(module.Rows))

	for _, row := range module.Rows {
		value, ok := floatAt(row, 1)
		if !ok {
			continue
		}

		points = append(points, types.BaseN{Base: row[0], NContent: value})
	}

	return points
}

// SequenceLengthDistribution keeps the length label verbatim and parses the count.
func SequenceLengthDistribution(report *fastqc.Report) []types.LengthCount {
	module, ok := report.Module(fastqc.ModuleSequenceLengthDistrib)
	if !ok {
		return nil
	}

	bins := make([]types.LengthCount, 0, len(module.Rows))

	for _, row := range module.Rows {
		count, ok := floatAt(row, 1)
		if !ok {
			continue
		}

		bins = append(bins, types.LengthCount{Length: row[0], Count: count})
	}

	return bins
}

// DuplicateSequences is 100 minus the total deduplicated percentage.
func DuplicateSequences(report *fastqc.Report) *types.Duplication {
	if report.TotalDeduplicatedPercentage == nil {
		return nil
	}

	return &types.Duplication{Rate: 100.0 - *report.TotalDeduplicatedPercentage}
}

// OverrepresentedSequences reads the percentage column (2). The upstream tool omits the module when
// nothing is overrepresented, so a missing module yields an empty, non-nil list.
func OverrepresentedSequences(report *fastqc.Report) []types.Overrepresented {
	module, ok := report.Module(fastqc.ModuleOverrepresentedSequences)
	if !ok {
		return []types.Overrepresented{}
	}

	items := make([]types.Overrepresented, 0, len(module.Rows))

	for _, row := range module.Rows {
		value, ok := floatAt(row, 2)
		if !ok {
			continue
		}

		items = append(items, types.Overrepresented{Sequence: row[0], Percentage: value})
	}

	return items
}

// OverrepresentedKmers reads Obs/Exp Max (column 3). Like overrepresented sequences, a missing module
// yields an empty, non-nil list.
func OverrepresentedKmers(report *fastqc.Report) []types.Kmer {
	module, ok := report.Module(fastqc.ModuleKmerContent)
	if !ok {
		return []types.Kmer{}
	}

	items := make([]types.Kmer, 0, len(module.Rows))

	for _, row := range module.Rows {
		value, ok := floatAt(row, 3)
		if !ok {
			continue
		}

		items = append(items, types.Kmer{Sequence: row[0], Enrichment: value})
	}

	return items
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}

func floatAt(row []string, index int) (float64, bool) {
	if index >= len(row) {
		return 0, false
	}

	value, err := parseFloat(row[index])

	return value, err == nil
}

func floatsAt(row []string, indexes ...int) ([]float64, bool) {
	values := make([]float64, 0, len(indexes))

	for _, index := range indexes {
		value, ok := floatAt(row, index)
		if !ok {
			return nil, false
		}

		values = append(values, value)
	}

	return values, true
}

func intAt(row []string, index int) (int, bool) {
	if index >= len(row) {
		return 0, false
	}

	value, err := strconv.Atoi(strings.TrimSpace(row[index]))

	return value, err == nil
}
