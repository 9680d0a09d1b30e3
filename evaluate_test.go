package qcsummary_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/farcloser/qcsummary"
	"github.com/farcloser/qcsummary/internal/extract"
	"github.com/farcloser/qcsummary/internal/fastqc"
	"github.com/farcloser/qcsummary/internal/types"
)

const (
	moduleBasicStatistics = ">>Basic Statistics\tpass\n" +
		"#Measure\tValue\n" +
		"Filename\tecoli_1.fastq.gz\n" +
		"Total Sequences\t1000\n" +
		"%GC\t50\n" +
		">>END_MODULE\n"
	moduleQuality = ">>Per base sequence quality\tpass\n" +
		"#Base\tMean\tMedian\tLower Quartile\tUpper Quartile\t10th Percentile\t90th Percentile\n" +
		"1\t34.0\t35.0\t32.0\t36.0\t30.0\t37.0\n" +
		"2\t33.5\t34.0\t31.0\t36.0\t29.0\t37.0\n" +
		">>END_MODULE\n"
	moduleQualityScores = ">>Per sequence quality scores\tpass\n" +
		"#Quality\tCount\n" +
		"30\t100.0\n" +
		"35\t900.0\n" +
		">>END_MODULE\n"
	moduleContent = ">>Per base sequence content\tpass\n" +
		"#Base\tG\tA\tT\tC\n" +
		"1\t25\t25\t25\t25\n" +
		">>END_MODULE\n"
	moduleSequenceGC = ">>Per sequence GC content\tpass\n" +
		"#GC Content\tCount\n" +
		"50\t1000.0\n" +
		">>END_MODULE\n"
	moduleN = ">>Per base N content\tpass\n" +
		"#Base\tN-Count\n" +
		"1\t0.0\n" +
		">>END_MODULE\n"
	moduleLength = ">>Sequence Length Distribution\tpass\n" +
		"#Length\tCount\n" +
		"100\t1000.0\n" +
		">>END_MODULE\n"
	moduleDuplication = ">>Sequence Duplication Levels\tpass\n" +
		"#Total Deduplicated Percentage\t90.0\n" +
		"#Duplication Level\tPercentage of deduplicated\tPercentage of total\n" +
		"1\t100.0\t100.0\n" +
		">>END_MODULE\n"

	healthyReport = "##FastQC\t0.11.9\n" +
		moduleBasicStatistics + moduleQuality + moduleQualityScores + moduleContent +
		moduleSequenceGC + moduleN + moduleLength + moduleDuplication
)

func parse(t *testing.T, text string) *fastqc.Report {
	t.Helper()

	report, err := fastqc.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	return report
}

func evaluateText(t *testing.T, text string) qcsummary.Verdicts {
	t.Helper()

	return qcsummary.Evaluate(extract.Extract(parse(t, text)), qcsummary.DefaultCatalog())
}

func expectVerdict(t *testing.T, verdicts qcsummary.Verdicts, metric qcsummary.Metric, status qcsummary.Status, reason string) {
	t.Helper()

	verdict, ok := verdicts[metric]
	if !ok {
		t.Fatalf("no verdict for %s", metric)
	}

	if verdict.Status != status {
		t.Errorf("%s: expected status %s, got %s (%s)", metric, status, verdict.Status, verdict.Reason)
	}

	if reason != "" && verdict.Reason != reason {
		t.Errorf("%s: expected reason %q, got %q", metric, reason, verdict.Reason)
	}
}

func TestEvaluateHealthyReport(t *testing.T) {
	t.Parallel()

	verdicts := evaluateText(t, healthyReport)

	if len(verdicts) != len(qcsummary.Metrics()) {
		t.Fatalf("expected %d verdicts, got %d", len(qcsummary.Metrics()), len(verdicts))
	}

	for _, metric := range qcsummary.Metrics() {
		expectVerdict(t, verdicts, metric, qcsummary.StatusPass, "")
	}

	if worst := verdicts.Worst(); worst != qcsummary.StatusPass {
		t.Errorf("expected worst status PASS, got %s", worst)
	}

	expectVerdict(t, verdicts, qcsummary.MetricPerSequenceQualityScores, qcsummary.StatusPass,
		"Most frequent mean quality is 35 (>= 27).")
	expectVerdict(t, verdicts, qcsummary.MetricDuplicateSequences, qcsummary.StatusPass,
		"Duplication rate is 10.00% (<= 20%).")
}

func TestEvaluateAlwaysEmitsEveryMetric(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "garbage\n>>END_MODULE\n", moduleQuality, healthyReport} {
		verdicts := evaluateText(t, text)

		data, err := json.Marshal(verdicts)
		if err != nil {
			t.Fatalf("unexpected marshal error: %v", err)
		}

		var decoded map[string]qcsummary.Verdict
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if len(decoded) != 11 {
			t.Errorf("expected 11 keys, got %d in %s", len(decoded), data)
		}
	}
}

func TestEvaluateMissingModules(t *testing.T) {
	t.Parallel()

	verdicts := evaluateText(t, moduleBasicStatistics)

	expectVerdict(t, verdicts, qcsummary.MetricBasicStatistics, qcsummary.StatusPass, "Basic statistics loaded.")
	expectVerdict(t, verdicts, qcsummary.MetricPerBaseSequenceQuality, qcsummary.StatusUnknown,
		"Data not available in report")
	expectVerdict(t, verdicts, qcsummary.MetricPerBaseGCContent, qcsummary.StatusUnknown,
		"Data not available in report")
	expectVerdict(t, verdicts, qcsummary.MetricDuplicateSequences, qcsummary.StatusUnknown,
		"Data not available in report")

	// Both overrepresentation modules are omitted upstream when nothing was found.
	expectVerdict(t, verdicts, qcsummary.MetricOverrepresentedSequences, qcsummary.StatusPass,
		"No overrepresented sequences found.")
	expectVerdict(t, verdicts, qcsummary.MetricOverrepresentedKmers, qcsummary.StatusPass,
		"No highly enriched kmers found.")

	if worst := verdicts.Worst(); worst != qcsummary.StatusPass {
		t.Errorf("UNKNOWN must not count as a failure, got worst %s", worst)
	}

	if count := verdicts.Count(qcsummary.StatusUnknown); count != 8 {
		t.Errorf("expected 8 unknown verdicts, got %d", count)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	t.Parallel()

	metrics := extract.Extract(parse(t, healthyReport+">>Kmer Content\twarn\n#Sequence\tCount\tPValue\tObs/Exp Max\n"+
		"AAAAA\t10\t0.0\t12.5\n>>END_MODULE\n"))

	first := qcsummary.Evaluate(metrics, qcsummary.DefaultCatalog())
	second := qcsummary.Evaluate(metrics, qcsummary.DefaultCatalog())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("verdicts differ between runs:\n%v\n%v", first, second)
	}
}

func TestPerBaseQualityBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		lowerQuartile float64
		median        float64
		expected      qcsummary.Status
		reason        string
	}{
		{
			name:          "cutoffs exactly do not fail",
			lowerQuartile: 5,
			median:        20,
			expected:      qcsummary.StatusWarn,
			reason:        "Reduced quality at 1 positions. Thresholds: LQ < 10 or Med < 25.",
		},
		{
			name:          "lower quartile below fail",
			lowerQuartile: 4.9,
			median:        30,
			expected:      qcsummary.StatusFail,
			reason:        "Low quality at 1 positions. Thresholds: LQ < 5 or Med < 20.",
		},
		{
			name:          "median below fail",
			lowerQuartile: 28,
			median:        19.9,
			expected:      qcsummary.StatusFail,
			reason:        "Low quality at 1 positions. Thresholds: LQ < 5 or Med < 20.",
		},
		{
			name:          "warn cutoffs exactly pass",
			lowerQuartile: 10,
			median:        25,
			expected:      qcsummary.StatusPass,
			reason:        "All bases passed quality thresholds.",
		},
		{
			name:          "lower quartile below warn",
			lowerQuartile: 9.9,
			median:        30,
			expected:      qcsummary.StatusWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verdicts := qcsummary.Evaluate(&types.Metrics{
				PerBaseSequenceQuality: []types.BaseQuality{
					{Base: "1", LowerQuartile: tt.lowerQuartile, Median: tt.median},
				},
			}, qcsummary.DefaultCatalog())

			expectVerdict(t, verdicts, qcsummary.MetricPerBaseSequenceQuality, tt.expected, tt.reason)
		})
	}
}

func TestPerBaseQualityCountsFailuresOnce(t *testing.T) {
	t.Parallel()

	verdicts := qcsummary.Evaluate(&types.Metrics{
		PerBaseSequenceQuality: []types.BaseQuality{
			{Base: "1", LowerQuartile: 2, Median: 10},
			{Base: "2", LowerQuartile: 8, Median: 30},
			{Base: "3", LowerQuartile: 3, Median: 30},
			{Base: "4", LowerQuartile: 30, Median: 35},
		},
	}, qcsummary.DefaultCatalog())

	expectVerdict(t, verdicts, qcsummary.MetricPerBaseSequenceQuality, qcsummary.StatusFail,
		"Low quality at 2 positions. Thresholds: LQ < 5 or Med < 20.")
}

func TestDuplicationBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate     float64
		expected qcsummary.Status
		reason   string
	}{
		{rate: 20.0, expected: qcsummary.StatusPass, reason: "Duplication rate is 20.00% (<= 20%)."},
		{rate: 20.01, expected: qcsummary.StatusWarn, reason: "Duplication rate is 20.01% (> 20%)."},
		{rate: 50.0, expected: qcsummary.StatusWarn, reason: "Duplication rate is 50.00% (> 20%)."},
		{rate: 50.01, expected: qcsummary.StatusFail, reason: "Duplication rate is 50.01% (> 50%)."},
	}

	for _, tt := range tests {
		verdicts := qcsummary.Evaluate(&types.Metrics{
			DuplicateSequences: &types.Duplication{Rate: tt.rate},
		}, qcsummary.DefaultCatalog())

		expectVerdict(t, verdicts, qcsummary.MetricDuplicateSequences, tt.expected, tt.reason)
	}
}

func TestDuplicationFromReport(t *testing.T) {
	t.Parallel()

	report := parse(t, ">>Sequence Duplication Levels\tpass\n#Total Deduplicated Percentage\t65.0\n>>END_MODULE\n")

	metrics := extract.Extract(report)
	if metrics.DuplicateSequences == nil || metrics.DuplicateSequences.Rate != 35.0 {
		t.Fatalf("expected duplication rate 35.0, got %+v", metrics.DuplicateSequences)
	}

	verdicts := qcsummary.Evaluate(metrics, qcsummary.DefaultCatalog())
	expectVerdict(t, verdicts, qcsummary.MetricDuplicateSequences, qcsummary.StatusWarn,
		"Duplication rate is 35.00% (> 20%).")
}

func TestBaseGCFromReport(t *testing.T) {
	t.Parallel()

	metrics := extract.Extract(parse(t, moduleBasicStatistics+moduleContent))

	expected := []types.BaseGC{{Base: "1", GC: 50.0, MeanGC: 50.0}}
	if !reflect.DeepEqual(metrics.PerBaseGCContent, expected) {
		t.Fatalf("expected %+v, got %+v", expected, metrics.PerBaseGCContent)
	}

	verdicts := qcsummary.Evaluate(metrics, qcsummary.DefaultCatalog())
	expectVerdict(t, verdicts, qcsummary.MetricPerBaseGCContent, qcsummary.StatusPass,
		"Per base GC content is consistent with mean.")
	expectVerdict(t, verdicts, qcsummary.MetricPerBaseSequenceContent, qcsummary.StatusPass,
		"Base content balance is within limits.")
}

func TestLengthDistribution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rows     string
		expected qcsummary.Status
		reason   string
	}{
		{
			name:     "single length",
			rows:     "100\t500\n",
			expected: qcsummary.StatusPass,
			reason:   "All sequences have the same length.",
		},
		{
			name:     "mixed lengths",
			rows:     "100\t500\n50\t10\n",
			expected: qcsummary.StatusWarn,
			reason:   "Sequences have different lengths.",
		},
		{
			name:     "zero length anywhere",
			rows:     "100\t500\n0\t1\n50\t10\n",
			expected: qcsummary.StatusFail,
			reason:   "Sequences with zero length detected.",
		},
		{
			name:     "ranges are labels",
			rows:     "35-39\t10\n",
			expected: qcsummary.StatusPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verdicts := evaluateText(t, ">>Sequence Length Distribution\tpass\n#Length\tCount\n"+tt.rows+">>END_MODULE\n")

			expectVerdict(t, verdicts, qcsummary.MetricSequenceLengthDistribution, tt.expected, tt.reason)
		})
	}
}

func TestPeakQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bins     []types.QualityCount
		expected qcsummary.Status
		reason   string
	}{
		{
			name:     "ties go to the first bin",
			bins:     []types.QualityCount{{Quality: 22, Count: 50}, {Quality: 36, Count: 50}},
			expected: qcsummary.StatusWarn,
			reason:   "Most frequent mean quality is 22 (< 27).",
		},
		{
			name:     "low peak",
			bins:     []types.QualityCount{{Quality: 12, Count: 90}, {Quality: 36, Count: 10}},
			expected: qcsummary.StatusFail,
			reason:   "Most frequent mean quality is 12 (< 20).",
		},
		{
			name:     "peak at warn cutoff passes",
			bins:     []types.QualityCount{{Quality: 27, Count: 90}},
			expected: qcsummary.StatusPass,
			reason:   "Most frequent mean quality is 27 (>= 27).",
		},
		{
			name:     "empty distribution has no peak",
			bins:     []types.QualityCount{},
			expected: qcsummary.StatusFail,
			reason:   "Most frequent mean quality is -1 (< 20).",
		},
		{
			name:     "counts at or below -1 never form a peak",
			bins:     []types.QualityCount{{Quality: 30, Count: -2}, {Quality: 36, Count: -1}},
			expected: qcsummary.StatusFail,
			reason:   "Most frequent mean quality is -1 (< 20).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verdicts := qcsummary.Evaluate(&types.Metrics{PerSequenceQualityScores: tt.bins}, qcsummary.DefaultCatalog())

			expectVerdict(t, verdicts, qcsummary.MetricPerSequenceQualityScores, tt.expected, tt.reason)
		})
	}
}

func TestBaseContentImbalance(t *testing.T) {
	t.Parallel()

	verdicts := qcsummary.Evaluate(&types.Metrics{
		PerBaseSequenceContent: []types.BaseContent{
			{Base: "1", G: 25, A: 40, T: 15, C: 20},
			{Base: "2", G: 30, A: 25, T: 25, C: 18},
			{Base: "3", G: 25, A: 25, T: 25, C: 25},
		},
	}, qcsummary.DefaultCatalog())

	expectVerdict(t, verdicts, qcsummary.MetricPerBaseSequenceContent, qcsummary.StatusFail,
		"High base imbalance (>20%) at 1 positions.")

	verdicts = qcsummary.Evaluate(&types.Metrics{
		PerBaseSequenceContent: []types.BaseContent{{Base: "1", G: 30, A: 25, T: 25, C: 18}},
	}, qcsummary.DefaultCatalog())

	expectVerdict(t, verdicts, qcsummary.MetricPerBaseSequenceContent, qcsummary.StatusWarn,
		"Moderate base imbalance (>10%) at 1 positions.")
}

func TestSequenceGCRelaysUpstreamStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   string
		expected qcsummary.Status
		reason   string
	}{
		{status: "pass", expected: qcsummary.StatusPass, reason: "GC distribution follows normal distribution."},
		{status: "warn", expected: qcsummary.StatusWarn, reason: "Sum of deviations from normal distribution > 15%."},
		{status: "FAIL", expected: qcsummary.StatusFail, reason: "Sum of deviations from normal distribution > 30%."},
		{status: "maybe", expected: qcsummary.StatusUnknown, reason: "Could not evaluate distribution."},
	}

	for _, tt := range tests {
		verdicts := qcsummary.Evaluate(&types.Metrics{
			PerSequenceGCContent: &types.ModuleStatus{Status: tt.status},
		}, qcsummary.DefaultCatalog())

		expectVerdict(t, verdicts, qcsummary.MetricPerSequenceGCContent, tt.expected, tt.reason)
	}
}

func TestListMetrics(t *testing.T) {
	t.Parallel()

	verdicts := qcsummary.Evaluate(&types.Metrics{
		PerBaseNContent: []types.BaseN{{Base: "1", NContent: 5}, {Base: "2", NContent: 6}},
		OverrepresentedSequences: []types.Overrepresented{
			{Sequence: "AAAA", Percentage: 0.1},
			{Sequence: "CCCC", Percentage: 0.5},
		},
		OverrepresentedKmers: []types.Kmer{
			{Sequence: "GGGGG", Enrichment: 10.5},
			{Sequence: "TTTTT", Enrichment: 11},
			{Sequence: "ACGTA", Enrichment: 4},
		},
	}, qcsummary.DefaultCatalog())

	expectVerdict(t, verdicts, qcsummary.MetricPerBaseNContent, qcsummary.StatusWarn, "N content > 5% at 1 positions.")
	expectVerdict(t, verdicts, qcsummary.MetricOverrepresentedSequences, qcsummary.StatusWarn,
		"Found 1 sequences > 0.1% of total.")
	expectVerdict(t, verdicts, qcsummary.MetricOverrepresentedKmers, qcsummary.StatusFail,
		"Found 2 kmers enriched > 10-fold.")
}

func TestEvaluateWithCustomCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := qcsummary.NewCatalog(replaceRule(qcsummary.Rule{
		Metric:     qcsummary.MetricDuplicateSequences,
		Name:       "Duplicate Sequences",
		Thresholds: qcsummary.Bands{Warn: 40, Fail: 60},
	})...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verdicts := qcsummary.Evaluate(&types.Metrics{DuplicateSequences: &types.Duplication{Rate: 35}}, catalog)

	expectVerdict(t, verdicts, qcsummary.MetricDuplicateSequences, qcsummary.StatusPass,
		"Duplication rate is 35.00% (<= 40%).")
}

func TestVerdictsMarshalInCatalogOrder(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(evaluateText(t, healthyReport))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(data)
	previous := -1

	for _, metric := range qcsummary.Metrics() {
		index := strings.Index(text, `"`+metric.String()+`"`)
		if index <= previous {
			t.Fatalf("%s is out of catalog order in %s", metric, text)
		}

		previous = index
	}

	if !strings.Contains(text, `"basic_statistics":{"status":"PASS","reason":"Basic statistics loaded."}`) {
		t.Errorf("unexpected verdict encoding: %s", text)
	}
}
