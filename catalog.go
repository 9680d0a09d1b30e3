package qcsummary

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrCatalog is returned when a catalog is missing a rule or carries thresholds of the wrong shape.
var ErrCatalog = errors.New("invalid rule catalog")

// Rule describes one catalog metric and its cutoffs.
type Rule struct {
	Metric      Metric
	Name        string
	Description string
	Thresholds  Thresholds
}

// Catalog is an immutable set of rules, one per metric. It is safe for concurrent use.
type Catalog struct {
	rules [metricCount]Rule
}

// NewCatalog validates rules and builds a catalog. Every metric must be covered exactly once.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	catalog := &Catalog{}

	var seen [metricCount]bool

	for _, rule := range rules {
		if rule.Metric < 0 || rule.Metric >= metricCount {
			return nil, fmt.Errorf("%w: %w %d", ErrCatalog, errUnknownMetric, int(rule.Metric))
		}

		if seen[rule.Metric] {
			return nil, fmt.Errorf("%w: duplicate rule for %s", ErrCatalog, rule.Metric)
		}

		seen[rule.Metric] = true
		catalog.rules[rule.Metric] = rule
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return catalog, nil
}

// DefaultCatalog returns the shared built-in catalog.
//
//nolint:gochecknoglobals // initialized once, never mutated
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	catalog, err := NewCatalog(defaultRules()...)
	if err != nil {
		panic(err)
	}

	return catalog
})

func defaultRules() []Rule {
	return []Rule{
		{
			Metric:      MetricBasicStatistics,
			Name:        "Basic Statistics",
			Description: "General information about the sample.",
			Thresholds:  NoThresholds{},
		},
		{
			Metric:      MetricPerBaseSequenceQuality,
			Name:        "Per Base Sequence Quality",
			Description: "Quality scores across all bases (Sanger / Illumina 1.9 encoding).",
			Thresholds: QualityBands{
				LowerQuartile: Bands{Warn: 10, Fail: 5},
				Median:        Bands{Warn: 25, Fail: 20},
			},
		},
		{
			Metric:      MetricPerSequenceQualityScores,
			Name:        "Per Sequence Quality Scores",
			Description: "The number of reads with a given mean quality score.",
			Thresholds:  Bands{Warn: 27, Fail: 20},
		},
		{
			Metric:      MetricPerBaseSequenceContent,
			Name:        "Per Base Sequence Content",
			Description: "The proportion of each base (A, T, G, C) at each position.",
			Thresholds:  Bands{Warn: 10, Fail: 20},
		},
		{
			Metric:      MetricPerBaseGCContent,
			Name:        "Per Base GC Content",
			Description: "GC content of each base compared to the overall mean GC content.",
			Thresholds:  Bands{Warn: 5, Fail: 10},
		},
		{
			Metric:      MetricPerSequenceGCContent,
			Name:        "Per Sequence GC Content",
			Description: "GC content distribution across all sequences.",
			Thresholds:  Bands{Warn: 15, Fail: 30},
		},
		{
			Metric:      MetricPerBaseNContent,
			Name:        "Per Base N Content",
			Description: "The percentage of bases called as 'N' (unknown) at each position.",
			Thresholds:  Bands{Warn: 5, Fail: 20},
		},
		{
			Metric:      MetricSequenceLengthDistribution,
			Name:        "Sequence Length Distribution",
			Description: "The distribution of fragment lengths.",
			Thresholds:  LengthPolicy{Warn: PolicyAllNotSame, Fail: PolicyZeroLength},
		},
		{
			Metric:      MetricDuplicateSequences,
			Name:        "Duplicate Sequences",
			Description: "The percentage of reads that are duplicates.",
			Thresholds:  Bands{Warn: 20, Fail: 50},
		},
		{
			Metric:      MetricOverrepresentedSequences,
			Name:        "Overrepresented Sequences",
			Description: "Sequences that appear more frequently than expected.",
			Thresholds:  Bands{Warn: 0.1, Fail: 1.0},
		},
		{
			Metric:      MetricOverrepresentedKmers,
			Name:        "Overrepresented Kmers",
			Description: "K-mers that are enriched compared to expected frequency.",
			Thresholds:  Bands{Warn: 3.0, Fail: 10.0},
		},
	}
}

// Rule returns the rule for a metric.
func (c *Catalog) Rule(metric Metric) (Rule, bool) {
	if metric < 0 || metric >= metricCount {
		return Rule{}, false
	}

	rule := c.rules[metric]

	return rule, rule.Thresholds != nil
}

// Rules returns a copy of every rule, in catalog order.
func (c *Catalog) Rules() []Rule {
	rules := make([]Rule, 0, metricCount)

	for _, rule := range c.rules {
		if rule.Thresholds != nil {
			rules = append(rules, rule)
		}
	}

	return rules
}

// Validate checks that every metric has a rule whose thresholds have the shape and direction the evaluator expects.
func (c *Catalog) Validate() error {
	for _, metric := range Metrics() {
		rule := c.rules[metric]
		if rule.Thresholds == nil {
			return fmt.Errorf("%w: missing rule for %s", ErrCatalog, metric)
		}

		if rule.Metric != metric {
			return fmt.Errorf("%w: rule for %s is filed under %s", ErrCatalog, rule.Metric, metric)
		}

		if err := validateThresholds(metric, rule.Thresholds); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCatalog, metric, err)
		}
	}

	return nil
}

var (
	errShape     = errors.New("unexpected thresholds shape")
	errDirection = errors.New("cutoffs in the wrong order")
	errNotFinite = errors.New("cutoffs must be finite")
	errPolicy    = errors.New("unknown length policy")
)

func validateThresholds(metric Metric, thresholds Thresholds) error {
	switch metric {
	case MetricBasicStatistics:
		if _, ok := thresholds.(NoThresholds); !ok {
			return fmt.Errorf("%w %T", errShape, thresholds)
		}
	case MetricPerBaseSequenceQuality:
		quality, ok := thresholds.(QualityBands)
		if !ok {
			return fmt.Errorf("%w %T", errShape, thresholds)
		}

		if err := validateBands(quality.LowerQuartile, false); err != nil {
			return fmt.Errorf("lower quartile: %w", err)
		}

		if err := validateBands(quality.Median, false); err != nil {
			return fmt.Errorf("median: %w", err)
		}
	case MetricPerSequenceQualityScores:
		bands, ok := thresholds.(Bands)
		if !ok {
			return fmt.Errorf("%w %T", errShape, thresholds)
		}

		return validateBands(bands, false)
	case MetricPerBaseSequenceContent,
		MetricPerBaseGCContent,
		MetricPerSequenceGCContent,
		MetricPerBaseNContent,
		MetricDuplicateSequences,
		MetricOverrepresentedSequences,
		MetricOverrepresentedKmers:
		bands, ok := thresholds.(Bands)
		if !ok {
			return fmt.Errorf("%w %T", errShape, thresholds)
		}

		return validateBands(bands, true)
	case MetricSequenceLengthDistribution:
		policy, ok := thresholds.(LengthPolicy)
		if !ok {
			return fmt.Errorf("%w %T", errShape, thresholds)
		}

		for _, tag := range []string{policy.Warn, policy.Fail} {
			if tag != "" && tag != PolicyAllNotSame && tag != PolicyZeroLength {
				return fmt.Errorf("%w %q", errPolicy, tag)
			}
		}
	case metricCount:
		return errUnknownMetric
	}

	return nil
}

func validateBands(bands Bands, ascending bool) error {
	for _, value := range []float64{bands.Warn, bands.Fail} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return errNotFinite
		}
	}

	// Equal cutoffs read as ascending, so descending bands need warn strictly above fail.
	if bands.Ascending() != ascending {
		return fmt.Errorf("%w: %s", errDirection, bands)
	}

	return nil
}
