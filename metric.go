package qcsummary

import (
	"errors"
	"fmt"
)

var errUnknownMetric = errors.New("unknown metric")

// Metric is one key of the closed QC catalog.
type Metric int

const (
	MetricBasicStatistics Metric = iota
	MetricPerBaseSequenceQuality
	MetricPerSequenceQualityScores
	MetricPerBaseSequenceContent
	MetricPerBaseGCContent
	MetricPerSequenceGCContent
	MetricPerBaseNContent
	MetricSequenceLengthDistribution
	MetricDuplicateSequences
	MetricOverrepresentedSequences
	MetricOverrepresentedKmers

	metricCount
)

// Metrics returns every catalog key in report order.
func Metrics() []Metric {
	all := make([]Metric, 0, metricCount)
	for metric := range metricCount {
		all = append(all, metric)
	}

	return all
}

func (m Metric) String() string {
	switch m {
	case MetricBasicStatistics:
		return "basic_statistics"
	case MetricPerBaseSequenceQuality:
		return "per_base_sequence_quality"
	case MetricPerSequenceQualityScores:
		return "per_sequence_quality_scores"
	case MetricPerBaseSequenceContent:
		return "per_base_sequence_content"
	case MetricPerBaseGCContent:
		return "per_base_gc_content"
	case MetricPerSequenceGCContent:
		return "per_sequence_gc_content"
	case MetricPerBaseNContent:
		return "per_base_n_content"
	case MetricSequenceLengthDistribution:
		return "sequence_length_distribution"
	case MetricDuplicateSequences:
		return "duplicate_sequences"
	case MetricOverrepresentedSequences:
		return "overrepresented_sequences"
	case MetricOverrepresentedKmers:
		return "overrepresented_kmers"
	case metricCount:
	}

	return "unknown"
}

// ParseMetric converts a catalog key to a Metric.
func ParseMetric(key string) (Metric, error) {
	for _, metric := range Metrics() {
		if metric.String() == key {
			return metric, nil
		}
	}

	return 0, fmt.Errorf("%w %q", errUnknownMetric, key)
}

// MarshalText implements encoding.TextMarshaler, so Metric can key JSON objects.
func (m Metric) MarshalText() ([]byte, error) {
	if m < 0 || m >= metricCount {
		return nil, fmt.Errorf("%w %d", errUnknownMetric, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	metric, err := ParseMetric(string(text))
	if err != nil {
		return err
	}

	*m = metric

	return nil
}
