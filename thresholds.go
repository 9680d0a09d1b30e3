package qcsummary

import "fmt"

// Thresholds is the metric-specific shape of a rule's cutoffs: Bands, QualityBands, LengthPolicy or NoThresholds.
type Thresholds interface {
	fmt.Stringer
	thresholds()
}

// NoThresholds marks an informational metric that never fails.
type NoThresholds struct{}

func (NoThresholds) thresholds() {}

func (NoThresholds) String() string {
	return "none"
}

// Bands holds the warn and fail cutoffs for one measured value. Direction is implicit:
// if Warn <= Fail, higher values are worse (e.g. duplication rate).
// If Warn > Fail, lower values are worse (e.g. quality scores).
// Comparisons are strict: a value equal to a cutoff does not reach that tier.
type Bands struct {
	Warn float64 `yaml:"warn"`
	Fail float64 `yaml:"fail"`
}

func (Bands) thresholds() {}

// Ascending reports whether higher values are worse.
func (b Bands) Ascending() bool {
	return b.Warn <= b.Fail
}

// Match returns the status for a value: StatusFail, StatusWarn or StatusPass.
func (b Bands) Match(value float64) Status {
	if b.Ascending() {
		if value > b.Fail {
			return StatusFail
		}

		if value > b.Warn {
			return StatusWarn
		}

		return StatusPass
	}

	if value < b.Fail {
		return StatusFail
	}

	if value < b.Warn {
		return StatusWarn
	}

	return StatusPass
}

func (b Bands) String() string {
	return fmt.Sprintf("warn %g, fail %g", b.Warn, b.Fail)
}

// QualityBands are the per base quality cutoffs, applied to the lower quartile and the median together.
type QualityBands struct {
	LowerQuartile Bands `yaml:"lower_quartile"`
	Median        Bands `yaml:"median"`
}

func (QualityBands) thresholds() {}

// Match returns the worse of the lower quartile and median statuses.
func (q QualityBands) Match(lowerQuartile, median float64) Status {
	return worse(q.LowerQuartile.Match(lowerQuartile), q.Median.Match(median))
}

func (q QualityBands) String() string {
	return fmt.Sprintf("lower quartile (%s), median (%s)", q.LowerQuartile, q.Median)
}

// Length distribution policy tags.
const (
	PolicyAllNotSame = "all_not_same"
	PolicyZeroLength = "zero_length"
)

// LengthPolicy is the symbolic rule for the sequence length distribution.
type LengthPolicy struct {
	Warn string `yaml:"warn"`
	Fail string `yaml:"fail"`
}

func (LengthPolicy) thresholds() {}

func (l LengthPolicy) String() string {
	return fmt.Sprintf("warn %s, fail %s", l.Warn, l.Fail)
}
