// Package digest aggregates the per-sample verdict files written by qcsummary into a run overview.
package digest

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/qcsummary"
	"github.com/farcloser/qcsummary/internal/emit"
)

var (
	// ErrNotDirectory is returned when the digest input is not a readable directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrNoReports is returned when the directory holds no verdict files.
	ErrNoReports = errors.New("no " + emit.Suffix + " files found")
)

// Counts tallies verdicts per status.
type Counts struct {
	Pass    int
	Warn    int
	Fail    int
	Unknown int
}

func (c *Counts) add(status qcsummary.Status) {
	switch status {
	case qcsummary.StatusPass:
		c.Pass++
	case qcsummary.StatusWarn:
		c.Warn++
	case qcsummary.StatusFail:
		c.Fail++
	case qcsummary.StatusUnknown:
		c.Unknown++
	}
}

// Total is the number of verdicts counted.
func (c Counts) Total() int {
	return c.Pass + c.Warn + c.Fail + c.Unknown
}

// Sample is one verdict file.
type Sample struct {
	Name     string
	File     string
	Verdicts qcsummary.Verdicts
	Counts   Counts
	Worst    qcsummary.Status
}

// PassRate is the share of the sample's metrics that passed.
func (s Sample) PassRate() float64 {
	if s.Counts.Total() == 0 {
		return 0
	}

	return float64(s.Counts.Pass) / float64(s.Counts.Total())
}

// MetricBreakdown tallies one metric across samples.
type MetricBreakdown struct {
	Metric qcsummary.Metric
	Counts Counts
}

// FileError records a verdict file that could not be read back.
type FileError struct {
	File string
	Err  error
}

// Digest is the overview of one output directory.
type Digest struct {
	Dir string
	// Samples are sorted worst first, then by failure and warning counts, then by name.
	Samples []Sample
	// Metrics are in catalog order.
	Metrics []MetricBreakdown
	Errors  []FileError
	// Worst counts samples by their worst status.
	Worst          Counts
	PassRateMean   float64
	PassRateStdDev float64
}

// Entry is the verdict of one sample for one metric.
type Entry struct {
	Sample  string
	Verdict qcsummary.Verdict
}

// Load reads every verdict file in dir. Unreadable files are recorded in Errors and skipped.
func Load(dir string) (*Digest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%q: %w: %w", dir, ErrNotDirectory, err)
	}

	var (
		samples  []Sample
		failures []FileError
	)

	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), emit.Suffix)
		if !ok || entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		verdicts, err := readVerdicts(path)
		if err != nil {
			failures = append(failures, FileError{File: path, Err: err})

			continue
		}

		samples = append(samples, Sample{Name: name, File: path, Verdicts: verdicts})
	}

	if len(samples) == 0 && len(failures) == 0 {
		return nil, fmt.Errorf("%q: %w", dir, ErrNoReports)
	}

	digest := Build(samples)
	digest.Dir = dir
	digest.Errors = failures

	return digest, nil
}

func readVerdicts(path string) (qcsummary.Verdicts, error) {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from the listed output directory
	if err != nil {
		return nil, err
	}

	var verdicts qcsummary.Verdicts
	if err := json.Unmarshal(data, &verdicts); err != nil {
		return nil, fmt.Errorf("decoding verdicts: %w", err)
	}

	return verdicts, nil
}

// Build aggregates samples. Counts and worst statuses are recomputed from the verdicts.
func Build(samples []Sample) *Digest {
	digest := &Digest{Samples: make([]Sample, 0, len(samples))}

	breakdowns := make(map[qcsummary.Metric]*Counts, len(qcsummary.Metrics()))
	for _, metric := range qcsummary.Metrics() {
		breakdowns[metric] = &Counts{}
	}

	rates := make([]float64, 0, len(samples))

	for _, sample := range samples {
		sample.Counts = Counts{}

		for metric, verdict := range sample.Verdicts {
			sample.Counts.add(verdict.Status)

			if counts, ok := breakdowns[metric]; ok {
				counts.add(verdict.Status)
			}
		}

		sample.Worst = sample.Verdicts.Worst()
		digest.Worst.add(sample.Worst)
		digest.Samples = append(digest.Samples, sample)
		rates = append(rates, sample.PassRate())
	}

	slices.SortFunc(digest.Samples, compareSamples)

	for _, metric := range qcsummary.Metrics() {
		digest.Metrics = append(digest.Metrics, MetricBreakdown{Metric: metric, Counts: *breakdowns[metric]})
	}

	switch len(rates) {
	case 0:
	case 1:
		digest.PassRateMean = rates[0]
	default:
		digest.PassRateMean, digest.PassRateStdDev = stat.MeanStdDev(rates, nil)
	}

	return digest
}

func compareSamples(a, b Sample) int {
	return cmp.Or(
		cmp.Compare(b.Worst, a.Worst),
		cmp.Compare(b.Counts.Fail, a.Counts.Fail),
		cmp.Compare(b.Counts.Warn, a.Counts.Warn),
		cmp.Compare(a.Name, b.Name),
	)
}

// Affected lists the samples whose verdict for metric is WARN or FAIL, worst first.
func (d *Digest) Affected(metric qcsummary.Metric) []Entry {
	var entries []Entry

	for _, sample := range d.Samples {
		verdict, ok := sample.Verdicts[metric]
		if !ok || (verdict.Status != qcsummary.StatusWarn && verdict.Status != qcsummary.StatusFail) {
			continue
		}

		entries = append(entries, Entry{Sample: sample.Name, Verdict: verdict})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Verdict.Status, a.Verdict.Status)
	})

	return entries
}
