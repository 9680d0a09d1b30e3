// Package config loads threshold overrides from a YAML rules file.
//
// A rules file only lists what it changes. Every key is a catalog metric, every value has the shape of that
// metric's thresholds:
//
//	per_base_sequence_quality:
//	  lower_quartile: {warn: 12, fail: 6}
//	  median: {warn: 28}
//	duplicate_sequences:
//	  warn: 30
//	  fail: 60
//	sequence_length_distribution:
//	  warn: ""
//
// Omitted fields keep the base catalog's values. The result is a new catalog; the base is never modified.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/qcsummary"
)

// Descriptor overrides the display fields of a rule.
type Descriptor struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Cutoffs overrides one pair of warn and fail cutoffs.
type Cutoffs struct {
	Warn *float64 `yaml:"warn,omitempty"`
	Fail *float64 `yaml:"fail,omitempty"`
}

// BandsRule overrides a single-valued metric.
type BandsRule struct {
	Descriptor `yaml:",inline"`
	Cutoffs    `yaml:",inline"`
}

// QualityRule overrides the per base quality metric.
type QualityRule struct {
	Descriptor    `yaml:",inline"`
	LowerQuartile *Cutoffs `yaml:"lower_quartile,omitempty"`
	Median        *Cutoffs `yaml:"median,omitempty"`
}

// LengthRule overrides the sequence length policy. An empty tag disables that tier.
type LengthRule struct {
	Descriptor `yaml:",inline"`
	Warn       *string `yaml:"warn,omitempty"`
	Fail       *string `yaml:"fail,omitempty"`
}

// File is the content of a rules file, one optional entry per catalog metric.
//
//nolint:tagliatelle // keys are catalog metric names
type File struct {
	BasicStatistics            *Descriptor  `yaml:"basic_statistics,omitempty"`
	PerBaseSequenceQuality     *QualityRule `yaml:"per_base_sequence_quality,omitempty"`
	PerSequenceQualityScores   *BandsRule   `yaml:"per_sequence_quality_scores,omitempty"`
	PerBaseSequenceContent     *BandsRule   `yaml:"per_base_sequence_content,omitempty"`
	PerBaseGCContent           *BandsRule   `yaml:"per_base_gc_content,omitempty"`
	PerSequenceGCContent       *BandsRule   `yaml:"per_sequence_gc_content,omitempty"`
	PerBaseNContent            *BandsRule   `yaml:"per_base_n_content,omitempty"`
	SequenceLengthDistribution *LengthRule  `yaml:"sequence_length_distribution,omitempty"`
	DuplicateSequences         *BandsRule   `yaml:"duplicate_sequences,omitempty"`
	OverrepresentedSequences   *BandsRule   `yaml:"overrepresented_sequences,omitempty"`
	OverrepresentedKmers       *BandsRule   `yaml:"overrepresented_kmers,omitempty"`
}

// Parse decodes a rules file. Unknown metrics and fields are rejected.
func Parse(data []byte) (*File, error) {
	file := &File{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	return file, nil
}

// Load reads and decodes the rules file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided rules path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}

		return nil, err
	}

	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return file, nil
}

// LoadCatalog reads the rules file at path and applies it on top of base.
func LoadCatalog(path string, base *qcsummary.Catalog) (*qcsummary.Catalog, error) {
	file, err := Load(path)
	if err != nil {
		return nil, err
	}

	catalog, err := file.Apply(base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return catalog, nil
}

// Apply builds a new catalog from base with the overrides of f.
func (f *File) Apply(base *qcsummary.Catalog) (*qcsummary.Catalog, error) {
	rules := base.Rules()

	for idx := range rules {
		rule := &rules[idx]

		switch rule.Metric {
		case qcsummary.MetricBasicStatistics:
			applyDescriptor(rule, f.BasicStatistics)
		case qcsummary.MetricPerBaseSequenceQuality:
			if err := applyQuality(rule, f.PerBaseSequenceQuality); err != nil {
				return nil, err
			}
		case qcsummary.MetricPerSequenceQualityScores:
			if err := applyBands(rule, f.PerSequenceQualityScores); err != nil {
				return nil, err
			}
		case qcsummary.MetricPerBaseSequenceContent:
			if err := applyBands(rule, f.PerBaseSequenceContent); err != nil {
				return nil, err
			}
		case qcsummary.MetricPerBaseGCContent:
			if err := applyBands(rule, f.PerBaseGCContent); err != nil {
				return nil, err
			}
		case qcsummary.MetricPerSequenceGCContent:
			if err := applyBands(rule, f.PerSequenceGCContent); err != nil {
				return nil, err
			}
		case qcsummary.MetricPerBaseNContent:
			if err := applyBands(rule, f.PerBaseNContent); err != nil {
				return nil, err
			}
		case qcsummary.MetricSequenceLengthDistribution:
			if err := applyLength(rule, f.SequenceLengthDistribution); err != nil {
				return nil, err
			}
		case qcsummary.MetricDuplicateSequences:
			if err := applyBands(rule, f.DuplicateSequences); err != nil {
				return nil, err
			}
		case qcsummary.MetricOverrepresentedSequences:
			if err := applyBands(rule, f.OverrepresentedSequences); err != nil {
				return nil, err
			}
		case qcsummary.MetricOverrepresentedKmers:
			if err := applyBands(rule, f.OverrepresentedKmers); err != nil {
				return nil, err
			}
		}
	}

	catalog, err := qcsummary.NewCatalog(rules...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	return catalog, nil
}

func applyDescriptor(rule *qcsummary.Rule, descriptor *Descriptor) {
	if descriptor == nil {
		return
	}

	if descriptor.Name != "" {
		rule.Name = descriptor.Name
	}

	if descriptor.Description != "" {
		rule.Description = descriptor.Description
	}
}

func applyCutoffs(bands qcsummary.Bands, cutoffs *Cutoffs) qcsummary.Bands {
	if cutoffs == nil {
		return bands
	}

	if cutoffs.Warn != nil {
		bands.Warn = *cutoffs.Warn
	}

	if cutoffs.Fail != nil {
		bands.Fail = *cutoffs.Fail
	}

	return bands
}

func applyBands(rule *qcsummary.Rule, override *BandsRule) error {
	if override == nil {
		return nil
	}

	bands, ok := rule.Thresholds.(qcsummary.Bands)
	if !ok {
		return fmt.Errorf("%w: %s does not take warn/fail cutoffs", ErrInvalidRules, rule.Metric)
	}

	applyDescriptor(rule, &override.Descriptor)
	rule.Thresholds = applyCutoffs(bands, &override.Cutoffs)

	return nil
}

func applyQuality(rule *qcsummary.Rule, override *QualityRule) error {
	if override == nil {
		return nil
	}

	quality, ok := rule.Thresholds.(qcsummary.QualityBands)
	if !ok {
		return fmt.Errorf("%w: %s does not take quartile cutoffs", ErrInvalidRules, rule.Metric)
	}

	applyDescriptor(rule, &override.Descriptor)

	quality.LowerQuartile = applyCutoffs(quality.LowerQuartile, override.LowerQuartile)
	quality.Median = applyCutoffs(quality.Median, override.Median)
	rule.Thresholds = quality

	return nil
}

func applyLength(rule *qcsummary.Rule, override *LengthRule) error {
	if override == nil {
		return nil
	}

	policy, ok := rule.Thresholds.(qcsummary.LengthPolicy)
	if !ok {
		return fmt.Errorf("%w: %s does not take a length policy", ErrInvalidRules, rule.Metric)
	}

	applyDescriptor(rule, &override.Descriptor)

	if override.Warn != nil {
		policy.Warn = *override.Warn
	}

	if override.Fail != nil {
		policy.Fail = *override.Fail
	}

	rule.Thresholds = policy

	return nil
}

// Template renders catalog as a complete rules file, ready to be edited.
func Template(catalog *qcsummary.Catalog) ([]byte, error) {
	file := &File{}

	for _, rule := range catalog.Rules() {
		descriptor := Descriptor{Name: rule.Name, Description: rule.Description}

		switch thresholds := rule.Thresholds.(type) {
		case qcsummary.NoThresholds:
			if rule.Metric == qcsummary.MetricBasicStatistics {
				file.BasicStatistics = &descriptor
			}
		case qcsummary.QualityBands:
			file.PerBaseSequenceQuality = &QualityRule{
				Descriptor:    descriptor,
				LowerQuartile: cutoffsOf(thresholds.LowerQuartile),
				Median:        cutoffsOf(thresholds.Median),
			}
		case qcsummary.LengthPolicy:
			file.SequenceLengthDistribution = &LengthRule{
				Descriptor: descriptor,
				Warn:       &thresholds.Warn,
				Fail:       &thresholds.Fail,
			}
		case qcsummary.Bands:
			file.setBands(rule.Metric, &BandsRule{Descriptor: descriptor, Cutoffs: *cutoffsOf(thresholds)})
		}
	}

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(file); err != nil {
		return nil, err
	}

	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func cutoffsOf(bands qcsummary.Bands) *Cutoffs {
	return &Cutoffs{Warn: &bands.Warn, Fail: &bands.Fail}
}

func (f *File) setBands(metric qcsummary.Metric, rule *BandsRule) {
	switch metric {
	case qcsummary.MetricPerSequenceQualityScores:
		f.PerSequenceQualityScores = rule
	case qcsummary.MetricPerBaseSequenceContent:
		f.PerBaseSequenceContent = rule
	case qcsummary.MetricPerBaseGCContent:
		f.PerBaseGCContent = rule
	case qcsummary.MetricPerSequenceGCContent:
		f.PerSequenceGCContent = rule
	case qcsummary.MetricPerBaseNContent:
		f.PerBaseNContent = rule
	case qcsummary.MetricDuplicateSequences:
		f.DuplicateSequences = rule
	case qcsummary.MetricOverrepresentedSequences:
		f.OverrepresentedSequences = rule
	case qcsummary.MetricOverrepresentedKmers:
		f.OverrepresentedKmers = rule
	case qcsummary.MetricBasicStatistics,
		qcsummary.MetricPerBaseSequenceQuality,
		qcsummary.MetricSequenceLengthDistribution:
	}
}
