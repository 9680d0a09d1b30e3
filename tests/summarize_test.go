package tests_test

import (
	"path/filepath"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/qcsummary/tests/testutils"
)

const (
	rawReport     = "ecoli_1.fastq.gz_Raw_report.json"
	trimmedReport = "ecoli_1.fastq.gz_Trimmed_report.json"
	badReport     = "bad_1.fastq.gz_Raw_report.json"
)

func TestSummarizeCLI(t *testing.T) {
	root := testutils.Tree(t)
	outputs := t.TempDir()
	blocker := testutils.Write(t, filepath.Join(outputs, "blocker"), "")

	rules := testutils.Write(t, filepath.Join(t.TempDir(), "rules.yaml"), `
duplicate_sequences:
  warn: 75
  fail: 90
per_base_sequence_quality:
  lower_quartile: {warn: 4, fail: 3}
  median: {warn: 19, fail: 18}
`)
	badRules := testutils.Write(t, filepath.Join(t.TempDir(), "bad.yaml"), "duplicate_sequences:\n  warn: 90\n  fail: 10\n")

	defaultOut := filepath.Join(outputs, "default")
	markdownOut := filepath.Join(outputs, "markdown")
	rulesOut := filepath.Join(outputs, "rules")
	serialOut := filepath.Join(outputs, "serial")

	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "summarize without arguments fails",
			Command:     test.Command("summarize"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "summarize nonexistent folder fails",
			Command:     test.Command("summarize", "--output", filepath.Join(outputs, "none"), "/nonexistent/folder"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "summarize writes one verdict file per report",
			Command:     test.Command("summarize", "--output", defaultOut, root),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
				expectContains("3 samples: 1 failed, 0 warned, 2 passed, 0 unknown"),
				expectContains("[FAIL] bad_1.fastq.gz_Raw"),
				expectFiles(defaultOut, rawReport, trimmedReport, badReport),
				expectVerdict(filepath.Join(defaultOut, rawReport), "per_base_sequence_quality", "PASS"),
				expectVerdict(filepath.Join(defaultOut, trimmedReport), "overrepresented_sequences", "PASS"),
				expectVerdict(filepath.Join(defaultOut, badReport), "per_base_sequence_quality", "FAIL"),
				expectVerdict(filepath.Join(defaultOut, badReport), "duplicate_sequences", "FAIL"),
				expectVerdict(filepath.Join(defaultOut, badReport), "sequence_length_distribution", "FAIL"),
				expectVerdict(filepath.Join(defaultOut, badReport), "per_base_gc_content", "UNKNOWN"),
			)),
		},
		{
			Description: "summarize with --markdown writes the digest next to the verdicts",
			Command:     test.Command("summarize", "--markdown", "--output", markdownOut, root),
			Expected: test.Expects(expect.ExitCodeSuccess, nil,
				expectFiles(markdownOut, rawReport, trimmedReport, badReport, "qc_summary.md"),
			),
		},
		{
			Description: "summarize with --rules applies the overrides",
			Command:     test.Command("summarize", "--rules", rules, "--output", rulesOut, root),
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.All(
				expectVerdict(filepath.Join(rulesOut, badReport), "per_base_sequence_quality", "PASS"),
				expectVerdict(filepath.Join(rulesOut, badReport), "duplicate_sequences", "PASS"),
				expectVerdict(filepath.Join(rulesOut, badReport), "sequence_length_distribution", "FAIL"),
			)),
		},
		{
			Description: "summarize with a single worker",
			Command:     test.Command("summarize", "--workers", "1", "--output", serialOut, root),
			Expected: test.Expects(expect.ExitCodeSuccess, nil,
				expectFiles(serialOut, rawReport, trimmedReport, badReport),
			),
		},
		{
			Description: "summarize with invalid rules fails",
			Command:     test.Command("summarize", "--rules", badRules, "--output", filepath.Join(outputs, "x"), root),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "summarize with an unusable output directory fails",
			Command:     test.Command("summarize", "--output", filepath.Join(blocker, "out"), root),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
	}

	testCase.Run(t)
}
