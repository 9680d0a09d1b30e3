package digest

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/farcloser/qcsummary"
)

// MarkdownFile is the digest file name written next to the verdict files.
const MarkdownFile = "qc_summary.md"

// WriteMarkdown renders the digest as a Markdown document.
func WriteMarkdown(w io.Writer, digest *Digest) error {
	md := markdown.NewMarkdown(w)

	md.H1("QC Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Directory", "`" + digest.Dir + "`"},
			{"Samples", strconv.Itoa(len(digest.Samples))},
			{"Unreadable files", strconv.Itoa(len(digest.Errors))},
			{"Mean pass rate", fmt.Sprintf("%.1f%% (sd %.1f)", digest.PassRateMean*100, digest.PassRateStdDev*100)},
		},
	})
	md.PlainText("")

	writeAlert(md, digest)
	writePieChart(md, digest)
	writeSamples(md, digest)
	writeMetrics(md, digest)
	writeFindings(md, digest)

	return md.Build()
}

func writeAlert(md *markdown.Markdown, digest *Digest) {
	switch {
	case digest.Worst.Fail > 0:
		md.Cautionf("%d of %d samples failed at least one metric.", digest.Worst.Fail, len(digest.Samples))
	case digest.Worst.Warn > 0:
		md.Warningf("%d of %d samples raised warnings.", digest.Worst.Warn, len(digest.Samples))
	case digest.Worst.Pass > 0:
		md.Tip("Every evaluated metric passed.")
	default:
		md.Note("No metric could be evaluated.")
	}

	md.PlainText("")
}

func writePieChart(md *markdown.Markdown, digest *Digest) {
	if len(digest.Samples) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Worst status per sample"),
		piechart.WithShowData(true),
	)

	for _, slice := range []struct {
		label string
		count int
	}{
		{label: "FAIL", count: digest.Worst.Fail},
		{label: "WARN", count: digest.Worst.Warn},
		{label: "PASS", count: digest.Worst.Pass},
		{label: "UNKNOWN", count: digest.Worst.Unknown},
	} {
		if slice.count > 0 {
			chart.LabelAndIntValue(slice.label, uint64(slice.count)) //nolint:gosec // counts are never negative
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func writeSamples(md *markdown.Markdown, digest *Digest) {
	md.H2("Samples")
	md.PlainText("")

	rows := make([][]string, 0, len(digest.Samples))
	for _, sample := range digest.Samples {
		rows = append(rows, []string{
			sample.Name,
			sample.Worst.String(),
			strconv.Itoa(sample.Counts.Fail),
			strconv.Itoa(sample.Counts.Warn),
			strconv.Itoa(sample.Counts.Pass),
			strconv.Itoa(sample.Counts.Unknown),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Sample", "Worst", "FAIL", "WARN", "PASS", "UNKNOWN"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeMetrics(md *markdown.Markdown, digest *Digest) {
	md.H2("Metrics")
	md.PlainText("")

	rows := make([][]string, 0, len(digest.Metrics))
	for _, breakdown := range digest.Metrics {
		rows = append(rows, []string{
			breakdown.Metric.String(),
			strconv.Itoa(breakdown.Counts.Fail),
			strconv.Itoa(breakdown.Counts.Warn),
			strconv.Itoa(breakdown.Counts.Pass),
			strconv.Itoa(breakdown.Counts.Unknown),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "FAIL", "WARN", "PASS", "UNKNOWN"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeFindings(md *markdown.Markdown, digest *Digest) {
	md.H2("Findings")
	md.PlainText("")

	found := false

	for _, sample := range digest.Samples {
		var items []string

		for _, metric := range qcsummary.Metrics() {
			verdict, ok := sample.Verdicts[metric]
			if !ok || (verdict.Status != qcsummary.StatusFail && verdict.Status != qcsummary.StatusWarn) {
				continue
			}

			items = append(items, fmt.Sprintf("**%s** `%s`: %s", verdict.Status, metric, verdict.Reason))
		}

		if len(items) == 0 {
			continue
		}

		found = true

		md.H3(sample.Name)
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}

	if !found {
		md.PlainText("No warnings or failures.")
		md.PlainText("")
	}

	if len(digest.Errors) > 0 {
		md.H2("Unreadable files")
		md.PlainText("")

		items := make([]string, 0, len(digest.Errors))
		for _, failure := range digest.Errors {
			items = append(items, fmt.Sprintf("`%s`: %v", failure.File, failure.Err))
		}

		md.BulletList(items...)
		md.PlainText("")
	}
}
