package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Report assembles a fastqc_data.txt document from module blocks.
func Report(modules ...string) string {
	return "##FastQC\t0.11.9\n" + strings.Join(modules, "")
}

// Module renders one >>name\tstatus ... >>END_MODULE block. Lines are tab-separated fields.
func Module(name, status string, lines ...[]string) string {
	var builder strings.Builder

	builder.WriteString(">>" + name + "\t" + status + "\n")

	for _, line := range lines {
		builder.WriteString(strings.Join(line, "\t") + "\n")
	}

	builder.WriteString(">>END_MODULE\n")

	return builder.String()
}

// Healthy is a report on which every metric passes.
func Healthy() string {
	return Report(
		Module("Basic Statistics", "pass",
			[]string{"#Measure", "Value"},
			[]string{"Filename", "sample.fastq.gz"},
			[]string{"%GC", "50"},
		),
		Module("Per base sequence quality", "pass",
			[]string{"#Base", "Mean", "Median", "Lower Quartile", "Upper Quartile"},
			[]string{"1", "34.0", "35.0", "32.0", "36.0"},
			[]string{"2", "34.0", "35.0", "31.0", "36.0"},
		),
		Module("Per sequence quality scores", "pass",
			[]string{"#Quality", "Count"},
			[]string{"30", "10.0"},
			[]string{"36", "990.0"},
		),
		Module("Per base sequence content", "pass",
			[]string{"#Base", "G", "A", "T", "C"},
			[]string{"1", "25", "25", "25", "25"},
		),
		Module("Per sequence GC content", "pass",
			[]string{"#GC Content", "Count"},
			[]string{"50", "1000.0"},
		),
		Module("Per base N content", "pass",
			[]string{"#Base", "N-Count"},
			[]string{"1", "0.0"},
		),
		Module("Sequence Length Distribution", "pass",
			[]string{"#Length", "Count"},
			[]string{"100", "1000.0"},
		),
		Module("Sequence Duplication Levels", "pass",
			[]string{"#Total Deduplicated Percentage", "92.5"},
			[]string{"#Duplication Level", "Percentage of deduplicated", "Percentage of total"},
			[]string{"1", "100.0", "100.0"},
		),
	)
}

// Degraded is a report with failing quality, duplication and length metrics.
func Degraded() string {
	return Report(
		Module("Basic Statistics", "pass",
			[]string{"#Measure", "Value"},
			[]string{"%GC", "48"},
		),
		Module("Per base sequence quality", "fail",
			[]string{"#Base", "Mean", "Median", "Lower Quartile", "Upper Quartile"},
			[]string{"1", "20.0", "19.0", "4.0", "25.0"},
		),
		Module("Sequence Length Distribution", "fail",
			[]string{"#Length", "Count"},
			[]string{"0", "3"},
			[]string{"100", "900"},
		),
		Module("Sequence Duplication Levels", "fail",
			[]string{"#Total Deduplicated Percentage", "30.0"},
		),
	)
}

// Write creates path with content, making parent directories as needed.
func Write(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// Tree lays out a pipeline output folder: raw and trimmed Falco reports for one sample, a degraded sample,
// a fastp summary and unrelated files.
func Tree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	Write(t, filepath.Join(root, "falco_raw", "ecoli_1.fastq.gz_fastqc_data.txt"), Healthy())
	Write(t, filepath.Join(root, "falco_trimmed", "ecoli_1.fastq.gz_fastqc_data.txt"), Healthy())
	Write(t, filepath.Join(root, "falco_raw", "bad_1.fastq.gz_fastqc_data.txt"), Degraded())
	Write(t, filepath.Join(root, "fastp", "ecoli.fastp.json"), "{}")
	Write(t, filepath.Join(root, "falco_raw", "ecoli_1.fastq.gz_fastqc_report.html"), "<html></html>")

	return root
}
