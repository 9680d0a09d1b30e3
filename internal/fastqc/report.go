// Package fastqc reads the module-based plaintext reports written by FastQC and Falco (fastqc_data.txt).
package fastqc

// Module names the extractor relies on.
const (
	ModuleBasicStatistics          = "Basic Statistics"
	ModulePerBaseSequenceQuality   = "Per base sequence quality"
	ModulePerSequenceQualityScores = "Per sequence quality scores"
	ModulePerBaseSequenceContent   = "Per base sequence content"
	ModulePerSequenceGCContent     = "Per sequence GC content"
	ModulePerBaseNContent          = "Per base N content"
	ModuleSequenceLengthDistrib    = "Sequence Length Distribution"
	ModuleSequenceDuplication      = "Sequence Duplication Levels"
	ModuleOverrepresentedSequences = "Overrepresented sequences"
	ModuleKmerContent              = "Kmer Content"
)

// DefaultStatus is assigned to a module whose opening marker carries no status field.
const DefaultStatus = "pass"

// Module is one >>Name ... >>END_MODULE section.
type Module struct {
	Name   string
	Status string
	Header []string
	Rows   [][]string
}

// Report is a fully materialized report file.
type Report struct {
	Path    string
	Modules []Module

	// TotalDeduplicatedPercentage is read from the "#Total Deduplicated Percentage" line of the
	// duplication levels module. Nil when the line is absent or unparsable.
	TotalDeduplicatedPercentage *float64
}

// Module returns the module with the given name. When a name occurs more than once, the last one wins.
func (r *Report) Module(name string) (*Module, bool) {
	for i := len(r.Modules) - 1; i >= 0; i-- {
		if r.Modules[i].Name == name {
			return &r.Modules[i], true
		}
	}

	return nil, false
}
