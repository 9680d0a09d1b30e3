package types

// Metrics holds one typed record per catalog key, as extracted from a single report.
//
// A nil field means the source module was missing from the report. A non-nil empty slice means the module
// was present (or, for the two overrepresentation lists, that the module is legitimately omitted when nothing
// was found) and must be evaluated.
type Metrics struct {
	BasicStatistics            map[string]string
	PerBaseSequenceQuality     []BaseQuality
	PerSequenceQualityScores   []QualityCount
	PerBaseSequenceContent     []BaseContent
	PerBaseGCContent           []BaseGC
	PerSequenceGCContent       *ModuleStatus
	PerBaseNContent            []BaseN
	SequenceLengthDistribution []LengthCount
	DuplicateSequences         *Duplication
	OverrepresentedSequences   []Overrepresented
	OverrepresentedKmers       []Kmer
}

// BaseQuality is one position of the per base sequence quality module.
type BaseQuality struct {
	Base          string
	Median        float64
	LowerQuartile float64
}

// QualityCount is one bin of the per sequence quality scores module.
type QualityCount struct {
	Quality int
	Count   float64
}

// BaseContent is the G/A/T/C percentage at one position.
type BaseContent struct {
	Base string
	G    float64
	A    float64
	T    float64
	C    float64
}

// BaseGC is the GC percentage at one position next to the sample-wide mean.
type BaseGC struct {
	Base   string
	GC     float64
	MeanGC float64
}

// ModuleStatus carries the upstream tool's own verdict for a module ("pass", "warn", "fail").
type ModuleStatus struct {
	Status string
}

// BaseN is the N-call percentage at one position.
type BaseN struct {
	Base     string
	NContent float64
}

// LengthCount is one bin of the sequence length distribution. Length stays textual: the upstream tool
// reports ranges such as "35-39".
type LengthCount struct {
	Length string
	Count  float64
}

// Duplication holds the percentage of reads that are duplicates.
type Duplication struct {
	Rate float64
}

// Overrepresented is one overrepresented sequence and its share of all reads, in percent.
type Overrepresented struct {
	Sequence   string
	Percentage float64
}

// Kmer is one k-mer and its maximum observed/expected ratio.
type Kmer struct {
	Sequence   string
	Enrichment float64
}
