package domain

import (
	"fmt"
	"time"
)

// Boundary is the bare newline that separates sentences in both formats.
const Boundary = "\n"

// Dataset is the ordered sequence of lines of one corpus split.
// Every line keeps its trailing newline, except possibly the last one.
type Dataset []string

// Format tags a source file with the line layout it uses.
type Format int

const (
	// NormalizedFormat files already hold TOKEN<TAB>LABEL lines.
	NormalizedFormat Format = iota
	// LegacyFormat files hold CoNLL-2003 style records that need reformatting.
	LegacyFormat
)

func (f Format) String() string {
	switch f {
	case NormalizedFormat:
		return "normalized"
	case LegacyFormat:
		return "legacy"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Source is a dataset file together with its format.
type Source struct {
	Path   string
	Format Format
}

// Pair names the two inputs of a combination.
type Pair struct {
	Normalized Source
	Legacy     Source
}

// Paths returns the legacy path followed by the normalized path.
func (p Pair) Paths() []string {
	return []string{p.Legacy.Path, p.Normalized.Path}
}

// PairSources builds a Pair from a tagged list. The list must contain exactly
// one legacy and one normalized source.
func PairSources(sources []Source) (Pair, error) {
	var (
		pair               Pair
		legacy, normalized int
	)
	for _, src := range sources {
		switch src.Format {
		case LegacyFormat:
			legacy++
			pair.Legacy = src
		case NormalizedFormat:
			normalized++
			pair.Normalized = src
		default:
			return Pair{}, &ClassificationError{Legacy: legacy, Normalized: normalized, Unknown: src.Path}
		}
	}
	if legacy != 1 || normalized != 1 {
		return Pair{}, &ClassificationError{Legacy: legacy, Normalized: normalized}
	}
	return pair, nil
}

// WriteInfo describes a completed write.
type WriteInfo struct {
	Path         string
	Lines        int
	BytesWritten int64
	// BLAKE3 is the hex digest of the bytes written.
	BLAKE3 string
}

// Result holds the outcome of one combination.
type Result struct {
	RunID       string
	Sources     []string
	Destination string

	NormalizedLines int
	LegacyLines     int
	DroppedMarkers  int
	TotalLines      int

	BytesWritten int64
	BLAKE3       string
	Duration     time.Duration
}

// Message renders the human readable completion line.
func (r Result) Message() string {
	return fmt.Sprintf("Combined %v and saved new dataset to %s.", r.Sources, r.Destination)
}
