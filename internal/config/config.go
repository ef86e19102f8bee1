// Package config holds the directory layout and split table of a combine run.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
)

// Default directories, relative to the working directory.
const (
	DefaultLegacyDir     = "../data/en/CONLL2003/"
	DefaultNormalizedDir = "../data/en/emerging_entities_17/"
	DefaultOutputDir     = "../data/en/combined/"
)

// LegacyFiles are the CoNLL-2003 split file names.
var LegacyFiles = []string{"test.txt", "train.txt", "valid.txt"}

// Layout names the directories holding each corpus and the output.
type Layout struct {
	LegacyDir     string
	NormalizedDir string
	OutputDir     string
}

// DefaultLayout returns the directories the combiner uses when run without flags.
func DefaultLayout() Layout {
	return Layout{
		LegacyDir:     DefaultLegacyDir,
		NormalizedDir: DefaultNormalizedDir,
		OutputDir:     DefaultOutputDir,
	}
}

// Validate checks that every directory is set.
func (l Layout) Validate() error {
	if l.LegacyDir == "" {
		return errors.New("legacy directory must not be empty")
	}
	if l.NormalizedDir == "" {
		return errors.New("normalized directory must not be empty")
	}
	if l.OutputDir == "" {
		return errors.New("output directory must not be empty")
	}
	return nil
}

// Classify tags path as legacy when it names one of LegacyFiles directly
// inside LegacyDir. Everything else is treated as normalized.
func (l Layout) Classify(path string) domain.Format {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(l.LegacyDir) {
		return domain.NormalizedFormat
	}
	base := filepath.Base(path)
	for _, name := range LegacyFiles {
		if base == name {
			return domain.LegacyFormat
		}
	}
	return domain.NormalizedFormat
}

// ClassifyAll tags every path with Classify, keeping the input order.
func (l Layout) ClassifyAll(paths []string) []domain.Source {
	sources := make([]domain.Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, domain.Source{Path: p, Format: l.Classify(p)})
	}
	return sources
}

// Split describes one corpus split: the file names inside each directory.
type Split struct {
	Name           string
	LegacyFile     string
	NormalizedFile string
	OutputFile     string
}

// DefaultSplits returns the train, validation and test splits of the
// CoNLL-2003 and WNUT-17 corpora.
func DefaultSplits() []Split {
	return []Split{
		{Name: "train", LegacyFile: "train.txt", NormalizedFile: "wnut17train.conll", OutputFile: "train_combined.txt"},
		{Name: "validation", LegacyFile: "valid.txt", NormalizedFile: "emerging.dev.conll", OutputFile: "dev_combined.txt"},
		{Name: "test", LegacyFile: "test.txt", NormalizedFile: "emerging.test.annotated", OutputFile: "test_combined.txt"},
	}
}

// Validate checks that every file name is set.
func (s Split) Validate() error {
	if s.LegacyFile == "" || s.NormalizedFile == "" || s.OutputFile == "" {
		return fmt.Errorf("split %q: legacy, normalized and output files are required", s.Name)
	}
	return nil
}

// Pair resolves the split's sources against the layout.
func (l Layout) Pair(s Split) domain.Pair {
	return domain.Pair{
		Normalized: domain.Source{Path: filepath.Join(l.NormalizedDir, s.NormalizedFile), Format: domain.NormalizedFormat},
		Legacy:     domain.Source{Path: filepath.Join(l.LegacyDir, s.LegacyFile), Format: domain.LegacyFormat},
	}
}

// Destination resolves the split's output file against the layout.
func (l Layout) Destination(s Split) string {
	return filepath.Join(l.OutputDir, s.OutputFile)
}
