// Package combiner merges a CoNLL-2003 corpus and a WNUT-17 style corpus into
// a single TOKEN<TAB>LABEL dataset per split.
//
// Legacy CoNLL lines such as "EU NNP B-NP B-ORG" are reduced to token and NER
// label, -DOCSTART- lines are dropped and sentence boundaries are kept. The
// output always holds the normalized corpus first and the legacy corpus second.
package combiner

import (
	"context"
	"io"
	"os"

	"github.com/baditaflorin/go_ner_combine/internal/adapters/logger"
	"github.com/baditaflorin/go_ner_combine/internal/adapters/storage"
	"github.com/baditaflorin/go_ner_combine/internal/config"
	"github.com/baditaflorin/go_ner_combine/internal/core/combine"
	"github.com/baditaflorin/go_ner_combine/internal/core/conll"
	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
	"github.com/baditaflorin/go_ner_combine/internal/ports"
	"github.com/baditaflorin/l"
)

// Re-exported types.
type (
	Dataset = domain.Dataset
	Format  = domain.Format
	Source  = domain.Source
	Pair    = domain.Pair
	Result  = domain.Result
	Layout  = config.Layout
	Split   = config.Split

	FormatError         = domain.FormatError
	ClassificationError = domain.ClassificationError
)

// Source formats.
const (
	NormalizedFormat = domain.NormalizedFormat
	LegacyFormat     = domain.LegacyFormat
)

// Sentinel errors.
var (
	ErrMalformedLine  = domain.ErrMalformedLine
	ErrClassification = domain.ErrClassification
)

// DefaultLayout returns the directory layout used when none is configured.
func DefaultLayout() Layout {
	return config.DefaultLayout()
}

// DefaultSplits returns the train, validation and test splits.
func DefaultSplits() []Split {
	return config.DefaultSplits()
}

// Combiner provides the dataset combination operations.
type Combiner struct {
	core       *combine.Combiner
	normalizer *conll.Normalizer
	layout     Layout
	logger     ports.Logger
}

// Option defines a functional option for configuring Combiner.
type Option func(*combinerConfig)

type combinerConfig struct {
	Normalizer conll.Config
	Layout     Layout
	Logger     ports.Logger
	Store      ports.DatasetStore
	Reporter   io.Writer
}

// WithLogger sets a custom logger.
func WithLogger(l l.Logger) Option {
	return func(cfg *combinerConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithDelimiter sets the separator written between token and label.
func WithDelimiter(delim string) Option {
	return func(cfg *combinerConfig) {
		cfg.Normalizer.Delimiter = delim
	}
}

// WithMarker sets the substring identifying legacy document-boundary lines.
func WithMarker(marker string) Option {
	return func(cfg *combinerConfig) {
		cfg.Normalizer.Marker = marker
	}
}

// WithLayout sets the directories used by CombinePaths and RunSplits.
func WithLayout(layout Layout) Option {
	return func(cfg *combinerConfig) {
		cfg.Layout = layout
	}
}

// WithReporter sets where completion messages are printed. The default is
// stdout; nil discards them.
func WithReporter(w io.Writer) Option {
	return func(cfg *combinerConfig) {
		cfg.Reporter = w
	}
}

// WithStorage replaces the filesystem store.
func WithStorage(store ports.DatasetStore) Option {
	return func(cfg *combinerConfig) {
		cfg.Store = store
	}
}

// New creates a new Combiner. If no logger is provided, a default stdout
// logger is created.
func New(opts ...Option) (*Combiner, error) {
	cfg := &combinerConfig{
		Normalizer: conll.DefaultConfig(),
		Layout:     config.DefaultLayout(),
		Reporter:   os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		var err error
		cfg.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewFilesystem(cfg.Logger)
	}

	normalizer, err := conll.NewNormalizer(cfg.Normalizer, cfg.Logger)
	if err != nil {
		return nil, err
	}

	return &Combiner{
		core:       combine.NewCombiner(cfg.Store, normalizer, cfg.Logger, cfg.Reporter),
		normalizer: normalizer,
		layout:     cfg.Layout,
		logger:     cfg.Logger,
	}, nil
}

// Layout returns the configured directory layout.
func (c *Combiner) Layout() Layout {
	return c.layout
}

// Normalize reformats legacy lines. name is used in error messages.
func (c *Combiner) Normalize(ctx context.Context, name string, lines Dataset) (Dataset, error) {
	out, _, err := c.normalizer.Normalize(ctx, name, lines)
	return out, err
}

// Combine writes the normalized source followed by the reformatted legacy
// source to destination.
func (c *Combiner) Combine(ctx context.Context, pair Pair, destination string) (Result, error) {
	return c.core.Combine(ctx, pair, destination)
}

// CombineSources is Combine for a tagged list holding exactly one source of
// each format.
func (c *Combiner) CombineSources(ctx context.Context, sources []Source, destination string) (Result, error) {
	return c.core.CombineSources(ctx, sources, destination)
}

// CombinePaths tags each path by its location in the layout, then behaves as
// CombineSources. Paths naming test.txt, train.txt or valid.txt inside the
// legacy directory are legacy; all others are normalized.
func (c *Combiner) CombinePaths(ctx context.Context, paths []string, destination string) (Result, error) {
	return c.core.CombineSources(ctx, c.layout.ClassifyAll(paths), destination)
}

// RunSplits combines each split in order and stops at the first failure.
func (c *Combiner) RunSplits(ctx context.Context, splits []Split) ([]Result, error) {
	return c.core.RunSplits(ctx, c.layout, splits)
}

// Close releases the logger.
func (c *Combiner) Close() error {
	return c.logger.Close()
}
