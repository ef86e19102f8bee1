// Package combine joins a normalized dataset with a reformatted legacy one.
package combine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/baditaflorin/go_ner_combine/internal/config"
	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
	"github.com/baditaflorin/go_ner_combine/internal/ports"
)

// Combiner loads both sources of a split, normalizes the legacy one and
// writes normalized lines followed by legacy lines to the destination.
type Combiner struct {
	store      ports.DatasetStore
	normalizer ports.Normalizer
	logger     ports.Logger
	reporter   io.Writer
}

// NewCombiner creates a new combiner. A nil reporter discards completion
// messages.
func NewCombiner(store ports.DatasetStore, normalizer ports.Normalizer, logger ports.Logger, reporter io.Writer) *Combiner {
	if reporter == nil {
		reporter = io.Discard
	}
	return &Combiner{
		store:      store,
		normalizer: normalizer,
		logger:     logger,
		reporter:   reporter,
	}
}

// Concat returns the normalized lines followed by the legacy lines.
func Concat(normalized, legacy domain.Dataset) domain.Dataset {
	out := make(domain.Dataset, 0, len(normalized)+len(legacy))
	out = append(out, normalized...)
	return append(out, legacy...)
}

// Combine produces the combined dataset for pair at destination. Nothing is
// written unless both sources were read and normalized.
func (c *Combiner) Combine(ctx context.Context, pair domain.Pair, destination string) (domain.Result, error) {
	return c.combine(ctx, pair, pair.Paths(), destination)
}

// CombineSources is Combine for a tagged source list, which must hold exactly
// one legacy and one normalized source.
func (c *Combiner) CombineSources(ctx context.Context, sources []domain.Source, destination string) (domain.Result, error) {
	pair, err := domain.PairSources(sources)
	if err != nil {
		c.logger.Error("Cannot pair sources", "sources", sourcePaths(sources), "error", err)
		return domain.Result{}, err
	}
	return c.combine(ctx, pair, sourcePaths(sources), destination)
}

func (c *Combiner) combine(ctx context.Context, pair domain.Pair, paths []string, destination string) (domain.Result, error) {
	startTime := time.Now()
	result := domain.Result{
		RunID:       uuid.NewString(),
		Sources:     paths,
		Destination: destination,
	}

	c.logger.Debug("Starting dataset combination",
		"run_id", result.RunID,
		"normalized", pair.Normalized.Path,
		"legacy", pair.Legacy.Path,
		"destination", destination,
	)

	normalized, err := c.store.Load(ctx, pair.Normalized.Path)
	if err != nil {
		return domain.Result{}, fmt.Errorf("load normalized dataset: %w", err)
	}

	raw, err := c.store.Load(ctx, pair.Legacy.Path)
	if err != nil {
		return domain.Result{}, fmt.Errorf("load legacy dataset: %w", err)
	}

	legacy, stats, err := c.normalizer.Normalize(ctx, pair.Legacy.Path, raw)
	if err != nil {
		return domain.Result{}, fmt.Errorf("normalize legacy dataset: %w", err)
	}

	combined := Concat(normalized, legacy)

	info, err := c.store.Save(ctx, destination, combined)
	if err != nil {
		return domain.Result{}, fmt.Errorf("write combined dataset: %w", err)
	}

	result.NormalizedLines = len(normalized)
	result.LegacyLines = len(legacy)
	result.DroppedMarkers = stats.DroppedMarkers
	result.TotalLines = info.Lines
	result.BytesWritten = info.BytesWritten
	result.BLAKE3 = info.BLAKE3
	result.Duration = time.Since(startTime)

	c.logger.Info("Combined dataset written",
		"run_id", result.RunID,
		"destination", destination,
		"normalized_lines", result.NormalizedLines,
		"legacy_lines", result.LegacyLines,
		"dropped_markers", result.DroppedMarkers,
		"bytes", result.BytesWritten,
		"blake3", result.BLAKE3,
		"duration", result.Duration,
	)
	fmt.Fprintln(c.reporter, result.Message())

	return result, nil
}

// RunSplits combines every split in order. The first failure stops the run;
// outputs of earlier splits are left in place.
func (c *Combiner) RunSplits(ctx context.Context, layout config.Layout, splits []config.Split) ([]domain.Result, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	results := make([]domain.Result, 0, len(splits))
	for _, split := range splits {
		if err := split.Validate(); err != nil {
			return results, err
		}
		res, err := c.Combine(ctx, layout.Pair(split), layout.Destination(split))
		if err != nil {
			return results, fmt.Errorf("split %s: %w", split.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func sourcePaths(sources []domain.Source) []string {
	paths := make([]string, 0, len(sources))
	for _, s := range sources {
		paths = append(paths, s.Path)
	}
	return paths
}
