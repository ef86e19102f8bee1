package ports

import (
	"context"

	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
)

// NormalizeStats counts what a normalization pass did with its input.
type NormalizeStats struct {
	InputLines     int
	DroppedMarkers int
	Boundaries     int
	Records        int
}

// Normalizer defines the interface for reformatting a legacy dataset.
type Normalizer interface {
	// Normalize converts lines read from the named source. It must not
	// modify lines in place.
	Normalize(ctx context.Context, name string, lines domain.Dataset) (domain.Dataset, NormalizeStats, error)
}
