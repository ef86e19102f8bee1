package ports

import (
	"context"

	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
)

// DatasetStore loads and persists datasets.
type DatasetStore interface {
	// Load reads every line of the file at path.
	Load(ctx context.Context, path string) (domain.Dataset, error)
	// Save creates or truncates path and writes the lines verbatim.
	Save(ctx context.Context, path string, lines domain.Dataset) (domain.WriteInfo, error)
}
