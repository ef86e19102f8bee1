// Package conll reformats CoNLL-2003 style records into TOKEN<TAB>LABEL lines.
package conll

import (
	"context"
	"errors"
	"strings"

	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
	"github.com/baditaflorin/go_ner_combine/internal/ports"
)

// ContextCheckFrequency defines how often the normalizer checks for cancellation.
const ContextCheckFrequency = 1000 // lines

// Config holds the legacy column layout and the output delimiter.
type Config struct {
	// Delimiter separates token and label in the output.
	Delimiter string
	// Marker is the substring identifying document-boundary lines.
	Marker     string
	TokenField int
	LabelField int
}

// DefaultConfig returns the CoNLL-2003 layout: token in column 0, NER label
// in column 3, tab separated output and -DOCSTART- lines removed.
func DefaultConfig() Config {
	return Config{
		Delimiter:  "\t",
		Marker:     "DOCSTART",
		TokenField: 0,
		LabelField: 3,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Delimiter == "" {
		return errors.New("delimiter must not be empty")
	}
	if strings.Contains(c.Delimiter, "\n") {
		return errors.New("delimiter must not contain a newline")
	}
	if c.Marker == "" {
		return errors.New("marker must not be empty")
	}
	if c.TokenField < 0 || c.LabelField < 0 {
		return errors.New("field indexes must not be negative")
	}
	return nil
}

// minFields is the number of whitespace separated fields a record needs.
func (c Config) minFields() int {
	if c.TokenField > c.LabelField {
		return c.TokenField + 1
	}
	return c.LabelField + 1
}

// Normalizer implements ports.Normalizer for legacy datasets.
type Normalizer struct {
	config Config
	logger ports.Logger
}

// NewNormalizer creates a new legacy-format normalizer.
func NewNormalizer(config Config, logger ports.Logger) (*Normalizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{
		config: config,
		logger: logger,
	}, nil
}

// Normalize drops marker lines, passes sentence boundaries through and
// rewrites every other line as token, delimiter, label, newline. The first
// record with too few fields aborts the pass with a *domain.FormatError.
func (n *Normalizer) Normalize(ctx context.Context, name string, lines domain.Dataset) (domain.Dataset, ports.NormalizeStats, error) {
	stats := ports.NormalizeStats{InputLines: len(lines)}
	out := make(domain.Dataset, 0, len(lines))
	want := n.config.minFields()

	for i, line := range lines {
		if i%ContextCheckFrequency == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		if strings.Contains(line, n.config.Marker) {
			stats.DroppedMarkers++
			continue
		}
		if line == domain.Boundary {
			stats.Boundaries++
			out = append(out, line)
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < want {
			n.logger.Error("Malformed legacy line",
				"source", name,
				"line", i+1,
				"fields", len(fields),
			)
			return nil, stats, &domain.FormatError{
				Source: name,
				Line:   i + 1,
				Text:   line,
				Fields: len(fields),
				Want:   want,
			}
		}

		out = append(out, fields[n.config.TokenField]+n.config.Delimiter+fields[n.config.LabelField]+"\n")
		stats.Records++
	}

	n.logger.Debug("Legacy dataset normalized",
		"source", name,
		"input_lines", stats.InputLines,
		"dropped_markers", stats.DroppedMarkers,
		"boundaries", stats.Boundaries,
		"records", stats.Records,
	)

	return out, stats, nil
}
