package conll

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
)

type mockLogger struct{}

func (l *mockLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (l *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
func (l *mockLogger) Close() error                                   { return nil }

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)
	return n
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Dataset
		want domain.Dataset
	}{
		{
			name: "token and label extracted",
			in:   domain.Dataset{"EU NNP B-NP B-ORG\n"},
			want: domain.Dataset{"EU\tB-ORG\n"},
		},
		{
			name: "bare newline passes through",
			in:   domain.Dataset{"\n"},
			want: domain.Dataset{"\n"},
		},
		{
			name: "marker line removed without replacement",
			in:   domain.Dataset{"-DOCSTART- -X- O O\n", "EU NNP B-NP B-ORG\n"},
			want: domain.Dataset{"EU\tB-ORG\n"},
		},
		{
			name: "marker followed by boundary keeps boundary",
			in:   domain.Dataset{"-DOCSTART- -X- -X- O\n", "\n", "rejects VBZ B-VP O\n", "\n"},
			want: domain.Dataset{"\n", "rejects\tO\n", "\n"},
		},
		{
			name: "extra columns ignored",
			in:   domain.Dataset{"German JJ B-NP B-MISC extra\n"},
			want: domain.Dataset{"German\tB-MISC\n"},
		},
		{
			name: "tabs and repeated spaces split as whitespace",
			in:   domain.Dataset{"lamb\tNN  I-NP   O\n"},
			want: domain.Dataset{"lamb\tO\n"},
		},
		{
			name: "missing trailing newline gains one",
			in:   domain.Dataset{"\n", ". . O O"},
			want: domain.Dataset{"\n", ".\tO\n"},
		},
		{
			name: "empty input",
			in:   domain.Dataset{},
			want: domain.Dataset{},
		},
	}

	n := newTestNormalizer(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := n.Normalize(context.Background(), "test.txt", tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeStats(t *testing.T) {
	n := newTestNormalizer(t)
	in := domain.Dataset{
		"-DOCSTART- -X- O O\n",
		"\n",
		"EU NNP B-NP B-ORG\n",
		"rejects VBZ B-VP O\n",
		"\n",
	}

	_, stats, err := n.Normalize(context.Background(), "train.txt", in)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.InputLines)
	assert.Equal(t, 1, stats.DroppedMarkers)
	assert.Equal(t, 2, stats.Boundaries)
	assert.Equal(t, 2, stats.Records)
}

func TestNormalizeMalformedLine(t *testing.T) {
	tests := []struct {
		name   string
		in     domain.Dataset
		line   int
		fields int
	}{
		{name: "three fields", in: domain.Dataset{"EU NNP B-NP\n"}, line: 1, fields: 3},
		{name: "whitespace only", in: domain.Dataset{"\n", "  \n"}, line: 2, fields: 0},
		{name: "crlf boundary is not bare", in: domain.Dataset{"\r\n"}, line: 1, fields: 0},
		{name: "line numbers count markers", in: domain.Dataset{"-DOCSTART- -X- O O\n", "EU\n"}, line: 2, fields: 1},
	}

	n := newTestNormalizer(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := n.Normalize(context.Background(), "valid.txt", tc.in)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, domain.ErrMalformedLine)

			var fe *domain.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "valid.txt", fe.Source)
			assert.Equal(t, tc.line, fe.Line)
			assert.Equal(t, tc.fields, fe.Fields)
			assert.Equal(t, 4, fe.Want)
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := newTestNormalizer(t)
	in := domain.Dataset{
		"-DOCSTART- -X- O O\n", "\n",
		"EU NNP B-NP B-ORG\n", "rejects VBZ B-VP O\n", "German JJ B-NP B-MISC\n", "\n",
	}

	first, _, err := n.Normalize(context.Background(), "train.txt", in)
	require.NoError(t, err)
	second, _, err := n.Normalize(context.Background(), "train.txt", in)
	require.NoError(t, err)

	assert.Equal(t, strings.Join(first, ""), strings.Join(second, ""))
}

func TestNormalizeNeverEmitsMarker(t *testing.T) {
	n := newTestNormalizer(t)
	in := domain.Dataset{
		"-DOCSTART- -X- O O\n",
		"\n",
		"-DOCSTART- -X- -X- O\n",
		"Peter NNP B-NP B-PER\n",
		"DOCSTART\n",
	}

	got, stats, err := n.Normalize(context.Background(), "test.txt", in)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.DroppedMarkers)
	for _, line := range got {
		assert.NotContains(t, line, "DOCSTART")
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	n := newTestNormalizer(t)
	var in domain.Dataset
	var want domain.Dataset
	for i := 0; i < 50; i++ {
		tok := strings.Repeat("x", i+1)
		if i%7 == 0 {
			in = append(in, "-DOCSTART- -X- O O\n")
		}
		in = append(in, tok+" NN B-NP O\n")
		want = append(want, tok+"\tO\n")
		if i%5 == 4 {
			in = append(in, "\n")
			want = append(want, "\n")
		}
	}

	got, _, err := n.Normalize(context.Background(), "train.txt", in)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	n := newTestNormalizer(t)
	in := domain.Dataset{"EU NNP B-NP B-ORG\n", "\n"}
	orig := append(domain.Dataset(nil), in...)

	_, _, err := n.Normalize(context.Background(), "train.txt", in)
	require.NoError(t, err)
	assert.Equal(t, orig, in)
}

func TestNormalizeCustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delimiter = " "
	cfg.LabelField = 2
	n, err := NewNormalizer(cfg, &mockLogger{})
	require.NoError(t, err)

	got, _, err := n.Normalize(context.Background(), "x", domain.Dataset{"EU NNP B-ORG\n"})
	require.NoError(t, err)
	assert.Equal(t, domain.Dataset{"EU B-ORG\n"}, got)
}

func TestNormalizeCancelled(t *testing.T) {
	n := newTestNormalizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := n.Normalize(ctx, "train.txt", domain.Dataset{"EU NNP B-NP B-ORG\n"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "empty delimiter", mutate: func(c *Config) { c.Delimiter = "" }, wantErr: true},
		{name: "newline delimiter", mutate: func(c *Config) { c.Delimiter = "\n" }, wantErr: true},
		{name: "empty marker", mutate: func(c *Config) { c.Marker = "" }, wantErr: true},
		{name: "negative field", mutate: func(c *Config) { c.LabelField = -1 }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
