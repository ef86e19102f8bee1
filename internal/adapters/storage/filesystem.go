// Package storage reads and writes datasets on the local filesystem.
package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
	"github.com/baditaflorin/go_ner_combine/internal/ports"
)

const (
	// XZExtension marks sources that are decompressed on load.
	XZExtension = ".xz"

	// DefaultWriteBufferSize is the size of the buffered writer used by Save.
	DefaultWriteBufferSize = 64 * 1024 // 64KB

	// Newline characters
	CR = '\r'
	LF = '\n'
)

// Filesystem implements ports.DatasetStore on top of the os package.
type Filesystem struct {
	logger ports.Logger
}

// NewFilesystem creates a new filesystem store.
func NewFilesystem(logger ports.Logger) *Filesystem {
	return &Filesystem{logger: logger}
}

// Load reads the whole file at path and splits it into lines. Each line keeps
// its newline; CRLF and lone CR are read as LF. Files ending in .xz are
// decompressed first.
func (fs *Filesystem) Load(ctx context.Context, path string) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, XZExtension) {
		xr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("open xz stream %s: %w", path, err)
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	lines := SplitLines(data)
	fs.logger.Debug("Dataset loaded",
		"path", path,
		"bytes", len(data),
		"lines", len(lines),
	)
	return lines, nil
}

// SplitLines splits data after every line break. The trailing newline of each
// line is kept and normalized to LF; a final line without one is kept as is.
func SplitLines(data []byte) domain.Dataset {
	if len(data) == 0 {
		return domain.Dataset{}
	}
	if bytes.IndexByte(data, CR) >= 0 {
		data = normalizeNewlines(data)
	}

	lines := make(domain.Dataset, 0, bytes.Count(data, []byte{LF})+1)
	lineStart := 0
	for i, b := range data {
		if b == LF {
			lines = append(lines, string(data[lineStart:i+1]))
			lineStart = i + 1
		}
	}
	if lineStart < len(data) {
		lines = append(lines, string(data[lineStart:]))
	}
	return lines
}

// normalizeNewlines rewrites CRLF and lone CR as LF.
func normalizeNewlines(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != CR {
			out = append(out, b)
			continue
		}
		// CRLF collapses onto the LF that follows.
		if i+1 < len(data) && data[i+1] == LF {
			continue
		}
		out = append(out, LF)
	}
	return out
}

// Save creates or truncates the file at path and writes every line verbatim.
// The containing directory must already exist.
func (fs *Filesystem) Save(ctx context.Context, path string, lines domain.Dataset) (domain.WriteInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.WriteInfo{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return domain.WriteInfo{}, fmt.Errorf("create output: %w", err)
	}

	info, err := writeLines(f, lines)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output %s: %w", path, cerr)
	}
	if err != nil {
		fs.logger.Error("Writing dataset failed", "path", path, "error", err)
		return domain.WriteInfo{}, err
	}

	info.Path = path
	fs.logger.Debug("Dataset written",
		"path", path,
		"lines", info.Lines,
		"bytes", info.BytesWritten,
		"blake3", info.BLAKE3,
	)
	return info, nil
}

// WriteTo writes lines to w and returns what was written, including the
// BLAKE3 digest of the bytes.
func WriteTo(w io.Writer, lines domain.Dataset) (domain.WriteInfo, error) {
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines domain.Dataset) (domain.WriteInfo, error) {
	hasher := blake3.New()
	bw := bufio.NewWriterSize(io.MultiWriter(w, hasher), DefaultWriteBufferSize)

	var written int64
	for i, line := range lines {
		n, err := bw.WriteString(line)
		written += int64(n)
		if err != nil {
			return domain.WriteInfo{}, fmt.Errorf("write line %d: %w", i+1, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return domain.WriteInfo{}, fmt.Errorf("flush: %w", err)
	}

	return domain.WriteInfo{
		Lines:        len(lines),
		BytesWritten: written,
		BLAKE3:       hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}
