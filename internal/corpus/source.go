package corpus

import (
	"context"
	"fmt"
	"os"
)

// #region source
// Source supplies the raw dataset document.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads the dataset from a local JSON file.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (f FileSource) Name() string { return f.Path }

// Read returns the file contents.
func (f FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", f.Path, err)
	}
	return data, nil
}

// Bytes is an in-memory Source, used by fixtures and tests.
type Bytes []byte

// Name implements Source.
func (b Bytes) Name() string { return "inline" }

// Read implements Source.
func (b Bytes) Read(context.Context) ([]byte, error) { return b, nil }

// #endregion source

// #region load
// Load reads src and parses it. Like Parse it never returns a nil corpus; a
// read failure degrades to the empty corpus plus the error as a diagnostic.
func Load(ctx context.Context, src Source) (*Corpus, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return Empty(), err
	}
	return Parse(data)
}

// #endregion load
