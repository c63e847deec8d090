package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/matzehuels/tidytree/pkg/cache"
	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/observability"
)

// Source is an undecoded document.
type Source struct {
	Name   string // file path or request description, for messages
	Data   []byte
	Format literal.Format
}

// ReadSource reads the document at path, choosing the format from its
// extension.
func ReadSource(path string) (Source, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Source{}, err
	}
	format, err := literal.FormatFromPath(path)
	if err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Source{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Source{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Source{Name: path, Data: data, Format: format}, nil
}

// Hash returns the content hash of the source, including its format.
func (s Source) Hash() string {
	return cache.Hash(append([]byte(string(s.Format)+"\x00"), s.Data...))
}

// Decode parses a source into a document.
func Decode(ctx context.Context, src Source) (*literal.Document, error) {
	hooks := observability.Pipeline()
	hooks.OnDecodeStart(ctx, src.Name)
	start := time.Now()

	doc, err := literal.DecodeBytes(src.Data, src.Format)
	if err != nil && src.Name != "" {
		err = errors.WithContext(err, "%s", src.Name)
	}

	trees := 0
	if doc != nil {
		trees = len(doc.Trees)
	}
	hooks.OnDecodeComplete(ctx, src.Name, trees, time.Since(start), err)
	return doc, err
}
