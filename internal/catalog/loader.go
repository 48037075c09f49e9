// Package catalog loads the event taxonomy and flattens it into bookable events.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/vietddude/eventmailer/internal/core/domain"
)

// ErrMalformedTaxonomy is returned when a taxonomy source cannot be decoded or
// fails validation. Callers treat it as fatal.
var ErrMalformedTaxonomy = errors.New("malformed taxonomy")

//go:embed concerts.json
var sampleTaxonomy []byte

var validate = validator.New()

// Loader deserializes a taxonomy from an external source.
type Loader interface {
	Load(ctx context.Context) (domain.Category, error)
}

// FileLoader reads a JSON taxonomy from disk.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for the given path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

func (l *FileLoader) Load(ctx context.Context) (domain.Category, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to read taxonomy file: %w", err)
	}
	return Decode(data)
}

// BytesLoader decodes a taxonomy held in memory.
type BytesLoader struct {
	Data []byte
}

// NewSampleLoader returns a loader over the embedded concert catalogue.
func NewSampleLoader() *BytesLoader {
	return &BytesLoader{Data: sampleTaxonomy}
}

func (l *BytesLoader) Load(ctx context.Context) (domain.Category, error) {
	return Decode(l.Data)
}

// NewLoader picks the file loader when a path is given, otherwise the sample.
func NewLoader(path string) Loader {
	if path == "" {
		return NewSampleLoader()
	}
	return NewFileLoader(path)
}

// Decode parses and validates a JSON taxonomy. Unknown fields are ignored.
func Decode(data []byte) (domain.Category, error) {
	var root domain.Category
	if err := json.Unmarshal(data, &root); err != nil {
		return domain.Category{}, fmt.Errorf("%w: %v", ErrMalformedTaxonomy, err)
	}
	if err := validate.Struct(root); err != nil {
		return domain.Category{}, fmt.Errorf("%w: %v", ErrMalformedTaxonomy, err)
	}
	return root, nil
}
