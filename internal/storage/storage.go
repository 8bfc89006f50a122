package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bcnelson/sentinelguard/internal/domain"
)

// Document names. Each store owns its document exclusively.
const (
	WhitelistDocument = "whitelist"
	LogsDocument      = "logs"
	APIKeysDocument   = "apikeys"
)

// ErrDocumentNotFound is returned by Store.Load for a document that was never written.
var ErrDocumentNotFound = errors.New("document not found")

// Store is the byte-level backend for named documents.
// Implementations must be safe for concurrent use, but they do not make
// read-modify-write sequences atomic; use Document.Update for that.
type Store interface {
	// Load returns the raw content of a document or ErrDocumentNotFound.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save durably replaces the content of a document.
	Save(ctx context.Context, name string, data []byte) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// Read loads a document and decodes it into T.
// A missing document yields the zero value of T.
func Read[T any](ctx context.Context, s Store, name string) (T, error) {
	var doc T

	data, err := s.Load(ctx, name)
	if errors.Is(err, ErrDocumentNotFound) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("%w: reading %s: %v", domain.ErrStorage, name, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: decoding %s: %v", domain.ErrStorage, name, err)
	}

	return doc, nil
}

// Write encodes v as indented JSON and saves it under name.
func Write(ctx context.Context, s Store, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", domain.ErrStorage, name, err)
	}

	if err := s.Save(ctx, name, data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", domain.ErrStorage, name, err)
	}

	return nil
}

// Document is a typed, named document whose read-modify-write cycles are
// serialized by a per-document mutex. Create exactly one Document per name.
type Document[T any] struct {
	store Store
	name  string
	mu    sync.Mutex
}

// NewDocument binds a typed document to a backend.
func NewDocument[T any](store Store, name string) *Document[T] {
	return &Document[T]{store: store, name: name}
}

// Read returns the current content.
func (d *Document[T]) Read(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Read[T](ctx, d.store, d.name)
}

// Write replaces the content.
func (d *Document[T]) Write(ctx context.Context, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Write(ctx, d.store, d.name, v)
}

// Update runs fn on the current content while holding the document lock.
// The document is written back only if fn reports a change.
func (d *Document[T]) Update(ctx context.Context, fn func(doc *T) (bool, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := Read[T](ctx, d.store, d.name)
	if err != nil {
		return err
	}

	changed, err := fn(&doc)
	if err != nil || !changed {
		return err
	}

	return Write(ctx, d.store, d.name, doc)
}
