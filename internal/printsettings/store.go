// Package printsettings persists print-layout preferences as JSON blobs,
// keyed per document type plus one catch-all blob, mirroring the
// printSettings_<documentType> / printSettings_all keys the print-preview
// screens expect.
package printsettings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/auricare/calendar-gateway/internal/redisx"
)

const (
	keyPrefix = "printsettings:"
	// AllDocuments addresses the blob shared by every document type.
	AllDocuments = "all"
)

var (
	ErrNotFound     = errors.New("print settings not found")
	ErrInvalidBlob  = errors.New("print settings must be a JSON object")
	ErrEmptyDocType = errors.New("document type is required")
)

// KV is the key-value surface backing the store (redisx.KV in production).
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func key(documentType string) string {
	return keyPrefix + documentType
}

// Get returns the stored blob for documentType. Missing keys map to
// ErrNotFound; Redis misses are not distinguished from never-saved.
func (s *Store) Get(ctx context.Context, documentType string) (json.RawMessage, error) {
	if documentType == "" {
		return nil, ErrEmptyDocType
	}
	val, err := s.kv.Get(ctx, key(documentType))
	if err != nil {
		if errors.Is(err, redisx.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load print settings %q: %w", documentType, err)
	}
	return json.RawMessage(val), nil
}

// Put stores a settings blob. The payload must be a JSON object; the layout
// fields inside it belong to the print components and are not interpreted
// here. Settings have no expiry.
func (s *Store) Put(ctx context.Context, documentType string, blob json.RawMessage) error {
	if documentType == "" {
		return ErrEmptyDocType
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(blob, &obj); err != nil {
		return ErrInvalidBlob
	}

	if err := s.kv.Set(ctx, key(documentType), string(blob), 0); err != nil {
		return fmt.Errorf("store print settings %q: %w", documentType, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, documentType string) error {
	if documentType == "" {
		return ErrEmptyDocType
	}
	if err := s.kv.Delete(ctx, key(documentType)); err != nil {
		return fmt.Errorf("delete print settings %q: %w", documentType, err)
	}
	return nil
}
