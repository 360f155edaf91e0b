package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adalundhe/psyche/core/errors"
	"github.com/adalundhe/psyche/core/format"
)

// Adapter is the typed facade callers use. It builds canonical client
// paths, sanitizes every segment, and serializes values.
type Adapter struct {
	store Store
}

// NewAdapter wraps a backend store.
func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store}
}

// ClientPath builds the canonical path for a client-scoped data type.
func ClientPath(client int, dataType string) string {
	return fmt.Sprintf("clients/%d/%s", client, Sanitize(dataType))
}

// Put stores a value under a client's data-type key. *format.Map values
// are pruned (nulls dropped, strings trimmed) and their keys sanitized
// recursively before serialization.
func (a *Adapter) Put(ctx context.Context, client int, dataType string, value any) error {
	return a.PutPath(ctx, ClientPath(client, dataType), value)
}

// PutPath stores a value under an explicit path. Used for top-level keys
// such as expert validation records.
func (a *Adapter) PutPath(ctx context.Context, path string, value any) error {
	data, err := encodeValue(value)
	if err != nil {
		return errors.Wrap(errors.KindBlobStore, "blobstore.put", err).WithContext("path", path)
	}
	if err := a.store.Put(ctx, sanitizePath(path), data); err != nil {
		return errors.Wrap(errors.KindBlobStore, "blobstore.put", err).WithContext("path", path)
	}
	return nil
}

// Get retrieves the raw serialized value for a client's data-type key.
// Returns found=false when the key has never been written.
func (a *Adapter) Get(ctx context.Context, client int, dataType string) ([]byte, bool, error) {
	return a.GetPath(ctx, ClientPath(client, dataType))
}

// GetPath retrieves a value under an explicit path.
func (a *Adapter) GetPath(ctx context.Context, path string) ([]byte, bool, error) {
	data, found, err := a.store.Get(ctx, sanitizePath(path))
	if err != nil {
		return nil, false, errors.Wrap(errors.KindBlobStore, "blobstore.get", err).WithContext("path", path)
	}
	return data, found, nil
}

// GetRecord retrieves and decodes an ordered record.
func (a *Adapter) GetRecord(ctx context.Context, client int, dataType string) (*format.Map, bool, error) {
	data, found, err := a.Get(ctx, client, dataType)
	if err != nil || !found {
		return nil, found, err
	}
	m, err := format.ParseMap(data)
	if err != nil {
		return nil, true, errors.Wrap(errors.KindBlobStore, "blobstore.decode", err)
	}
	return m, true, nil
}

// GetText retrieves and decodes a string value.
func (a *Adapter) GetText(ctx context.Context, client int, dataType string) (string, bool, error) {
	data, found, err := a.Get(ctx, client, dataType)
	if err != nil || !found {
		return "", found, err
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", true, errors.Wrap(errors.KindBlobStore, "blobstore.decode", err)
	}
	return s, true, nil
}

// ListClient returns the stored paths under a client.
func (a *Adapter) ListClient(ctx context.Context, client int) ([]string, error) {
	paths, err := a.store.List(ctx, fmt.Sprintf("clients/%d/", client))
	if err != nil {
		return nil, errors.Wrap(errors.KindBlobStore, "blobstore.list", err)
	}
	return paths, nil
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.store.Close()
}

// sanitizePath sanitizes each '/'-separated segment while keeping the
// separators that structure the hierarchy.
func sanitizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = Sanitize(seg)
	}
	return strings.Join(segments, "/")
}

func encodeValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case *format.Map:
		cleaned := v.Clone()
		format.Prune(cleaned)
		return json.Marshal(sanitizeRecord(cleaned))
	case string:
		return json.Marshal(strings.TrimSpace(v))
	default:
		return json.Marshal(v)
	}
}

// sanitizeRecord sanitizes record keys recursively so that nested keys
// containing '/' persist as '_'. Readers normalize both forms.
func sanitizeRecord(m *format.Map) *format.Map {
	out := format.NewMap()
	m.Range(func(key string, value any) bool {
		if nested, ok := value.(*format.Map); ok {
			value = sanitizeRecord(nested)
		}
		out.Set(Sanitize(key), value)
		return true
	})
	return out
}
