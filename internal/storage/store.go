// Package storage provides the key/value store that holds per-user state:
// the salary plan, the applied goal, settings and the telemetry log.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Store is a string key/value store with append-only lists. Values are
// opaque to the store; callers encode them as JSON.
type Store interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Append adds value to the end of the list under key.
	Append(ctx context.Context, key, value string) error
	// List returns the list under key, oldest first. A missing list is empty.
	List(ctx context.Context, key string) ([]string, error)
	Close() error
}

// GetJSON decodes the value under key into v. It returns ErrNotFound when
// the key is missing.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(b))
}

func AppendJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Append(ctx, key, string(b))
}

// ListJSON decodes every entry of the list under key. Entries that fail to
// decode are skipped and counted in the returned skip count.
func ListJSON[T any](ctx context.Context, s Store, key string) ([]T, int, error) {
	raw, err := s.List(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	out := make([]T, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		var v T
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped, nil
}
