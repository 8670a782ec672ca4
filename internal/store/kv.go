package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/SelJom/ClarityAI/internal/metrics"
)

// Load reads key from s and JSON-decodes it into a T. It returns fallback
// when s is nil, the key is missing, the read fails or the blob does not
// decode. Load never fails.
func Load[T any](ctx context.Context, s Store, key string, fallback T) T {
	if s == nil {
		return fallback
	}
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("kv load failed, using fallback", "key", key, "error", err)
		}
		return fallback
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("kv blob is corrupt, using fallback", "key", key, "error", err)
		return fallback
	}
	return v
}

// Save JSON-encodes value and writes it under key. Failures are logged and
// swallowed: persistence is best-effort and must not block state changes.
func Save[T any](ctx context.Context, s Store, key string, value T) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		metrics.RecordPersistFailure(key, "encode")
		slog.Warn("kv encode failed, value not persisted", "key", key, "error", err)
		return
	}
	if err := s.Set(ctx, key, raw); err != nil {
		metrics.RecordPersistFailure(key, "set")
		slog.Warn("kv save failed, value not persisted", "key", key, "error", err)
	}
}

// Remove deletes key, logging and swallowing failures.
func Remove(ctx context.Context, s Store, key string) {
	if s == nil {
		return
	}
	if err := s.Delete(ctx, key); err != nil {
		metrics.RecordPersistFailure(key, "delete")
		slog.Warn("kv remove failed", "key", key, "error", err)
	}
}
