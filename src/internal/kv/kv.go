// Package kv is the durable key-value layer the collection store mirrors into.
// Values are JSON documents wrapped in a versioned envelope; a payload written
// under another schema version is treated as absent and reseeded.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ce-fello/synergy-crm/src/internal/metrics"
	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

// SchemaVersion is bumped whenever a stored entity shape changes incompatibly.
const SchemaVersion = 1

// ErrMissing is returned by backends when a key has never been written.
var ErrMissing = errors.New("kv: key missing")

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type Store struct {
	backend Backend
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewStore(backend Backend, logger *zap.Logger, m *metrics.Metrics) *Store {
	return &Store{backend: backend, log: logger, metrics: m}
}

// Load returns the value stored under key. When the key is missing, cannot be
// decoded, or was written by another schema version, def is written back and
// returned. A failed write-back is reported together with def.
func Load[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	s.log.Debug("kv.Load: start", zap.String("key", key))
	raw, err := s.backend.Get(ctx, key)
	switch {
	case errors.Is(err, ErrMissing):
		s.log.Debug("kv.Load: missing, seeding", zap.String("key", key))
	case err != nil:
		s.log.Warn("kv.Load: read failed, seeding", zap.String("key", key), zap.Error(err))
	default:
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Version != SchemaVersion || len(env.Data) == 0 {
			s.log.Warn("kv.Load: incompatible payload, reseeding",
				zap.String("key", key), zap.Int("version", env.Version), zap.Int("want", SchemaVersion))
			break
		}
		var out T
		if err := json.Unmarshal(env.Data, &out); err != nil {
			s.log.Warn("kv.Load: decode failed, reseeding", zap.String("key", key), zap.Error(err))
			break
		}
		s.log.Debug("kv.Load: success", zap.String("key", key))
		return out, nil
	}
	return def, s.Save(ctx, key, def)
}

// Save writes value under key. Failures are logged and returned wrapped in
// model.ErrPersist.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return s.persistFailed(key, err)
	}
	raw, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return s.persistFailed(key, err)
	}
	if err := s.backend.Put(ctx, key, raw); err != nil {
		return s.persistFailed(key, err)
	}
	s.log.Debug("kv.Save: success", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

// Reset wipes every key owned by the backend.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		s.log.Error("kv.Reset: clear failed", zap.Error(err))
		return fmt.Errorf("%w: clear: %v", model.ErrPersist, err)
	}
	s.log.Info("kv.Reset: storage cleared")
	return nil
}

func (s *Store) persistFailed(key string, err error) error {
	s.log.Error("kv.Save: persist failed", zap.String("key", key), zap.Error(err))
	s.metrics.PersistFailed(key)
	return fmt.Errorf("%w: %s: %v", model.ErrPersist, key, err)
}
