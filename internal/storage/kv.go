// Package storage is the persistent key-value layer behind the trip store.
// Values are JSON documents; a missing or unreadable value always falls back
// to the caller's default.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound is returned by KV.Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// KV is a durable byte store scoped to the application data directory.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Entry is one key of a batch write. A nil Value deletes the key.
type Entry struct {
	Key   string
	Value []byte
}

// Batcher is implemented by backends that apply a set of writes as one unit:
// either every entry lands or none does.
type Batcher interface {
	SetBatch(entries []Entry) error
}

// quarantiner is implemented by backends that can set a corrupt value aside
// for later inspection instead of silently overwriting it.
type quarantiner interface {
	Quarantine(key string) (string, error)
}

// Persistent adds JSON (de)serialization on top of a KV.
type Persistent struct {
	kv  KV
	log *zap.Logger
}

// NewPersistent wraps kv. A nil logger is replaced by a no-op logger.
func NewPersistent(kv KV, log *zap.Logger) *Persistent {
	if log == nil {
		log = zap.NewNop()
	}
	return &Persistent{kv: kv, log: log}
}

// Load decodes the value stored under key. Absent, unreadable and corrupt
// values all yield def; the latter two are logged.
func Load[T any](p *Persistent, key string, def T) T {
	data, err := p.kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def
	}
	if err != nil {
		p.log.Warn("reading stored value failed, using default", zap.String("key", key), zap.Error(err))
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		fields := []zap.Field{zap.String("key", key), zap.Error(err)}
		if q, ok := p.kv.(quarantiner); ok {
			if backup, qErr := q.Quarantine(key); qErr == nil {
				fields = append(fields, zap.String("backup", backup))
			}
		}
		p.log.Warn("corrupt stored value, using default", fields...)
		return def
	}
	return v
}

// Save serializes v as JSON and stores it under key.
func (p *Persistent) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage error marshalling %s: %w", key, err)
	}
	return p.kv.Set(key, data)
}

// Remove deletes key. Removing an absent key is not an error.
func (p *Persistent) Remove(key string) error {
	if err := p.kv.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Change is one pending write for SaveAll. A nil Value removes Key.
type Change struct {
	Key   string
	Value any
}

// SaveAll serializes every change before touching the backend and then writes
// them together. Backends implementing Batcher apply the set atomically; others
// get the writes in order.
func (p *Persistent) SaveAll(changes []Change) error {
	entries := make([]Entry, 0, len(changes))
	for _, c := range changes {
		e := Entry{Key: c.Key}
		if c.Value != nil {
			data, err := json.Marshal(c.Value)
			if err != nil {
				return fmt.Errorf("storage error marshalling %s: %w", c.Key, err)
			}
			e.Value = data
		}
		entries = append(entries, e)
	}

	if b, ok := p.kv.(Batcher); ok {
		return b.SetBatch(entries)
	}
	for _, e := range entries {
		if e.Value == nil {
			if err := p.kv.Delete(e.Key); err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("removing %s: %w", e.Key, err)
			}
			continue
		}
		if err := p.kv.Set(e.Key, e.Value); err != nil {
			return fmt.Errorf("writing %s: %w", e.Key, err)
		}
	}
	return nil
}
