// Package redis provides a durable core.SessionStore backed by Redis so
// suspended sessions survive process restarts and can be resumed from any
// replica.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaidya-ai/vaidya/core"
)

const defaultKeyPrefix = "vaidya:session:"

// Options configures a Store instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// KeyPrefix namespaces session keys. Defaults to "vaidya:session:".
	KeyPrefix string

	// TTL expires sessions that are never resumed. Zero keeps them forever.
	TTL time.Duration
}

// Store persists sessions as JSON values in Redis. Update runs under WATCH so
// the version compare-and-swap holds across processes: of two concurrent
// writers one always loses with core.ErrVersionConflict.
type Store struct {
	client redis.UniversalClient
	opts   Options
}

// New creates a Redis-backed session store on an existing client.
func New(client redis.UniversalClient, optFns ...func(o *Options)) *Store {
	opts := Options{KeyPrefix: defaultKeyPrefix}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	return &Store{client: client, opts: opts}
}

func (s *Store) key(id string) string { return s.opts.KeyPrefix + id }

// Put stores a new session snapshot at version 1.
func (s *Store) Put(ctx context.Context, sess *core.Session) error {
	cp := sess.Clone()
	cp.Version = 1
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshaling session %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("storing session %s: %w", sess.ID, err)
	}
	sess.Version = cp.Version
	return nil
}

// Get returns the stored session or core.ErrSessionNotFound.
func (s *Store) Get(ctx context.Context, id string) (*core.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	var sess core.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshaling session %s: %w", id, err)
	}
	return &sess, nil
}

// Update replaces the stored snapshot iff the caller's version matches the
// stored one. The read-check-write runs under WATCH; a concurrent write to
// the key between read and commit also surfaces as core.ErrVersionConflict.
func (s *Store) Update(ctx context.Context, sess *core.Session) error {
	key := s.key(sess.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return core.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var stored core.Session
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("unmarshaling session %s: %w", sess.ID, err)
		}
		if stored.Version != sess.Version {
			return core.ErrVersionConflict
		}

		cp := sess.Clone()
		cp.Version = stored.Version + 1
		next, err := json.Marshal(cp)
		if err != nil {
			return fmt.Errorf("marshaling session %s: %w", sess.ID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.opts.TTL)
			return nil
		})
		if err == nil {
			sess.Version = cp.Version
		}
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return core.ErrVersionConflict
	}
	return err
}

// Delete removes the session if present or returns core.ErrSessionNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}
