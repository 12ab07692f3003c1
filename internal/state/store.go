package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mediamap/internal/observability"
)

const snapshotVersion = 1

// ErrNoSnapshot means no usable snapshot exists for the session; callers
// start from defaults.
var ErrNoSnapshot = errors.New("no filter snapshot")

type record struct {
	Version int         `json:"version"`
	State   FilterState `json:"state"`
}

// Store persists one whole-record filter snapshot per session in Redis.
// Writes are full overwrites after every mutation; there is a single writer
// per session, so no transactional machinery is needed.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

type Option func(*redis.Options)

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.DialTimeout = d }
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.ReadTimeout = d }
}

// NewStore connects to Redis and pings it. ttl bounds snapshot lifetime;
// it should be far longer than any realistic session.
func NewStore(ctx context.Context, addr string, ttl time.Duration, opts ...Option) (*Store, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	ro := &redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	for _, f := range opts {
		f(ro)
	}
	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func key(session string) string {
	return "filters:v1:" + session
}

// Load reads and decodes the session's snapshot. A missing record returns
// ErrNoSnapshot; a malformed or wrong-version record is erased first so it
// cannot fail repeatedly, then also returns ErrNoSnapshot.
func (s *Store) Load(ctx context.Context, session string) (FilterState, error) {
	raw, err := s.rdb.Get(ctx, key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.IncSnapshotOp("load", "miss")
		return FilterState{}, ErrNoSnapshot
	}
	if err != nil {
		observability.IncSnapshotOp("load", "error")
		return FilterState{}, fmt.Errorf("redis GET %q: %w", key(session), err)
	}

	var rec record
	if jsonErr := json.Unmarshal(raw, &rec); jsonErr != nil || rec.Version != snapshotVersion {
		observability.IncSnapshotOp("load", "corrupt")
		_ = s.rdb.Del(ctx, key(session)).Err()
		return FilterState{}, ErrNoSnapshot
	}
	observability.IncSnapshotOp("load", "ok")
	return Reconcile(rec.State), nil
}

// Save overwrites the session's snapshot.
func (s *Store) Save(ctx context.Context, session string, st FilterState) error {
	b, err := json.Marshal(record{Version: snapshotVersion, State: st})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, key(session), b, s.ttl).Err(); err != nil {
		observability.IncSnapshotOp("save", "error")
		return fmt.Errorf("redis SET %q: %w", key(session), err)
	}
	observability.IncSnapshotOp("save", "ok")
	return nil
}

// Delete erases the session's snapshot, used by the explicit reset intent.
func (s *Store) Delete(ctx context.Context, session string) error {
	if err := s.rdb.Del(ctx, key(session)).Err(); err != nil {
		observability.IncSnapshotOp("delete", "error")
		return fmt.Errorf("redis DEL %q: %w", key(session), err)
	}
	observability.IncSnapshotOp("delete", "ok")
	return nil
}
