// Package cache implements the tag-based response cache behind the
// content and catalog endpoints. Entries are stored under opaque keys
// and registered to named tags; invalidating a tag drops every entry
// registered under it, so the next request re-fetches upstream data.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Known cache tags. Commerce webhooks invalidate TagProducts; CMS
// webhooks map document types onto the four content tags.
const (
	TagProducts = "products"
	TagPictures = "pictures"
	TagVideos   = "videos"
	TagMusic    = "music"
	TagRadio    = "radio"
)

// KnownTags returns every tag the debug endpoint may invalidate.
func KnownTags() []string {
	return []string{TagProducts, TagPictures, TagVideos, TagMusic, TagRadio}
}

// PathTag converts a page path into its tag form, so path invalidation
// rides the same mechanism as tag invalidation.
func PathTag(path string) string {
	return "path:" + path
}

// DefaultTTL bounds staleness even when no webhook ever arrives.
const DefaultTTL = time.Hour

// Store is the cache surface handlers depend on. Tests substitute a
// spy implementation to assert on invalidation calls.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, tags ...string) error
	// Invalidate drops every entry registered under tag and returns
	// how many entries were removed.
	Invalidate(ctx context.Context, tag string) (int, error)
}

// RedisStore is the production Store, one redis set per tag holding the
// member keys.
type RedisStore struct {
	client *redis.Client
}

// Connect dials redis and verifies the connection.
func Connect(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func tagSetKey(tag string) string {
	return "cachetag:" + tag
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, "cache:"+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, tags ...string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, "cache:"+key, value, DefaultTTL)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagSetKey(tag), key)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Invalidate(ctx context.Context, tag string) (int, error) {
	keys, err := s.client.SMembers(ctx, tagSetKey(tag)).Result()
	if err != nil {
		return 0, err
	}
	if len(keys) > 0 {
		prefixed := make([]string, len(keys))
		for i, k := range keys {
			prefixed[i] = "cache:" + k
		}
		if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
			return 0, err
		}
	}
	if err := s.client.Del(ctx, tagSetKey(tag)).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// MemoryStore is the in-process fallback used when redis is not
// reachable (local development) and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	tags    map[string]map[string]struct{}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(DefaultTTL)}
	for _, tag := range tags {
		if s.tags[tag] == nil {
			s.tags[tag] = make(map[string]struct{})
		}
		s.tags[tag][key] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, tag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.tags[tag]
	for key := range keys {
		delete(s.entries, key)
	}
	delete(s.tags, tag)
	return len(keys), nil
}
