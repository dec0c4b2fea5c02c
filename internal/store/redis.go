package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kingrea/blueprint/internal/blueprint"
)

// DocumentKeyPrefix namespaces document keys in redis.
const DocumentKeyPrefix = "blueprint:document:"

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL is refreshed on every save. Zero keeps keys forever.
	TTL time.Duration
}

// RedisStore keeps each document as a JSON string under a prefixed key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("store: redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, opts.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func documentKey(id string) string {
	return DocumentKeyPrefix + id
}

// Load retrieves a document.
func (s *RedisStore) Load(ctx context.Context, id string) (blueprint.Document, error) {
	id, err := validateID(id)
	if err != nil {
		return blueprint.Document{}, err
	}
	data, err := s.client.Get(ctx, documentKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return blueprint.Document{}, ErrNotFound
	}
	if err != nil {
		return blueprint.Document{}, fmt.Errorf("store: load %s: %w", id, err)
	}
	var doc blueprint.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return blueprint.Document{}, fmt.Errorf("store: decode %s: %w", id, err)
	}
	doc.Normalize()
	return doc, nil
}

// Save writes the document and resets its TTL.
func (s *RedisStore) Save(ctx context.Context, id string, doc blueprint.Document) error {
	id, err := validateID(id)
	if err != nil {
		return err
	}
	data, err := json.Marshal(prepare(id, doc))
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, documentKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store: save %s: %w", id, err)
	}
	return nil
}

// List scans document keys.
func (s *RedisStore) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	iter := s.client.Scan(ctx, 0, DocumentKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), DocumentKeyPrefix)
		doc, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Expired between SCAN and GET.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(doc))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	sortSummaries(out)
	return out, nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
