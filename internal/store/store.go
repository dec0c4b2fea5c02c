// Package store persists blueprint documents. Three gateways share one
// contract: a JSON file per document, a sqlite table, or redis keys.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/workflow"
)

var (
	// ErrNotFound is returned when no document exists for an id.
	ErrNotFound = errors.New("store: document not found")
	// ErrInvalidID rejects ids that cannot be used as a storage key.
	ErrInvalidID = errors.New("store: invalid document id")
)

// Gateway is the persistence contract used by the state machine.
type Gateway interface {
	Save(ctx context.Context, id string, doc blueprint.Document) error
	Load(ctx context.Context, id string) (blueprint.Document, error)
}

// Summary is a listing entry.
type Summary struct {
	ID      string         `json:"id"`
	Stage   workflow.Stage `json:"stage"`
	Subject string         `json:"subject,omitempty"`
	Updated time.Time      `json:"updated"`
}

// Store is a gateway that can also enumerate and release resources.
type Store interface {
	Gateway
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// Options selects and configures a Store for Open.
type Options struct {
	Driver        string
	Dir           string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

// Open builds the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "redis":
		return NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			TTL:      opts.RedisTTL,
		})
	default:
		return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
	}
}

func summarize(doc blueprint.Document) Summary {
	return Summary{
		ID:      doc.ID,
		Stage:   workflow.DetectStage(&doc),
		Subject: doc.WizardContext.Subject,
		Updated: doc.Timestamps.Updated,
	}
}

func validateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return id, nil
}

// prepare stamps the storage id onto the document before encoding.
func prepare(id string, doc blueprint.Document) blueprint.Document {
	doc.ID = id
	doc.Normalize()
	return doc
}
