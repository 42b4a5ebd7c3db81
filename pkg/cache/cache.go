// Package cache stores computed layouts and rendered artifacts.
//
// Layout runs are deterministic for a given document, seed and set of layout
// options, so their results can be reused across CLI invocations and server
// sessions. A [Cache] is a byte store with per-entry TTL; a [Keyer] derives
// stable keys from what produced an entry.
//
// Backends:
//
//   - [FileCache]: JSON files under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: persistent cache with a TTL index
//   - [NullCache]: disables caching
//
// [Open] selects a backend from a [Config].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Entry lifetimes.
const (
	// TTLLayout is how long a computed layout is kept.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact is kept.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLDocument is how long a parsed input document is kept.
	TTLDocument = 24 * time.Hour
)

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts are the layout options that change the computed positions.
type LayoutKeyOpts struct {
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Seed       uint64  `json:"seed"`
	Ticks      int     `json:"ticks,omitempty"`
	BaseRadius float64 `json:"base_radius,omitempty"`
	Mode       string  `json:"mode,omitempty"`
	Focus      string  `json:"focus,omitempty"`
	NoLabels   bool    `json:"no_labels,omitempty"`
}

// ArtifactKeyOpts are the render options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine,omitempty"`
	Labels bool   `json:"labels,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey identifies a parsed input document by the hash of its bytes.
	DocumentKey(contentHash string) string

	// LayoutKey identifies a layout of the document with hash docHash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendering of the layout with hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey implements Keyer.
func (DefaultKeyer) DocumentKey(contentHash string) string {
	return "document:" + contentHash
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// =============================================================================
// Backend Selection
// =============================================================================

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend" json:"backend"`

	// Dir is the FileCache directory.
	Dir string `toml:"dir" json:"dir,omitempty"`

	// URL is the Redis or MongoDB connection URL.
	URL string `toml:"url" json:"url,omitempty"`

	// Database and Collection name the MongoDB collection.
	Database   string `toml:"database" json:"database,omitempty"`
	Collection string `toml:"collection" json:"collection,omitempty"`

	// Prefix scopes every key, so several deployments can share a backend.
	Prefix string `toml:"prefix" json:"prefix,omitempty"`
}

// Open returns the backend described by cfg. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisConfig{URL: cfg.URL, Prefix: cfg.Prefix})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, MongoConfig{
			URI:        cfg.URL,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone, "null":
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (want file, redis, mongo or none)", cfg.Backend)
}
