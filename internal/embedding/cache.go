// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// cacheFile is the embedding cache database name inside the data directory.
const cacheFile = "embeddings.db"

// Cache stores embeddings in SQLite keyed by content hash, with optional
// per-entry expiry. Candidate embeddings expire after a TTL; library
// embeddings are stored without one.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the embedding cache at dataDir/embeddings.db.
func OpenCache(dataDir string) (*Cache, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, cacheFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		content_hash TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		vector BLOB NOT NULL,
		created_at TEXT NOT NULL,
		expires_at TEXT
	)`)
	return err
}

// Get returns the cached vector for the hash, or ok=false on a miss.
// Expired entries are misses.
func (c *Cache) Get(ctx context.Context, hash string) ([]float32, bool, error) {
	var (
		blob      []byte
		expiresAt sql.NullString
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT vector, expires_at FROM embeddings WHERE content_hash = ?`, hash,
	).Scan(&blob, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying embedding cache: %w", err)
	}

	if expiresAt.Valid {
		t, parseErr := time.Parse(time.RFC3339, expiresAt.String)
		if parseErr == nil && time.Now().UTC().After(t) {
			return nil, false, nil
		}
	}

	vec, err := decodeVector(blob)
	if err != nil {
		return nil, false, fmt.Errorf("decoding cached embedding: %w", err)
	}
	return vec, true, nil
}

// Put stores a vector under the hash. A positive ttlDays sets an expiry;
// zero or negative stores the entry permanently.
func (c *Cache) Put(ctx context.Context, hash, model string, vec []float32, ttlDays int) error {
	now := time.Now().UTC()
	var expiresAt any
	if ttlDays > 0 {
		expiresAt = now.AddDate(0, 0, ttlDays).Format(time.RFC3339)
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO embeddings (content_hash, model, vector, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET
			model=excluded.model, vector=excluded.vector,
			created_at=excluded.created_at, expires_at=excluded.expires_at`,
		hash, model, encodeVector(vec), now.Format(time.RFC3339), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}
	return nil
}

// CleanupExpired removes entries past their expiry and returns the count.
func (c *Cache) CleanupExpired(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM embeddings WHERE expires_at IS NOT NULL AND expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("cleaning up embedding cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ContentHash keys a cache entry by model and text, so switching models
// never serves stale vectors.
func ContentHash(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Vectors are stored as little-endian float32 blobs.

func encodeVector(vec []float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, vec)
	return buf.Bytes()
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// CachingProvider wraps a Provider with the cache. Embed consults the
// cache by content hash before calling the underlying provider.
type CachingProvider struct {
	provider Provider
	cache    *Cache
	ttlDays  int
	warn     io.Writer
}

// NewCachingProvider wraps provider with cache. ttlDays applies to newly
// stored entries; use 0 for permanent entries. Cache read and write
// failures are reported to warn, never returned from Embed.
func NewCachingProvider(provider Provider, cache *Cache, ttlDays int, warn io.Writer) *CachingProvider {
	if warn == nil {
		warn = io.Discard
	}
	return &CachingProvider{provider: provider, cache: cache, ttlDays: ttlDays, warn: warn}
}

// ModelName returns the wrapped provider's model name.
func (p *CachingProvider) ModelName() string { return p.provider.ModelName() }

// Dimensions returns the wrapped provider's dimensionality.
func (p *CachingProvider) Dimensions() int { return p.provider.Dimensions() }

// Embed returns the cached vector when present, otherwise calls the
// underlying provider and caches the result. Cache read and write errors
// degrade to warnings; a good vector from the provider is always returned.
func (p *CachingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(p.provider.ModelName(), text)

	if vec, ok, err := p.cache.Get(ctx, hash); err == nil && ok {
		return vec, nil
	}

	vec, err := p.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Put(ctx, hash, p.provider.ModelName(), vec, p.ttlDays); err != nil {
		fmt.Fprintf(p.warn, "warning: caching embedding: %v\n", err)
	}
	return vec, nil
}
