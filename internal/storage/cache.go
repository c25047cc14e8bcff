package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"mend/internal/logging"
)

// Cache is the persisted context cache: one value per
// (repo, state_id, suffix) key. Values are JSON objects stored
// zstd-compressed. Writes are last-writer-wins; there is no locking for
// concurrent writers to the same key, callers ensure key uniqueness.
type Cache struct {
	db  *DB
	ttl time.Duration
	log *logging.Logger

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCache wires a cache with the given TTL in seconds.
func NewCache(db *DB, ttlSeconds int, log *logging.Logger) (*Cache, error) {
	if log == nil {
		log = logging.Nop()
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Cache{
		db:  db,
		ttl: time.Duration(ttlSeconds) * time.Second,
		log: log,
		enc: enc,
		dec: dec,
	}, nil
}

// Get looks up a cached value. It misses when the key is absent, the entry
// has expired (the row is deleted on the way out), or any of requiredKeys
// is missing from the decoded object. The required-keys check is the only
// staleness guard; content changes without a state change are not detected.
func (c *Cache) Get(repo, stateID, suffix string, requiredKeys []string) (map[string]json.RawMessage, bool, error) {
	var blob []byte
	var expiresAt string

	err := c.db.QueryRow(`
		SELECT value, expires_at
		FROM context_cache
		WHERE repo = ? AND state_id = ? AND suffix = ?
	`, repo, stateID, suffix).Scan(&blob, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, false, fmt.Errorf("invalid expires_at: %w", err)
	}
	if time.Now().After(expiry) {
		c.db.Exec(`DELETE FROM context_cache WHERE repo = ? AND state_id = ? AND suffix = ?`,
			repo, stateID, suffix)
		c.log.Debug("cache entry expired", logging.Fields{"repo": repo, "suffix": suffix})
		return nil, false, nil
	}

	data, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress cache value: %w", err)
	}
	var value map[string]json.RawMessage
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache value: %w", err)
	}

	for _, key := range requiredKeys {
		if _, ok := value[key]; !ok {
			c.log.Debug("cache entry missing required key", logging.Fields{
				"repo": repo, "suffix": suffix, "key": key,
			})
			return nil, false, nil
		}
	}
	return value, true, nil
}

// Put stores a value, replacing any existing entry for the key.
func (c *Cache) Put(repo, stateID, suffix string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	blob := c.enc.EncodeAll(data, nil)

	now := time.Now()
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO context_cache (repo, state_id, suffix, value, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, repo, stateID, suffix, blob,
		now.Format(time.RFC3339), now.Add(c.ttl).Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}
