// Package cache provides Redis-backed sharing of scan results and quotes
// across processes, with graceful degradation: when Redis is down the
// caller falls back to direct fetch or database reads.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Key prefixes
const (
	keyLatestScan = "scan:latest:%s" // per scan source
	keyQuote      = "quote:%s"       // per symbol
)

// Default TTLs
const (
	ScanTTL  = 15 * time.Minute
	QuoteTTL = 5 * time.Minute
)

// Config holds Redis connection settings
type Config struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

// ScanCache caches scan snapshots in Redis. All methods are best-effort;
// errors are returned for logging but callers must treat them as a miss.
type ScanCache struct {
	client *redis.Client
	logger zerolog.Logger

	mu      sync.RWMutex
	healthy bool
}

// NewScanCache connects to Redis and verifies connectivity. A failed ping
// still returns a usable cache that reports unhealthy until Redis recovers.
func NewScanCache(cfg Config, logger zerolog.Logger) *ScanCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	c := &ScanCache{
		client: client,
		logger: logger.With().Str("component", "ScanCache").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis unavailable, scan cache degraded")
	} else {
		c.setHealthy(true)
		c.logger.Info().Str("address", cfg.Address).Msg("redis scan cache connected")
	}

	return c
}

// Healthy reports the last known Redis state
func (c *ScanCache) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

func (c *ScanCache) setHealthy(healthy bool) {
	c.mu.Lock()
	c.healthy = healthy
	c.mu.Unlock()
}

// SetLatestScan stores the most recent scan snapshot for a source
func (c *ScanCache) SetLatestScan(ctx context.Context, source string, snapshot interface{}) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode scan snapshot: %w", err)
	}

	key := fmt.Sprintf(keyLatestScan, source)
	if err := c.client.Set(ctx, key, data, ScanTTL).Err(); err != nil {
		c.setHealthy(false)
		return fmt.Errorf("failed to cache scan snapshot: %w", err)
	}
	c.setHealthy(true)
	return nil
}

// GetLatestScan loads the most recent scan snapshot for a source into out.
// Returns redis.Nil-wrapped error on miss.
func (c *ScanCache) GetLatestScan(ctx context.Context, source string, out interface{}) error {
	key := fmt.Sprintf(keyLatestScan, source)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.setHealthy(false)
		}
		return fmt.Errorf("scan snapshot miss: %w", err)
	}
	c.setHealthy(true)
	return json.Unmarshal(data, out)
}

// SetQuote shares a quote snapshot across processes
func (c *ScanCache) SetQuote(ctx context.Context, symbol string, quote interface{}) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := c.client.Set(ctx, fmt.Sprintf(keyQuote, symbol), data, QuoteTTL).Err(); err != nil {
		c.setHealthy(false)
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	c.setHealthy(true)
	return nil
}

// Close releases the Redis connection
func (c *ScanCache) Close() error {
	return c.client.Close()
}
