package health

import (
	"errors"
	"time"

	"github.com/2beens/healthzones/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const DefaultCacheSize = 8 * 1024 * 1024

// ResponseCache holds serialized /health responses in process memory.
type ResponseCache struct {
	cache          *freecache.Cache
	ttl            time.Duration
	metricsManager *metrics.Manager
}

func NewResponseCache(sizeBytes int, ttl time.Duration, metricsManager *metrics.Manager) *ResponseCache {
	if sizeBytes <= 0 {
		sizeBytes = DefaultCacheSize
	}
	return &ResponseCache{
		cache:          freecache.NewCache(sizeBytes),
		ttl:            ttl,
		metricsManager: metricsManager,
	}
}

func (c *ResponseCache) Get(key string) ([]byte, bool) {
	value, err := c.cache.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("health cache get %s: %s", key, err)
		}
		c.count("miss")
		return nil, false
	}
	c.count("hit")
	return value, true
}

func (c *ResponseCache) Set(key string, value []byte) {
	if c.ttl <= 0 {
		return
	}
	if err := c.cache.Set([]byte(key), value, int(c.ttl.Seconds())); err != nil {
		log.Errorf("health cache set %s: %s", key, err)
	}
}

// Clear drops every cached response, e.g. after new data was synced.
func (c *ResponseCache) Clear() {
	c.cache.Clear()
}

func (c *ResponseCache) count(result string) {
	if c.metricsManager == nil {
		return
	}
	c.metricsManager.CounterHealthCache.WithLabelValues(result).Inc()
}
