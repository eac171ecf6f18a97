package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketMetrics = []byte("metrics")
	keyCounters   = []byte("counters")
)

// ShadowCounters mirrors persisted counter values: counter name ->
// joined label values -> count.
type ShadowCounters map[string]map[string]float64

// Collector persists flow counters across restarts and updates system gauges
type Collector struct {
	db            *bolt.DB
	metrics       *Metrics
	storagePath   string
	flushInterval time.Duration
	startTime     time.Time

	shadow ShadowCounters
	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// OpenStore opens (or creates) the bbolt file used for counter persistence
func OpenStore(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics store: %w", err)
	}
	return db, nil
}

// NewCollector creates a new metrics collector and restores saved counters
func NewCollector(db *bolt.DB, m *Metrics, storagePath string, flushInterval time.Duration) (*Collector, error) {
	if flushInterval == 0 {
		flushInterval = 10 * time.Second
	}

	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMetrics)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics bucket: %w", err)
	}

	c := &Collector{
		db:            db,
		metrics:       m,
		storagePath:   storagePath,
		flushInterval: flushInterval,
		startTime:     time.Now(),
		shadow:        make(ShadowCounters),
		stopCh:        make(chan struct{}),
	}

	if err := c.loadCounters(); err != nil {
		return nil, err
	}

	m.attach(c)
	return c, nil
}

// Start begins the collector background tasks
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.loop(ctx)
}

// Stop stops the collector and persists final values
func (c *Collector) Stop() error {
	close(c.stopCh)
	c.wg.Wait()
	c.metrics.attach(nil)
	return c.persistCounters()
}

// loadCounters restores persisted counter values into the Prometheus vectors
func (c *Collector) loadCounters() error {
	return c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketMetrics)
		if bucket == nil {
			return nil
		}

		data := bucket.Get(keyCounters)
		if data == nil {
			return nil
		}

		var shadow ShadowCounters
		if err := json.Unmarshal(data, &shadow); err != nil {
			return nil // Skip invalid data
		}

		vecs := c.metrics.persisted()

		c.mu.Lock()
		defer c.mu.Unlock()

		for name, values := range shadow {
			vec, ok := vecs[name]
			if !ok {
				continue
			}
			for key, v := range values {
				labels := splitLabelKey(key)
				if _, err := vec.GetMetricWithLabelValues(labels...); err != nil {
					// label layout changed since the value was saved
					continue
				}
				c.shadowFor(name)[key] = v
				vec.WithLabelValues(labels...).Add(v)
			}
		}
		return nil
	})
}

// persistCounters saves counter values to bbolt
func (c *Collector) persistCounters() error {
	c.mu.Lock()
	data, err := json.Marshal(c.shadow)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketMetrics)
		if bucket == nil {
			return nil
		}
		return bucket.Put(keyCounters, data)
	})
}

// loop periodically persists counters and refreshes system gauges
func (c *Collector) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.persistCounters()
			c.collectSystemMetrics()
		}
	}
}

func (c *Collector) collectSystemMetrics() {
	c.metrics.UptimeSeconds.Set(time.Since(c.startTime).Seconds())

	if c.storagePath != "" {
		if info, err := os.Stat(c.storagePath); err == nil {
			c.metrics.StorageUsedBytes.Set(float64(info.Size()))
		}
	}
}

// track updates the shadow copy of a persisted counter
func (c *Collector) track(name string, labels ...string) {
	key := makeLabelKey(labels...)
	c.mu.Lock()
	c.shadowFor(name)[key]++
	c.mu.Unlock()
}

// shadowFor must be called with c.mu held
func (c *Collector) shadowFor(name string) map[string]float64 {
	values, ok := c.shadow[name]
	if !ok {
		values = make(map[string]float64)
		c.shadow[name] = values
	}
	return values
}

// Snapshot returns a copy of the shadow counters
func (c *Collector) Snapshot() ShadowCounters {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(ShadowCounters, len(c.shadow))
	for name, values := range c.shadow {
		cp := make(map[string]float64, len(values))
		for k, v := range values {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}

// Helper functions for label key serialization
func makeLabelKey(labels ...string) string {
	return strings.Join(labels, "|")
}

func splitLabelKey(key string) []string {
	return strings.Split(key, "|")
}
