package sdk

import "time"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "memory"
	addrs    []string
	password string

	keyPrefix string

	cacheSize int
	cacheTTL  time.Duration

	priceBuckets []float64
	vastuBuckets []float64

	defaultLimit        int
	maxLimit            int
	defaultRadiusMeters float64

	readinessTimeout time.Duration
}

// WithRedis configures the client to connect to a Redis instance with the
// search module loaded.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory backs the client with an in-memory index store. Intended for
// tests and prototypes; nothing survives Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithKeyPrefix namespaces every key the client writes.
// Default: "propsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithResultCache enables the search result cache. A zero size disables
// caching (default).
func WithResultCache(size int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
		c.cacheTTL = ttl
	})
}

// WithFacetBuckets sets the price and vastu score facet edges. Both slices
// must be strictly ascending.
func WithFacetBuckets(price, vastu []float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.priceBuckets = price
		c.vastuBuckets = vastu
	})
}

// WithLimits overrides pagination and geo-radius defaults.
func WithLimits(defaultLimit, maxLimit int, defaultRadiusMeters float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
		c.defaultRadiusMeters = defaultRadiusMeters
	})
}

// WithReadinessTimeout bounds the wait for the store to accept commands at
// Open. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}
