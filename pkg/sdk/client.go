package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/cache"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	dbmemory "github.com/Srujan0798/Rest-iN-U-sub002/internal/db/memory"
	dbredis "github.com/Srujan0798/Rest-iN-U-sub002/internal/db/redis"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	indexrepo "github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/index"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
	searchrepo "github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/search"
	clusteruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/cluster"
	healthuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/health"
	searchuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/search"
	similaruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/similar"
)

const (
	defaultCASRetries       = 3
	defaultReadinessTimeout = 10 * time.Second
)

// Client is the embedded search engine entry point. Safe for concurrent use.
type Client struct {
	store   db.Store
	writer  *indexrepo.Repo
	results *cache.ResultCache
	limits  request.Limits

	searchSvc  *searchuc.Service
	similarSvc *similaruc.Service
	clusterSvc *clusteruc.Service
	healthSvc  *healthuc.Service
}

// Open connects to the index store, ensures the search index exists and
// returns a ready client.
func Open(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		driver:           "memory",
		keyPrefix:        "propsearch:",
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(&cfg)
	}

	var (
		store db.Store
		err   error
	)
	switch cfg.driver {
	case "redis":
		store, err = dbredis.NewStore(dbredis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
	case "memory":
		store = dbmemory.NewStore()
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.readinessTimeout)
	defer cancel()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	scheme := keys.NewScheme(cfg.keyPrefix)
	writer := indexrepo.New(store, scheme, defaultCASRetries)
	if err := writer.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	reader := searchrepo.New(store, scheme)

	var results *cache.ResultCache
	var resultCache searchuc.ResultCache
	if cfg.cacheSize > 0 {
		results = cache.NewResultCache(cfg.cacheSize, cfg.cacheTTL)
		resultCache = results
	}

	limits := request.Limits{
		DefaultLimit:        cfg.defaultLimit,
		MaxLimit:            cfg.maxLimit,
		DefaultRadiusMeters: cfg.defaultRadiusMeters,
	}
	limits.ApplyDefaults()

	return &Client{
		store:   store,
		writer:  writer,
		results: results,
		limits:  limits,
		searchSvc: searchuc.New(reader, nil, resultCache, nil, searchuc.Config{
			PriceBuckets: cfg.priceBuckets,
			VastuBuckets: cfg.vastuBuckets,
		}),
		similarSvc: similaruc.New(writer, reader),
		clusterSvc: clusteruc.New(reader),
		healthSvc:  healthuc.New(store, nil),
	}, nil
}

// Close releases the store connection.
func (c *Client) Close() {
	c.store.Close()
}

// Health reports the health of the index store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
