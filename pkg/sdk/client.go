package tagdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kailas-cloud/tagdex/internal/db"
	dbBolt "github.com/kailas-cloud/tagdex/internal/db/bolt"
	dbRedis "github.com/kailas-cloud/tagdex/internal/db/redis"
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
	"github.com/kailas-cloud/tagdex/internal/domain/search/rank"
	recordrepo "github.com/kailas-cloud/tagdex/internal/repository/record"
	healthuc "github.com/kailas-cloud/tagdex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/tagdex/internal/usecase/record"
	searchuc "github.com/kailas-cloud/tagdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "tagdex:"
)

// Internal interfaces, swapped for mocks in tests.
type recordUseCase interface {
	Save(ctx context.Context, description string, tags []string, path string) (domrec.Record, error)
	List(ctx context.Context, cursor string, limit int) ([]domrec.Record, string, error)
}

type searchUseCase interface {
	Search(ctx context.Context, query string, k int) ([]rank.Hit, error)
}

// backend is a record repository plus connection lifecycle.
type backend interface {
	recorduc.Repository
	Ping(ctx context.Context) error
	Close()
}

// seqBackend adapts a sequenced-list store to backend.
type seqBackend struct {
	*recordrepo.Repo
	store db.Store
}

func (b *seqBackend) Ping(ctx context.Context) error { return b.store.Ping(ctx) }
func (b *seqBackend) Close()                         { b.store.Close() }

// Client is the tagdex SDK entry point. It is safe for concurrent use.
type Client struct {
	backend   backend
	recordSvc recordUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the configured record store and waits until it is ready.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        defaultKeyPrefix,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("tagdex: record store required (use WithFile, WithBolt, WithRedis or WithValkey)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return wireClient(b, cfg, obs), nil
}

func openBackend(ctx context.Context, cfg *clientConfig) (backend, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.driver {
	case driverFile:
		if cfg.path == "" {
			return nil, errors.New("tagdex: file path required")
		}
		return recordrepo.NewFile(cfg.path), nil
	case driverBolt:
		if cfg.path == "" {
			return nil, errors.New("tagdex: bolt path required")
		}
		store, err = dbBolt.NewStore(dbBolt.Config{Path: cfg.path, LockTimeout: cfg.readinessTimeout})
	case driverRedis, driverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
	default:
		return nil, fmt.Errorf("tagdex: unknown driver %q", cfg.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("tagdex: create %s store: %w", cfg.driver, err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("tagdex: %s store not ready: %w", cfg.driver, err)
	}
	return &seqBackend{Repo: recordrepo.New(store, cfg.keyPrefix), store: store}, nil
}

func wireClient(b backend, cfg *clientConfig, obs *observer) *Client {
	return &Client{
		backend:   b,
		recordSvc: recorduc.New(b),
		searchSvc: searchuc.New(b, nil).WithLimits(cfg.defaultK, cfg.maxK),
		healthSvc: healthuc.New(b, nil, nil),
		obs:       obs,
	}
}

// Close releases the underlying store.
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// Ping checks record store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "ping", start, err) }()

	if err = c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Add validates and stores a record. tags may be empty but not nil.
func (c *Client) Add(ctx context.Context, description string, tags []string, path string) (rec Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "add", start, err, slog.Int64("id", rec.ID)) }()

	r, err := c.recordSvc.Save(ctx, description, tags, path)
	if err != nil {
		return Record{}, fmt.Errorf("add record: %w", err)
	}
	return recordFromDomain(&r), nil
}

// List returns one page of records in insertion order. Pass the previous
// page's NextCursor to continue; limit <= 0 selects the default page size.
func (c *Client) List(ctx context.Context, cursor string, limit int) (page Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "list", start, err, slog.Int("records", len(page.Records))) }()

	recs, next, err := c.recordSvc.List(ctx, cursor, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list records: %w", err)
	}
	out := make([]Record, len(recs))
	for i := range recs {
		out[i] = recordFromDomain(&recs[i])
	}
	return Page{Records: out, NextCursor: next}, nil
}

// Search returns up to k records ranked by relevance to query.
func (c *Client) Search(ctx context.Context, query string, k int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { c.obs.observe(ctx, "search", start, err, slog.Int("hits", len(hits))) }()

	res, err := c.searchSvc.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return hitsFromDomain(res), nil
}
