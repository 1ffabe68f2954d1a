package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"solidus/sitemap/internal/client"
	"solidus/sitemap/internal/config"
	"solidus/sitemap/internal/domain"
	"solidus/sitemap/internal/features"
	"solidus/sitemap/internal/proxy"
	"solidus/sitemap/internal/queue"
	"solidus/sitemap/internal/repository"
	"solidus/sitemap/internal/routes"
	"solidus/sitemap/internal/service"
	"solidus/sitemap/internal/sitemap"
	"solidus/sitemap/internal/state"
)

// Container holds all initialized components
type Container struct {
	Config   *config.Config
	Catalog  sitemap.Catalog
	Router   *routes.Router
	Features *features.Registry
	Queue    queue.Queue
	RunStore state.RunStore

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// URLOptions turns the storefront settings into default url options.
func URLOptions(cfg config.StorefrontConfig) domain.URLOptions {
	opts := domain.URLOptions{
		"host":     cfg.Host,
		"protocol": cfg.Protocol,
	}
	if cfg.Port > 0 {
		opts["port"] = cfg.Port
	}
	return opts
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config:   cfg,
		Router:   routes.NewRouter(cfg.Storefront.MountPath),
		Features: features.Default,
	}

	c.Features.Register(cfg.Features...)
	linked := c.Features.RegisterBuildInfo()
	log.Infof("🧩 Storefront features: %v (%d linked modules)", cfg.Features, linked)

	switch cfg.Catalog.Source {
	case config.CatalogSourceAPI:
		proxies := proxy.NewSupplier(ctx, cfg.Catalog.API.Proxies, cfg.Catalog.API.BaseURL)
		c.Catalog = client.NewStorefrontClient(cfg.Catalog.API, proxies)
		log.Infof("🔗 Reading catalog from %s", cfg.Catalog.API.BaseURL)
	default:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open database pool: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.db = db
		c.Catalog = repository.NewCatalogRepository(db, c.Features.Available(features.Videos))
		log.Infof("✅ Connected to catalog database %s", cfg.Database.Name)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		c.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.redis = rdb
	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis.ConsumerGroup)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Queue = redisQueue
	c.RunStore = state.NewRedisRunStore(rdb)

	c.Service = service.NewService(
		c.Catalog,
		c.Router,
		c.Features,
		URLOptions(cfg.Storefront),
		c.Queue,
		c.RunStore,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)

	return c, nil
}

// DefaultOptions are the entry options every configured run starts from.
func (c *Container) DefaultOptions() domain.Options {
	opts := domain.Options{}
	if c.Config.Sitemap.ChangeFreq != "" {
		opts["changefreq"] = c.Config.Sitemap.ChangeFreq
	}
	return opts
}

// Run queues a run for the configured storefront and serves the queue until ctx ends
func (c *Container) Run(ctx context.Context) error {
	sections, err := domain.ParseSections(c.Config.Sitemap.Sections)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := c.Service.Enqueue(ctx, c.Config.Storefront.Host, sections, c.DefaultOptions())
		return err
	})

	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.Sitemap.MaxWorkers)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
