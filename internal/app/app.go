package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/imagestore"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *goredis.Client
	publisher      pkgkafka.Publisher
	httpServer     *http.Server
	tracerShutdown tracing.Shutdown
	cancel         context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
// Anything opened before a failing step is released before NewApp returns.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var undo teardown
	defer func() {
		if err != nil {
			undo.run()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(serviceName, serviceVersion))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	undo.add(func() {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := tracerShutdown(tracerCtx); err != nil {
			logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	})

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	undo.add(pool.Close)
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	// Run database migrations.
	if cfg.RunMigrationsOnBoot {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// Repositories, optionally behind the Redis read cache.
	var (
		categories repository.CategoryRepository = postgres.NewCategoryRepository(pool)
		products   repository.ProductRepository  = postgres.NewProductRepository(pool)
		rdb        *goredis.Client
	)
	if cfg.CacheEnabled {
		rdb, err = database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		undo.add(func() { _ = rdb.Close() })
		logger.Info("connected to Redis",
			slog.String("addr", cfg.Redis().Addr()),
			slog.Duration("ttl", cfg.CacheTTL),
		)
		categories = redisrepo.NewCategoryRepository(categories, rdb, cfg.CacheTTL, logger)
		products = redisrepo.NewProductRepository(products, rdb, cfg.CacheTTL, logger)
		healthHandler.RegisterOptional("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	cart := postgres.NewCartRepository(pool)
	orders := postgres.NewOrderRepository(pool)

	// Initialize Kafka producer.
	var publisher pkgkafka.Publisher = pkgkafka.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = producer
		undo.add(func() { _ = producer.Close() })
		healthHandler.RegisterOptional("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, domain events are discarded")
	}

	// Image store.
	store, local, err := newImageStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	images := imagestore.NewBreaker(store, imagestore.DefaultBreakerConfig("imagestore"), logger)

	// Build the dependency graph.
	shipping, err := cfg.Shipping()
	if err != nil {
		return nil, err
	}
	eventProducer := event.NewProducer(publisher, logger)
	categoryService := service.NewCategoryService(categories, images, eventProducer, logger)
	productService := service.NewProductService(products, categories, images, eventProducer, logger)
	cartService := service.NewCartService(cart, products, categories, eventProducer, logger)
	orderService := service.NewOrderService(orders, eventProducer, logger, shipping)

	httputil.ExposeErrorDetails(cfg.IsDevelopment())

	// HTTP router. runCtx bounds the rate limiter's eviction loop.
	runCtx, runCancel := context.WithCancel(context.Background())
	undo.add(runCancel)
	routerCfg := newRouterConfig(cfg)
	if local != nil {
		routerCfg.Images = local
	}
	router := handler.NewRouter(runCtx, categoryService, productService, cartService, orderService, healthHandler, routerCfg, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		publisher:      publisher,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
		cancel:         runCancel,
	}, nil
}

// teardown collects release steps while NewApp acquires resources.
type teardown []func()

func (t *teardown) add(fn func()) {
	*t = append(*t, fn)
}

// run releases in reverse acquisition order.
func (t teardown) run() {
	for i := len(t) - 1; i >= 0; i-- {
		t[i]()
	}
}

// newImageStore picks Cloudinary when configured. Otherwise images are kept
// in memory and the returned Memory must be served by the router.
func newImageStore(cfg *config.Config, logger *slog.Logger) (imagestore.Store, *imagestore.Memory, error) {
	if cfg.CloudinaryURL != "" {
		store, err := imagestore.NewCloudinary(cfg.CloudinaryURL, cfg.ImageRoot, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init cloudinary: %w", err)
		}
		logger.Info("image store initialized", slog.String("backend", "cloudinary"))
		return store, nil, nil
	}
	logger.Warn("CLOUDINARY_URL not set, images are kept in memory",
		slog.String("base_url", cfg.ImageBaseURL),
	)
	mem := imagestore.NewMemory(cfg.ImageBaseURL, cfg.ImageRoot)
	return mem, mem, nil
}

func newRouterConfig(cfg *config.Config) handler.RouterConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORSAllowedOrigins
	}
	return handler.RouterConfig{
		ServiceName:       serviceName,
		CORS:              cors,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		RequestTimeout:    cfg.RequestTimeout,
		MaxBodySize:       cfg.MaxJSONBodyBytes,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in dependency order: HTTP first so in-flight
// requests finish, then the tracer, Kafka, Redis and finally PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.cancel()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
