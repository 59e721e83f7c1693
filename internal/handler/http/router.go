package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	ServiceName       string
	CORS              middleware.CORSConfig
	RateLimitRPS      float64
	RateLimitBurst    int
	RequestTimeout    time.Duration
	MaxBodySize       int64
	PprofAllowedCIDRs []string
	// Images, when set, serves locally stored images under /images/.
	Images ImageSource
}

// DefaultRouterConfig returns the settings used when nothing is configured.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		ServiceName:    "storefront",
		CORS:           middleware.DefaultCORSConfig(),
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    MaxJSONBodySize,
	}
}

// NewRouter creates a chi router with all storefront routes registered. ctx
// bounds background work started by the middleware.
func NewRouter(
	ctx context.Context,
	categoryService *service.CategoryService,
	productService *service.ProductService,
	cartService *service.CartService,
	orderService *service.OrderService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = MaxJSONBodySize
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5, "application/json"))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	if cfg.Images != nil {
		r.Get("/images/*", ServeImages(cfg.Images))
		r.Head("/images/*", ServeImages(cfg.Images))
	}

	categoryHandler := NewCategoryHandler(categoryService, logger)
	productHandler := NewProductHandler(productService, logger)
	cartHandler := NewCartHandler(cartService, logger)
	orderHandler := NewOrderHandler(orderService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(ContentTypeJSON)
		r.Use(LimitBody(cfg.MaxBodySize))

		r.Route("/categories", func(r chi.Router) {
			r.Post("/addCategory", categoryHandler.CreateCategory)
			r.Get("/category/getAll", categoryHandler.ListCategories)
			r.Get("/category/getById/{id}", categoryHandler.GetCategory)
			r.Put("/updateCategory/{id}", categoryHandler.UpdateCategory)
			r.Delete("/deleteCategory/{id}", categoryHandler.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/addProduct", productHandler.CreateProduct)
			r.Get("/product/getAll", productHandler.ListProducts)
			r.Get("/product/search", productHandler.SearchProducts)
			r.Get("/product/offers", productHandler.ListOffers)
			r.Get("/product/getByCategory/{categoryId}", productHandler.ListByCategory)
			r.Get("/product/getById/{id}", productHandler.GetProduct)
			r.Put("/updateProduct/{id}", productHandler.UpdateProduct)
			r.Delete("/deleteProduct/{id}", productHandler.DeleteProduct)
		})

		r.Post("/addToCart", cartHandler.AddToCart)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/getItems", cartHandler.ListCart)
			r.Put("/updateQuantity/{id}", cartHandler.UpdateQuantity)
			r.Delete("/deleteItem/{id}", cartHandler.RemoveLine)
			r.Delete("/clear", cartHandler.ClearCart)
		})

		r.Route("/order", func(r chi.Router) {
			r.Post("/checkout", orderHandler.Checkout)
			r.Get("/getAll", orderHandler.ListOrders)
			r.Get("/getById/{id}", orderHandler.GetOrder)
			r.Put("/updateStatus/{id}", orderHandler.UpdateStatus)
			r.Delete("/delete/{id}", orderHandler.DeleteOrder)
		})
	})

	return r
}
