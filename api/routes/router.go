package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalog-admin-backend/api/controllers"
	"github.com/angelmondragon/catalog-admin-backend/api/middleware"
	"github.com/angelmondragon/catalog-admin-backend/internal/blog"
	category "github.com/angelmondragon/catalog-admin-backend/internal/categories"
	"github.com/angelmondragon/catalog-admin-backend/internal/media"
	product "github.com/angelmondragon/catalog-admin-backend/internal/products"
	tag "github.com/angelmondragon/catalog-admin-backend/internal/tags"
	"github.com/angelmondragon/catalog-admin-backend/internal/views"
	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/catalog-admin-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	catalogMetrics *metrics.CatalogMetrics,
	metricsHandler http.Handler,
	readiness map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	productService product.Service,
	categoryService category.Service,
	tagService tag.Service,
	blogService blog.Service,
	mediaService media.Service,
	viewService views.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(catalogMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(productService, logg))
			r.Post("/", controllers.AdminProductCreate(productService, logg))
			r.Post("/validate", controllers.AdminProductValidate(productService, logg))
			r.Get("/{productId}", controllers.AdminProductGet(productService, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(productService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoryService, logg))
			r.Post("/", controllers.CategoryCreate(categoryService, logg))
			r.Patch("/{categoryId}", controllers.CategoryUpdate(categoryService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(categoryService, logg))
		})

		r.Get("/tags", controllers.TagList(tagService, logg))

		r.Route("/blog/posts", func(r chi.Router) {
			r.Get("/", controllers.AdminPostList(blogService, logg))
			r.Post("/", controllers.AdminPostCreate(blogService, logg))
			r.Get("/{postId}", controllers.AdminPostGet(blogService, logg))
			r.Patch("/{postId}", controllers.AdminPostUpdate(blogService, logg))
			r.Delete("/{postId}", controllers.AdminPostDelete(blogService, logg))
			r.Post("/{postId}/publish", controllers.AdminPostPublish(blogService, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Get("/", controllers.MediaList(mediaService, logg))
			r.Post("/", controllers.MediaUpload(mediaService, cfg.Media, logg))
			r.Delete("/{mediaId}", controllers.MediaDelete(mediaService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/settings/theme", controllers.ThemeSettings())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.StorefrontProductList(productService, logg))
			r.Get("/{slug}", controllers.StorefrontProductGet(productService, logg))
			r.Get("/{slug}/quote", controllers.StorefrontProductQuote(productService, logg))
			r.Post("/{slug}/views", controllers.ProductViewRecord(viewService, logg))
		})

		r.Route("/blog/posts", func(r chi.Router) {
			r.Get("/", controllers.StorefrontPostList(blogService, logg))
			r.Get("/{slug}", controllers.StorefrontPostGet(blogService, logg))
		})
	})

	return r
}
