package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
	pkgredis "github.com/angelmondragon/catalog-admin-backend/pkg/redis"
	"github.com/angelmondragon/catalog-admin-backend/pkg/visibility"
)

const (
	slugConstraint  = "products_slug_key"
	msgSlugExists   = "Slug already exists"
	msgCategory     = "Category not found"
	defaultCacheTTL = 5 * time.Minute
)

// Service exposes product catalog management operations.
type Service interface {
	Create(ctx context.Context, raw map[string]any) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Validate(ctx context.Context, raw map[string]any, mode catalog.Mode, excludeID *uuid.UUID) (*ValidationResult, error)
	Quote(ctx context.Context, slug string, qty float64) (*QuoteDTO, error)
}

type categoryResolver interface {
	Resolve(ctx context.Context, ref string) (*models.Category, error)
}

type assetResolver interface {
	IDsByURL(ctx context.Context, urls []string) (map[string]uuid.UUID, error)
}

type productCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ProductKey(slug string) string
}

// ReconcilerFunc recomputes derived counters after a committed write.
type ReconcilerFunc func(ctx context.Context) error

// ServiceParams configure the product service. Repo, Tx and Categories are
// required; the rest are optional.
type ServiceParams struct {
	Repo        *Repository
	Tx          db.TxRunner
	Categories  categoryResolver
	Assets      assetResolver
	Outbox      outbox.Emitter
	Cache       productCache
	CacheTTL    time.Duration
	Reconcilers []ReconcilerFunc
	Metrics     *metrics.CatalogMetrics
	Logger      *logger.Logger
}

type service struct {
	repo        *Repository
	tx          db.TxRunner
	categories  categoryResolver
	assets      assetResolver
	outbox      outbox.Emitter
	cache       productCache
	cacheTTL    time.Duration
	reconcilers []ReconcilerFunc
	metrics     *metrics.CatalogMetrics
	logg        *logger.Logger
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category resolver required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		categories:  params.Categories,
		assets:      params.Assets,
		outbox:      params.Outbox,
		cache:       params.Cache,
		cacheTTL:    ttl,
		reconcilers: params.Reconcilers,
		metrics:     params.Metrics,
		logg:        logg,
	}, nil
}

// Create sanitizes, validates and stores a new product with its media,
// discount tiers and tags.
func (s *service) Create(ctx context.Context, raw map[string]any) (*ProductDTO, error) {
	p := catalog.Sanitize(raw)
	if errs := catalog.Validate(p, catalog.ModeCreate); errs.HasErrors() {
		return nil, s.rejected(errs)
	}
	if err := s.ensureSlugAvailable(ctx, p.Slug, nil); err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, p.Category)
	if err != nil {
		return nil, err
	}
	assets, err := s.resolveAssets(ctx, p.Media)
	if err != nil {
		return nil, err
	}

	row := &models.Product{}
	applyCanonical(row, p, catalog.ModeCreate, categoryID)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.CreateProduct(ctx, row); err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return slugConflict()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		if err := s.replaceChildren(ctx, txRepo, row.ID, p, catalog.ModeCreate, assets); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventProductCreated, row.ID, productEvent(row, p.Tags, nil))
	}); err != nil {
		return nil, wrapTxError(err, "create product")
	}

	ctx = s.logg.WithProductID(ctx, row.ID.String())
	s.afterWrite(ctx, "create", row.Slug)
	return s.Get(ctx, row.ID)
}

// Update applies only the fields present in raw. Child collections are
// replaced wholesale when supplied.
func (s *service) Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*ProductDTO, error) {
	existing, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	p := catalog.Sanitize(raw)
	errs := catalog.Validate(p, catalog.ModeUpdate)

	merged := *existing
	applyCanonical(&merged, p, catalog.ModeUpdate, existing.CategoryID)
	if _, failed := errs["price.sale"]; !failed && (p.Has("price.sale") || p.Has("price.mrp")) {
		current := toCanonical(&merged)
		if v := catalog.ValidateSalePrice(current.Price.Sale, current.Price.MRP); v != nil {
			errs["price.sale"] = v.Message
		}
	}
	if errs.HasErrors() {
		return nil, s.rejected(errs)
	}

	if p.Has("slug") && p.Slug != existing.Slug {
		if err := s.ensureSlugAvailable(ctx, p.Slug, &id); err != nil {
			return nil, err
		}
	}
	categoryID := existing.CategoryID
	if p.Has("category") {
		if categoryID, err = s.resolveCategory(ctx, p.Category); err != nil {
			return nil, err
		}
	}
	var assets map[string]uuid.UUID
	if p.Has("media") {
		if assets, err = s.resolveAssets(ctx, p.Media); err != nil {
			return nil, err
		}
	}

	row := *existing
	row.Category, row.Media, row.QuantityDiscounts, row.Tags = nil, nil, nil, nil
	applyCanonical(&row, p, catalog.ModeUpdate, categoryID)

	fields := p.Provided()
	sort.Strings(fields)
	tags := p.Tags
	if !p.Has("tags") {
		tags = toCanonical(existing).Tags
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateProduct(ctx, &row); err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return slugConflict()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if err := s.replaceChildren(ctx, txRepo, id, p, catalog.ModeUpdate, assets); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventProductUpdated, id, productEvent(&row, tags, fields))
	}); err != nil {
		return nil, wrapTxError(err, "update product")
	}

	ctx = s.logg.WithProductID(ctx, id.String())
	s.afterWrite(ctx, "update", existing.Slug, row.Slug)
	return s.Get(ctx, id)
}

// Delete removes the product and queues a product_deleted event.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.loadProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return s.emit(ctx, tx, enums.EventProductDeleted, id, payloads.ProductDeletedEvent{
			ProductID: id,
			Slug:      existing.Slug,
		})
	}); err != nil {
		return wrapTxError(err, "delete product")
	}
	s.afterWrite(s.logg.WithProductID(ctx, id.String()), "delete", existing.Slug)
	return nil
}

// Get returns any product by id regardless of visibility.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(row), nil
}

// GetBySlug returns a published product for the storefront, served from the
// cache when possible.
func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if dto := s.cached(ctx, slug); dto != nil {
		return dto, nil
	}

	row, err := s.repo.GetProductDetailBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := visibility.EnsureProductVisible(row.Visibility); err != nil {
		return nil, err
	}
	dto := NewProductDTO(row)
	s.store(ctx, slug, dto)
	return dto, nil
}

// List pages through products with the requested filters and ordering.
func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	sortBy := input.Sort
	if !sortBy.IsValid() {
		sortBy = enums.ProductSortNewest
	}
	if cursor != nil && sortBy != enums.ProductSortNewest && cursor.Value == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cursor does not match sort")
	}

	query := ListQuery{
		Tag:        input.Filters.Tag,
		Visibility: input.Filters.Visibility,
		Status:     input.Filters.Status,
		Featured:   input.Filters.Featured,
		Query:      input.Filters.Query,
		Sort:       sortBy,
		Cursor:     cursor,
		Limit:      input.Pagination.Limit,
	}
	if ref := strings.TrimSpace(input.Filters.Category); ref != "" {
		category, err := s.categories.Resolve(ctx, ref)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ProductListResult{Products: []ProductDTO{}}, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve category")
		}
		query.CategoryID = &category.ID
	}

	rows, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	rows, hasMore := pagination.Trim(rows, input.Pagination.Limit)

	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		result.Products = append(result.Products, *NewProductDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		result.NextCursor = pagination.EncodeCursor(cursorFor(rows[len(rows)-1], sortBy))
	}
	return result, nil
}

func cursorFor(row models.Product, sortBy enums.ProductSort) pagination.Cursor {
	c := pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	switch sortBy {
	case enums.ProductSortTrending:
		c.Value = catalog.Float(row.TrendingScore)
	case enums.ProductSortPriceAsc, enums.ProductSortPriceDesc:
		price := row.PriceMRP
		if row.PriceSale.Valid {
			price = row.PriceSale.Decimal
		}
		c.Value = decimalPtr(price)
	}
	return c
}

// Validate is a dry run of the write path: sanitize, validate and check slug
// uniqueness without persisting anything.
func (s *service) Validate(ctx context.Context, raw map[string]any, mode catalog.Mode, excludeID *uuid.UUID) (*ValidationResult, error) {
	p := catalog.Sanitize(raw)
	errs := catalog.Validate(p, mode)
	if _, failed := errs["slug"]; !failed && p.Slug != "" && (mode == catalog.ModeCreate || p.Has("slug")) {
		exists, err := s.repo.SlugExists(ctx, p.Slug, excludeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if exists {
			errs["slug"] = msgSlugExists
		}
	}
	if errs.HasErrors() {
		s.metrics.ObserveValidation(errs.Fields())
	}
	return &ValidationResult{Valid: !errs.HasErrors(), Product: p, Errors: errs}, nil
}

// Quote prices qty units of a published product using its discount ladder.
func (s *service) Quote(ctx context.Context, slug string, qty float64) (*QuoteDTO, error) {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quantity").
			WithDetails(map[string]string{"qty": "Quantity must be greater than 0"})
	}
	dto, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if dto.Price.MRP == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product has no price")
	}
	return &QuoteDTO{
		ProductID: dto.ID,
		Slug:      dto.Slug,
		Quote:     catalog.QuoteFor(dto.Price, dto.QuantityDiscounts, qty),
	}, nil
}

func (s *service) rejected(errs catalog.FieldErrors) error {
	s.metrics.ObserveValidation(errs.Fields())
	return errs.Err()
}

func (s *service) ensureSlugAvailable(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	exists, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if exists {
		return slugConflict()
	}
	return nil
}

func slugConflict() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "slug already exists").
		WithDetails(map[string]string{"slug": msgSlugExists})
}

func (s *service) resolveCategory(ctx context.Context, ref string) (*uuid.UUID, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	category, err := s.categories.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product validation failed").
				WithDetails(map[string]string{"category": msgCategory})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve category")
	}
	return &category.ID, nil
}

func (s *service) resolveAssets(ctx context.Context, media []catalog.MediaItem) (map[string]uuid.UUID, error) {
	if s.assets == nil || len(media) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(media))
	for _, item := range media {
		urls = append(urls, item.URL)
	}
	ids, err := s.assets.IDsByURL(ctx, urls)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve media assets")
	}
	return ids, nil
}

func (s *service) replaceChildren(ctx context.Context, repo *Repository, id uuid.UUID, p catalog.Product, mode catalog.Mode, assets map[string]uuid.UUID) error {
	replace := func(path string) bool {
		return mode != catalog.ModeUpdate || p.Has(path)
	}
	if replace("media") {
		if err := repo.ReplaceProductMedia(ctx, id, mediaRows(p.Media, assets)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace product media")
		}
	}
	if replace("quantityDiscounts") {
		if err := repo.ReplaceDiscountTiers(ctx, id, discountRows(p.QuantityDiscounts)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace discount tiers")
		}
	}
	if replace("tags") {
		if err := repo.ReplaceTags(ctx, id, p.Tags); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace tags")
		}
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, id uuid.UUID, data any) error {
	if s.outbox == nil {
		return nil
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateProduct,
		AggregateID:   id,
		Data:          data,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit outbox event")
	}
	return nil
}

func productEvent(row *models.Product, tags, fields []string) payloads.ProductEvent {
	return payloads.ProductEvent{
		ProductID:  row.ID,
		Slug:       row.Slug,
		Title:      row.Title,
		CategoryID: row.CategoryID,
		Visibility: row.Visibility,
		Status:     row.Status,
		Tags:       tags,
		Fields:     fields,
	}
}

// afterWrite runs once the transaction has committed. Failures here are
// logged, never returned: the write itself already succeeded.
func (s *service) afterWrite(ctx context.Context, op string, slugs ...string) {
	s.metrics.IncWrite("product", op)
	s.logg.Info(s.logg.WithField(ctx, "op", op), "product write committed")

	for _, reconcile := range s.reconcilers {
		if err := reconcile(ctx); err != nil {
			s.logg.Error(ctx, "counter reconciliation failed", err)
		}
	}
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, s.cache.ProductKey(slug))
		}
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product cache invalidation failed")
	}
}

func (s *service) cached(ctx context.Context, slug string) *ProductDTO {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.ProductKey(slug))
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product cache read failed")
		}
		return nil
	}
	var dto ProductDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil
	}
	return &dto
}

func (s *service) store(ctx context.Context, slug string, dto *ProductDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.ProductKey(slug), payload, s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product cache write failed")
	}
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return row, nil
}

func (s *service) loadDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := s.repo.GetProductDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return row, nil
}

func wrapTxError(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
