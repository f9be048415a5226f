package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
)

// Repository wires together all product-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateProduct inserts the product row only. Child rows go through the
// Replace* helpers so create and update share one write path.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves every column of an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product and its child rows. Children are deleted
// explicitly because SQLite does not enforce the cascade by default.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	for _, child := range []any{&models.ProductMedia{}, &models.ProductDiscountTier{}, &models.ProductTag{}} {
		if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}

// ReplaceProductMedia replaces media entries for the product.
func (r *Repository) ReplaceProductMedia(ctx context.Context, productID uuid.UUID, media []models.ProductMedia) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductMedia{}).Error; err != nil {
		return err
	}
	if len(media) == 0 {
		return nil
	}
	for i := range media {
		media[i].ProductID = productID
	}
	return tx.Create(&media).Error
}

// ReplaceDiscountTiers replaces the volume pricing ladder for the product.
func (r *Repository) ReplaceDiscountTiers(ctx context.Context, productID uuid.UUID, tiers []models.ProductDiscountTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductDiscountTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	for i := range tiers {
		tiers[i].ProductID = productID
	}
	return tx.Create(&tiers).Error
}

// ReplaceTags replaces the tag links for the product.
func (r *Repository) ReplaceTags(ctx context.Context, productID uuid.UUID, tags []string) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.ProductTag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, models.ProductTag{ProductID: productID, Tag: tag})
	}
	return tx.Create(&rows).Error
}

// SlugExists reports whether another product already uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductDetail fetches a product with category, media, tiers and tags.
func (r *Repository) GetProductDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.withDetail(r.db.WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductDetailBySlug is GetProductDetail keyed by slug.
func (r *Repository) GetProductDetailBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.withDetail(r.db.WithContext(ctx)).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) withDetail(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Category").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("QuantityDiscounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tag ASC")
		})
}

// ListQuery is the repository-level form of ListProductsInput with the
// category already resolved to an id.
type ListQuery struct {
	CategoryID *uuid.UUID
	Tag        string
	Visibility *enums.ProductVisibility
	Status     *enums.ProductStatus
	Featured   *bool
	Query      string
	Sort       enums.ProductSort
	Cursor     *pagination.Cursor
	Limit      int
}

// priceExpr is the effective price used for price sorting.
const priceExpr = "COALESCE(price_sale, price_mrp)"

// ListProducts returns up to LimitWithBuffer rows ordered by q.Sort, starting
// after q.Cursor.
func (r *Repository) ListProducts(ctx context.Context, q ListQuery) ([]models.Product, error) {
	tx := r.withDetail(r.db.WithContext(ctx).Model(&models.Product{}))

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM product_tags pt WHERE pt.product_id = products.id AND pt.tag = ?)", strings.ToLower(tag))
	}
	if q.Visibility != nil {
		tx = tx.Where("visibility = ?", *q.Visibility)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.Featured != nil {
		tx = tx.Where("is_featured = ?", *q.Featured)
	}
	if term := strings.TrimSpace(q.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(brand) LIKE ? OR slug LIKE ?)", like, like, like)
	}

	tx = applySort(tx, q.Sort, q.Cursor)

	var rows []models.Product
	if err := tx.Limit(pagination.LimitWithBuffer(q.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applySort(tx *gorm.DB, sort enums.ProductSort, cursor *pagination.Cursor) *gorm.DB {
	switch sort {
	case enums.ProductSortTrending:
		if cursor != nil && cursor.Value != nil {
			tx = tx.Where("(trending_score < ? OR (trending_score = ? AND id < ?))", *cursor.Value, *cursor.Value, cursor.ID)
		}
		return tx.Order("trending_score DESC").Order("id DESC")
	case enums.ProductSortPriceAsc:
		if cursor != nil && cursor.Value != nil {
			tx = tx.Where("("+priceExpr+" > ? OR ("+priceExpr+" = ? AND id > ?))", *cursor.Value, *cursor.Value, cursor.ID)
		}
		return tx.Order(priceExpr + " ASC").Order("id ASC")
	case enums.ProductSortPriceDesc:
		if cursor != nil && cursor.Value != nil {
			tx = tx.Where("("+priceExpr+" < ? OR ("+priceExpr+" = ? AND id < ?))", *cursor.Value, *cursor.Value, cursor.ID)
		}
		return tx.Order(priceExpr + " DESC").Order("id DESC")
	default:
		if cursor != nil {
			tx = tx.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
		return tx.Order("created_at DESC").Order("id DESC")
	}
}
