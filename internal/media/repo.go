package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
)

// Repository exposes media library persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, asset *models.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindByURLs returns the assets whose public URL is in urls.
func (r *Repository) FindByURLs(ctx context.Context, urls []string) ([]models.MediaAsset, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	var rows []models.MediaAsset
	err := r.db.WithContext(ctx).Where("url IN ?", urls).Find(&rows).Error
	return rows, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MediaAsset{}).Error
}

// CountReferences counts product media rows pointing at the asset.
func (r *Repository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductMedia{}).Where("media_asset_id = ?", id).Count(&count).Error
	return count, err
}

// ReconcileUsage recomputes usage_count for every asset and returns the
// number of rows touched.
func (r *Repository) ReconcileUsage(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`UPDATE media_assets SET usage_count = (
  SELECT COUNT(*) FROM product_media pm WHERE pm.media_asset_id = media_assets.id
)`)
	return res.RowsAffected, res.Error
}

type listQuery struct {
	kind   enums.MediaKind
	search string
	cursor *pagination.Cursor
	limit  int
}

func (r *Repository) List(ctx context.Context, q listQuery) ([]models.MediaAsset, error) {
	tx := r.db.WithContext(ctx).Model(&models.MediaAsset{})
	if q.kind != "" {
		tx = tx.Where("kind = ?", q.kind)
	}
	if q.search != "" {
		like := "%" + q.search + "%"
		tx = tx.Where("(LOWER(file_name) LIKE ? OR LOWER(alt) LIKE ?)", like, like)
	}
	if q.cursor != nil {
		tx = tx.Where("(created_at < ? OR (created_at = ? AND id < ?))", q.cursor.CreatedAt, q.cursor.CreatedAt, q.cursor.ID)
	}
	var rows []models.MediaAsset
	err := tx.Order("created_at DESC").Order("id DESC").Limit(q.limit).Find(&rows).Error
	return rows, err
}
