package views

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// PublishedProductID resolves a storefront slug to its product id.
func (r *Repository) PublishedProductID(ctx context.Context, slug string) (uuid.UUID, error) {
	var row models.Product
	err := r.db.WithContext(ctx).Select("id").
		Where("slug = ? AND visibility = ?", slug, enums.ProductVisibilityPublished).
		First(&row).Error
	return row.ID, err
}

// IncrementDaily adds one view to the product's counter for day.
func (r *Repository) IncrementDaily(ctx context.Context, productID uuid.UUID, day time.Time) error {
	row := models.ProductViewDaily{ProductID: productID, Day: day, Views: 1}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"views": gorm.Expr("product_views_daily.views + ?", 1),
		}),
	}).Create(&row).Error
}

type windowCounts struct {
	ProductID uuid.UUID
	Views7d   int64 `gorm:"column:views7d"`
	Views30d  int64 `gorm:"column:views30d"`
}

// WindowCounts sums daily views per product from since30, with the subtotal
// from since7 reported separately.
func (r *Repository) WindowCounts(ctx context.Context, since7, since30 time.Time) (map[uuid.UUID]windowCounts, error) {
	var rows []windowCounts
	err := r.db.WithContext(ctx).Model(&models.ProductViewDaily{}).
		Select("product_id, SUM(CASE WHEN day >= ? THEN views ELSE 0 END) AS views7d, SUM(views) AS views30d", since7).
		Where("day >= ?", since30).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]windowCounts, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row
	}
	return out, nil
}

type productCounters struct {
	ID            uuid.UUID
	Views7d       int64 `gorm:"column:views_7d"`
	Views30d      int64 `gorm:"column:views_30d"`
	TrendingScore float64
}

func (r *Repository) ProductCounters(ctx context.Context) ([]productCounters, error) {
	var rows []productCounters
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("id, views_7d, views_30d, trending_score").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) UpdateCounters(ctx context.Context, c productCounters) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", c.ID).
		UpdateColumns(map[string]any{
			"views_7d":       c.Views7d,
			"views_30d":      c.Views30d,
			"trending_score": c.TrendingScore,
		}).Error
}

// PruneBefore deletes daily counters older than cutoff.
func (r *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("day < ?", cutoff).Delete(&models.ProductViewDaily{})
	return res.RowsAffected, res.Error
}
