package tag

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
)

// Repository persists the tag registry.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns tags by usage, most used first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Tag, error) {
	q := r.db.WithContext(ctx).Order("usage_count DESC").Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Tag
	err := q.Find(&rows).Error
	return rows, err
}

type usageRow struct {
	Tag   string
	Count int64
}

const usageQuery = `
SELECT tag, COUNT(*) AS count FROM (
  SELECT tag FROM product_tags
  UNION ALL
  SELECT tag FROM blog_post_tags
) usage
GROUP BY tag`

// CountUsage tallies tag links across products and blog posts.
func (r *Repository) CountUsage(ctx context.Context) (map[string]int64, error) {
	var rows []usageRow
	if err := r.db.WithContext(ctx).Raw(usageQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Tag] = row.Count
	}
	return out, nil
}

// UpsertCounts writes usage counts, creating registry rows for new tags.
func (r *Repository) UpsertCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]models.Tag, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, models.Tag{Name: name, UsageCount: count, CreatedAt: now, UpdatedAt: now})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"usage_count", "updated_at"}),
	}).Create(&rows).Error
}

// ZeroExcept resets usage_count for every tag not named in keep.
func (r *Repository) ZeroExcept(ctx context.Context, keep []string) error {
	q := r.db.WithContext(ctx).Model(&models.Tag{}).Where("usage_count <> 0")
	if len(keep) > 0 {
		q = q.Where("name NOT IN ?", keep)
	}
	return q.Updates(map[string]any{"usage_count": 0, "updated_at": time.Now().UTC()}).Error
}
