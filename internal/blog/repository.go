package blog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
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

func (r *Repository) Create(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *Repository) Update(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

// ReplaceTags swaps the post's tag links for tags.
func (r *Repository) ReplaceTags(ctx context.Context, postID uuid.UUID, tags []string) error {
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.BlogPostTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.BlogPostTag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, models.BlogPostTag{PostID: postID, Tag: tag})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("post_id = ?", id).Delete(&models.BlogPostTag{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BlogPost{}).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.withTags(r.db.WithContext(ctx)).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.withTags(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type ListQuery struct {
	Status enums.PostStatus
	Tag    string
	Cursor *pagination.Cursor
	Limit  int
}

// List returns posts newest first, one row past Limit.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.BlogPost, error) {
	tx := r.withTags(r.db.WithContext(ctx).Model(&models.BlogPost{}))
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Tag != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM blog_post_tags t WHERE t.post_id = blog_posts.id AND t.tag = ?)", q.Tag)
	}
	if q.Cursor != nil {
		tx = tx.Where("(created_at < ? OR (created_at = ? AND id < ?))", q.Cursor.CreatedAt, q.Cursor.CreatedAt, q.Cursor.ID)
	}
	var rows []models.BlogPost
	err := tx.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(q.Limit)).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) withTags(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag ASC") })
}
