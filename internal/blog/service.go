package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
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
	"github.com/angelmondragon/catalog-admin-backend/pkg/visibility"
)

const slugConstraint = "blog_posts_slug_key"

// Service manages blog posts for the admin and the storefront.
type Service interface {
	Create(ctx context.Context, raw map[string]any) (*PostDTO, error)
	Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*PostDTO, error)
	Publish(ctx context.Context, id uuid.UUID) (*PostDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*PostDTO, error)
	GetPublished(ctx context.Context, slug string) (*PostDTO, error)
	List(ctx context.Context, input ListInput) (*PostListResult, error)
}

type ListInput struct {
	Status     enums.PostStatus
	Tag        string
	Pagination pagination.Params
}

// ReconcilerFunc recomputes a derived counter after a committed write.
type ReconcilerFunc func(ctx context.Context) error

type ServiceParams struct {
	Repo        *Repository
	Tx          db.TxRunner
	Outbox      outbox.Emitter
	Reconcilers []ReconcilerFunc
	Metrics     *metrics.CatalogMetrics
	Logger      *logger.Logger
	Now         func() time.Time
}

type service struct {
	repo        *Repository
	tx          db.TxRunner
	outbox      outbox.Emitter
	reconcilers []ReconcilerFunc
	metrics     *metrics.CatalogMetrics
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("blog repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		outbox:      params.Outbox,
		reconcilers: params.Reconcilers,
		metrics:     params.Metrics,
		logg:        params.Logger,
		now:         params.Now,
	}, nil
}

// Create stores a post. A missing slug is derived from the title and a
// missing status defaults to draft.
func (s *service) Create(ctx context.Context, raw map[string]any) (*PostDTO, error) {
	in := SanitizePost(raw)
	if in.Slug == "" {
		in.Slug = catalog.Slugify(in.Title)
		in.markProvided("slug")
	}
	if in.Status == "" {
		in.Status = enums.PostStatusDraft
	}
	if errs := ValidatePost(in, catalog.ModeCreate); errs.HasErrors() {
		return nil, s.rejected(errs)
	}
	if err := s.ensureSlugAvailable(ctx, in.Slug, nil); err != nil {
		return nil, err
	}

	post := &models.BlogPost{}
	applyInput(post, in)
	post.Status = in.Status
	if post.Status == enums.PostStatusPublished {
		publishedAt := s.now()
		post.PublishedAt = &publishedAt
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, post); err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return slugConflict()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert blog post")
		}
		if err := repo.ReplaceTags(ctx, post.ID, in.Tags); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert blog post tags")
		}
		if post.Status == enums.PostStatusPublished {
			return s.emitPublished(ctx, tx, post)
		}
		return nil
	}); err != nil {
		return nil, wrapTxError(err, "create blog post")
	}
	s.afterWrite(ctx, "create", post.ID)
	return s.Get(ctx, post.ID)
}

// Update applies the supplied fields. Moving a draft to published stamps
// publishedAt and emits blog_post_published.
func (s *service) Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*PostDTO, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	in := SanitizePost(raw)
	if in.Has("slug") && in.Slug == "" {
		title := post.Title
		if in.Has("title") {
			title = in.Title
		}
		in.Slug = catalog.Slugify(title)
	}
	if errs := ValidatePost(in, catalog.ModeUpdate); errs.HasErrors() {
		return nil, s.rejected(errs)
	}
	if in.Has("slug") && in.Slug != post.Slug {
		if err := s.ensureSlugAvailable(ctx, in.Slug, &id); err != nil {
			return nil, err
		}
	}

	wasPublished := post.Status == enums.PostStatusPublished
	applyInput(post, in)
	if in.Has("status") && in.Status != "" {
		post.Status = in.Status
	}
	publishing := !wasPublished && post.Status == enums.PostStatusPublished
	switch {
	case publishing:
		publishedAt := s.now()
		post.PublishedAt = &publishedAt
	case post.Status == enums.PostStatusDraft:
		post.PublishedAt = nil
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, post); err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return slugConflict()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update blog post")
		}
		if in.Has("tags") {
			if err := repo.ReplaceTags(ctx, id, in.Tags); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace blog post tags")
			}
		}
		if publishing {
			return s.emitPublished(ctx, tx, post)
		}
		return nil
	}); err != nil {
		return nil, wrapTxError(err, "update blog post")
	}
	s.afterWrite(ctx, "update", id)
	return s.Get(ctx, id)
}

// Publish moves a draft to published. Publishing twice is a state conflict.
func (s *service) Publish(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == enums.PostStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "post already published")
	}
	publishedAt := s.now()
	post.Status = enums.PostStatusPublished
	post.PublishedAt = &publishedAt

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, post); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: publish blog post")
		}
		return s.emitPublished(ctx, tx, post)
	}); err != nil {
		return nil, wrapTxError(err, "publish blog post")
	}
	s.afterWrite(ctx, "publish", id)
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete blog post")
		}
		if s.outbox == nil {
			return nil
		}
		return s.emit(ctx, tx, enums.EventBlogPostDeleted, id, payloads.BlogPostDeletedEvent{PostID: id, Slug: post.Slug})
	}); err != nil {
		return wrapTxError(err, "delete blog post")
	}
	s.afterWrite(ctx, "delete", id)
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPostDTO(post), nil
}

// GetPublished serves the storefront; drafts are reported as not found.
func (s *service) GetPublished(ctx context.Context, slug string) (*PostDTO, error) {
	post, err := s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blog post")
	}
	if err := visibility.EnsurePostVisible(post.Status); err != nil {
		return nil, err
	}
	return NewPostDTO(post), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*PostListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post status")
	}
	rows, err := s.repo.List(ctx, ListQuery{
		Status: input.Status,
		Tag:    strings.ToLower(strings.TrimSpace(input.Tag)),
		Cursor: cursor,
		Limit:  input.Pagination.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blog posts")
	}
	rows, hasMore := pagination.Trim(rows, input.Pagination.Limit)

	result := &PostListResult{Posts: make([]PostDTO, 0, len(rows))}
	for i := range rows {
		result.Posts = append(result.Posts, *NewPostDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func applyInput(post *models.BlogPost, in PostInput) {
	if in.Has("title") {
		post.Title = in.Title
	}
	if in.Has("slug") {
		post.Slug = in.Slug
	}
	if in.Has("excerpt") {
		post.Excerpt = in.Excerpt
	}
	if in.Has("contentHtml") {
		post.ContentHTML = in.ContentHTML
		post.ReadingTimeMinutes = ReadingTime(in.ContentHTML)
	}
	if in.Has("authorName") {
		post.AuthorName = in.AuthorName
	}
	if in.Has("featuredImage") {
		var image models.FeaturedImage
		if in.FeaturedImage != nil {
			image = *in.FeaturedImage
		}
		post.FeaturedImage = datatypes.NewJSONType(image)
	}
}

func (s *service) emitPublished(ctx context.Context, tx *gorm.DB, post *models.BlogPost) error {
	if s.outbox == nil {
		return nil
	}
	return s.emit(ctx, tx, enums.EventBlogPostPublished, post.ID, payloads.BlogPostPublishedEvent{
		PostID:      post.ID,
		Slug:        post.Slug,
		Title:       post.Title,
		PublishedAt: *post.PublishedAt,
	})
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, id uuid.UUID, data any) error {
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateBlogPost,
		AggregateID:   id,
		Data:          data,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit outbox event")
	}
	return nil
}

func (s *service) afterWrite(ctx context.Context, op string, id uuid.UUID) {
	s.metrics.IncWrite("blog_post", op)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"op": op, "post_id": id.String()}), "blog post write committed")
	for _, reconcile := range s.reconcilers {
		if err := reconcile(ctx); err != nil {
			s.logg.Error(ctx, "counter reconciliation failed", err)
		}
	}
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blog post")
	}
	return post, nil
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

func (s *service) rejected(errs catalog.FieldErrors) error {
	s.metrics.ObserveValidation(errs.Fields())
	return pkgerrors.New(pkgerrors.CodeValidation, "post validation failed").WithDetails(map[string]string(errs))
}

func slugConflict() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "slug already exists").
		WithDetails(map[string]string{"slug": "Slug already exists"})
}

func wrapTxError(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
