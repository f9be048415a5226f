package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

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
)

const (
	slugConstraint = "categories_slug_key"
	minNameLength  = 2
	maxNameLength  = 100
)

// Service manages product categories.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Create(ctx context.Context, input CreateInput) (*CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, ref string) (*models.Category, error)
	ReconcileCounts(ctx context.Context) error
}

type CreateInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *uuid.UUID
}

// UpdateInput holds optional mutations. ClearParent detaches the category
// from its parent.
type UpdateInput struct {
	Name        *string
	Slug        *string
	Description *string
	ParentID    *uuid.UUID
	ClearParent bool
}

type CategoryDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	ParentID     *uuid.UUID `json:"parentId,omitempty"`
	ProductCount int64      `json:"productCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func newCategoryDTO(c *models.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ParentID:     c.ParentID,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type service struct {
	repo    *Repository
	tx      db.TxRunner
	outbox  outbox.Emitter
	metrics *metrics.CatalogMetrics
	logg    *logger.Logger
}

// NewService builds the category service. emitter, m and logg may be nil.
func NewService(repo *Repository, tx db.TxRunner, emitter outbox.Emitter, m *metrics.CatalogMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, outbox: emitter, metrics: m, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newCategoryDTO(&rows[i]))
	}
	return out, nil
}

// Create stores a category. The slug is generated from the name when empty.
func (s *service) Create(ctx context.Context, input CreateInput) (*CategoryDTO, error) {
	category := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Slug:        strings.ToLower(strings.TrimSpace(input.Slug)),
		Description: strings.TrimSpace(input.Description),
		ParentID:    input.ParentID,
	}
	if category.Slug == "" {
		category.Slug = catalog.Slugify(category.Name)
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.ensureParent(ctx, nil, category.ParentID); err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, category); err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return slugConflict()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
		}
		return s.emit(ctx, tx, enums.EventCategoryCreated, category)
	}); err != nil {
		return nil, wrapTxError(err, "create category")
	}
	s.metrics.IncWrite("category", "create")
	return newCategoryDTO(category), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		category.Name = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		category.Slug = strings.ToLower(strings.TrimSpace(*input.Slug))
		if category.Slug == "" {
			category.Slug = catalog.Slugify(category.Name)
		}
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if input.ClearParent {
		category.ParentID = nil
	} else if input.ParentID != nil {
		category.ParentID = input.ParentID
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.ensureParent(ctx, &id, category.ParentID); err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, category); err != nil {
			if db.IsUniqueViolation(err, slugConstraint) {
				return slugConflict()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
		}
		return s.emit(ctx, tx, enums.EventCategoryUpdated, category)
	}); err != nil {
		return nil, wrapTxError(err, "update category")
	}
	s.metrics.IncWrite("category", "update")
	return newCategoryDTO(category), nil
}

// Delete refuses to remove a category that still has products.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has products").
			WithDetails(map[string]int64{"productCount": count})
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category")
		}
		return s.emit(ctx, tx, enums.EventCategoryDeleted, category)
	}); err != nil {
		return wrapTxError(err, "delete category")
	}
	s.metrics.IncWrite("category", "delete")
	return nil
}

// Resolve finds a category by id or slug. A miss returns
// gorm.ErrRecordNotFound unwrapped so callers can map it themselves.
func (s *service) Resolve(ctx context.Context, ref string) (*models.Category, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.FindBySlug(ctx, strings.ToLower(ref))
}

// ReconcileCounts recomputes product_count from the products table.
func (s *service) ReconcileCounts(ctx context.Context) error {
	updated, err := s.repo.ReconcileProductCounts(ctx)
	if err != nil {
		return fmt.Errorf("reconcile category counts: %w", err)
	}
	s.logg.Debug(s.logg.WithField(ctx, "categories", updated), "category counts reconciled")
	return nil
}

func (s *service) ensureParent(ctx context.Context, self, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if self != nil && *self == *parentID {
		return validationError("parentId", "Category cannot be its own parent")
	}
	if _, err := s.repo.FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("parentId", "Parent category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent category")
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, c *models.Category) error {
	if s.outbox == nil {
		return nil
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateCategory,
		AggregateID:   c.ID,
		Data:          payloads.CategoryEvent{CategoryID: c.ID, Slug: c.Slug, Name: c.Name},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit outbox event")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func validateCategory(c *models.Category) error {
	details := map[string]string{}
	if n := utf8.RuneCountInString(c.Name); n < minNameLength || n > maxNameLength {
		details["name"] = fmt.Sprintf("Name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	if v := catalog.ValidateSlug(c.Slug); v != nil {
		details["slug"] = v.Message
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "category validation failed").WithDetails(details)
	}
	return nil
}

func validationError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "category validation failed").
		WithDetails(map[string]string{field: message})
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
