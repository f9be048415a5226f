package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/catalog-admin-backend/pkg/storage/gcs"
)

type objectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (*gcs.Object, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Service manages the media library.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*AssetDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IDsByURL(ctx context.Context, urls []string) (map[string]uuid.UUID, error)
	ReconcileUsage(ctx context.Context) error
}

// UploadInput is one multipart file part.
type UploadInput struct {
	FileName string
	Alt      string
	Body     io.Reader
}

type AssetDTO struct {
	ID         uuid.UUID       `json:"id"`
	Kind       enums.MediaKind `json:"kind"`
	FileName   string          `json:"fileName"`
	MimeType   string          `json:"mimeType"`
	SizeBytes  int64           `json:"sizeBytes"`
	URL        string          `json:"url"`
	Alt        string          `json:"alt,omitempty"`
	UsageCount int64           `json:"usageCount"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func newAssetDTO(a *models.MediaAsset) *AssetDTO {
	return &AssetDTO{
		ID:         a.ID,
		Kind:       a.Kind,
		FileName:   a.FileName,
		MimeType:   a.MimeType,
		SizeBytes:  a.SizeBytes,
		URL:        a.URL,
		Alt:        a.Alt,
		UsageCount: a.UsageCount,
		CreatedAt:  a.CreatedAt,
	}
}

type ServiceParams struct {
	Repo    *Repository
	Tx      db.TxRunner
	Store   objectStore
	Outbox  outbox.Emitter
	Config  config.MediaConfig
	Prefix  string
	Metrics *metrics.CatalogMetrics
	Logger  *logger.Logger
}

type service struct {
	repo     *Repository
	tx       db.TxRunner
	store    objectStore
	outbox   outbox.Emitter
	maxBytes int64
	groups   []mimeGroup
	pageSize int
	prefix   string
	metrics  *metrics.CatalogMetrics
	logg     *logger.Logger
}

// NewService constructs the media service backed by the repository and object store.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Config.MaxUploadBytes() <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		store:    params.Store,
		outbox:   params.Outbox,
		maxBytes: params.Config.MaxUploadBytes(),
		groups:   allowedGroups(params.Config.AllowVideos),
		pageSize: params.Config.ListPageSize,
		prefix:   strings.Trim(params.Prefix, "/"),
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Upload sniffs the content type, stores the object and records the asset.
// When the database write fails the stored object is removed again.
func (s *service) Upload(ctx context.Context, input UploadInput) (*AssetDTO, error) {
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	fileName := sanitizeFileName(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodePayloadSize, "file too large").
			WithDetails(map[string]int64{"maxBytes": s.maxBytes})
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	mimeType, kind, err := detectMime(head, s.groups)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
			WithDetails(map[string]string{"mimeType": mimeType})
	}

	id := uuid.New()
	key := buildGCSKey(s.prefix, kind, id, fileName)
	if _, err := s.store.Upload(ctx, key, mimeType, bytes.NewReader(data)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload media object")
	}

	asset := &models.MediaAsset{
		ID:        id,
		Kind:      kind,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		GCSKey:    key,
		URL:       s.store.PublicURL(key),
		Alt:       strings.TrimSpace(input.Alt),
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert media asset")
		}
		return s.emit(ctx, tx, enums.EventMediaAssetUploaded, asset)
	}); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logg.Error(s.logg.WithField(ctx, "gcs_key", key), "orphaned media object", delErr)
		}
		return nil, wrapTxError(err, "create media asset")
	}

	s.metrics.IncWrite("media_asset", "upload")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"media_id":   id.String(),
		"mime_type":  mimeType,
		"size_bytes": asset.SizeBytes,
	}), "media uploaded")
	return newAssetDTO(asset), nil
}

// Delete removes an asset no product references. The object is removed from
// storage after the row is gone; a storage failure is logged, not returned.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "media is used by products").
			WithDetails(map[string]int64{"usageCount": refs})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete media asset")
		}
		return s.emit(ctx, tx, enums.EventMediaAssetDeleted, asset)
	}); err != nil {
		return wrapTxError(err, "delete media asset")
	}

	if err := s.store.Delete(ctx, asset.GCSKey); err != nil && !errors.Is(err, gcs.ErrNotFound) {
		s.logg.Error(s.logg.WithField(ctx, "gcs_key", asset.GCSKey), "delete media object", err)
	}
	s.metrics.IncWrite("media_asset", "delete")
	return nil
}

// IDsByURL maps library URLs to asset ids; unknown URLs are absent.
func (s *service) IDsByURL(ctx context.Context, urls []string) (map[string]uuid.UUID, error) {
	rows, err := s.repo.FindByURLs(ctx, urls)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		out[row.URL] = row.ID
	}
	return out, nil
}

func (s *service) ReconcileUsage(ctx context.Context) error {
	updated, err := s.repo.ReconcileUsage(ctx)
	if err != nil {
		return fmt.Errorf("reconcile media usage: %w", err)
	}
	s.logg.Debug(s.logg.WithField(ctx, "assets", updated), "media usage reconciled")
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, a *models.MediaAsset) error {
	if s.outbox == nil {
		return nil
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateMediaAsset,
		AggregateID:   a.ID,
		Data: payloads.MediaAssetEvent{
			AssetID:  a.ID,
			Kind:     a.Kind,
			GCSKey:   a.GCSKey,
			URL:      a.URL,
			MimeType: a.MimeType,
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit outbox event")
	}
	return nil
}

func wrapTxError(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func buildGCSKey(prefix string, kind enums.MediaKind, id uuid.UUID, fileName string) string {
	return path.Join(prefix, string(kind)+"s", id.String(), fileName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
