package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/catalog-admin-backend/api/controllers"
	"github.com/angelmondragon/catalog-admin-backend/internal/blog"
	category "github.com/angelmondragon/catalog-admin-backend/internal/categories"
	"github.com/angelmondragon/catalog-admin-backend/internal/media"
	product "github.com/angelmondragon/catalog-admin-backend/internal/products"
	tag "github.com/angelmondragon/catalog-admin-backend/internal/tags"
	"github.com/angelmondragon/catalog-admin-backend/internal/views"
	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type stubProductService struct {
	creates   int
	lastList  product.ListProductsInput
	lastMode  catalog.Mode
	quoteErr  error
	lastQuote float64
}

func (s *stubProductService) Create(_ context.Context, raw map[string]any) (*product.ProductDTO, error) {
	s.creates++
	p := catalog.Sanitize(raw)
	if errs := catalog.Validate(p, catalog.ModeCreate); errs.HasErrors() {
		return nil, errs.Err()
	}
	return &product.ProductDTO{ID: uuid.New(), Title: p.Title, Slug: p.Slug}, nil
}

func (s *stubProductService) Update(_ context.Context, id uuid.UUID, _ map[string]any) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: id}, nil
}

func (s *stubProductService) Delete(context.Context, uuid.UUID) error { return nil }

func (s *stubProductService) Get(_ context.Context, id uuid.UUID) (*product.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubProductService) GetBySlug(_ context.Context, slug string) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: uuid.New(), Slug: slug}, nil
}

func (s *stubProductService) List(_ context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	s.lastList = input
	return &product.ProductListResult{Products: []product.ProductDTO{}}, nil
}

func (s *stubProductService) Validate(_ context.Context, raw map[string]any, mode catalog.Mode, _ *uuid.UUID) (*product.ValidationResult, error) {
	s.lastMode = mode
	p := catalog.Sanitize(raw)
	errs := catalog.Validate(p, mode)
	return &product.ValidationResult{Valid: !errs.HasErrors(), Product: p, Errors: errs}, nil
}

func (s *stubProductService) Quote(_ context.Context, slug string, qty float64) (*product.QuoteDTO, error) {
	s.lastQuote = qty
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	return &product.QuoteDTO{Slug: slug}, nil
}

type stubCategoryService struct{}

func (stubCategoryService) List(context.Context) ([]category.CategoryDTO, error) {
	return []category.CategoryDTO{{ID: uuid.New(), Name: "Lighting", Slug: "lighting"}}, nil
}

func (stubCategoryService) Create(_ context.Context, input category.CreateInput) (*category.CategoryDTO, error) {
	return &category.CategoryDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCategoryService) Update(_ context.Context, id uuid.UUID, _ category.UpdateInput) (*category.CategoryDTO, error) {
	return &category.CategoryDTO{ID: id}, nil
}

func (stubCategoryService) Delete(context.Context, uuid.UUID) error { return nil }

func (stubCategoryService) Resolve(context.Context, string) (*models.Category, error) {
	return nil, errors.New("not implemented")
}

func (stubCategoryService) ReconcileCounts(context.Context) error { return nil }

type stubTagService struct{ lastLimit int }

func (s *stubTagService) List(_ context.Context, limit int) ([]tag.TagDTO, error) {
	s.lastLimit = limit
	return []tag.TagDTO{{Name: "lighting", UsageCount: 2}}, nil
}

func (s *stubTagService) ReconcileCounts(context.Context) error { return nil }

type stubBlogService struct{ lastList blog.ListInput }

func (s *stubBlogService) Create(context.Context, map[string]any) (*blog.PostDTO, error) {
	return &blog.PostDTO{ID: uuid.New()}, nil
}

func (s *stubBlogService) Update(_ context.Context, id uuid.UUID, _ map[string]any) (*blog.PostDTO, error) {
	return &blog.PostDTO{ID: id}, nil
}

func (s *stubBlogService) Publish(context.Context, uuid.UUID) (*blog.PostDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "post already published")
}

func (s *stubBlogService) Delete(context.Context, uuid.UUID) error { return nil }

func (s *stubBlogService) Get(_ context.Context, id uuid.UUID) (*blog.PostDTO, error) {
	return &blog.PostDTO{ID: id}, nil
}

func (s *stubBlogService) GetPublished(_ context.Context, slug string) (*blog.PostDTO, error) {
	return &blog.PostDTO{Slug: slug}, nil
}

func (s *stubBlogService) List(_ context.Context, input blog.ListInput) (*blog.PostListResult, error) {
	s.lastList = input
	return &blog.PostListResult{Posts: []blog.PostDTO{}}, nil
}

type stubMediaService struct {
	uploaded []byte
	alt      string
}

func (s *stubMediaService) Upload(_ context.Context, input media.UploadInput) (*media.AssetDTO, error) {
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	s.uploaded = body
	s.alt = input.Alt
	return &media.AssetDTO{ID: uuid.New(), FileName: input.FileName, Kind: enums.MediaKindImage}, nil
}

func (s *stubMediaService) List(context.Context, media.ListParams) (*media.ListResult, error) {
	return &media.ListResult{Items: []media.AssetDTO{}}, nil
}

func (s *stubMediaService) Delete(context.Context, uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "media asset is in use")
}

func (s *stubMediaService) IDsByURL(context.Context, []string) (map[string]uuid.UUID, error) {
	return map[string]uuid.UUID{}, nil
}

func (s *stubMediaService) ReconcileUsage(context.Context) error { return nil }

type stubViewService struct{ last views.ViewInput }

func (s *stubViewService) Record(_ context.Context, _ string, input views.ViewInput) (*views.RecordResult, error) {
	s.last = input
	return &views.RecordResult{Counted: true}, nil
}

func (s *stubViewService) RecomputeTrending(context.Context) (int, error) { return 0, nil }

func (s *stubViewService) PruneDaily(context.Context, time.Duration) (int64, error) { return 0, nil }

type fixture struct {
	handler  http.Handler
	products *stubProductService
	tags     *stubTagService
	blog     *stubBlogService
	media    *stubMediaService
	views    *stubViewService
}

func newFixture(t *testing.T, readiness map[string]controllers.Pinger) *fixture {
	t.Helper()
	cfg := &config.Config{
		App:   config.AppConfig{Env: "test"},
		Media: config.MediaConfig{MaxUploadMB: 1},
	}
	f := &fixture{
		products: &stubProductService{},
		tags:     &stubTagService{},
		blog:     &stubBlogService{},
		media:    &stubMediaService{},
		views:    &stubViewService{},
	}
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	f.handler = NewRouter(cfg, logger.Nop(), nil, metricsHandler, readiness,
		&memoryStore{data: map[string]string{}},
		f.products, stubCategoryService{}, f.tags, f.blog, f.media, f.views)
	return f
}

func (f *fixture) do(method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return payload.Error.Code
}

const validProductBody = `{
  "title": "Desk Lamps",
  "slug": "desk-lamps",
  "brand": "Lumen",
  "descriptionHtml": "<p>A sturdy lamp with an adjustable arm and a warm LED for any desk.</p>",
  "highlights": ["Adjustable arm"],
  "specs": [{"key": "Material", "value": "Steel"}],
  "media": [{"url": "https://cdn.example.com/lamp.jpg", "type": "image"}],
  "price": {"mrp": 100, "sale": 80}
}`

func TestHealthRoutes(t *testing.T) {
	f := newFixture(t, map[string]controllers.Pinger{"db": stubPinger{}, "bigquery": nil})

	if rec := f.do(http.MethodGet, "/health/live", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", rec.Code)
	}
	rec := f.do(http.MethodGet, "/health/ready", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"bigquery":"disabled"`) {
		t.Fatalf("expected disabled dependency in %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	f := newFixture(t, map[string]controllers.Pinger{"redis": stubPinger{err: errors.New("down")}})

	rec := f.do(http.MethodGet, "/health/ready", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeDependency) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "# metrics") {
		t.Fatalf("unexpected metrics response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminProductCreateRequiresIdempotencyKey(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/admin/products", strings.NewReader(validProductBody), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if f.products.creates != 0 {
		t.Fatalf("service must not run without an idempotency key")
	}
}

func TestAdminProductCreateReplaysWithSameKey(t *testing.T) {
	f := newFixture(t, nil)
	headers := map[string]string{"Idempotency-Key": "create-1", "Content-Type": "application/json"}

	first := f.do(http.MethodPost, "/api/v1/admin/products", strings.NewReader(validProductBody), headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", first.Code, first.Body.String())
	}
	second := f.do(http.MethodPost, "/api/v1/admin/products", strings.NewReader(validProductBody), headers)
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body differs")
	}
	if f.products.creates != 1 {
		t.Fatalf("expected one create, got %d", f.products.creates)
	}
}

func TestAdminProductCreateReturnsFieldErrors(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/admin/products", strings.NewReader(`{"title":"ab"}`), map[string]string{"Idempotency-Key": "bad-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
	for _, field := range []string{"title", "slug", "price.mrp"} {
		if payload.Error.Details[field] == "" {
			t.Fatalf("expected %s in details %v", field, payload.Error.Details)
		}
	}
}

func TestAdminProductValidateDryRun(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/admin/products/validate?mode=update", strings.NewReader(`{"brand":"X"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if f.products.lastMode != catalog.ModeUpdate {
		t.Fatalf("expected update mode, got %s", f.products.lastMode)
	}
	var payload struct {
		Data product.ValidationResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Data.Valid || payload.Data.Errors["brand"] == "" {
		t.Fatalf("expected brand error, got %+v", payload.Data.Errors)
	}
}

func TestAdminProductGetRejectsBadID(t *testing.T) {
	f := newFixture(t, nil)

	if rec := f.do(http.MethodGet, "/api/v1/admin/products/not-a-uuid", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/v1/admin/products/"+uuid.NewString(), nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestAdminProductListParsesFilters(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/v1/admin/products?sort=trending&status=active&featured=true&tag=Lighting&limit=5", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	got := f.products.lastList
	if got.Sort != enums.ProductSortTrending || got.Pagination.Limit != 5 || got.Filters.Tag != "lighting" {
		t.Fatalf("unexpected list input %+v", got)
	}
	if got.Filters.Status == nil || *got.Filters.Status != enums.ProductStatusActive {
		t.Fatalf("expected status filter")
	}
	if got.Filters.Featured == nil || !*got.Filters.Featured {
		t.Fatalf("expected featured filter")
	}

	if rec := f.do(http.MethodGet, "/api/v1/admin/products?sort=random", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad sort got %d", rec.Code)
	}
}

func TestStorefrontProductListForcesPublished(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/v1/products?visibility=draft", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	vis := f.products.lastList.Filters.Visibility
	if vis == nil || *vis != enums.ProductVisibilityPublished {
		t.Fatalf("storefront must only list published products, got %v", vis)
	}
}

func TestStorefrontQuote(t *testing.T) {
	f := newFixture(t, nil)

	if rec := f.do(http.MethodGet, "/api/v1/products/desk-lamps/quote", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without qty got %d", rec.Code)
	}
	rec := f.do(http.MethodGet, "/api/v1/products/desk-lamps/quote?qty=12", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if f.products.lastQuote != 12 {
		t.Fatalf("expected qty 12 got %v", f.products.lastQuote)
	}
}

func TestProductViewUsesVisitorHeader(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/products/desk-lamps/views", nil, map[string]string{"X-Visitor-Id": "visitor-1", "Referer": "https://example.com"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rec.Code)
	}
	if f.views.last.Visitor != "visitor-1" || f.views.last.Referrer != "https://example.com" {
		t.Fatalf("unexpected view input %+v", f.views.last)
	}
}

func TestCategoryAndTagRoutes(t *testing.T) {
	f := newFixture(t, nil)

	if rec := f.do(http.MethodGet, "/api/v1/admin/categories", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("categories: expected 200 got %d", rec.Code)
	}
	rec := f.do(http.MethodPost, "/api/v1/admin/categories", strings.NewReader(`{"name":"Lighting"}`), map[string]string{"Idempotency-Key": "cat-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.do(http.MethodPost, "/api/v1/admin/categories", strings.NewReader(`{"name":"Lighting","unknown":1}`), map[string]string{"Idempotency-Key": "cat-2"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields: expected 400 got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/v1/admin/tags?limit=3", nil, nil); rec.Code != http.StatusOK || f.tags.lastLimit != 3 {
		t.Fatalf("tags: unexpected %d limit=%d", rec.Code, f.tags.lastLimit)
	}
}

func TestBlogRoutes(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/admin/blog/posts/"+uuid.NewString()+"/publish", nil, map[string]string{"Idempotency-Key": "pub-1"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("publish conflict: expected 422 got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/v1/blog/posts?tag=news", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("storefront list: expected 200 got %d", rec.Code)
	}
	if f.blog.lastList.Status != enums.PostStatusPublished || f.blog.lastList.Tag != "news" {
		t.Fatalf("unexpected storefront list input %+v", f.blog.lastList)
	}
	if rec := f.do(http.MethodGet, "/api/v1/admin/blog/posts?status=bogus", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400 got %d", rec.Code)
	}
}

func TestMediaUploadMultipart(t *testing.T) {
	f := newFixture(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "lamp.png")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	_ = mw.WriteField("alt", "  Desk lamp  ")
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	rec := f.do(http.MethodPost, "/api/v1/admin/media", &body, map[string]string{
		"Content-Type":    mw.FormDataContentType(),
		"Idempotency-Key": "upload-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if string(f.media.uploaded) != "png-bytes" || f.media.alt != "Desk lamp" {
		t.Fatalf("unexpected upload %q alt=%q", f.media.uploaded, f.media.alt)
	}
}

func TestMediaUploadRequiresFile(t *testing.T) {
	f := newFixture(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("alt", "nothing")
	_ = mw.Close()

	rec := f.do(http.MethodPost, "/api/v1/admin/media", &body, map[string]string{
		"Content-Type":    mw.FormDataContentType(),
		"Idempotency-Key": "upload-2",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMediaDeleteInUse(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodDelete, "/api/v1/admin/media/"+uuid.NewString(), nil, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestThemeSettings(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/v1/settings/theme", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "palettes") {
		t.Fatalf("unexpected theme body %s", rec.Body.String())
	}
}
