package product

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	pkgredis "github.com/angelmondragon/catalog-admin-backend/pkg/redis"
)

func openTestDB(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.OpenSQLite(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func mustCreateCategory(t *testing.T, conn *gorm.DB, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: strings.ToUpper(slug[:1]) + slug[1:], Slug: slug}
	require.NoError(t, conn.Create(category).Error)
	return category
}

type dbCategories struct {
	conn *gorm.DB
}

func (d dbCategories) Resolve(ctx context.Context, ref string) (*models.Category, error) {
	var category models.Category
	q := d.conn.WithContext(ctx)
	if id, err := uuid.Parse(ref); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", ref)
	}
	if err := q.First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.entries[key] = string(v)
	default:
		m.entries[key] = fmt.Sprint(v)
	}
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
		m.deletes++
	}
	return nil
}

func (m *memoryCache) ProductKey(slug string) string {
	return "catalog:product:" + slug
}

// validRaw is a product payload that passes create validation.
func validRaw(slug string) map[string]any {
	return map[string]any{
		"title":           "Industrial Desk Lamp",
		"slug":            slug,
		"brand":           "Lumen",
		"descriptionHtml": "<p>" + strings.Repeat("Bright and sturdy. ", 4) + "</p>",
		"highlights":      []any{"Adjustable arm", ""},
		"specs":           []any{map[string]any{"key": "Material", "value": "Steel"}},
		"media":           []any{map[string]any{"url": "https://cdn.example.com/lamp.jpg", "type": "image"}},
		"price":           map[string]any{"mrp": 100, "sale": 80},
		"tags":            []any{"Lighting", "office", "lighting"},
		"visibility":      "published",
		"quantityDiscounts": []any{
			map[string]any{"minQty": 10, "maxQty": 49, "discountType": "percent", "discountValue": 5},
			map[string]any{"minQty": 50, "discountType": "amount", "discountValue": 10},
		},
	}
}
