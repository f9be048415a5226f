package blog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
)

type serviceFixture struct {
	client     *db.Client
	svc        Service
	reconciled int
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	client, err := db.OpenSQLite(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	f := &serviceFixture{client: client}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(client.DB()),
		Tx:     client,
		Outbox: outbox.NewService(outbox.NewRepository(client.DB()), nil, "test", true),
		Reconcilers: []ReconcilerFunc{func(context.Context) error {
			f.reconciled++
			return nil
		}},
		Now: func() time.Time { return now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *serviceFixture) events(t *testing.T) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, f.client.DB().Order("created_at ASC").Find(&rows).Error)
	return rows
}

func draftRaw(title string) map[string]any {
	return map[string]any{
		"title":         title,
		"contentHtml":   "<p>Good light makes long days easier.</p>",
		"featuredImage": "https://cdn.example.com/guide.jpg",
		"tags":          []any{"Lighting", "guides"},
	}
}

func TestCreateDraftDerivesFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.Create(ctx, draftRaw("Task Lighting: A Field Guide"))
	require.NoError(t, err)
	assert.Equal(t, "task-lighting-a-field-guide", post.Slug)
	assert.Equal(t, enums.PostStatusDraft, post.Status)
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, 1, post.ReadingTimeMinutes)
	assert.Equal(t, []string{"guides", "lighting"}, post.Tags)
	require.NotNil(t, post.FeaturedImage)
	assert.Equal(t, enums.ImageSizeMedium, post.FeaturedImage.Size)
	assert.Equal(t, enums.TextAlignmentCenter, post.FeaturedImage.Alignment)
	assert.Empty(t, f.events(t))
	assert.Equal(t, 1, f.reconciled)

	_, err = f.svc.Create(ctx, draftRaw("Task lighting, a field guide"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreateStoresDerivedSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, title := range []string{"Desk Lamps", "Floor Lamps", "Pendant Lamps"} {
		_, err := f.svc.Create(ctx, draftRaw(title))
		require.NoError(t, err, title)
	}

	var slugs []string
	require.NoError(t, f.client.DB().Model(&models.BlogPost{}).Order("slug ASC").Pluck("slug", &slugs).Error)
	assert.Equal(t, []string{"desk-lamps", "floor-lamps", "pendant-lamps"}, slugs)

	_, err := f.svc.Create(ctx, draftRaw("Desk Lamps"))
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreateRejectsInvalidPost(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), map[string]any{"title": "Hi"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "contentHtml")
}

func TestPublishFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.Create(ctx, draftRaw("Desk Lamp Buying Guide"))
	require.NoError(t, err)

	_, err = f.svc.GetPublished(ctx, post.Slug)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	published, err := f.svc.Publish(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PostStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	_, err = f.svc.Publish(ctx, post.ID)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	got, err := f.svc.GetPublished(ctx, " DESK-LAMP-BUYING-GUIDE ")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventBlogPostPublished, events[0].EventType)
	assert.Equal(t, post.ID, events[0].AggregateID)
}

func TestUpdatePartialAndStatusTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.Create(ctx, draftRaw("Lighting for Small Offices"))
	require.NoError(t, err)

	long := "<p>"
	for i := 0; i < 450; i++ {
		long += "word "
	}
	long += "</p>"

	updated, err := f.svc.Update(ctx, post.ID, map[string]any{"contentHtml": long, "status": "published", "tags": []any{"offices"}})
	require.NoError(t, err)
	assert.Equal(t, "Lighting for Small Offices", updated.Title)
	assert.Equal(t, post.Slug, updated.Slug)
	assert.Equal(t, 3, updated.ReadingTimeMinutes)
	assert.Equal(t, enums.PostStatusPublished, updated.Status)
	assert.Equal(t, []string{"offices"}, updated.Tags)
	require.Len(t, f.events(t), 1)

	renamed, err := f.svc.Update(ctx, post.ID, map[string]any{"title": "Small Office Lighting", "slug": ""})
	require.NoError(t, err)
	assert.Equal(t, "small-office-lighting", renamed.Slug)
	require.Len(t, f.events(t), 1)

	drafted, err := f.svc.Update(ctx, post.ID, map[string]any{"status": "draft"})
	require.NoError(t, err)
	assert.Nil(t, drafted.PublishedAt)

	_, err = f.svc.Update(ctx, post.ID, map[string]any{"title": "x"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		raw := draftRaw(fmt.Sprintf("Lighting note number %d", i))
		if i > 0 {
			raw["status"] = "published"
		}
		if i == 2 {
			raw["tags"] = []any{"special"}
		}
		post, err := f.svc.Create(ctx, raw)
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}

	published, err := f.svc.List(ctx, ListInput{Status: enums.PostStatusPublished})
	require.NoError(t, err)
	assert.Len(t, published.Posts, 2)

	tagged, err := f.svc.List(ctx, ListInput{Tag: "Special"})
	require.NoError(t, err)
	require.Len(t, tagged.Posts, 1)
	assert.Equal(t, ids[2], tagged.Posts[0].ID)

	first, err := f.svc.List(ctx, ListInput{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	require.NotEmpty(t, first.NextCursor)
	second, err := f.svc.List(ctx, ListInput{Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Posts, 1)
	assert.Empty(t, second.NextCursor)

	_, err = f.svc.List(ctx, ListInput{Status: "archived"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	require.NoError(t, f.svc.Delete(ctx, ids[0]))
	_, err = f.svc.Get(ctx, ids[0])
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	var tagRows int64
	require.NoError(t, f.client.DB().Model(&models.BlogPostTag{}).Where("post_id = ?", ids[0]).Count(&tagRows).Error)
	assert.Zero(t, tagRows)

	events := f.events(t)
	assert.Equal(t, enums.EventBlogPostDeleted, events[len(events)-1].EventType)
}
