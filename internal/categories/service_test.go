package category

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client, err := db.OpenSQLite(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	svc, err := NewService(NewRepository(client.DB()), client, outbox.NewService(outbox.NewRepository(client.DB()), nil, "test", true), nil, nil)
	require.NoError(t, err)
	return svc, client
}

func insertProduct(t *testing.T, conn *gorm.DB, slug string, categoryID *uuid.UUID) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Product{
		Title:      slug,
		Slug:       slug,
		CategoryID: categoryID,
		PriceMRP:   decimal.NewFromInt(1),
		Currency:   "USD",
		Visibility: enums.ProductVisibilityDraft,
		Status:     enums.ProductStatusActive,
	}).Error)
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return ""
}

func TestCreateCategoryGeneratesSlug(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "  Office Lighting & Lamps "})
	require.NoError(t, err)
	assert.Equal(t, "Office Lighting & Lamps", created.Name)
	assert.Equal(t, "office-lighting-lamps", created.Slug)

	_, err = svc.Create(ctx, CreateInput{Name: "Office Lighting Lamps"})
	assert.Equal(t, pkgerrors.CodeConflict, codeOf(err))

	_, err = svc.Create(ctx, CreateInput{Name: "X", Slug: "Bad Slug"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Contains(t, typed.Details(), "name")
	assert.Contains(t, typed.Details(), "slug")

	missing := uuid.New()
	_, err = svc.Create(ctx, CreateInput{Name: "Desk", ParentID: &missing})
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))

	var events int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventCategoryCreated).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestUpdateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parent, err := svc.Create(ctx, CreateInput{Name: "Furniture"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateInput{Name: "Chairs"})
	require.NoError(t, err)

	name := "Office Chairs"
	updated, err := svc.Update(ctx, child.ID, UpdateInput{Name: &name, ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Equal(t, "Office Chairs", updated.Name)
	assert.Equal(t, "chairs", updated.Slug)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, parent.ID, *updated.ParentID)

	_, err = svc.Update(ctx, child.ID, UpdateInput{ParentID: &child.ID})
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))

	updated, err = svc.Update(ctx, child.ID, UpdateInput{ClearParent: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Name: &name})
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(err))
}

func TestDeleteCategoryWithProductsIsStateConflict(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	used, err := svc.Create(ctx, CreateInput{Name: "Lamps"})
	require.NoError(t, err)
	insertProduct(t, client.DB(), "lamp", &used.ID)

	err = svc.Delete(ctx, used.ID)
	assert.Equal(t, pkgerrors.CodeStateConflict, codeOf(err))

	empty, err := svc.Create(ctx, CreateInput{Name: "Rugs"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, empty.ID))
	assert.Equal(t, pkgerrors.CodeNotFound, codeOf(svc.Delete(ctx, empty.ID)))
}

func TestResolveAndReconcileCounts(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	lamps, err := svc.Create(ctx, CreateInput{Name: "Lamps"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Rugs"})
	require.NoError(t, err)
	insertProduct(t, client.DB(), "lamp-1", &lamps.ID)
	insertProduct(t, client.DB(), "lamp-2", &lamps.ID)
	insertProduct(t, client.DB(), "loose", nil)

	byID, err := svc.Resolve(ctx, lamps.ID.String())
	require.NoError(t, err)
	bySlug, err := svc.Resolve(ctx, " LAMPS ")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySlug.ID)
	_, err = svc.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, svc.ReconcileCounts(ctx))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Lamps", list[0].Name)
	assert.Equal(t, int64(2), list[0].ProductCount)
	assert.Equal(t, int64(0), list[1].ProductCount)
}
