package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"founders-circle/internal/common/logger"
	"founders-circle/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeTemplates struct {
	list  []models.EmailTemplate
	calls int
	err   error
}

func (f *fakeTemplates) SaveTemplate(_ context.Context, templateType, html string) (*models.EmailTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := models.EmailTemplate{TemplateType: templateType, TemplateHTML: html, Version: "v2"}
	f.list = append(f.list, t)
	return &t, nil
}

func (f *fakeTemplates) ListTemplates(context.Context) ([]models.EmailTemplate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.EmailTemplate(nil), f.list...), nil
}

type fakeCatalog struct {
	categories []models.AssetCategory
	calls      int
	recorded   []models.AnalyticsEvent
}

func (f *fakeCatalog) ListCategories(context.Context) ([]models.AssetCategory, error) {
	f.calls++
	return f.categories, nil
}

func (f *fakeCatalog) RecordAnalytics(_ context.Context, e models.AnalyticsEvent) error {
	f.recorded = append(f.recorded, e)
	return nil
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, New(client, time.Minute, logger.NewTestLogger(t))
}

// ==========================
// Templates
// ==========================

func TestTemplates_ReadThrough(t *testing.T) {
	mr, c := setupMiniredis(t)
	inner := &fakeTemplates{list: []models.EmailTemplate{{TemplateType: "approved", TemplateHTML: "<p>v1</p>", Version: "v1"}}}
	store := c.Templates(inner)
	ctx := context.Background()

	first, err := store.ListTemplates(ctx)
	require.NoError(t, err)
	second, err := store.ListTemplates(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists(TemplatesKey))
	assert.Equal(t, time.Minute, mr.TTL(TemplatesKey))
}

func TestTemplates_SaveInvalidates(t *testing.T) {
	mr, c := setupMiniredis(t)
	inner := &fakeTemplates{}
	store := c.Templates(inner)
	ctx := context.Background()

	_, err := store.ListTemplates(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(TemplatesKey))

	saved, err := store.SaveTemplate(ctx, "rejected", "<p>neu</p>")
	require.NoError(t, err)
	assert.Equal(t, "rejected", saved.TemplateType)
	assert.False(t, mr.Exists(TemplatesKey))

	list, err := store.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestTemplates_SaveFailureKeepsCache(t *testing.T) {
	mr, c := setupMiniredis(t)
	require.NoError(t, mr.Set(TemplatesKey, "[]"))

	store := c.Templates(&fakeTemplates{err: errors.New("insert failed")})
	_, err := store.SaveTemplate(context.Background(), "approved", "<p/>")

	assert.Error(t, err)
	assert.True(t, mr.Exists(TemplatesKey))
}

func TestTemplates_RedisDownFallsBack(t *testing.T) {
	mr, c := setupMiniredis(t)
	mr.Close()

	inner := &fakeTemplates{list: []models.EmailTemplate{{TemplateType: "approved"}}}
	list, err := c.Templates(inner).ListTemplates(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestTemplates_CorruptEntryRefetches(t *testing.T) {
	mr, c := setupMiniredis(t)
	require.NoError(t, mr.Set(TemplatesKey, "{not json"))

	inner := &fakeTemplates{list: []models.EmailTemplate{{TemplateType: "approved"}}}
	list, err := c.Templates(inner).ListTemplates(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, inner.calls)
}

// ==========================
// Catalog
// ==========================

func TestCatalog_ListCategoriesWithRedisMock(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := New(client, 0, logger.NewNoOpLogger())

	categories := []models.AssetCategory{{
		ID:        "c1",
		Name:      "Immobilien",
		Slug:      "real-estate",
		SortOrder: 1,
		IsActive:  true,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	data, err := json.Marshal(categories)
	require.NoError(t, err)

	mock.ExpectGet(CategoriesKey).RedisNil()
	mock.ExpectSet(CategoriesKey, data, DefaultTTL).SetVal("OK")

	inner := &fakeCatalog{categories: categories}
	got, err := c.Catalog(inner).ListCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, categories, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_CacheHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := New(client, time.Minute, logger.NewNoOpLogger())

	mock.ExpectGet(CategoriesKey).SetVal(`[{"id":"c1","name":"Kunst","slug":"art","description":null,"icon":null,"sort_order":2,"is_active":true,"created_at":"2025-01-01T00:00:00Z"}]`)

	inner := &fakeCatalog{}
	got, err := c.Catalog(inner).ListCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "art", got[0].Slug)
	assert.Equal(t, 0, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_RecordAnalyticsPassesThrough(t *testing.T) {
	_, c := setupMiniredis(t)
	inner := &fakeCatalog{}

	err := c.Catalog(inner).RecordAnalytics(context.Background(), models.AnalyticsEvent{EventType: "asset_view"})

	require.NoError(t, err)
	require.Len(t, inner.recorded, 1)
	assert.Equal(t, "asset_view", inner.recorded[0].EventType)
}
