package genre_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormdb/gormdbtest"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

func TestGormRepository_JoinSearch(t *testing.T) {
	ctx := context.Background()
	db := gormdbtest.New(t)
	repo := genre.NewGormRepository(db, logging.NewNoopLogger())

	a, b, c := category.NewCategoryID(), category.NewCategoryID(), category.NewCategoryID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g1 := genre.Restore(genre.NewGenreID(), "Drama", []category.CategoryID{a, b}, true, base)
	g2 := genre.Restore(genre.NewGenreID(), "Action", []category.CategoryID{a}, true, base.Add(time.Second))
	g3 := genre.Restore(genre.NewGenreID(), "Sitcom", []category.CategoryID{b, c}, true, base.Add(2*time.Second))
	g4 := genre.Restore(genre.NewGenreID(), "Horror", []category.CategoryID{c}, true, base.Add(3*time.Second))
	for _, g := range []*genre.Genre{g1, g2, g3, g4} {
		require.NoError(t, repo.Insert(ctx, g))
	}

	// g1 同时匹配 a 与 b，只能计数一次
	params := search.MustParams[genre.Filter](search.Input{
		Page: 2, PerPage: 2, Sort: "created_at", SortDir: "asc",
		Filter: map[string]any{"categories_id": []any{a.String(), b.String()}},
	}, genre.ParseFilter)
	res, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.LastPage)
	require.Len(t, res.Items, 1)
	assert.Equal(t, g3.AggregateID(), res.Items[0].AggregateID())
	assert.ElementsMatch(t, []category.CategoryID{b, c}, res.Items[0].CategoriesID())

	params = search.MustParams[genre.Filter](search.Input{Filter: map[string]any{"name": "o"}}, genre.ParseFilter)
	res, err = repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, g4.AggregateID(), res.Items[0].AggregateID())
}

func TestGormRepository_UpdateReplacesLinks(t *testing.T) {
	ctx := context.Background()
	db := gormdbtest.New(t)
	repo := genre.NewGormRepository(db, logging.NewNoopLogger())

	a, b := category.NewCategoryID(), category.NewCategoryID()
	g := genre.Create(genre.CreateCommand{Name: "Drama", CategoriesID: []category.CategoryID{a}})
	require.NoError(t, repo.Insert(ctx, g))

	g.SyncCategoriesID([]category.CategoryID{b})
	g.ChangeName("Comedy")
	require.NoError(t, repo.Update(ctx, g))

	got, err := repo.FindByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, "Comedy", got.Name())
	assert.Equal(t, []category.CategoryID{b}, got.CategoriesID())

	exists, notExists, err := repo.ExistsByIDs(ctx, []genre.GenreID{g.ID(), genre.NewGenreID()})
	require.NoError(t, err)
	assert.Len(t, exists, 1)
	assert.Len(t, notExists, 1)

	require.NoError(t, repo.Delete(ctx, g.ID()))
	var nf *domain.NotFoundError
	assert.ErrorAs(t, repo.Delete(ctx, g.ID()), &nf)
}
