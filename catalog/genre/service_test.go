package genre_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// spyUnitOfWork 记录提交与回滚次数
type spyUnitOfWork struct {
	*uow.MemoryUnitOfWork
	commits   int
	rollbacks int
}

func (s *spyUnitOfWork) Commit(ctx context.Context) error {
	s.commits++
	return s.MemoryUnitOfWork.Commit(ctx)
}

func (s *spyUnitOfWork) Rollback(ctx context.Context) error {
	s.rollbacks++
	return s.MemoryUnitOfWork.Rollback(ctx)
}

type fixture struct {
	svc        *genre.Service
	categories *category.MemoryRepository
	spy        *spyUnitOfWork
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	spy := &spyUnitOfWork{MemoryUnitOfWork: uow.NewMemoryUnitOfWork()}
	m := mediator.New(mediator.WithLogger(logging.NewNoopLogger()))
	f := app.NewFactory(func() uow.IUnitOfWork { return spy }, m, app.WithLogger(logging.NewNoopLogger()))
	categories := category.NewMemoryRepository()
	return fixture{
		svc:        genre.NewService(genre.NewMemoryRepository(), categories, f),
		categories: categories,
		spy:        spy,
	}
}

func (fx fixture) seedCategory(t *testing.T, name string) *category.Category {
	t.Helper()
	c := category.Create(category.CreateCommand{Name: name})
	require.NoError(t, fx.categories.Insert(context.Background(), c))
	return c
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateWithCategories(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	movie := fx.seedCategory(t, "Movie")

	out, err := fx.svc.Create(ctx, genre.CreateInput{Name: "Drama", CategoriesID: []string{movie.AggregateID(), movie.AggregateID()}})
	require.NoError(t, err)
	assert.True(t, out.IsActive)
	assert.Equal(t, []string{movie.AggregateID()}, out.CategoriesID)
	assert.Equal(t, []genre.CategoryRef{{ID: movie.AggregateID(), Name: "Movie"}}, out.Categories)
	assert.Equal(t, 1, fx.spy.commits)

	got, err := fx.svc.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out, got)
}

func TestService_CreateCollectsAllErrors(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	missing := category.NewCategoryID().String()

	_, err := fx.svc.Create(ctx, genre.CreateInput{Name: strings.Repeat("a", 256), CategoriesID: []string{missing}})
	var verr *domain.EntityValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []any{
		map[string][]string{"name": {"name must be shorter than or equal to 255 characters"}},
		map[string][]string{"categories_id": {"Category not found using ID: " + missing}},
	}, verr.Fields())
	assert.Zero(t, fx.spy.commits)
}

func TestService_CreateWithoutCategories(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), genre.CreateInput{Name: "Drama"})
	var verr *domain.EntityValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []any{map[string][]string{"categories_id": {"categories_id should not be empty"}}}, verr.Fields())
}

func TestService_UpdateWithMissingCategories(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	movie := fx.seedCategory(t, "Movie")
	created, err := fx.svc.Create(ctx, genre.CreateInput{Name: "Drama", CategoriesID: []string{movie.AggregateID()}})
	require.NoError(t, err)
	fx.spy.commits = 0

	first, second := category.NewCategoryID().String(), category.NewCategoryID().String()
	_, err = fx.svc.Update(ctx, genre.UpdateInput{ID: created.ID, CategoriesID: []string{first, movie.AggregateID(), second}})

	var verr *domain.EntityValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []any{map[string][]string{"categories_id": {
		"Category not found using ID: " + first,
		"Category not found using ID: " + second,
	}}}, verr.Fields())
	assert.Zero(t, fx.spy.commits)
	assert.Equal(t, 1, fx.spy.rollbacks)

	got, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{movie.AggregateID()}, got.CategoriesID)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	movie := fx.seedCategory(t, "Movie")
	series := fx.seedCategory(t, "Series")
	created, err := fx.svc.Create(ctx, genre.CreateInput{Name: "Drama", CategoriesID: []string{movie.AggregateID()}})
	require.NoError(t, err)

	out, err := fx.svc.Update(ctx, genre.UpdateInput{ID: created.ID, Name: ptr("Comedy"), CategoriesID: []string{series.AggregateID()}, IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Comedy", out.Name)
	assert.False(t, out.IsActive)
	assert.Equal(t, []string{series.AggregateID()}, out.CategoriesID)

	require.NoError(t, fx.svc.Delete(ctx, created.ID))
	_, err = fx.svc.Get(ctx, created.ID)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	err = fx.svc.Delete(ctx, "not-a-uuid")
	var invalid *domain.InvalidUuidError
	assert.ErrorAs(t, err, &invalid)
}

func TestService_ListByCategory(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	movie := fx.seedCategory(t, "Movie")
	series := fx.seedCategory(t, "Series")
	for _, in := range []genre.CreateInput{
		{Name: "Drama", CategoriesID: []string{movie.AggregateID(), series.AggregateID()}},
		{Name: "Action", CategoriesID: []string{movie.AggregateID()}},
		{Name: "Sitcom", CategoriesID: []string{series.AggregateID()}},
	} {
		_, err := fx.svc.Create(ctx, in)
		require.NoError(t, err)
	}

	res, err := fx.svc.List(ctx, search.Input{
		Sort:    "name",
		SortDir: "asc",
		Filter:  map[string]any{"categories_id": []any{movie.AggregateID()}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Action", res.Items[0].Name)
	assert.Equal(t, "Drama", res.Items[1].Name)
	assert.Len(t, res.Items[1].Categories, 2)

	_, err = fx.svc.List(ctx, search.Input{Filter: map[string]any{"categories_id": []any{"bad"}}})
	var serr *domain.SearchValidationError
	assert.ErrorAs(t, err, &serr)
}
