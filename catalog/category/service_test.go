package category_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

type fixture struct {
	svc       *category.Service
	repo      *category.MemoryRepository
	published *[]string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	m := mediator.New(mediator.WithLogger(logging.NewNoopLogger()))
	published := &[]string{}
	for _, name := range category.IntegrationEvents {
		m.RegisterIntegrationFunc(name, func(ctx context.Context, evt eventing.IIntegrationEvent) error {
			*published = append(*published, evt.EventName())
			return nil
		})
	}
	repo := category.NewMemoryRepository()
	f := app.NewMemoryFactory(m, app.WithLogger(logging.NewNoopLogger()))
	return fixture{svc: category.NewService(repo, f), repo: repo, published: published}
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	out, err := fx.svc.Create(ctx, category.CreateInput{Name: "Movie", Description: ptr("some description")})
	require.NoError(t, err)
	assert.True(t, out.IsActive)
	assert.Equal(t, []string{category.CreatedIntegrationEvent}, *fx.published)

	got, err := fx.svc.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out, got)
}

func TestService_CreateNameTooLong(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	_, err := fx.svc.Create(ctx, category.CreateInput{Name: strings.Repeat("a", 256)})
	var verr *domain.EntityValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []any{
		map[string][]string{"name": {"name must be shorter than or equal to 255 characters"}},
	}, verr.Fields())

	res, err := fx.repo.Search(ctx, search.MustParams[category.Filter](search.Input{}, nil))
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, *fx.published)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	created, err := fx.svc.Create(ctx, category.CreateInput{Name: "Movie"})
	require.NoError(t, err)

	out, err := fx.svc.Update(ctx, category.UpdateInput{ID: created.ID, Name: ptr("Film"), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Film", out.Name)
	assert.False(t, out.IsActive)
	assert.Equal(t, []string{category.CreatedIntegrationEvent, category.UpdatedIntegrationEvent}, *fx.published)

	// 未提供的字段保持不变
	out, err = fx.svc.Update(ctx, category.UpdateInput{ID: created.ID, Description: ptr("d")})
	require.NoError(t, err)
	assert.Equal(t, "Film", out.Name)
	assert.False(t, out.IsActive)

	_, err = fx.svc.Update(ctx, category.UpdateInput{ID: created.ID, Name: ptr("")})
	var verr *domain.EntityValidationError
	require.ErrorAs(t, err, &verr)

	got, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Film", got.Name)
}

func TestService_NotFoundAndInvalidID(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	id := category.NewCategoryID().String()
	_, err := fx.svc.Get(ctx, id)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Category not found using ID: "+id, nf.Error())

	require.ErrorAs(t, fx.svc.Delete(ctx, id), &nf)

	_, err = fx.svc.Get(ctx, "fake id")
	var invalid *domain.InvalidUuidError
	require.ErrorAs(t, err, &invalid)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	created, err := fx.svc.Create(ctx, category.CreateInput{Name: "Movie"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, created.ID))
	assert.Equal(t, []string{category.CreatedIntegrationEvent, category.DeletedIntegrationEvent}, *fx.published)

	_, err = fx.svc.Get(ctx, created.ID)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestService_ListPagination(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	for _, name := range []string{"test", "a", "TEST", "e", "TeSt"} {
		_, err := fx.svc.Create(ctx, category.CreateInput{Name: name})
		require.NoError(t, err)
	}

	res, err := fx.svc.List(ctx, search.Input{Page: 1, PerPage: 2, Sort: "name", SortDir: "asc", Filter: "TEST"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "TEST", res.Items[0].Name)
	assert.Equal(t, "TeSt", res.Items[1].Name)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.LastPage)

	res, err = fx.svc.List(ctx, search.Input{Page: 2, PerPage: 2, Sort: "name", SortDir: "asc", Filter: "TEST"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "test", res.Items[0].Name)
	assert.Equal(t, 2, res.CurrentPage)
}
