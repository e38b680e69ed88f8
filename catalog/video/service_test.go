package video_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/video"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

type fixture struct {
	svc        *video.Service
	categoryID string
	genreID    string
	castID     string
	uploaded   *[]video.AudioMediaUploaded
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	m := mediator.New(mediator.WithLogger(logging.NewNoopLogger()))
	uploaded := &[]video.AudioMediaUploaded{}
	m.RegisterIntegrationFunc(video.AudioMediaUploadedIntegrationEvent, func(ctx context.Context, evt eventing.IIntegrationEvent) error {
		*uploaded = append(*uploaded, evt.EventData().(video.AudioMediaUploaded))
		return nil
	})

	categories := category.NewMemoryRepository()
	genres := genre.NewMemoryRepository()
	castMembers := castmember.NewMemoryRepository()

	c := category.Create(category.CreateCommand{Name: "Movie"})
	require.NoError(t, categories.Insert(ctx, c))
	g := genre.Create(genre.CreateCommand{Name: "Drama", CategoriesID: []category.CategoryID{c.ID()}})
	require.NoError(t, genres.Insert(ctx, g))
	cm := castmember.New("Someone", castmember.Actor)
	require.NoError(t, castMembers.Insert(ctx, cm))

	f := app.NewMemoryFactory(m, app.WithLogger(logging.NewNoopLogger()))
	svc := video.NewService(video.NewMemoryRepository(), video.Relations{
		Categories:  categories,
		Genres:      genres,
		CastMembers: castMembers,
	}, f)
	return fixture{svc: svc, categoryID: c.AggregateID(), genreID: g.AggregateID(), castID: cm.AggregateID(), uploaded: uploaded}
}

func (fx fixture) input(title string) video.CreateInput {
	return video.CreateInput{
		Title:         title,
		Description:   "desc",
		YearLaunched:  2021,
		Duration:      120,
		Rating:        "14",
		CategoriesID:  []string{fx.categoryID},
		GenresID:      []string{fx.genreID},
		CastMembersID: []string{fx.castID},
	}
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	created, err := fx.svc.Create(ctx, fx.input("Movie"))
	require.NoError(t, err)
	assert.False(t, created.IsPublished)
	assert.Nil(t, created.Trailer)

	out, err := fx.svc.Update(ctx, video.UpdateInput{ID: created.ID, IsOpened: ptr(true)})
	require.NoError(t, err)
	assert.True(t, out.IsOpened)

	// nil 保持不变
	out, err = fx.svc.Update(ctx, video.UpdateInput{ID: created.ID, Title: ptr("Other")})
	require.NoError(t, err)
	assert.True(t, out.IsOpened)
	assert.Equal(t, "Other", out.Title)
	assert.Equal(t, []string{fx.genreID}, out.GenresID)
}

func TestService_CreateMissingRelations(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	in := fx.input("Movie")
	missingCategory := category.NewCategoryID().String()
	missingGenre := genre.NewGenreID().String()
	missingCast := castmember.NewCastMemberID().String()
	in.CategoriesID = append(in.CategoriesID, missingCategory)
	in.GenresID = []string{missingGenre}
	in.CastMembersID = append(in.CastMembersID, missingCast)

	want := []any{
		map[string][]string{"categories_id": {"Category not found using ID: " + missingCategory}},
		map[string][]string{"genres_id": {"Genre not found using ID: " + missingGenre}},
		map[string][]string{"cast_members_id": {"CastMember not found using ID: " + missingCast}},
	}
	// 字段顺序固定，多次执行结果一致
	for i := 0; i < 20; i++ {
		_, err := fx.svc.Create(ctx, in)
		var verr *domain.EntityValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, want, verr.Fields())
	}

	res, err := fx.svc.List(ctx, search.Input{})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestService_MediaLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	created, err := fx.svc.Create(ctx, fx.input("Movie"))
	require.NoError(t, err)

	for _, kind := range []string{"trailer", "video"} {
		_, err := fx.svc.ReplaceMedia(ctx, video.ReplaceMediaInput{
			VideoID: created.ID, Kind: kind, Name: kind + ".mp4", RawLocation: "raw/" + kind + ".mp4",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []video.AudioMediaUploaded{
		{ResourceID: created.ID + ".trailer", FilePath: "raw/trailer.mp4"},
		{ResourceID: created.ID + ".video", FilePath: "raw/video.mp4"},
	}, *fx.uploaded)

	out, err := fx.svc.ProcessMedia(ctx, video.ProcessMediaInput{VideoID: created.ID, Kind: "trailer", Status: "completed", EncodedLocation: "enc/trailer"})
	require.NoError(t, err)
	assert.False(t, out.IsPublished)
	assert.Equal(t, "completed", out.Trailer.Status)

	out, err = fx.svc.ProcessMedia(ctx, video.ProcessMediaInput{VideoID: created.ID, Kind: "video", Status: "completed", EncodedLocation: "enc/video"})
	require.NoError(t, err)
	assert.True(t, out.IsPublished)

	got, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	require.NotNil(t, got.Video.EncodedLocation)
	assert.Equal(t, "enc/video", *got.Video.EncodedLocation)
}

func TestService_ProcessMediaErrors(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	created, err := fx.svc.Create(ctx, fx.input("Movie"))
	require.NoError(t, err)

	var verr *domain.EntityValidationError
	_, err = fx.svc.ProcessMedia(ctx, video.ProcessMediaInput{VideoID: created.ID, Kind: "trailer", Status: "completed", EncodedLocation: "enc"})
	assert.ErrorAs(t, err, &verr)

	_, err = fx.svc.ProcessMedia(ctx, video.ProcessMediaInput{VideoID: created.ID, Kind: "poster", Status: "completed"})
	assert.ErrorAs(t, err, &verr)

	_, err = fx.svc.ProcessMedia(ctx, video.ProcessMediaInput{VideoID: created.ID, Kind: "video", Status: "done"})
	assert.ErrorAs(t, err, &verr)

	var nf *domain.NotFoundError
	_, err = fx.svc.ReplaceMedia(ctx, video.ReplaceMediaInput{VideoID: video.NewVideoID().String(), Kind: "video", Name: "v", RawLocation: "r"})
	assert.ErrorAs(t, err, &nf)
}

func TestService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a, err := fx.svc.Create(ctx, fx.input("Alpha"))
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, fx.input("Beta"))
	require.NoError(t, err)

	res, err := fx.svc.List(ctx, search.Input{
		Sort: "title", SortDir: "asc",
		Filter: map[string]any{"genres_id": []any{fx.genreID}, "cast_members_id": []any{fx.castID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "Alpha", res.Items[0].Title)

	res, err = fx.svc.List(ctx, search.Input{Filter: map[string]any{"genres_id": []any{genre.NewGenreID().String()}}})
	require.NoError(t, err)
	assert.Zero(t, res.Total)

	require.NoError(t, fx.svc.Delete(ctx, a.ID))
	var nf *domain.NotFoundError
	assert.ErrorAs(t, fx.svc.Delete(ctx, a.ID), &nf)
}

func TestEncodingResultHandler(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	created, err := fx.svc.Create(ctx, fx.input("Movie"))
	require.NoError(t, err)
	_, err = fx.svc.ReplaceMedia(ctx, video.ReplaceMediaInput{VideoID: created.ID, Kind: "trailer", Name: "t.mp4", RawLocation: "raw/t.mp4"})
	require.NoError(t, err)

	h := video.NewEncodingResultHandler(fx.svc, logging.NewNoopLogger())
	// 经线上传输后载荷为通用 map
	msg := messaging.NewMessage("", video.AudioMediaEncodedMessage, map[string]any{
		"resource_id":      created.ID + ".trailer",
		"status":           "completed",
		"encoded_location": "enc/t",
	})
	require.NoError(t, h.Handle(ctx, msg))

	got, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Trailer.Status)

	bad := messaging.NewMessage("", video.AudioMediaEncodedMessage, video.AudioMediaEncoded{ResourceID: "no-kind", Status: "completed"})
	assert.Error(t, h.Handle(ctx, bad))
}
