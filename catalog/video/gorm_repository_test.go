package video_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/video"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormdb/gormdbtest"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

func snapshot(title string, at time.Time, cats []category.CategoryID, genres []genre.GenreID) video.Snapshot {
	return video.Snapshot{
		ID:            video.NewVideoID(),
		Title:         title,
		Description:   "d",
		YearLaunched:  2000,
		Duration:      60,
		Rating:        "L",
		CategoriesID:  cats,
		GenresID:      genres,
		CastMembersID: []castmember.CastMemberID{castmember.NewCastMemberID()},
		CreatedAt:     at,
	}
}

func TestGormRepository_MediaRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := video.NewGormRepository(gormdbtest.New(t), logging.NewNoopLogger())

	v := video.Restore(snapshot("Movie", time.Now().UTC(), []category.CategoryID{category.NewCategoryID()}, []genre.GenreID{genre.NewGenreID()}))
	require.NoError(t, repo.Insert(ctx, v))

	v.ReplaceMedia(video.Trailer, video.NewAudioVideoMedia("t.mp4", "raw/t.mp4"))
	v.ReplaceMedia(video.VideoFile, video.NewAudioVideoMedia("v.mp4", "raw/v.mp4"))
	v.ProcessMedia(video.Trailer, video.Completed, "enc/t")
	v.ProcessMedia(video.VideoFile, video.Completed, "enc/v")
	v.MarkAsOpened()
	require.NoError(t, repo.Update(ctx, v))

	got, err := repo.FindByID(ctx, v.ID())
	require.NoError(t, err)
	assert.True(t, got.IsPublished())
	assert.True(t, got.IsOpened())
	assert.Equal(t, v.CategoriesID(), got.CategoriesID())
	assert.Equal(t, v.CastMembersID(), got.CastMembersID())
	m, ok := got.Media(video.VideoFile)
	require.True(t, ok)
	assert.Equal(t, video.Completed, m.Status())
	require.NotNil(t, m.EncodedLocation())
	assert.Equal(t, "enc/v", *m.EncodedLocation())

	// 新上传覆盖旧行
	got.ReplaceMedia(video.Trailer, video.NewAudioVideoMedia("t2.mp4", "raw/t2.mp4"))
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.FindByID(ctx, v.ID())
	require.NoError(t, err)
	assert.False(t, again.IsPublished())
	m, _ = again.Media(video.Trailer)
	assert.Equal(t, video.Pending, m.Status())
	assert.Nil(t, m.EncodedLocation())
}

func TestGormRepository_MultiJoinSearch(t *testing.T) {
	ctx := context.Background()
	repo := video.NewGormRepository(gormdbtest.New(t), logging.NewNoopLogger())

	c1, c2 := category.NewCategoryID(), category.NewCategoryID()
	g1, g2 := genre.NewGenreID(), genre.NewGenreID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v1 := video.Restore(snapshot("A", base, []category.CategoryID{c1, c2}, []genre.GenreID{g1, g2}))
	v2 := video.Restore(snapshot("B", base.Add(time.Second), []category.CategoryID{c1}, []genre.GenreID{g2}))
	v3 := video.Restore(snapshot("C", base.Add(2*time.Second), []category.CategoryID{c2}, []genre.GenreID{g1}))
	v4 := video.Restore(snapshot("D", base.Add(3*time.Second), []category.CategoryID{c2}, []genre.GenreID{genre.NewGenreID()}))
	for _, v := range []*video.Video{v1, v2, v3, v4} {
		require.NoError(t, repo.Insert(ctx, v))
	}

	// v1 在两个连接上各命中两行
	params := search.MustParams[video.Filter](search.Input{
		PerPage: 2,
		Sort:    "title",
		SortDir: "desc",
		Filter: map[string]any{
			"categories_id": []any{c1.String(), c2.String()},
			"genres_id":     []any{g1.String(), g2.String()},
		},
	}, video.ParseFilter)
	res, err := repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.LastPage)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "C", res.Items[0].Title())
	assert.Equal(t, "B", res.Items[1].Title())

	params = search.MustParams[video.Filter](search.Input{Page: 2, PerPage: 2, Sort: "title", SortDir: "desc"}, nil)
	params = params.WithFilter(&video.Filter{CategoriesID: []category.CategoryID{c1, c2}, GenresID: []genre.GenreID{g1, g2}})
	res, err = repo.Search(ctx, params)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "A", res.Items[0].Title())

	params = search.MustParams[video.Filter](search.Input{Filter: map[string]any{"title": "d"}}, video.ParseFilter)
	res, err = repo.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, v4.AggregateID(), res.Items[0].AggregateID())
}
