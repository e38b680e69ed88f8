package video

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
)

func newValidVideo(t *testing.T) *Video {
	t.Helper()
	v := Create(CreateCommand{
		Title:         "Movie",
		Description:   "desc",
		YearLaunched:  2020,
		Duration:      90,
		Rating:        "L",
		CategoriesID:  []category.CategoryID{category.NewCategoryID()},
		GenresID:      []genre.GenreID{genre.NewGenreID()},
		CastMembersID: []castmember.CastMemberID{castmember.NewCastMemberID()},
	})
	require.False(t, v.Notification().HasErrors(), v.Notification().ToJSON())
	return v
}

func TestCreate_Validation(t *testing.T) {
	v := Create(CreateCommand{Title: strings.Repeat("t", 256)})
	n := v.Notification()
	assert.Equal(t, []string{"title must be shorter than or equal to 255 characters"}, n.Messages("title"))
	assert.Equal(t, []string{"year_launched must not be less than 1"}, n.Messages("year_launched"))
	assert.Equal(t, []string{"rating should not be empty"}, n.Messages("rating"))
	assert.Equal(t, []string{"genres_id should not be empty"}, n.Messages("genres_id"))
	assert.False(t, v.IsPublished())
}

func TestVideo_PublishedWhenBothMediaCompleted(t *testing.T) {
	v := newValidVideo(t)
	assert.False(t, v.ProcessMedia(Trailer, Completed, "x"))

	v.ReplaceMedia(Trailer, NewAudioVideoMedia("trailer.mp4", "videos/1/trailer.mp4"))
	v.ReplaceMedia(VideoFile, NewAudioVideoMedia("video.mp4", "videos/1/video.mp4"))

	require.True(t, v.ProcessMedia(Trailer, Completed, "encoded/trailer"))
	assert.False(t, v.IsPublished())

	require.True(t, v.ProcessMedia(VideoFile, Processing, ""))
	m, _ := v.Media(VideoFile)
	assert.Equal(t, Processing, m.Status())
	assert.False(t, v.IsPublished())

	require.True(t, v.ProcessMedia(VideoFile, Completed, "encoded/video"))
	assert.True(t, v.IsPublished())
	m, _ = v.Media(VideoFile)
	require.NotNil(t, m.EncodedLocation())
	assert.Equal(t, "encoded/video", *m.EncodedLocation())

	// 重新上传后需再次编码
	v.ReplaceMedia(Trailer, NewAudioVideoMedia("trailer2.mp4", "videos/1/trailer2.mp4"))
	assert.False(t, v.IsPublished())

	require.True(t, v.ProcessMedia(Trailer, Failed, ""))
	assert.False(t, v.IsPublished())
}

func TestVideo_AudioMediaReplacedIntegrationEvent(t *testing.T) {
	v := newValidVideo(t)
	v.ReplaceMedia(Trailer, NewAudioVideoMedia("trailer.mp4", "videos/1/trailer.mp4"))

	var ies []eventing.IIntegrationEvent
	for _, e := range v.Events() {
		if src, ok := e.(eventing.IIntegrationEventSource); ok {
			ies = append(ies, src.IntegrationEvent())
		}
	}
	require.Len(t, ies, 1)
	assert.Equal(t, AudioMediaUploadedIntegrationEvent, ies[0].EventName())
	assert.Equal(t, AudioMediaUploaded{
		ResourceID: v.AggregateID() + ".trailer",
		FilePath:   "videos/1/trailer.mp4",
	}, ies[0].EventData())
}

func TestVideo_ReplaceMediaInvalid(t *testing.T) {
	v := newValidVideo(t)
	before := len(v.Events())
	v.ReplaceMedia(VideoFile, NewAudioVideoMedia("", ""))
	assert.Equal(t, []string{"video name should not be empty", "video raw_location should not be empty"}, v.Notification().Messages("video"))
	assert.Len(t, v.Events(), before)
	_, ok := v.Media(VideoFile)
	assert.False(t, ok)
}

func TestRestore_KeepsSelfHandler(t *testing.T) {
	v := newValidVideo(t)
	v.ReplaceMedia(Trailer, NewAudioVideoMedia("t.mp4", "raw/t.mp4"))
	v.ReplaceMedia(VideoFile, NewAudioVideoMedia("v.mp4", "raw/v.mp4"))
	v.ProcessMedia(Trailer, Completed, "enc/t")

	restored := v.clone()
	assert.Empty(t, restored.Events())
	restored.ProcessMedia(VideoFile, Completed, "enc/v")
	assert.True(t, restored.IsPublished())
	assert.False(t, v.IsPublished())
}
