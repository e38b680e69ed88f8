// Package video 视频聚合与用例
//
// 视频通过标识集合引用分类、类型与演职人员，预告片与正片各占一个媒体槽位。
// 两个槽位都编码完成时视频自动发布。
package video

import (
	"slices"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

const EntityName = "Video"

// VideoID 视频标识
type VideoID struct{ entity.Uuid }

func NewVideoID() VideoID { return VideoID{entity.NewUuid()} }

func ParseVideoID(s string) (VideoID, error) {
	u, err := entity.ParseUuid(s)
	if err != nil {
		return VideoID{}, err
	}
	return VideoID{u}, nil
}

// Video 视频聚合
type Video struct {
	entity.AggregateRoot
	id            VideoID
	title         string
	description   string
	yearLaunched  int
	duration      int
	rating        string
	isOpened      bool
	isPublished   bool
	categoriesID  []category.CategoryID
	genresID      []genre.GenreID
	castMembersID []castmember.CastMemberID
	media         map[MediaKind]AudioVideoMedia
	createdAt     time.Time

	notification *validation.Notification
}

var rules = []validation.Rule[*Video]{
	validation.Required("title", func(v *Video) string { return v.title }),
	validation.MaxLength("title", 255, func(v *Video) string { return v.title }),
	validation.MinInt("year_launched", 1, func(v *Video) int { return v.yearLaunched }),
	validation.MinInt("duration", 1, func(v *Video) int { return v.duration }),
	validation.Required("rating", func(v *Video) string { return v.rating }),
	notEmpty("categories_id", func(v *Video) int { return len(v.categoriesID) }),
	notEmpty("genres_id", func(v *Video) int { return len(v.genresID) }),
	notEmpty("cast_members_id", func(v *Video) int { return len(v.castMembersID) }),
}

func notEmpty(field string, size func(*Video) int) validation.Rule[*Video] {
	return validation.Rule[*Video]{Field: field, Check: func(v *Video) []string {
		if size(v) == 0 {
			return []string{field + " should not be empty"}
		}
		return nil
	}}
}

// CreateCommand 创建参数
type CreateCommand struct {
	Title         string
	Description   string
	YearLaunched  int
	Duration      int
	Rating        string
	IsOpened      bool
	CategoriesID  []category.CategoryID
	GenresID      []genre.GenreID
	CastMembersID []castmember.CastMemberID
}

// Create 创建并校验；新视频未发布
func Create(cmd CreateCommand) *Video {
	v := &Video{
		id:            NewVideoID(),
		title:         cmd.Title,
		description:   cmd.Description,
		yearLaunched:  cmd.YearLaunched,
		duration:      cmd.Duration,
		rating:        cmd.Rating,
		isOpened:      cmd.IsOpened,
		categoriesID:  uniq(cmd.CategoriesID),
		genresID:      uniq(cmd.GenresID),
		castMembersID: uniq(cmd.CastMembersID),
		media:         map[MediaKind]AudioVideoMedia{},
		createdAt:     time.Now().UTC(),
		notification:  validation.NewNotification(),
	}
	v.registerHandlers()
	validation.Validate(v.notification, v, rules)
	v.ApplyEvent(Created{DomainEvent: eventing.NewDomainEvent(CreatedEventType, v.AggregateID(), 1), Title: v.title})
	return v
}

// Snapshot 存储重建所需的全部状态
type Snapshot struct {
	ID            VideoID
	Title         string
	Description   string
	YearLaunched  int
	Duration      int
	Rating        string
	IsOpened      bool
	IsPublished   bool
	CategoriesID  []category.CategoryID
	GenresID      []genre.GenreID
	CastMembersID []castmember.CastMemberID
	Media         map[MediaKind]AudioVideoMedia
	CreatedAt     time.Time
}

// Restore 从存储重建
func Restore(s Snapshot) *Video {
	v := &Video{
		id:            s.ID,
		title:         s.Title,
		description:   s.Description,
		yearLaunched:  s.YearLaunched,
		duration:      s.Duration,
		rating:        s.Rating,
		isOpened:      s.IsOpened,
		isPublished:   s.IsPublished,
		categoriesID:  uniq(s.CategoriesID),
		genresID:      uniq(s.GenresID),
		castMembersID: uniq(s.CastMembersID),
		media:         map[MediaKind]AudioVideoMedia{},
		createdAt:     s.CreatedAt,
		notification:  validation.NewNotification(),
	}
	for k, m := range s.Media {
		v.media[k] = m
	}
	v.registerHandlers()
	return v
}

func (v *Video) registerHandlers() {
	v.RegisterHandler(MediaStatusChangedEventType, v.onMediaStatusChanged)
}

func (v *Video) ID() VideoID                            { return v.id }
func (v *Video) AggregateID() string                    { return v.id.String() }
func (v *Video) Title() string                          { return v.title }
func (v *Video) Description() string                    { return v.description }
func (v *Video) YearLaunched() int                      { return v.yearLaunched }
func (v *Video) Duration() int                          { return v.duration }
func (v *Video) Rating() string                         { return v.rating }
func (v *Video) IsOpened() bool                         { return v.isOpened }
func (v *Video) IsPublished() bool                      { return v.isPublished }
func (v *Video) CreatedAt() time.Time                   { return v.createdAt }
func (v *Video) Notification() *validation.Notification { return v.notification }

func (v *Video) CategoriesID() []category.CategoryID { return slices.Clone(v.categoriesID) }
func (v *Video) GenresID() []genre.GenreID           { return slices.Clone(v.genresID) }
func (v *Video) CastMembersID() []castmember.CastMemberID {
	return slices.Clone(v.castMembersID)
}

// Media 槽位上的媒体
func (v *Video) Media(kind MediaKind) (AudioVideoMedia, bool) {
	m, ok := v.media[kind]
	return m, ok
}

func (v *Video) ChangeTitle(title string) {
	v.title = title
	validation.Validate(v.notification, v, rules, "title")
}

func (v *Video) ChangeDescription(description string) { v.description = description }

func (v *Video) ChangeYearLaunched(year int) {
	v.yearLaunched = year
	validation.Validate(v.notification, v, rules, "year_launched")
}

func (v *Video) ChangeDuration(duration int) {
	v.duration = duration
	validation.Validate(v.notification, v, rules, "duration")
}

func (v *Video) ChangeRating(rating string) {
	v.rating = rating
	validation.Validate(v.notification, v, rules, "rating")
}

func (v *Video) MarkAsOpened()    { v.isOpened = true }
func (v *Video) MarkAsNotOpened() { v.isOpened = false }

func (v *Video) SyncCategoriesID(ids []category.CategoryID) {
	v.categoriesID = uniq(ids)
	validation.Validate(v.notification, v, rules, "categories_id")
}

func (v *Video) SyncGenresID(ids []genre.GenreID) {
	v.genresID = uniq(ids)
	validation.Validate(v.notification, v, rules, "genres_id")
}

func (v *Video) SyncCastMembersID(ids []castmember.CastMemberID) {
	v.castMembersID = uniq(ids)
	validation.Validate(v.notification, v, rules, "cast_members_id")
}

// ReplaceMedia 用新上传的文件替换槽位；替换后视频取消发布，直到重新编码完成
func (v *Video) ReplaceMedia(kind MediaKind, m AudioVideoMedia) {
	if msgs := m.validate(kind); len(msgs) > 0 {
		v.notification.SetError(msgs, string(kind))
		return
	}
	v.media[kind] = m
	v.isPublished = false
	v.ApplyEvent(AudioMediaReplaced{
		DomainEvent: eventing.NewDomainEvent(AudioMediaReplacedEventType, v.AggregateID(), 1),
		Kind:        kind,
		Media:       m,
	})
}

// ProcessMedia 记录编码结果；槽位为空时返回 false
func (v *Video) ProcessMedia(kind MediaKind, status MediaStatus, encodedLocation string) bool {
	if _, ok := v.media[kind]; !ok {
		return false
	}
	evt := MediaStatusChanged{
		DomainEvent: eventing.NewDomainEvent(MediaStatusChangedEventType, v.AggregateID(), 1),
		Kind:        kind,
		Status:      status,
	}
	if status == Completed {
		evt.EncodedLocation = &encodedLocation
	}
	v.ApplyEvent(evt)
	return true
}

func (v *Video) onMediaStatusChanged(e eventing.IDomainEvent) {
	evt, ok := e.(MediaStatusChanged)
	if !ok {
		return
	}
	m := v.media[evt.Kind]
	switch evt.Status {
	case Processing:
		m = m.Process()
	case Completed:
		m = m.Complete(*evt.EncodedLocation)
	case Failed:
		m = m.Fail()
	}
	v.media[evt.Kind] = m
	v.isPublished = v.allMediaCompleted()
}

func (v *Video) allMediaCompleted() bool {
	for _, k := range MediaKinds {
		m, ok := v.media[k]
		if !ok || m.status != Completed {
			return false
		}
	}
	return true
}

func (v *Video) ToJSON() map[string]any {
	out := map[string]any{
		"id":              v.id.String(),
		"title":           v.title,
		"description":     v.description,
		"year_launched":   v.yearLaunched,
		"duration":        v.duration,
		"rating":          v.rating,
		"is_opened":       v.isOpened,
		"is_published":    v.isPublished,
		"categories_id":   stringsOf(v.categoriesID),
		"genres_id":       stringsOf(v.genresID),
		"cast_members_id": stringsOf(v.castMembersID),
		"created_at":      v.createdAt,
	}
	for k, m := range v.media {
		out[string(k)] = map[string]any{
			"name":             m.name,
			"raw_location":     m.rawLocation,
			"encoded_location": m.encodedLocation,
			"status":           string(m.status),
		}
	}
	return out
}

func (v *Video) snapshot() Snapshot {
	return Snapshot{
		ID:            v.id,
		Title:         v.title,
		Description:   v.description,
		YearLaunched:  v.yearLaunched,
		Duration:      v.duration,
		Rating:        v.rating,
		IsOpened:      v.isOpened,
		IsPublished:   v.isPublished,
		CategoriesID:  v.categoriesID,
		GenresID:      v.genresID,
		CastMembersID: v.castMembersID,
		Media:         v.media,
		CreatedAt:     v.createdAt,
	}
}

func (v *Video) clone() *Video { return Restore(v.snapshot()) }

func uniq[T comparable](ids []T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func stringsOf[T interface{ String() string }](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

var _ entity.IAggregateRoot = (*Video)(nil)
