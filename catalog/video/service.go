package video

import (
	"context"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

// MediaOutput 媒体槽位输出
type MediaOutput struct {
	Name            string  `json:"name"`
	RawLocation     string  `json:"raw_location"`
	EncodedLocation *string `json:"encoded_location"`
	Status          string  `json:"status"`
}

// Output 用例输出
type Output struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	YearLaunched  int          `json:"year_launched"`
	Duration      int          `json:"duration"`
	Rating        string       `json:"rating"`
	IsOpened      bool         `json:"is_opened"`
	IsPublished   bool         `json:"is_published"`
	CategoriesID  []string     `json:"categories_id"`
	GenresID      []string     `json:"genres_id"`
	CastMembersID []string     `json:"cast_members_id"`
	Trailer       *MediaOutput `json:"trailer"`
	Video         *MediaOutput `json:"video"`
	CreatedAt     time.Time    `json:"created_at"`
}

func ToOutput(v *Video) Output {
	return Output{
		ID:            v.id.String(),
		Title:         v.title,
		Description:   v.description,
		YearLaunched:  v.yearLaunched,
		Duration:      v.duration,
		Rating:        v.rating,
		IsOpened:      v.isOpened,
		IsPublished:   v.isPublished,
		CategoriesID:  stringsOf(v.categoriesID),
		GenresID:      stringsOf(v.genresID),
		CastMembersID: stringsOf(v.castMembersID),
		Trailer:       mediaOutput(v, Trailer),
		Video:         mediaOutput(v, VideoFile),
		CreatedAt:     v.createdAt,
	}
}

func mediaOutput(v *Video, kind MediaKind) *MediaOutput {
	m, ok := v.media[kind]
	if !ok {
		return nil
	}
	return &MediaOutput{Name: m.name, RawLocation: m.rawLocation, EncodedLocation: m.encodedLocation, Status: string(m.status)}
}

// CreateInput 创建输入
type CreateInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	YearLaunched  int      `json:"year_launched"`
	Duration      int      `json:"duration"`
	Rating        string   `json:"rating"`
	IsOpened      bool     `json:"is_opened"`
	CategoriesID  []string `json:"categories_id"`
	GenresID      []string `json:"genres_id"`
	CastMembersID []string `json:"cast_members_id"`
}

// UpdateInput 更新输入，nil 字段保持不变
type UpdateInput struct {
	ID            string   `json:"id"`
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	YearLaunched  *int     `json:"year_launched"`
	Duration      *int     `json:"duration"`
	Rating        *string  `json:"rating"`
	IsOpened      *bool    `json:"is_opened"`
	CategoriesID  []string `json:"categories_id"`
	GenresID      []string `json:"genres_id"`
	CastMembersID []string `json:"cast_members_id"`
}

// ReplaceMediaInput 上传完成后登记原始文件位置
type ReplaceMediaInput struct {
	VideoID     string `json:"video_id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	RawLocation string `json:"raw_location"`
}

// ProcessMediaInput 编码服务回传的结果
type ProcessMediaInput struct {
	VideoID         string `json:"video_id"`
	Kind            string `json:"kind"`
	Status          string `json:"status"`
	EncodedLocation string `json:"encoded_location"`
}

// Relations 视频引用的其他聚合的仓储
type Relations struct {
	Categories  category.IRepository
	Genres      genre.IRepository
	CastMembers castmember.IRepository
}

// Service 视频用例
type Service struct {
	repo      IRepository
	relations Relations
	factory   *app.Factory
}

func NewService(repo IRepository, relations Relations, factory *app.Factory) *Service {
	return &Service{repo: repo, relations: relations, factory: factory}
}

// relationIDs 已解析的关联标识与不存在标识的消息
type relationIDs struct {
	categories  []category.CategoryID
	genres      []genre.GenreID
	castMembers []castmember.CastMemberID
	missing     map[string][]string
}

// checkRelations 只检查非 nil 的输入集合
func (s *Service) checkRelations(ctx context.Context, categories, genres, castMembers []string) (relationIDs, error) {
	out := relationIDs{missing: map[string][]string{}}
	var msgs []string
	var err error
	if categories != nil {
		if out.categories, msgs, err = category.CheckExists(ctx, s.relations.Categories, categories); err != nil {
			return out, err
		}
		out.missing["categories_id"] = msgs
	}
	if genres != nil {
		if out.genres, msgs, err = genre.CheckExists(ctx, s.relations.Genres, genres); err != nil {
			return out, err
		}
		out.missing["genres_id"] = msgs
	}
	if castMembers != nil {
		if out.castMembers, msgs, err = castmember.CheckExists(ctx, s.relations.CastMembers, castMembers); err != nil {
			return out, err
		}
		out.missing["cast_members_id"] = msgs
	}
	return out, nil
}

// relationFields 报告缺失关联时的字段顺序
var relationFields = []string{"categories_id", "genres_id", "cast_members_id"}

func (r relationIDs) report(n *validation.Notification) {
	for _, field := range relationFields {
		if msgs := r.missing[field]; len(msgs) > 0 {
			n.SetError(msgs, field)
		}
	}
}

// Create 创建视频；实体校验错误与不存在的关联一并报告
func (s *Service) Create(ctx context.Context, in CreateInput) (Output, error) {
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		rel, err := s.checkRelations(ctx, orEmpty(in.CategoriesID), orEmpty(in.GenresID), orEmpty(in.CastMembersID))
		if err != nil {
			return Output{}, err
		}
		v := Create(CreateCommand{
			Title:         in.Title,
			Description:   in.Description,
			YearLaunched:  in.YearLaunched,
			Duration:      in.Duration,
			Rating:        in.Rating,
			IsOpened:      in.IsOpened,
			CategoriesID:  rel.categories,
			GenresID:      rel.genres,
			CastMembersID: rel.castMembers,
		})
		rel.report(v.Notification())
		if v.Notification().HasErrors() {
			return Output{}, domain.EntityValidationErrorFrom(v.Notification())
		}
		if err := s.repo.Insert(ctx, v); err != nil {
			return Output{}, err
		}
		return ToOutput(v), nil
	})
}

// Update 修改视频
func (s *Service) Update(ctx context.Context, in UpdateInput) (Output, error) {
	id, err := ParseVideoID(in.ID)
	if err != nil {
		return Output{}, err
	}
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		v, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return Output{}, err
		}
		if in.Title != nil {
			v.ChangeTitle(*in.Title)
		}
		if in.Description != nil {
			v.ChangeDescription(*in.Description)
		}
		if in.YearLaunched != nil {
			v.ChangeYearLaunched(*in.YearLaunched)
		}
		if in.Duration != nil {
			v.ChangeDuration(*in.Duration)
		}
		if in.Rating != nil {
			v.ChangeRating(*in.Rating)
		}
		if in.IsOpened != nil {
			if *in.IsOpened {
				v.MarkAsOpened()
			} else {
				v.MarkAsNotOpened()
			}
		}

		rel, err := s.checkRelations(ctx, in.CategoriesID, in.GenresID, in.CastMembersID)
		if err != nil {
			return Output{}, err
		}
		if in.CategoriesID != nil {
			v.SyncCategoriesID(rel.categories)
		}
		if in.GenresID != nil {
			v.SyncGenresID(rel.genres)
		}
		if in.CastMembersID != nil {
			v.SyncCastMembersID(rel.castMembers)
		}
		rel.report(v.Notification())
		if v.Notification().HasErrors() {
			return Output{}, domain.EntityValidationErrorFrom(v.Notification())
		}
		if err := s.repo.Update(ctx, v); err != nil {
			return Output{}, err
		}
		return ToOutput(v), nil
	})
}

// ReplaceMedia 替换媒体槽位，提交后发布 video.audio_media.uploaded
func (s *Service) ReplaceMedia(ctx context.Context, in ReplaceMediaInput) (Output, error) {
	id, err := ParseVideoID(in.VideoID)
	if err != nil {
		return Output{}, err
	}
	kind, err := parseKind(in.Kind)
	if err != nil {
		return Output{}, err
	}
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		v, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return Output{}, err
		}
		v.ReplaceMedia(kind, NewAudioVideoMedia(in.Name, in.RawLocation))
		if v.Notification().HasErrors() {
			return Output{}, domain.EntityValidationErrorFrom(v.Notification())
		}
		if err := s.repo.Update(ctx, v); err != nil {
			return Output{}, err
		}
		return ToOutput(v), nil
	})
}

// ProcessMedia 登记编码结果；两个槽位均完成时视频被发布
func (s *Service) ProcessMedia(ctx context.Context, in ProcessMediaInput) (Output, error) {
	id, err := ParseVideoID(in.VideoID)
	if err != nil {
		return Output{}, err
	}
	kind, err := parseKind(in.Kind)
	if err != nil {
		return Output{}, err
	}
	status, err := ParseMediaStatus(in.Status)
	if err != nil {
		n := validation.NewNotification()
		n.AddError(err.Error(), "status")
		return Output{}, domain.EntityValidationErrorFrom(n)
	}
	if status == Completed && in.EncodedLocation == "" {
		n := validation.NewNotification()
		n.AddError("encoded_location should not be empty", "encoded_location")
		return Output{}, domain.EntityValidationErrorFrom(n)
	}
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		v, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return Output{}, err
		}
		if !v.ProcessMedia(kind, status, in.EncodedLocation) {
			v.Notification().AddError(string(kind)+" has no media to process", string(kind))
			return Output{}, domain.EntityValidationErrorFrom(v.Notification())
		}
		if err := s.repo.Update(ctx, v); err != nil {
			return Output{}, err
		}
		return ToOutput(v), nil
	})
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseVideoID(rawID)
	if err != nil {
		return err
	}
	return s.factory.Run(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, rawID string) (Output, error) {
	id, err := ParseVideoID(rawID)
	if err != nil {
		return Output{}, err
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Output{}, err
	}
	return ToOutput(v), nil
}

// List 分页查询
func (s *Service) List(ctx context.Context, in search.Input) (search.Result[Output], error) {
	params, err := NewSearchParams(in)
	if err != nil {
		return search.Result[Output]{}, err
	}
	res, err := s.repo.Search(ctx, params)
	if err != nil {
		return search.Result[Output]{}, err
	}
	return search.MapResult(res, ToOutput), nil
}

func parseKind(s string) (MediaKind, error) {
	kind, err := ParseMediaKind(s)
	if err != nil {
		n := validation.NewNotification()
		n.AddError(err.Error(), "kind")
		return "", domain.EntityValidationErrorFrom(n)
	}
	return kind, nil
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
