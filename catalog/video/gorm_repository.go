package video

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
	apperrors "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/errors"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

type videoModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Title        string    `gorm:"column:title"`
	Description  string    `gorm:"column:description"`
	YearLaunched int       `gorm:"column:year_launched"`
	Duration     int       `gorm:"column:duration"`
	Rating       string    `gorm:"column:rating"`
	IsOpened     bool      `gorm:"column:is_opened"`
	IsPublished  bool      `gorm:"column:is_published"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (videoModel) TableName() string { return "videos" }

type mediaModel struct {
	VideoID         string  `gorm:"column:video_id;primaryKey"`
	Kind            string  `gorm:"column:kind;primaryKey"`
	Name            string  `gorm:"column:name"`
	RawLocation     string  `gorm:"column:raw_location"`
	EncodedLocation *string `gorm:"column:encoded_location"`
	Status          string  `gorm:"column:status"`
}

func (mediaModel) TableName() string { return "audio_video_medias" }

var (
	categoryLink   = gormrepo.Link{Table: "category_video", OwnerCol: "video_id", RelatedCol: "category_id"}
	genreLink      = gormrepo.Link{Table: "genre_video", OwnerCol: "video_id", RelatedCol: "genre_id"}
	castMemberLink = gormrepo.Link{Table: "cast_member_video", OwnerCol: "video_id", RelatedCol: "cast_member_id"}

	sorting = gormrepo.Sorting{
		Table:     "videos",
		Fields:    SortableFields,
		Overrides: map[string]map[string]gormrepo.FieldOrder{"mysql": {"title": gormrepo.BinaryOrder}},
	}
)

// GormRepository 关系型实现
//
// 关联集合分别保存在 category_video、genre_video、cast_member_video，媒体槽位保存在 audio_video_medias。
type GormRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewGormRepository(db *gorm.DB, logger logging.Logger) *GormRepository {
	return &GormRepository{db: db, logger: logging.OrDefault(logger).WithFields(logging.String("repository", "videos"))}
}

func toModel(v *Video) videoModel {
	return videoModel{
		ID:           v.id.String(),
		Title:        v.title,
		Description:  v.description,
		YearLaunched: v.yearLaunched,
		Duration:     v.duration,
		Rating:       v.rating,
		IsOpened:     v.isOpened,
		IsPublished:  v.isPublished,
		CreatedAt:    v.createdAt,
	}
}

func (r *GormRepository) Insert(ctx context.Context, v *Video) error {
	tx := uow.GormDB(ctx, r.db)
	m := toModel(v)
	if err := tx.Create(&m).Error; err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "insert video")
	}
	if err := r.saveRelations(tx, v); err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "insert video relations")
	}
	uow.Register(ctx, v)
	return nil
}

func (r *GormRepository) Update(ctx context.Context, v *Video) error {
	tx := uow.GormDB(ctx, r.db)
	m := toModel(v)
	res := tx.Model(&videoModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"title":         m.Title,
		"description":   m.Description,
		"year_launched": m.YearLaunched,
		"duration":      m.Duration,
		"rating":        m.Rating,
		"is_opened":     m.IsOpened,
		"is_published":  m.IsPublished,
	})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "update video")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, m.ID)
	}
	if err := r.saveRelations(tx, v); err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "update video relations")
	}
	uow.Register(ctx, v)
	return nil
}

func (r *GormRepository) saveRelations(tx *gorm.DB, v *Video) error {
	id := v.AggregateID()
	if err := categoryLink.Replace(tx, id, stringsOf(v.categoriesID)); err != nil {
		return err
	}
	if err := genreLink.Replace(tx, id, stringsOf(v.genresID)); err != nil {
		return err
	}
	if err := castMemberLink.Replace(tx, id, stringsOf(v.castMembersID)); err != nil {
		return err
	}
	if err := tx.Where("video_id = ?", id).Delete(&mediaModel{}).Error; err != nil {
		return err
	}
	var rows []mediaModel
	for _, k := range MediaKinds {
		m, ok := v.media[k]
		if !ok {
			continue
		}
		rows = append(rows, mediaModel{
			VideoID:         id,
			Kind:            string(k),
			Name:            m.name,
			RawLocation:     m.rawLocation,
			EncodedLocation: m.encodedLocation,
			Status:          string(m.status),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *GormRepository) Delete(ctx context.Context, id VideoID) error {
	res := uow.GormDB(ctx, r.db).Where("id = ?", id.String()).Delete(&videoModel{})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "delete video")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, id.String())
	}
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, id VideoID) (*Video, error) {
	items, err := r.load(ctx, []string{id.String()})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewNotFoundError(EntityName, id.String())
	}
	return items[0], nil
}

// Search 带关联过滤时先取去重 id 页，再按 id 读取完整聚合
func (r *GormRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Video], error) {
	q := uow.GormDB(ctx, r.db).Model(&videoModel{})
	f := params.Filter()
	if f != nil && f.Title != "" {
		q = gormrepo.Contains(q, "videos.title", f.Title)
	}
	order := sorting.Clause(q.Dialector.Name(), params.Sort(), params.SortDir())

	var ids []string
	var total int64
	var err error
	if f != nil && f.hasRelations() {
		if len(f.CategoriesID) > 0 {
			q = categoryLink.Join(q, "videos.id", stringsOf(f.CategoriesID))
		}
		if len(f.GenresID) > 0 {
			q = genreLink.Join(q, "videos.id", stringsOf(f.GenresID))
		}
		if len(f.CastMembersID) > 0 {
			q = castMemberLink.Join(q, "videos.id", stringsOf(f.CastMembersID))
		}
		ids, total, err = gormrepo.DistinctIDs(q, "videos.id", order, params.Offset(), params.Limit())
	} else {
		var rows []videoModel
		rows, total, err = gormrepo.Paginate[videoModel](q, order, params.Offset(), params.Limit())
		for _, m := range rows {
			ids = append(ids, m.ID)
		}
	}
	if err != nil {
		return search.Result[*Video]{}, apperrors.WrapDatabaseError(ctx, r.logger, err, "search videos")
	}

	items, err := r.load(ctx, ids)
	if err != nil {
		return search.Result[*Video]{}, err
	}
	return search.NewResult(items, int(total), params.Page(), params.PerPage()), nil
}

func (r *GormRepository) load(ctx context.Context, ids []string) ([]*Video, error) {
	if len(ids) == 0 {
		return []*Video{}, nil
	}
	tx := uow.GormDB(ctx, r.db)
	var rows []videoModel
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "load videos")
	}
	categories, err := categoryLink.Load(tx, ids)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "load video categories")
	}
	genres, err := genreLink.Load(tx, ids)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "load video genres")
	}
	castMembers, err := castMemberLink.Load(tx, ids)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "load video cast members")
	}
	var medias []mediaModel
	if err := tx.Where("video_id IN ?", ids).Find(&medias).Error; err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "load video medias")
	}
	mediaByVideo := make(map[string]map[MediaKind]AudioVideoMedia, len(ids))
	for _, m := range medias {
		if mediaByVideo[m.VideoID] == nil {
			mediaByVideo[m.VideoID] = map[MediaKind]AudioVideoMedia{}
		}
		mediaByVideo[m.VideoID][MediaKind(m.Kind)] = RestoreAudioVideoMedia(m.Name, m.RawLocation, m.EncodedLocation, MediaStatus(m.Status))
	}

	rows = gormrepo.ReorderByIDs(rows, ids, func(m videoModel) string { return m.ID })
	out := make([]*Video, 0, len(rows))
	for _, m := range rows {
		id, err := ParseVideoID(m.ID)
		if err != nil {
			return nil, err
		}
		categoriesID, err := category.ParseCategoryIDs(categories[m.ID])
		if err != nil {
			return nil, err
		}
		genresID, err := genre.ParseGenreIDs(genres[m.ID])
		if err != nil {
			return nil, err
		}
		castMembersID, err := castmember.ParseCastMemberIDs(castMembers[m.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, Restore(Snapshot{
			ID:            id,
			Title:         m.Title,
			Description:   m.Description,
			YearLaunched:  m.YearLaunched,
			Duration:      m.Duration,
			Rating:        m.Rating,
			IsOpened:      m.IsOpened,
			IsPublished:   m.IsPublished,
			CategoriesID:  categoriesID,
			GenresID:      genresID,
			CastMembersID: castMembersID,
			Media:         mediaByVideo[m.ID],
			CreatedAt:     m.CreatedAt,
		}))
	}
	return out, nil
}

var _ IRepository = (*GormRepository)(nil)
