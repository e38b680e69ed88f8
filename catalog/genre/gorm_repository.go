package genre

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
	apperrors "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/errors"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

type model struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (model) TableName() string { return "genres" }

var (
	categoryLink = gormrepo.Link{Table: "category_genre", OwnerCol: "genre_id", RelatedCol: "category_id"}
	sorting      = gormrepo.Sorting{
		Table:     "genres",
		Fields:    SortableFields,
		Overrides: map[string]map[string]gormrepo.FieldOrder{"mysql": {"name": gormrepo.BinaryOrder}},
	}
)

// GormRepository 关系型实现，关联分类保存在 category_genre
type GormRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewGormRepository(db *gorm.DB, logger logging.Logger) *GormRepository {
	return &GormRepository{db: db, logger: logging.OrDefault(logger).WithFields(logging.String("repository", "genres"))}
}

func (r *GormRepository) Insert(ctx context.Context, g *Genre) error {
	tx := uow.GormDB(ctx, r.db)
	m := model{ID: g.id.String(), Name: g.name, IsActive: g.isActive, CreatedAt: g.createdAt}
	if err := tx.Create(&m).Error; err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "insert genre")
	}
	if err := categoryLink.Replace(tx, m.ID, categoryStrings(g.categoriesID)); err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "insert genre categories")
	}
	uow.Register(ctx, g)
	return nil
}

func (r *GormRepository) Update(ctx context.Context, g *Genre) error {
	tx := uow.GormDB(ctx, r.db)
	res := tx.Model(&model{}).Where("id = ?", g.AggregateID()).
		Updates(map[string]any{"name": g.name, "is_active": g.isActive})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "update genre")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, g.AggregateID())
	}
	if err := categoryLink.Replace(tx, g.AggregateID(), categoryStrings(g.categoriesID)); err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "update genre categories")
	}
	uow.Register(ctx, g)
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id GenreID) error {
	res := uow.GormDB(ctx, r.db).Where("id = ?", id.String()).Delete(&model{})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "delete genre")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, id.String())
	}
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, id GenreID) (*Genre, error) {
	items, err := r.load(ctx, []string{id.String()})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewNotFoundError(EntityName, id.String())
	}
	return items[0], nil
}

func (r *GormRepository) ExistsByIDs(ctx context.Context, ids []GenreID) ([]GenreID, []GenreID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	var found []string
	if err := uow.GormDB(ctx, r.db).Model(&model{}).Where("id IN ?", idStrings(ids)).Pluck("id", &found).Error; err != nil {
		return nil, nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "check genres")
	}
	e, ne := splitExisting(ids, found)
	return e, ne, nil
}

// Search 按分类过滤时走去重 id 两阶段查询
func (r *GormRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Genre], error) {
	q := uow.GormDB(ctx, r.db).Model(&model{})
	f := params.Filter()
	if f != nil && f.Name != "" {
		q = gormrepo.Contains(q, "genres.name", f.Name)
	}
	order := sorting.Clause(q.Dialector.Name(), params.Sort(), params.SortDir())

	var ids []string
	var total int64
	var err error
	if f != nil && len(f.CategoriesID) > 0 {
		q = categoryLink.Join(q, "genres.id", categoryStrings(f.CategoriesID))
		ids, total, err = gormrepo.DistinctIDs(q, "genres.id", order, params.Offset(), params.Limit())
	} else {
		var rows []model
		rows, total, err = gormrepo.Paginate[model](q, order, params.Offset(), params.Limit())
		for _, m := range rows {
			ids = append(ids, m.ID)
		}
	}
	if err != nil {
		return search.Result[*Genre]{}, apperrors.WrapDatabaseError(ctx, r.logger, err, "search genres")
	}

	items, err := r.load(ctx, ids)
	if err != nil {
		return search.Result[*Genre]{}, err
	}
	return search.NewResult(items, int(total), params.Page(), params.PerPage()), nil
}

// load 按 ids 顺序读取完整聚合（含关联分类）
func (r *GormRepository) load(ctx context.Context, ids []string) ([]*Genre, error) {
	if len(ids) == 0 {
		return []*Genre{}, nil
	}
	tx := uow.GormDB(ctx, r.db)
	var rows []model
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "load genres")
	}
	links, err := categoryLink.Load(tx, ids)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "load genre categories")
	}
	rows = gormrepo.ReorderByIDs(rows, ids, func(m model) string { return m.ID })

	out := make([]*Genre, 0, len(rows))
	for _, m := range rows {
		id, err := ParseGenreID(m.ID)
		if err != nil {
			return nil, err
		}
		categoriesID, err := category.ParseCategoryIDs(links[m.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, Restore(id, m.Name, categoriesID, m.IsActive, m.CreatedAt))
	}
	return out, nil
}

func categoryStrings(ids []category.CategoryID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

var _ IRepository = (*GormRepository)(nil)
