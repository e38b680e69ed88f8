package category

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
	apperrors "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/errors"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// Model categories 表映射
type Model struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Model) TableName() string { return "categories" }

// ToModel 聚合到表行
func ToModel(c *Category) Model {
	return Model{
		ID:          c.id.String(),
		Name:        c.name,
		Description: c.description,
		IsActive:    c.isActive,
		CreatedAt:   c.createdAt,
	}
}

// ToEntity 表行到聚合
func (m Model) ToEntity() (*Category, error) {
	id, err := ParseCategoryID(m.ID)
	if err != nil {
		return nil, err
	}
	return Restore(id, m.Name, m.Description, m.IsActive, m.CreatedAt), nil
}

var sorting = gormrepo.Sorting{
	Table:     "categories",
	Fields:    SortableFields,
	Overrides: map[string]map[string]gormrepo.FieldOrder{"mysql": {"name": gormrepo.BinaryOrder}},
}

// GormRepository 关系型实现，写操作加入 ctx 中工作单元的事务
type GormRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

// NewGormRepository 创建仓储
func NewGormRepository(db *gorm.DB, logger logging.Logger) *GormRepository {
	return &GormRepository{db: db, logger: logging.OrDefault(logger).WithFields(logging.String("repository", "categories"))}
}

func (r *GormRepository) conn(ctx context.Context) *gorm.DB {
	return uow.GormDB(ctx, r.db)
}

func (r *GormRepository) Insert(ctx context.Context, c *Category) error {
	m := ToModel(c)
	if err := r.conn(ctx).Create(&m).Error; err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "insert category")
	}
	uow.Register(ctx, c)
	return nil
}

func (r *GormRepository) BulkInsert(ctx context.Context, cs []*Category) error {
	if len(cs) == 0 {
		return nil
	}
	rows := make([]Model, len(cs))
	for i, c := range cs {
		rows[i] = ToModel(c)
	}
	if err := r.conn(ctx).Create(&rows).Error; err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "bulk insert categories")
	}
	for _, c := range cs {
		uow.Register(ctx, c)
	}
	return nil
}

func (r *GormRepository) Update(ctx context.Context, c *Category) error {
	res := r.conn(ctx).Model(&Model{}).Where("id = ?", c.AggregateID()).Updates(map[string]any{
		"name":        c.name,
		"description": c.description,
		"is_active":   c.isActive,
	})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "update category")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, c.AggregateID())
	}
	uow.Register(ctx, c)
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id CategoryID) error {
	res := r.conn(ctx).Where("id = ?", id.String()).Delete(&Model{})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "delete category")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, id.String())
	}
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, id CategoryID) (*Category, error) {
	var rows []Model
	if err := r.conn(ctx).Where("id = ?", id.String()).Limit(1).Find(&rows).Error; err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "find category")
	}
	if len(rows) == 0 {
		return nil, domain.NewNotFoundError(EntityName, id.String())
	}
	return rows[0].ToEntity()
}

func (r *GormRepository) FindByIDs(ctx context.Context, ids []CategoryID) ([]*Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []Model
	if err := r.conn(ctx).Where("id IN ?", idStrings(ids)).Find(&rows).Error; err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "find categories")
	}
	rows = gormrepo.ReorderByIDs(rows, idStrings(ids), func(m Model) string { return m.ID })
	return toEntities(rows)
}

func (r *GormRepository) ExistsByIDs(ctx context.Context, ids []CategoryID) ([]CategoryID, []CategoryID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	var found []string
	if err := r.conn(ctx).Model(&Model{}).Where("id IN ?", idStrings(ids)).Pluck("id", &found).Error; err != nil {
		return nil, nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "check categories")
	}
	return splitExisting(ids, found)
}

func (r *GormRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Category], error) {
	q := r.conn(ctx).Model(&Model{})
	if f := params.Filter(); f != nil && f.Name != "" {
		q = gormrepo.Contains(q, "categories.name", f.Name)
	}
	order := sorting.Clause(q.Dialector.Name(), params.Sort(), params.SortDir())
	rows, total, err := gormrepo.Paginate[Model](q, order, params.Offset(), params.Limit())
	if err != nil {
		return search.Result[*Category]{}, apperrors.WrapDatabaseError(ctx, r.logger, err, "search categories")
	}
	items, err := toEntities(rows)
	if err != nil {
		return search.Result[*Category]{}, err
	}
	return search.NewResult(items, int(total), params.Page(), params.PerPage()), nil
}

func toEntities(rows []Model) ([]*Category, error) {
	out := make([]*Category, 0, len(rows))
	for _, m := range rows {
		c, err := m.ToEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func splitExisting(ids []CategoryID, found []string) (exists, notExists []CategoryID, err error) {
	set := make(map[string]struct{}, len(found))
	for _, f := range found {
		set[f] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := set[id.String()]; ok {
			exists = append(exists, id)
		} else {
			notExists = append(notExists, id)
		}
	}
	return exists, notExists, nil
}

var _ IRepository = (*GormRepository)(nil)
