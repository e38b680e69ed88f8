package castmember

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

type model struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Type      string    `gorm:"column:type"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (model) TableName() string { return "cast_members" }

func toModel(c *CastMember) model {
	return model{ID: c.id.String(), Name: c.name, Type: string(c.kind), CreatedAt: c.createdAt}
}

func (m model) toEntity() (*CastMember, error) {
	id, err := ParseCastMemberID(m.ID)
	if err != nil {
		return nil, err
	}
	return Restore(id, m.Name, Type(m.Type), m.CreatedAt), nil
}

var sorting = gormrepo.Sorting{
	Table:     "cast_members",
	Fields:    SortableFields,
	Overrides: map[string]map[string]gormrepo.FieldOrder{"mysql": {"name": gormrepo.BinaryOrder}},
}

// GormRepository 关系型实现
type GormRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewGormRepository(db *gorm.DB, logger logging.Logger) *GormRepository {
	return &GormRepository{db: db, logger: logging.OrDefault(logger).WithFields(logging.String("repository", "cast_members"))}
}

func (r *GormRepository) Insert(ctx context.Context, c *CastMember) error {
	m := toModel(c)
	if err := uow.GormDB(ctx, r.db).Create(&m).Error; err != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, err, "insert cast member")
	}
	uow.Register(ctx, c)
	return nil
}

func (r *GormRepository) BulkInsert(ctx context.Context, cs []*CastMember) error {
	for _, c := range cs {
		if err := r.Insert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepository) Update(ctx context.Context, c *CastMember) error {
	res := uow.GormDB(ctx, r.db).Model(&model{}).Where("id = ?", c.AggregateID()).
		Updates(map[string]any{"name": c.name, "type": string(c.kind)})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "update cast member")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, c.AggregateID())
	}
	uow.Register(ctx, c)
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id CastMemberID) error {
	res := uow.GormDB(ctx, r.db).Where("id = ?", id.String()).Delete(&model{})
	if res.Error != nil {
		return apperrors.WrapDatabaseError(ctx, r.logger, res.Error, "delete cast member")
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(EntityName, id.String())
	}
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, id CastMemberID) (*CastMember, error) {
	var rows []model
	if err := uow.GormDB(ctx, r.db).Where("id = ?", id.String()).Limit(1).Find(&rows).Error; err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "find cast member")
	}
	if len(rows) == 0 {
		return nil, domain.NewNotFoundError(EntityName, id.String())
	}
	return rows[0].toEntity()
}

func (r *GormRepository) ExistsByIDs(ctx context.Context, ids []CastMemberID) ([]CastMemberID, []CastMemberID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	var found []string
	if err := uow.GormDB(ctx, r.db).Model(&model{}).Where("id IN ?", idStrings(ids)).Pluck("id", &found).Error; err != nil {
		return nil, nil, apperrors.WrapDatabaseError(ctx, r.logger, err, "check cast members")
	}
	e, ne := splitExisting(ids, found)
	return e, ne, nil
}

func (r *GormRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*CastMember], error) {
	q := uow.GormDB(ctx, r.db).Model(&model{})
	if f := params.Filter(); f != nil {
		if f.Name != "" {
			q = gormrepo.Contains(q, "cast_members.name", f.Name)
		}
		if f.Type != "" {
			q = q.Where("cast_members.type = ?", string(f.Type))
		}
	}
	order := sorting.Clause(q.Dialector.Name(), params.Sort(), params.SortDir())
	rows, total, err := gormrepo.Paginate[model](q, order, params.Offset(), params.Limit())
	if err != nil {
		return search.Result[*CastMember]{}, apperrors.WrapDatabaseError(ctx, r.logger, err, "search cast members")
	}
	items := make([]*CastMember, 0, len(rows))
	for _, m := range rows {
		c, err := m.toEntity()
		if err != nil {
			return search.Result[*CastMember]{}, err
		}
		items = append(items, c)
	}
	return search.NewResult(items, int(total), params.Page(), params.PerPage()), nil
}

var _ IRepository = (*GormRepository)(nil)
