package genre

import (
	"context"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/memrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

// MemoryRepository 内存实现
type MemoryRepository struct {
	store *memrepo.Repository[*Genre, Filter]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: memrepo.New(memrepo.Config[*Genre, Filter]{
		Entity: EntityName,
		Sortable: map[string]memrepo.Comparator[*Genre]{
			"name":       memrepo.CompareString((*Genre).Name),
			"created_at": memrepo.CompareTime((*Genre).CreatedAt),
		},
		Filter:    matches,
		CreatedAt: (*Genre).CreatedAt,
		Clone:     (*Genre).clone,
	})}
}

func (r *MemoryRepository) Insert(ctx context.Context, g *Genre) error { return r.store.Insert(ctx, g) }
func (r *MemoryRepository) Update(ctx context.Context, g *Genre) error { return r.store.Update(ctx, g) }

func (r *MemoryRepository) Delete(ctx context.Context, id GenreID) error {
	return r.store.Delete(ctx, id.String())
}

func (r *MemoryRepository) FindByID(ctx context.Context, id GenreID) (*Genre, error) {
	return r.store.FindByID(ctx, id.String())
}

func (r *MemoryRepository) ExistsByIDs(ctx context.Context, ids []GenreID) ([]GenreID, []GenreID, error) {
	exists, _, err := r.store.ExistsByIDs(ctx, idStrings(ids))
	if err != nil {
		return nil, nil, err
	}
	e, ne := splitExisting(ids, exists)
	return e, ne, nil
}

func (r *MemoryRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Genre], error) {
	return r.store.Search(ctx, params)
}

var _ IRepository = (*MemoryRepository)(nil)
