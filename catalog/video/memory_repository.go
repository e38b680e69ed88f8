package video

import (
	"context"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/memrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

// MemoryRepository 内存实现
type MemoryRepository struct {
	store *memrepo.Repository[*Video, Filter]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: memrepo.New(memrepo.Config[*Video, Filter]{
		Entity: EntityName,
		Sortable: map[string]memrepo.Comparator[*Video]{
			"title":      memrepo.CompareString((*Video).Title),
			"created_at": memrepo.CompareTime((*Video).CreatedAt),
		},
		Filter:    matches,
		CreatedAt: (*Video).CreatedAt,
		Clone:     (*Video).clone,
	})}
}

func (r *MemoryRepository) Insert(ctx context.Context, v *Video) error { return r.store.Insert(ctx, v) }
func (r *MemoryRepository) Update(ctx context.Context, v *Video) error { return r.store.Update(ctx, v) }

func (r *MemoryRepository) Delete(ctx context.Context, id VideoID) error {
	return r.store.Delete(ctx, id.String())
}

func (r *MemoryRepository) FindByID(ctx context.Context, id VideoID) (*Video, error) {
	return r.store.FindByID(ctx, id.String())
}

func (r *MemoryRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Video], error) {
	return r.store.Search(ctx, params)
}

var _ IRepository = (*MemoryRepository)(nil)
