package category

import (
	"context"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/memrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

// MemoryRepository 内存实现
type MemoryRepository struct {
	store *memrepo.Repository[*Category, Filter]
}

// NewMemoryRepository 创建内存仓储
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: memrepo.New(memrepo.Config[*Category, Filter]{
		Entity: EntityName,
		Sortable: map[string]memrepo.Comparator[*Category]{
			"name":       memrepo.CompareString((*Category).Name),
			"created_at": memrepo.CompareTime((*Category).CreatedAt),
		},
		Filter:    matches,
		CreatedAt: (*Category).CreatedAt,
		Clone:     (*Category).clone,
	})}
}

func (r *MemoryRepository) Insert(ctx context.Context, c *Category) error {
	return r.store.Insert(ctx, c)
}

func (r *MemoryRepository) BulkInsert(ctx context.Context, cs []*Category) error {
	return r.store.BulkInsert(ctx, cs)
}

func (r *MemoryRepository) Update(ctx context.Context, c *Category) error {
	return r.store.Update(ctx, c)
}

func (r *MemoryRepository) Delete(ctx context.Context, id CategoryID) error {
	return r.store.Delete(ctx, id.String())
}

func (r *MemoryRepository) FindByID(ctx context.Context, id CategoryID) (*Category, error) {
	return r.store.FindByID(ctx, id.String())
}

func (r *MemoryRepository) FindByIDs(ctx context.Context, ids []CategoryID) ([]*Category, error) {
	return r.store.FindByIDs(ctx, idStrings(ids))
}

func (r *MemoryRepository) ExistsByIDs(ctx context.Context, ids []CategoryID) ([]CategoryID, []CategoryID, error) {
	exists, notExists, err := r.store.ExistsByIDs(ctx, idStrings(ids))
	if err != nil {
		return nil, nil, err
	}
	return mustIDs(exists), mustIDs(notExists), nil
}

func (r *MemoryRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Category], error) {
	return r.store.Search(ctx, params)
}

func idStrings(ids []CategoryID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// mustIDs 仅用于仓储内部已校验过的 ID
func mustIDs(values []string) []CategoryID {
	out := make([]CategoryID, 0, len(values))
	for _, v := range values {
		out = append(out, CategoryID{entity.MustParseUuid(v)})
	}
	return out
}

var _ IRepository = (*MemoryRepository)(nil)
