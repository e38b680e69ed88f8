package castmember

import (
	"context"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/memrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

// MemoryRepository 内存实现
type MemoryRepository struct {
	store *memrepo.Repository[*CastMember, Filter]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: memrepo.New(memrepo.Config[*CastMember, Filter]{
		Entity: EntityName,
		Sortable: map[string]memrepo.Comparator[*CastMember]{
			"name":       memrepo.CompareString((*CastMember).Name),
			"created_at": memrepo.CompareTime((*CastMember).CreatedAt),
		},
		Filter:    matches,
		CreatedAt: (*CastMember).CreatedAt,
		Clone:     (*CastMember).clone,
	})}
}

func (r *MemoryRepository) Insert(ctx context.Context, c *CastMember) error {
	return r.store.Insert(ctx, c)
}

func (r *MemoryRepository) BulkInsert(ctx context.Context, cs []*CastMember) error {
	return r.store.BulkInsert(ctx, cs)
}

func (r *MemoryRepository) Update(ctx context.Context, c *CastMember) error {
	return r.store.Update(ctx, c)
}

func (r *MemoryRepository) Delete(ctx context.Context, id CastMemberID) error {
	return r.store.Delete(ctx, id.String())
}

func (r *MemoryRepository) FindByID(ctx context.Context, id CastMemberID) (*CastMember, error) {
	return r.store.FindByID(ctx, id.String())
}

func (r *MemoryRepository) ExistsByIDs(ctx context.Context, ids []CastMemberID) ([]CastMemberID, []CastMemberID, error) {
	exists, _, err := r.store.ExistsByIDs(ctx, idStrings(ids))
	if err != nil {
		return nil, nil, err
	}
	e, ne := splitExisting(ids, exists)
	return e, ne, nil
}

func (r *MemoryRepository) Search(ctx context.Context, params search.Params[Filter]) (search.Result[*CastMember], error) {
	return r.store.Search(ctx, params)
}

var _ IRepository = (*MemoryRepository)(nil)
