package genre

import (
	"context"
	"strings"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

var SortableFields = []string{"name", "created_at"}

// Filter 名称子串与关联分类（任一匹配）
type Filter struct {
	Name         string
	CategoriesID []category.CategoryID
}

// ParseFilter 解析 {"name": "...", "categories_id": [...]}；空的 categories_id 被丢弃
func ParseFilter(raw any, n *validation.Notification) *Filter {
	m, ok := search.AsMap(raw)
	if !ok {
		return nil
	}
	f := &Filter{}
	if name, ok := search.AsString(m["name"]); ok {
		f.Name = name
	}
	if rawIDs, ok := search.AsStringSlice(m["categories_id"]); ok {
		ids, err := category.ParseCategoryIDs(rawIDs)
		if err != nil {
			n.AddError(err.Error(), "categories_id")
		}
		f.CategoriesID = ids
	}
	if f.Name == "" && len(f.CategoriesID) == 0 {
		return nil
	}
	return f
}

func NewSearchParams(in search.Input) (search.Params[Filter], error) {
	return search.NewParams(in, ParseFilter)
}

// IRepository 类型仓储
type IRepository interface {
	Insert(ctx context.Context, g *Genre) error
	Update(ctx context.Context, g *Genre) error
	Delete(ctx context.Context, id GenreID) error
	FindByID(ctx context.Context, id GenreID) (*Genre, error)
	ExistsByIDs(ctx context.Context, ids []GenreID) (exists, notExists []GenreID, err error)
	Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Genre], error)
}

func matches(g *Genre, f *Filter) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(g.name), strings.ToLower(f.Name)) {
		return false
	}
	return len(f.CategoriesID) == 0 || g.HasAnyCategory(f.CategoriesID)
}

// CheckExists 解析并校验类型存在，返回不存在 ID 的消息
func CheckExists(ctx context.Context, repo IRepository, raw []string) ([]GenreID, []string, error) {
	ids, err := ParseGenreIDs(raw)
	if err != nil {
		return nil, nil, err
	}
	_, notExists, err := repo.ExistsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	var messages []string
	for _, id := range notExists {
		messages = append(messages, domain.NotFoundMessage(EntityName, id.String()))
	}
	return ids, messages, nil
}

func idStrings(ids []GenreID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func splitExisting(ids []GenreID, found []string) (exists, notExists []GenreID) {
	set := make(map[string]bool, len(found))
	for _, f := range found {
		set[f] = true
	}
	for _, id := range ids {
		if set[id.String()] {
			exists = append(exists, id)
		} else {
			notExists = append(notExists, id)
		}
	}
	return exists, notExists
}
