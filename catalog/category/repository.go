package category

import (
	"context"
	"strings"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

// SortableFields 可排序字段
var SortableFields = []string{"name", "created_at"}

// Filter 查询过滤条件
type Filter struct {
	// Name 名称子串，大小写不敏感
	Name string
}

// ParseFilter 接受字符串（按名称过滤）或 {"name": "..."}
func ParseFilter(raw any, n *validation.Notification) *Filter {
	if s, ok := search.AsString(raw); ok {
		return &Filter{Name: s}
	}
	m, ok := search.AsMap(raw)
	if !ok {
		return nil
	}
	name, ok := search.AsString(m["name"])
	if !ok {
		return nil
	}
	return &Filter{Name: name}
}

// NewSearchParams 由原始输入构造查询参数
func NewSearchParams(in search.Input) (search.Params[Filter], error) {
	return search.NewParams(in, ParseFilter)
}

// IRepository 分类仓储
//
// 写操作需把聚合登记到 ctx 中的工作单元。
type IRepository interface {
	Insert(ctx context.Context, c *Category) error
	BulkInsert(ctx context.Context, cs []*Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id CategoryID) error
	FindByID(ctx context.Context, id CategoryID) (*Category, error)
	FindByIDs(ctx context.Context, ids []CategoryID) ([]*Category, error)
	ExistsByIDs(ctx context.Context, ids []CategoryID) (exists, notExists []CategoryID, err error)
	Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Category], error)
}

func matches(c *Category, f *Filter) bool {
	return f.Name == "" || strings.Contains(strings.ToLower(c.name), strings.ToLower(f.Name))
}

// CheckExists 解析并校验分类存在
//
// 不存在的 ID 以 "Category not found using ID: <id>" 形式返回，由调用方写入通知的 categories_id 字段。
func CheckExists(ctx context.Context, repo IRepository, raw []string) ([]CategoryID, []string, error) {
	ids, err := ParseCategoryIDs(raw)
	if err != nil {
		return nil, nil, err
	}
	_, notExists, err := repo.ExistsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	messages := make([]string, 0, len(notExists))
	for _, id := range notExists {
		messages = append(messages, domain.NotFoundMessage(EntityName, id.String()))
	}
	return ids, messages, nil
}
