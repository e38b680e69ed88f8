package castmember

import (
	"context"
	"fmt"
	"strings"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

var SortableFields = []string{"name", "created_at"}

// Filter 名称子串与类型，均可为空
type Filter struct {
	Name string
	Type Type
}

// ParseFilter 解析 {"name": "...", "type": "director|actor"}；非法类型记为 type 字段错误
func ParseFilter(raw any, n *validation.Notification) *Filter {
	m, ok := search.AsMap(raw)
	if !ok {
		return nil
	}
	f := &Filter{}
	if name, ok := search.AsString(m["name"]); ok {
		f.Name = name
	}
	if t, ok := search.AsString(m["type"]); ok {
		switch Type(strings.ToLower(t)) {
		case Director, Actor:
			f.Type = Type(strings.ToLower(t))
		default:
			n.AddError(fmt.Sprintf("Invalid cast member type: %s", t), "type")
		}
	}
	if f.Name == "" && f.Type == "" {
		return nil
	}
	return f
}

func NewSearchParams(in search.Input) (search.Params[Filter], error) {
	return search.NewParams(in, ParseFilter)
}

// IRepository 演职人员仓储
type IRepository interface {
	Insert(ctx context.Context, c *CastMember) error
	BulkInsert(ctx context.Context, cs []*CastMember) error
	Update(ctx context.Context, c *CastMember) error
	Delete(ctx context.Context, id CastMemberID) error
	FindByID(ctx context.Context, id CastMemberID) (*CastMember, error)
	ExistsByIDs(ctx context.Context, ids []CastMemberID) (exists, notExists []CastMemberID, err error)
	Search(ctx context.Context, params search.Params[Filter]) (search.Result[*CastMember], error)
}

func matches(c *CastMember, f *Filter) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(c.name), strings.ToLower(f.Name)) {
		return false
	}
	return f.Type == "" || c.kind == f.Type
}

func idStrings(ids []CastMemberID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func splitExisting(ids []CastMemberID, found []string) (exists, notExists []CastMemberID) {
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

// CheckExists 解析并校验演职人员存在，返回不存在 ID 的消息
func CheckExists(ctx context.Context, repo IRepository, raw []string) ([]CastMemberID, []string, error) {
	ids, err := ParseCastMemberIDs(raw)
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
