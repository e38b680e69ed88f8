package video

import (
	"context"
	"strings"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

var SortableFields = []string{"title", "created_at"}

// Filter 标题子串；每个关联集合内任一匹配，集合之间同时满足
type Filter struct {
	Title         string
	CategoriesID  []category.CategoryID
	GenresID      []genre.GenreID
	CastMembersID []castmember.CastMemberID
}

func (f *Filter) hasRelations() bool {
	return len(f.CategoriesID) > 0 || len(f.GenresID) > 0 || len(f.CastMembersID) > 0
}

// ParseFilter 解析 {"title", "categories_id", "genres_id", "cast_members_id"}
func ParseFilter(raw any, n *validation.Notification) *Filter {
	m, ok := search.AsMap(raw)
	if !ok {
		return nil
	}
	f := &Filter{}
	if title, ok := search.AsString(m["title"]); ok {
		f.Title = title
	}
	if raw, ok := search.AsStringSlice(m["categories_id"]); ok {
		ids, err := category.ParseCategoryIDs(raw)
		if err != nil {
			n.AddError(err.Error(), "categories_id")
		}
		f.CategoriesID = ids
	}
	if raw, ok := search.AsStringSlice(m["genres_id"]); ok {
		ids, err := genre.ParseGenreIDs(raw)
		if err != nil {
			n.AddError(err.Error(), "genres_id")
		}
		f.GenresID = ids
	}
	if raw, ok := search.AsStringSlice(m["cast_members_id"]); ok {
		ids, err := castmember.ParseCastMemberIDs(raw)
		if err != nil {
			n.AddError(err.Error(), "cast_members_id")
		}
		f.CastMembersID = ids
	}
	if f.Title == "" && !f.hasRelations() {
		return nil
	}
	return f
}

func NewSearchParams(in search.Input) (search.Params[Filter], error) {
	return search.NewParams(in, ParseFilter)
}

// IRepository 视频仓储
type IRepository interface {
	Insert(ctx context.Context, v *Video) error
	Update(ctx context.Context, v *Video) error
	Delete(ctx context.Context, id VideoID) error
	FindByID(ctx context.Context, id VideoID) (*Video, error)
	Search(ctx context.Context, params search.Params[Filter]) (search.Result[*Video], error)
}

func matches(v *Video, f *Filter) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(v.title), strings.ToLower(f.Title)) {
		return false
	}
	return anyOf(v.categoriesID, f.CategoriesID) &&
		anyOf(v.genresID, f.GenresID) &&
		anyOf(v.castMembersID, f.CastMembersID)
}

// anyOf wanted 为空时视为不过滤
func anyOf[T comparable](have, wanted []T) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
