package genre

import (
	"context"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

// CategoryRef 输出中的关联分类
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Output 用例输出
type Output struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CategoriesID []string      `json:"categories_id"`
	Categories   []CategoryRef `json:"categories"`
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
}

// CreateInput 创建输入
type CreateInput struct {
	Name         string   `json:"name"`
	CategoriesID []string `json:"categories_id"`
	IsActive     *bool    `json:"is_active"`
}

// UpdateInput 更新输入，nil 字段保持不变
type UpdateInput struct {
	ID           string   `json:"id"`
	Name         *string  `json:"name"`
	CategoriesID []string `json:"categories_id"`
	IsActive     *bool    `json:"is_active"`
}

// Service 类型用例
type Service struct {
	repo       IRepository
	categories category.IRepository
	factory    *app.Factory
}

func NewService(repo IRepository, categories category.IRepository, factory *app.Factory) *Service {
	return &Service{repo: repo, categories: categories, factory: factory}
}

// Create 创建类型；实体校验错误与不存在的分类一并报告
func (s *Service) Create(ctx context.Context, in CreateInput) (Output, error) {
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		categoriesID, missing, err := category.CheckExists(ctx, s.categories, in.CategoriesID)
		if err != nil {
			return Output{}, err
		}
		g := Create(CreateCommand{Name: in.Name, CategoriesID: categoriesID, IsActive: in.IsActive})
		if len(missing) > 0 {
			g.Notification().SetError(missing, "categories_id")
		}
		if g.Notification().HasErrors() {
			return Output{}, domain.EntityValidationErrorFrom(g.Notification())
		}
		if err := s.repo.Insert(ctx, g); err != nil {
			return Output{}, err
		}
		return s.output(ctx, g)
	})
}

// Update 修改类型
func (s *Service) Update(ctx context.Context, in UpdateInput) (Output, error) {
	id, err := ParseGenreID(in.ID)
	if err != nil {
		return Output{}, err
	}
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		g, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return Output{}, err
		}
		if in.Name != nil {
			g.ChangeName(*in.Name)
		}
		if in.CategoriesID != nil {
			categoriesID, missing, err := category.CheckExists(ctx, s.categories, in.CategoriesID)
			if err != nil {
				return Output{}, err
			}
			g.SyncCategoriesID(categoriesID)
			if len(missing) > 0 {
				g.Notification().SetError(missing, "categories_id")
			}
		}
		if in.IsActive != nil {
			if *in.IsActive {
				g.Activate()
			} else {
				g.Deactivate()
			}
		}
		if g.Notification().HasErrors() {
			return Output{}, domain.EntityValidationErrorFrom(g.Notification())
		}
		if err := s.repo.Update(ctx, g); err != nil {
			return Output{}, err
		}
		return s.output(ctx, g)
	})
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseGenreID(rawID)
	if err != nil {
		return err
	}
	return s.factory.Run(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, rawID string) (Output, error) {
	id, err := ParseGenreID(rawID)
	if err != nil {
		return Output{}, err
	}
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Output{}, err
	}
	return s.output(ctx, g)
}

// List 分页查询；关联分类按整页批量读取
func (s *Service) List(ctx context.Context, in search.Input) (search.Result[Output], error) {
	params, err := NewSearchParams(in)
	if err != nil {
		return search.Result[Output]{}, err
	}
	res, err := s.repo.Search(ctx, params)
	if err != nil {
		return search.Result[Output]{}, err
	}
	var ids []category.CategoryID
	for _, g := range res.Items {
		ids = append(ids, g.categoriesID...)
	}
	names, err := s.categoryNames(ctx, ids)
	if err != nil {
		return search.Result[Output]{}, err
	}
	return search.MapResult(res, func(g *Genre) Output { return toOutput(g, names) }), nil
}

func (s *Service) output(ctx context.Context, g *Genre) (Output, error) {
	names, err := s.categoryNames(ctx, g.categoriesID)
	if err != nil {
		return Output{}, err
	}
	return toOutput(g, names), nil
}

func (s *Service) categoryNames(ctx context.Context, ids []category.CategoryID) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	found, err := s.categories.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	for _, c := range found {
		names[c.AggregateID()] = c.Name()
	}
	return names, nil
}

func toOutput(g *Genre, names map[string]string) Output {
	out := Output{
		ID:           g.id.String(),
		Name:         g.name,
		CategoriesID: categoryStrings(g.categoriesID),
		Categories:   []CategoryRef{},
		IsActive:     g.isActive,
		CreatedAt:    g.createdAt,
	}
	for _, id := range out.CategoriesID {
		if name, ok := names[id]; ok {
			out.Categories = append(out.Categories, CategoryRef{ID: id, Name: name})
		}
	}
	return out
}
