package category

import (
	"context"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
)

// Output 用例输出
type Output struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToOutput 聚合到输出
func ToOutput(c *Category) Output {
	return Output{
		ID:          c.id.String(),
		Name:        c.name,
		Description: c.description,
		IsActive:    c.isActive,
		CreatedAt:   c.createdAt,
	}
}

// CreateInput 创建输入
type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateInput 更新输入，nil 字段保持不变
type UpdateInput struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Service 分类用例
type Service struct {
	repo    IRepository
	factory *app.Factory
}

// NewService 创建用例集合
func NewService(repo IRepository, factory *app.Factory) *Service {
	return &Service{repo: repo, factory: factory}
}

// Create 创建分类
func (s *Service) Create(ctx context.Context, in CreateInput) (Output, error) {
	c := Create(CreateCommand{Name: in.Name, Description: in.Description, IsActive: in.IsActive})
	if c.Notification().HasErrors() {
		return Output{}, domain.EntityValidationErrorFrom(c.Notification())
	}
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		if err := s.repo.Insert(ctx, c); err != nil {
			return Output{}, err
		}
		return ToOutput(c), nil
	})
}

// Update 修改分类
func (s *Service) Update(ctx context.Context, in UpdateInput) (Output, error) {
	id, err := ParseCategoryID(in.ID)
	if err != nil {
		return Output{}, err
	}
	return app.Execute(ctx, s.factory, func(ctx context.Context) (Output, error) {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return Output{}, err
		}
		if in.Name != nil {
			c.ChangeName(*in.Name)
		}
		if in.Description != nil {
			c.ChangeDescription(in.Description)
		}
		if in.IsActive != nil {
			if *in.IsActive {
				c.Activate()
			} else {
				c.Deactivate()
			}
		}
		if c.Notification().HasErrors() {
			return Output{}, domain.EntityValidationErrorFrom(c.Notification())
		}
		c.MarkUpdated()
		if err := s.repo.Update(ctx, c); err != nil {
			return Output{}, err
		}
		return ToOutput(c), nil
	})
}

// Delete 删除分类
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseCategoryID(rawID)
	if err != nil {
		return err
	}
	return s.factory.Run(ctx, func(ctx context.Context) error {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		c.MarkDeleted()
		uow.Register(ctx, c)
		return nil
	})
}

// Get 按 ID 查询
func (s *Service) Get(ctx context.Context, rawID string) (Output, error) {
	id, err := ParseCategoryID(rawID)
	if err != nil {
		return Output{}, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Output{}, err
	}
	return ToOutput(c), nil
}

// List 分页查询
func (s *Service) List(ctx context.Context, in search.Input) (search.Result[Output], error) {
	params, err := NewSearchParams(in)
	if err != nil {
		return search.Result[Output]{}, err
	}
	res, err := s.repo.Search(ctx, params)
	if err != nil {
		return search.Result[Output]{}, err
	}
	return search.MapResult(res, ToOutput), nil
}
