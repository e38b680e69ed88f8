package castmember

import (
	"context"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

type Output struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func ToOutput(c *CastMember) Output {
	return Output{ID: c.id.String(), Name: c.name, Type: string(c.kind), CreatedAt: c.createdAt}
}

type CreateInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type UpdateInput struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// Service 演职人员用例
type Service struct {
	repo    IRepository
	factory *app.Factory
}

func NewService(repo IRepository, factory *app.Factory) *Service {
	return &Service{repo: repo, factory: factory}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Output, error) {
	c := New(in.Name, Type(in.Type))
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

func (s *Service) Update(ctx context.Context, in UpdateInput) (Output, error) {
	id, err := ParseCastMemberID(in.ID)
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
		if in.Type != nil {
			c.ChangeType(Type(*in.Type))
		}
		if c.Notification().HasErrors() {
			return Output{}, domain.EntityValidationErrorFrom(c.Notification())
		}
		if err := s.repo.Update(ctx, c); err != nil {
			return Output{}, err
		}
		return ToOutput(c), nil
	})
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseCastMemberID(rawID)
	if err != nil {
		return err
	}
	return s.factory.Run(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, rawID string) (Output, error) {
	id, err := ParseCastMemberID(rawID)
	if err != nil {
		return Output{}, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Output{}, err
	}
	return ToOutput(c), nil
}

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
