package resource

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
)

var ErrNotFound = errors.New("resource not found")

type Repository interface {
	CreateResource(ctx context.Context, res *Resource, exec ...core.DBExecutor) error
	GetResource(ctx context.Context, id string, exec ...core.DBExecutor) (Resource, error)
	QueryResources(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Resource, error)
	UpdateResource(ctx context.Context, res Resource, exec ...core.DBExecutor) error
	DeleteResource(ctx context.Context, id string, exec ...core.DBExecutor) error
}

type ServiceInterface interface {
	Create(ctx context.Context, nr NewResource) (Resource, error)
	Get(ctx context.Context, id string) (Resource, error)
	Query(ctx context.Context, filter QueryFilter) ([]Resource, error)
	Update(ctx context.Context, id string, nr NewResource) (Resource, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	db   core.Transactor
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.Transactor, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewResource) (Resource, error) {
	res := Resource{
		ID:           uuid.NewString(),
		Title:        nr.Title,
		Description:  nr.Description,
		Url:          nr.Url,
		Category:     nr.Category,
		DisplayOrder: nr.DisplayOrder,
		IsActive:     nr.Active(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := svc.repo.CreateResource(ctx, &res); err != nil {
		return Resource{}, errors.Wrap(err, "creating resource")
	}
	return res, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Resource, error) {
	return svc.repo.GetResource(ctx, id)
}

// Query returns resources ordered by display order then title.
// Inactive resources are excluded unless the filter asks for all.
func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Resource, error) {
	filter.Clean()
	return svc.repo.QueryResources(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, nr NewResource) (Resource, error) {
	res, err := svc.repo.GetResource(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	res.Title = nr.Title
	res.Description = nr.Description
	res.Url = nr.Url
	res.Category = nr.Category
	res.DisplayOrder = nr.DisplayOrder
	res.IsActive = nr.Active()
	if err = svc.repo.UpdateResource(ctx, res); err != nil {
		return Resource{}, errors.Wrap(err, "updating resource")
	}
	return res, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetResource(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteResource(ctx, id)
}
