package inmemdb

import (
	"context"
	"sort"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/resource"
)

type resourceRepository struct {
	db *DB
}

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res *resource.Resource, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	clone := *res
	repo.db.resources[res.ID] = &clone
	return nil
}

func (repo *resourceRepository) GetResource(ctx context.Context, id string, exec ...core.DBExecutor) (resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if res, ok := repo.db.resources[id]; ok {
		return *res, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter resource.QueryFilter, exec ...core.DBExecutor) ([]resource.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := []resource.Resource{}
	for _, res := range repo.db.resources {
		if !filter.IncludeAll && !res.IsActive {
			continue
		}
		if filter.Category != "" && res.Category != filter.Category {
			continue
		}
		matches = append(matches, *res)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DisplayOrder != matches[j].DisplayOrder {
			return matches[i].DisplayOrder < matches[j].DisplayOrder
		}
		return matches[i].Title < matches[j].Title
	})
	return matches, nil
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, res resource.Resource, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.resources[res.ID]; !ok {
		return resource.ErrNotFound
	}
	repo.db.resources[res.ID] = &res
	return nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.resources[id]; !ok {
		return resource.ErrNotFound
	}
	delete(repo.db.resources, id)
	return nil
}
