package postgresdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/resource"
)

type resourceRepository struct {
	db core.DB
}

func NewResourceRepository(db core.DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res *resource.Resource, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	_, err := ex.ExecContext(ctx,
		`INSERT INTO resource (id, title, description, url, category, display_order, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.ID, res.Title, res.Description, res.Url, res.Category, res.DisplayOrder, res.IsActive, res.CreatedAt,
	)
	return errors.Wrap(err, "inserting resource")
}

func (repo *resourceRepository) GetResource(ctx context.Context, id string, exec ...core.DBExecutor) (resource.Resource, error) {
	ex := executor(repo.db, exec)

	var res resource.Resource
	err := ex.GetContext(ctx, &res, `SELECT * FROM resource WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return resource.Resource{}, resource.ErrNotFound
	}
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "getting resource")
	}
	return res, nil
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter resource.QueryFilter, exec ...core.DBExecutor) ([]resource.Resource, error) {
	ex := executor(repo.db, exec)

	where := "TRUE"
	var args []interface{}
	if !filter.IncludeAll {
		where += " AND is_active"
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	resources := []resource.Resource{}
	err := ex.SelectContext(ctx, &resources,
		`SELECT * FROM resource WHERE `+where+` ORDER BY display_order ASC, title ASC`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	return resources, nil
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, res resource.Resource, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	result, err := ex.ExecContext(ctx,
		`UPDATE resource
		 SET title = $2, description = $3, url = $4, category = $5, display_order = $6, is_active = $7
		 WHERE id = $1`,
		res.ID, res.Title, res.Description, res.Url, res.Category, res.DisplayOrder, res.IsActive,
	)
	if err != nil {
		return errors.Wrap(err, "updating resource")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return resource.ErrNotFound
	}
	return nil
}

func (repo *resourceRepository) DeleteResource(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	result, err := ex.ExecContext(ctx, `DELETE FROM resource WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return resource.ErrNotFound
	}
	return nil
}
