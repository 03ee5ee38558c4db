package postgresdb

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/news"
)

type newsRepository struct {
	db core.DB
}

func NewNewsRepository(db core.DB) news.Repository {
	return &newsRepository{db: db}
}

const newsViewColumns = `
n.id, n.title, n.content, n.author_id, n.is_published, n.created_at, n.updated_at,
TRIM(u.first_name || ' ' || u.last_name) AS author_name`

func (repo *newsRepository) CreatePost(ctx context.Context, post *news.Post, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	_, err := ex.ExecContext(ctx,
		`INSERT INTO news_post (id, title, content, author_id, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		post.ID, post.Title, post.Content, post.AuthorID, post.IsPublished, post.CreatedAt, post.UpdatedAt,
	)
	return errors.Wrap(err, "inserting news post")
}

func (repo *newsRepository) GetPost(ctx context.Context, id string, exec ...core.DBExecutor) (news.View, error) {
	ex := executor(repo.db, exec)

	var view news.View
	err := ex.GetContext(ctx, &view,
		`SELECT `+newsViewColumns+`
		 FROM news_post n JOIN app_user u ON u.id = n.author_id
		 WHERE n.id = $1`, id)
	if err == sql.ErrNoRows {
		return news.View{}, news.ErrNotFound
	}
	if err != nil {
		return news.View{}, errors.Wrap(err, "getting news post")
	}
	return view, nil
}

func (repo *newsRepository) QueryPosts(ctx context.Context, filter news.QueryFilter, page core.Page, exec ...core.DBExecutor) ([]news.View, int, error) {
	ex := executor(repo.db, exec)

	where := "TRUE"
	if filter.Published() {
		where = "n.is_published"
	}

	var total int
	if err := ex.GetContext(ctx, &total, `SELECT COUNT(*) FROM news_post n WHERE `+where); err != nil {
		return nil, 0, errors.Wrap(err, "counting news posts")
	}

	views := []news.View{}
	err := ex.SelectContext(ctx, &views,
		`SELECT `+newsViewColumns+`
		 FROM news_post n JOIN app_user u ON u.id = n.author_id
		 WHERE `+where+`
		 ORDER BY n.created_at DESC
		 LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying news posts")
	}
	return views, total, nil
}

func (repo *newsRepository) UpdatePost(ctx context.Context, post news.Post, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	res, err := ex.ExecContext(ctx,
		`UPDATE news_post
		 SET title = $2, content = $3, is_published = $4, updated_at = $5
		 WHERE id = $1`,
		post.ID, post.Title, post.Content, post.IsPublished, post.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "updating news post")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return news.ErrNotFound
	}
	return nil
}

func (repo *newsRepository) DeletePost(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	res, err := ex.ExecContext(ctx, `DELETE FROM news_post WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting news post")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return news.ErrNotFound
	}
	return nil
}
