package news

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
)

var ErrNotFound = errors.New("news post not found")

const DefaultPageSize = 10

type Repository interface {
	CreatePost(ctx context.Context, post *Post, exec ...core.DBExecutor) error
	GetPost(ctx context.Context, id string, exec ...core.DBExecutor) (View, error)
	QueryPosts(ctx context.Context, filter QueryFilter, page core.Page, exec ...core.DBExecutor) ([]View, int, error)
	UpdatePost(ctx context.Context, post Post, exec ...core.DBExecutor) error
	DeletePost(ctx context.Context, id string, exec ...core.DBExecutor) error
}

type ServiceInterface interface {
	Create(ctx context.Context, np NewPost, authorID string) (View, error)
	Get(ctx context.Context, id string) (View, error)
	Query(ctx context.Context, filter QueryFilter, page core.Page) ([]View, int, error)
	Update(ctx context.Context, id string, np NewPost) (View, error)
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

func (svc *Service) Create(ctx context.Context, np NewPost, authorID string) (View, error) {
	post := &Post{
		ID:          uuid.NewString(),
		Title:       np.Title,
		Content:     np.Content,
		AuthorID:    authorID,
		IsPublished: np.Published(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := svc.repo.CreatePost(ctx, post); err != nil {
		return View{}, errors.Wrap(err, "creating news post")
	}
	return svc.repo.GetPost(ctx, post.ID)
}

func (svc *Service) Get(ctx context.Context, id string) (View, error) {
	return svc.repo.GetPost(ctx, id)
}

// Query returns a page of posts ordered by creation date, newest first.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.Page) ([]View, int, error) {
	page.Clamp(DefaultPageSize)
	return svc.repo.QueryPosts(ctx, filter, page)
}

func (svc *Service) Update(ctx context.Context, id string, np NewPost) (View, error) {
	view, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return View{}, err
	}
	post := view.Post
	post.Title = np.Title
	post.Content = np.Content
	post.IsPublished = np.Published()
	now := time.Now().UTC()
	post.UpdatedAt = &now
	if err = svc.repo.UpdatePost(ctx, post); err != nil {
		return View{}, errors.Wrap(err, "updating news post")
	}
	return svc.repo.GetPost(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetPost(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeletePost(ctx, id)
}
