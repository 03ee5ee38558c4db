package inmemdb

import (
	"context"
	"sort"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/news"
)

type newsRepository struct {
	db *DB
}

func NewNewsRepository(db *DB) news.Repository {
	return &newsRepository{db: db}
}

func (repo *newsRepository) CreatePost(ctx context.Context, post *news.Post, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	clone := *post
	repo.db.news[post.ID] = &clone
	return nil
}

func (repo *newsRepository) GetPost(ctx context.Context, id string, exec ...core.DBExecutor) (news.View, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	post, ok := repo.db.news[id]
	if !ok {
		return news.View{}, news.ErrNotFound
	}
	return repo.view(*post), nil
}

// view must be called with the DB lock held.
func (repo *newsRepository) view(post news.Post) news.View {
	view := news.View{Post: post}
	if author, ok := repo.db.users[post.AuthorID]; ok {
		view.AuthorName = author.FullName()
	}
	return view
}

func (repo *newsRepository) QueryPosts(ctx context.Context, filter news.QueryFilter, page core.Page, exec ...core.DBExecutor) ([]news.View, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]news.View, 0, len(repo.db.news))
	for _, post := range repo.db.news {
		if filter.Published() && !post.IsPublished {
			continue
		}
		matches = append(matches, repo.view(*post))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })

	total := len(matches)
	lo, hi := page.Slice(total)
	return matches[lo:hi], total, nil
}

func (repo *newsRepository) UpdatePost(ctx context.Context, post news.Post, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.news[post.ID]; !ok {
		return news.ErrNotFound
	}
	repo.db.news[post.ID] = &post
	return nil
}

func (repo *newsRepository) DeletePost(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.news[id]; !ok {
		return news.ErrNotFound
	}
	delete(repo.db.news, id)
	return nil
}
