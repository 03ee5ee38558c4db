package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email && !isExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.users {
		if existing.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.users {
		if usr.Email == filter.Email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserInfo(ctx context.Context, id string, exec ...core.DBExecutor) (user.Info, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.Info{}, user.ErrNotFound
	}
	return repo.info(*usr), nil
}

// info must be called with the DB lock held.
func (repo *userRepository) info(usr user.User) user.Info {
	info := user.Info{User: usr}
	for _, post := range repo.db.news {
		if post.AuthorID == usr.ID {
			info.NewsPostsCount++
		}
	}
	for _, evt := range repo.db.events {
		if evt.CreatedBy == usr.ID {
			info.EventsCreatedCount++
		}
	}
	for _, rsvp := range repo.db.rsvps {
		if rsvp.UserID == usr.ID && rsvp.Status == event.StatusConfirmed {
			info.RSVPsCount++
		}
	}
	return info
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, page core.Page, exec ...core.DBExecutor) ([]user.Info, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]user.Info, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter.Search != "" &&
			!containsFold(usr.Email, filter.Search) &&
			!containsFold(usr.FirstName, filter.Search) &&
			!containsFold(usr.LastName, filter.Search) {
			continue
		}
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		matches = append(matches, repo.info(*usr))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })

	total := len(matches)
	lo, hi := page.Slice(total)
	return matches[lo:hi], total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	for _, post := range repo.db.news {
		if post.AuthorID == id {
			return user.ErrOwnsContent
		}
	}
	for _, evt := range repo.db.events {
		if evt.CreatedBy == id {
			return user.ErrOwnsContent
		}
	}
	for rsvpID, rsvp := range repo.db.rsvps {
		if rsvp.UserID == id {
			delete(repo.db.rsvps, rsvpID)
		}
	}
	delete(repo.db.users, id)
	return nil
}

func (repo *userRepository) CountAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, usr := range repo.db.users {
		if usr.IsAdmin() {
			count++
		}
	}
	return count, nil
}

func (repo *userRepository) GetUserActivity(ctx context.Context, id string, exec ...core.DBExecutor) (user.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.Activity{}, user.ErrNotFound
	}

	act := user.Activity{UserID: id, LastActivityDate: usr.CreatedAt}
	bump := func(t time.Time) {
		if t.After(act.LastActivityDate) {
			act.LastActivityDate = t
		}
	}
	for _, post := range repo.db.news {
		if post.AuthorID == id {
			act.TotalNewsPosts++
			bump(post.CreatedAt)
		}
	}
	for _, evt := range repo.db.events {
		if evt.CreatedBy == id {
			act.TotalEventsCreated++
			bump(evt.CreatedAt)
		}
	}
	for _, rsvp := range repo.db.rsvps {
		if rsvp.UserID == id {
			if rsvp.Status == event.StatusConfirmed {
				act.TotalRSVPs++
			}
			bump(rsvp.RsvpDate)
		}
	}
	return act, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, existing := range repo.db.users {
		if existing.Email == usr.Email {
			usr.ID = id
			usr.CreatedAt = existing.CreatedAt
			repo.db.users[id] = &usr
			return usr, nil
		}
	}
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excluded := range excludedUsers {
		if excluded.ID == usr.ID {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
