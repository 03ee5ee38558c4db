package postgresdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/user"
)

// userInfoColumns projects a full user row plus its authored-content
// counts (confirmed RSVPs only) for admin listings.
const userInfoColumns = `
u.id, u.email, u.password_hash, u.role, u.first_name, u.last_name, u.created_at,
(SELECT COUNT(*) FROM news_post n WHERE n.author_id = u.id) AS news_posts_count,
(SELECT COUNT(*) FROM event e WHERE e.created_by = u.id) AS events_created_count,
(SELECT COUNT(*) FROM event_rsvp r WHERE r.user_id = u.id AND r.status = 'Confirmed') AS rsvps_count`

type userRepository struct {
	db core.DB
}

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	query := `SELECT EXISTS (SELECT 1 FROM app_user WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.Array(ids))
	}
	query += `)`

	var exists bool
	if err := ex.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	ex := executor(repo.db, exec)

	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO app_user (id, email, password_hash, role, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		usr.ID, usr.Email, usr.PasswordHash, usr.Role, usr.FirstName, usr.LastName, usr.CreatedAt,
	)
	if err != nil {
		if isPqError(err, pqUniqueViolation) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	ex := executor(repo.db, exec)

	where, arg := "id = $1", filter.ID
	if filter.ID == "" {
		where, arg = "email = $1", filter.Email
	}

	var usr user.User
	err := ex.GetContext(ctx, &usr, `SELECT * FROM app_user WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserInfo(ctx context.Context, id string, exec ...core.DBExecutor) (user.Info, error) {
	ex := executor(repo.db, exec)

	var info user.Info
	err := ex.GetContext(ctx, &info,
		`SELECT `+userInfoColumns+` FROM app_user u WHERE u.id = $1`, id)
	if err == sql.ErrNoRows {
		return user.Info{}, user.ErrNotFound
	}
	if err != nil {
		return user.Info{}, errors.Wrap(err, "getting user info")
	}
	return info, nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, page core.Page, exec ...core.DBExecutor) ([]user.Info, int, error) {
	ex := executor(repo.db, exec)

	where := "TRUE"
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)", n, n, n)
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += fmt.Sprintf(" AND u.role = $%d", len(args))
	}

	var total int
	if err := ex.GetContext(ctx, &total, `SELECT COUNT(*) FROM app_user u WHERE `+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting users")
	}

	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(
		`SELECT %s FROM app_user u WHERE %s ORDER BY u.created_at ASC LIMIT $%d OFFSET $%d`,
		userInfoColumns, where, len(args)-1, len(args),
	)
	infos := []user.Info{}
	if err := ex.SelectContext(ctx, &infos, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying users")
	}
	return infos, total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	ex := executor(repo.db, exec)

	res, err := ex.ExecContext(ctx,
		`UPDATE app_user
		 SET email = $2, password_hash = $3, role = $4, first_name = $5, last_name = $6
		 WHERE id = $1`,
		usr.ID, usr.Email, usr.PasswordHash, usr.Role, usr.FirstName, usr.LastName,
	)
	if err != nil {
		if isPqError(err, pqUniqueViolation) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ex := executor(repo.db, exec)

	res, err := ex.ExecContext(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		if isPqError(err, pqForeignKeyViolation) {
			return user.ErrOwnsContent
		}
		return errors.Wrap(err, "deleting user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) CountAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	ex := executor(repo.db, exec)

	var count int
	err := ex.GetContext(ctx, &count, `SELECT COUNT(*) FROM app_user WHERE role = $1`, user.RoleAdministrator)
	return count, errors.Wrap(err, "counting admins")
}

func (repo *userRepository) GetUserActivity(ctx context.Context, id string, exec ...core.DBExecutor) (user.Activity, error) {
	ex := executor(repo.db, exec)

	var act user.Activity
	err := ex.GetContext(ctx, &act,
		`SELECT u.id AS user_id,
		 (SELECT COUNT(*) FROM news_post n WHERE n.author_id = u.id) AS total_news_posts,
		 (SELECT COUNT(*) FROM event e WHERE e.created_by = u.id) AS total_events_created,
		 (SELECT COUNT(*) FROM event_rsvp r WHERE r.user_id = u.id AND r.status = 'Confirmed') AS total_rsvps,
		 GREATEST(
			COALESCE((SELECT MAX(n.created_at) FROM news_post n WHERE n.author_id = u.id), u.created_at),
			COALESCE((SELECT MAX(e.created_at) FROM event e WHERE e.created_by = u.id), u.created_at),
			COALESCE((SELECT MAX(r.rsvp_date) FROM event_rsvp r WHERE r.user_id = u.id), u.created_at)
		 ) AS last_activity_date
		 FROM app_user u WHERE u.id = $1`, id)
	if err == sql.ErrNoRows {
		return user.Activity{}, user.ErrNotFound
	}
	if err != nil {
		return user.Activity{}, errors.Wrap(err, "getting user activity")
	}
	return act, nil
}

// UpdateOrCreateUser upserts by email; used by the admin CLI and the seeder.
func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	ex := executor(repo.db, exec)

	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	err := ex.GetContext(ctx, &usr,
		`INSERT INTO app_user (id, email, password_hash, role, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (email) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role,
		     first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
		 RETURNING *`,
		usr.ID, usr.Email, usr.PasswordHash, usr.Role, usr.FirstName, usr.LastName, usr.CreatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return usr, nil
}
