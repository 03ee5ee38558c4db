package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
	ErrOwnsContent = errors.New("user has authored content")

	// conflict messages
	msgLastAdminRole   = "cannot remove the last administrator"
	msgLastAdminDelete = "cannot delete the last administrator"
	msgSelfDelete      = "cannot delete your own account"
	msgOwnsContent     = "cannot delete a user with authored news posts or events"
)

const DefaultPageSize = 20

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		GetUserInfo(ctx context.Context, id string, exec ...core.DBExecutor) (Info, error)
		// FilterUsers applies AND on available QueryFilter fields, orders by
		// creation time ascending and returns the requested page along with
		// the total matching count.
		FilterUsers(ctx context.Context, filter QueryFilter, page core.Page, exec ...core.DBExecutor) ([]Info, int, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// DeleteUser hard-deletes a user; RSVPs cascade, authored news posts
		// and events restrict (ErrOwnsContent).
		DeleteUser(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error)
		GetUserActivity(ctx context.Context, id string, exec ...core.DBExecutor) (Activity, error)
		UpdateOrCreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	ServiceInterface interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		Register(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetInfo(ctx context.Context, id string) (Info, error)
		Filter(ctx context.Context, filter QueryFilter, page core.Page) ([]Info, int, error)
		Activity(ctx context.Context, id string) (Activity, error)
		UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error)
		ChangePassword(ctx context.Context, usr User, data ChangePassword) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
		ChangeRole(ctx context.Context, targetID string, role Role) error
		Delete(ctx context.Context, targetID, callerID string) error
	}

	Service struct {
		db      core.Transactor
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.Transactor, repo Repository, mailSvc core.EmailService) *Service {
	return &Service{db: db, repo: repo, mailSvc: mailSvc}
}

func (svc *Service) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedUsers); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new Student account and sends a welcome email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Email:     nu.Email,
		Role:      RoleStudent,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Welcome",
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{usr.FirstName},
	})
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) GetInfo(ctx context.Context, id string) (Info, error) {
	return svc.repo.GetUserInfo(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Page) ([]Info, int, error) {
	page.Clamp(DefaultPageSize)
	return svc.repo.FilterUsers(ctx, filter, page)
}

func (svc *Service) Activity(ctx context.Context, id string) (Activity, error) {
	return svc.repo.GetUserActivity(ctx, id)
}

func (svc *Service) UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	usr.Email = up.Email
	usr.FirstName = up.FirstName
	usr.LastName = up.LastName
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) ChangePassword(ctx context.Context, usr User, data ChangePassword) error {
	if err := usr.CheckPassword(data.CurrentPassword); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "currentPassword", Error: "current password is incorrect"})
	}
	if err := usr.SetPassword(data.NewPassword); err != nil {
		return errors.Wrap(err, "setting password")
	}
	_, err := svc.repo.UpdateUser(ctx, usr)
	return err
}

// RequestPasswordReset emails a reset link to the account with the given
// email, if one exists. The caller must not reveal whether it did.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := MakeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct{ Name, UID, Token string }{usr.FirstName, EncodeUID(usr), token},
	})
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	uid, err := decodeUID(data.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// ChangeRole applies a role change to the target user. Demoting an
// Administrator, whether or not self-initiated, is refused while they are
// the last one; the count and the update run in one transaction.
func (svc *Service) ChangeRole(ctx context.Context, targetID string, role Role) error {
	return core.RunInTx(ctx, svc.db, func(exec ...core.DBExecutor) error {
		target, err := svc.repo.GetUser(ctx, GetFilter{ID: targetID}, exec...)
		if err != nil {
			return err
		}

		if target.IsAdmin() && !role.IsAdmin() {
			count, err := svc.repo.CountAdmins(ctx, exec...)
			if err != nil {
				return errors.Wrap(err, "counting admins")
			}
			if count <= 1 {
				return core.NewConflictError(msgLastAdminRole)
			}
		}

		target.Role = role
		if _, err = svc.repo.UpdateUser(ctx, target, exec...); err != nil {
			return errors.Wrap(err, "updating user role")
		}
		return nil
	})
}

// Delete removes the target user. Self-deletion is refused, as is deleting
// the last Administrator or a user who still owns news posts or events.
func (svc *Service) Delete(ctx context.Context, targetID, callerID string) error {
	if targetID == callerID {
		return core.NewConflictError(msgSelfDelete)
	}

	return core.RunInTx(ctx, svc.db, func(exec ...core.DBExecutor) error {
		target, err := svc.repo.GetUser(ctx, GetFilter{ID: targetID}, exec...)
		if err != nil {
			return err
		}

		if target.IsAdmin() {
			count, err := svc.repo.CountAdmins(ctx, exec...)
			if err != nil {
				return errors.Wrap(err, "counting admins")
			}
			if count <= 1 {
				return core.NewConflictError(msgLastAdminDelete)
			}
		}

		if err = svc.repo.DeleteUser(ctx, targetID, exec...); err != nil {
			if errors.Cause(err) == ErrOwnsContent {
				return core.NewConflictError(msgOwnsContent)
			}
			return errors.Wrap(err, "deleting user")
		}
		return nil
	})
}
