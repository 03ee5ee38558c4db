package user

import (
	"context"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusconnect/hub/core"
)

// Role is the closed set of roles a User may hold. Free-text role strings
// are rejected at every write path via the `role` validation tag.
type Role string

const (
	RoleStudent       Role = "Student"
	RoleAdministrator Role = "Administrator"
)

var AllRoles = []Role{RoleStudent, RoleAdministrator}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) IsAdmin() bool { return r == RoleAdministrator }

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool { return u.Role.IsAdmin() }

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Info is a User annotated with authored-content counts for admin listings.
type Info struct {
	User
	NewsPostsCount     int `json:"newsPostsCount" db:"news_posts_count"`
	EventsCreatedCount int `json:"eventsCreatedCount" db:"events_created_count"`
	RSVPsCount         int `json:"rsvpsCount" db:"rsvps_count"`
}

// Activity summarizes what a User has done and when they were last seen doing it.
type Activity struct {
	UserID             string    `json:"userId" db:"user_id"`
	TotalNewsPosts     int       `json:"totalNewsPosts" db:"total_news_posts"`
	TotalEventsCreated int       `json:"totalEventsCreated" db:"total_events_created"`
	TotalRSVPs         int       `json:"totalRsvps" db:"total_rsvps"`
	LastActivityDate   time.Time `json:"lastActivityDate" db:"last_activity_date"`
}

// NewUser contains information needed to register a new User.
// Self-registration always yields a Student; the role is never caller-supplied.
type NewUser struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// UpdateProfile defines what a User may change about themselves.
type UpdateProfile struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

func (up *UpdateProfile) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface, origUsr User) error {
	up.Email = core.CleanString(up.Email, true /* lower */)
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)

	if err := validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, up.Email, origUsr)
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

type ChangeRole struct {
	Role Role `json:"role" validate:"required,role"`
}

func (cr ChangeRole) Validate(validate *validator.Validate) error {
	return validate.Struct(cr)
}

type ResetUserPassword struct {
	Token    string `json:"token,omitempty" validate:"required"`
	UID      string `json:"uid,omitempty" validate:"required"`
	Password string `json:"password,omitempty" validate:"required,min=8"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// QueryFilter fields are AND-combined. Search does a case-insensitive
// substring match on email, first name or last name (OR-combined).
type QueryFilter struct {
	Search string `query:"search"`
	Role   Role   `query:"role"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single user by one of its unique attributes.
type GetFilter struct {
	ID    string
	Email string
}

// Validation tags

const (
	roleTag  = "role"
	roleText = "must be one of: Student, Administrator"
)

// RegisterValidators wires the user package's custom validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}
