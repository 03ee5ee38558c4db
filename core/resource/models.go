package resource

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusconnect/hub/core"
)

type Resource struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Url          string    `json:"url" db:"url"`
	Category     string    `json:"category" db:"category"`
	DisplayOrder int       `json:"displayOrder" db:"display_order"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"` // UTC
}

type NewResource struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=500"`
	Url          string `json:"url" validate:"required,url,max=500"`
	Category     string `json:"category" validate:"required,max=100"`
	DisplayOrder int    `json:"displayOrder"`
	IsActive     *bool  `json:"isActive"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.Url = core.CleanString(nr.Url)
	nr.Category = core.CleanString(nr.Category)
	return validate.Struct(nr)
}

func (nr *NewResource) Active() bool {
	return nr.IsActive == nil || *nr.IsActive
}

type QueryFilter struct {
	Category   string `query:"category"`
	IncludeAll bool   `query:"includeAll"` // admin listing; includes inactive
}

func (qf *QueryFilter) Clean() {
	qf.Category = core.CleanString(qf.Category)
}
