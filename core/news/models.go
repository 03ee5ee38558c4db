package news

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusconnect/hub/core"
)

type Post struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	AuthorID    string     `json:"authorId" db:"author_id"`
	IsPublished bool       `json:"isPublished" db:"is_published"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt   *time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

// View is a Post annotated with its author's display name.
type View struct {
	Post
	AuthorName string `json:"authorName" db:"author_name"`
}

type NewPost struct {
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	IsPublished *bool  `json:"isPublished"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return validate.Struct(np)
}

func (np *NewPost) Published() bool {
	return np.IsPublished == nil || *np.IsPublished
}

type QueryFilter struct {
	PublishedOnly *bool `query:"publishedOnly"`
}

func (qf *QueryFilter) Published() bool {
	return qf.PublishedOnly == nil || *qf.PublishedOnly
}
