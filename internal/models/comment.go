package models

import "time"

// ParentType discriminates the polymorphic parent of comments and attachments.
type ParentType string

const (
	ParentTypePost       ParentType = "post"
	ParentTypeAssignment ParentType = "assignment"
	ParentTypeSubmission ParentType = "submission"
	ParentTypeClass      ParentType = "class"
)

// Valid reports whether the value is one of the known parent kinds.
func (p ParentType) Valid() bool {
	switch p {
	case ParentTypePost, ParentTypeAssignment, ParentTypeSubmission, ParentTypeClass:
		return true
	}
	return false
}

// Comment is attached to a post, assignment, submission or class. Private
// comments are visible only to the author and the class teachers.
type Comment struct {
	ID         string     `db:"id" json:"id"`
	ParentType ParentType `db:"parent_type" json:"parent_type"`
	ParentID   string     `db:"parent_id" json:"parent_id"`
	AuthorID   string     `db:"author_id" json:"author_id"`
	Content    string     `db:"content" json:"content"`
	IsPrivate  bool       `db:"is_private" json:"is_private"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`

	Author *Profile `db:"-" json:"author,omitempty"`
}
