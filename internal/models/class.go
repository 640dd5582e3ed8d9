package models

import "time"

// ClassRole is the per-class role carried by a membership row.
type ClassRole string

const (
	ClassRoleTeacher ClassRole = "teacher"
	ClassRoleStudent ClassRole = "student"
)

// Class represents a classroom. The owner is always a teacher of the class;
// that role is implied and never stored as a membership row.
type Class struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Section     *string   `db:"section" json:"section,omitempty"`
	Subject     *string   `db:"subject" json:"subject,omitempty"`
	Room        *string   `db:"room" json:"room,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	BannerColor string    `db:"banner_color" json:"banner_color"`
	ClassCode   string    `db:"class_code" json:"class_code"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Owner *Profile `db:"-" json:"owner,omitempty"`
}

// ClassMembership joins a user to a class with a per-class role.
type ClassMembership struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      ClassRole `db:"role" json:"role"`
	InvitedBy *string   `db:"invited_by" json:"invited_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	User *Profile `db:"-" json:"user,omitempty"`
}

// DefaultBannerColor matches the classic blue banner.
const DefaultBannerColor = "#1967d2"

// ClassCodeLength is the length of the human-enterable join token.
const ClassCodeLength = 7
