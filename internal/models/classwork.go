package models

import "time"

// Assignment is a gradable classwork item.
type Assignment struct {
	ID           string     `db:"id" json:"id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Instructions *string    `db:"instructions" json:"instructions,omitempty"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	Points       int        `db:"points" json:"points"`
	Topic        *string    `db:"topic" json:"topic,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Material is a non-gradable classwork item.
type Material struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Topic       *string   `db:"topic" json:"topic,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultAssignmentPoints is applied when a teacher leaves points unset.
const DefaultAssignmentPoints = 100
