package models

import "time"

// SubmissionStatus tracks student work through its lifecycle:
// assigned -> turned_in -> graded. The "returned" value is reserved for a
// hand-back flow that no operation currently produces.
type SubmissionStatus string

const (
	SubmissionStatusAssigned SubmissionStatus = "assigned"
	SubmissionStatusTurnedIn SubmissionStatus = "turned_in"
	SubmissionStatusReturned SubmissionStatus = "returned"
	SubmissionStatusGraded   SubmissionStatus = "graded"
)

// Submission is one student's response to an assignment. The pair
// (assignment_id, student_id) is unique.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Content      *string          `db:"content" json:"content,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
	SubmittedAt  *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`

	Student *Profile `db:"-" json:"student,omitempty"`
	Grade   *Grade   `db:"-" json:"grade,omitempty"`
}

// Grade is the optional 1:1 grading record attached to a submission.
type Grade struct {
	ID           string     `db:"id" json:"id"`
	SubmissionID string     `db:"submission_id" json:"submission_id"`
	Grade        *float64   `db:"grade" json:"grade,omitempty"`
	Feedback     *string    `db:"feedback" json:"feedback,omitempty"`
	GradedBy     *string    `db:"graded_by" json:"graded_by,omitempty"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
