package models

import "time"

// Attachment is a polymorphic file reference stored alongside its parent.
type Attachment struct {
	ID         string     `db:"id" json:"id"`
	ParentType ParentType `db:"parent_type" json:"parent_type"`
	ParentID   string     `db:"parent_id" json:"parent_id"`
	Name       string     `db:"name" json:"name"`
	URL        string     `db:"url" json:"url"`
	FileType   *string    `db:"file_type" json:"file_type,omitempty"`
	FileSize   *int64     `db:"file_size" json:"file_size,omitempty"`
	UploadedBy *string    `db:"uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
