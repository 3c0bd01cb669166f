package model

import "time"

// Document statuses. Status is optional on a document; an empty value means
// the document has not entered the review workflow.
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Document is the stored entity. Pure domain model with no persistence tags;
// ID and timestamps are server-assigned and immutable from the outside.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Category  string    `json:"category,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentInput carries caller-supplied fields for create/update operations.
// Category and Status are pointers so an update can distinguish "leave as is"
// (nil) from "overwrite" (non-nil).
type DocumentInput struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Author   string  `json:"author"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
}
