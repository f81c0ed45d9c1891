package tags

import "time"

// Tag is a catalog tag record.
type Tag struct {
	ID              int64     `json:"id"`
	Handle          string    `json:"handle"`
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	MetaTitle       string    `json:"metaTitle"`
	Description     string    `json:"description"`
	MetaDescription string    `json:"metaDescription"`
	Body            string    `json:"body"`
	IsActive        bool      `json:"isActive"`
	IsDeleted       bool      `json:"isDeleted"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	AddedBy         *int64    `json:"addedBy,omitempty"`
	UpdatedBy       *int64    `json:"updatedBy,omitempty"`
}

// Input carries the client-settable fields for create and partial update.
type Input struct {
	Handle          *string `json:"handle" validate:"omitempty,min=2,max=64"`
	Name            *string `json:"name" validate:"omitempty,max=128"`
	Title           *string `json:"title" validate:"omitempty,max=128"`
	MetaTitle       *string `json:"metaTitle" validate:"omitempty,max=96"`
	Description     *string `json:"description"`
	MetaDescription *string `json:"metaDescription" validate:"omitempty,max=240"`
	Body            *string `json:"body"`
	IsActive        *bool   `json:"isActive"`
}

func (in Input) apply(t *Tag) {
	if in.Handle != nil {
		t.Handle = *in.Handle
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.MetaTitle != nil {
		t.MetaTitle = *in.MetaTitle
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.MetaDescription != nil {
		t.MetaDescription = *in.MetaDescription
	}
	if in.Body != nil {
		t.Body = *in.Body
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
}
