package collections

import "time"

// Collection groups products for merchandising.
type Collection struct {
	ID              int64     `json:"id"`
	Handle          string    `json:"handle"`
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
	Title           *string `json:"title" validate:"omitempty,max=128"`
	MetaTitle       *string `json:"metaTitle" validate:"omitempty,max=96"`
	Description     *string `json:"description"`
	MetaDescription *string `json:"metaDescription" validate:"omitempty,max=240"`
	Body            *string `json:"body"`
	IsActive        *bool   `json:"isActive"`
}

func (in Input) apply(c *Collection) {
	if in.Handle != nil {
		c.Handle = *in.Handle
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.MetaTitle != nil {
		c.MetaTitle = *in.MetaTitle
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.MetaDescription != nil {
		c.MetaDescription = *in.MetaDescription
	}
	if in.Body != nil {
		c.Body = *in.Body
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}
