package artists

import "time"

// Artist is a catalog artist record.
type Artist struct {
	ID              int64      `json:"id"`
	Handle          string     `json:"handle"`
	Name            string     `json:"name"`
	Title           string     `json:"title"`
	MetaTitle       string     `json:"metaTitle"`
	Description     string     `json:"description"`
	MetaDescription string     `json:"metaDescription"`
	Born            *time.Time `json:"born,omitempty"`
	Died            *time.Time `json:"died,omitempty"`
	IsActive        bool       `json:"isActive"`
	IsDeleted       bool       `json:"isDeleted"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	AddedBy         *int64     `json:"addedBy,omitempty"`
	UpdatedBy       *int64     `json:"updatedBy,omitempty"`
}

// Input carries the client-settable fields. Pointer fields distinguish
// absent from zero so the same type serves create and partial update.
type Input struct {
	Handle          *string    `json:"handle" validate:"omitempty,min=2,max=64"`
	Name            *string    `json:"name" validate:"omitempty,max=128"`
	Title           *string    `json:"title" validate:"omitempty,max=128"`
	MetaTitle       *string    `json:"metaTitle" validate:"omitempty,max=96"`
	Description     *string    `json:"description"`
	MetaDescription *string    `json:"metaDescription" validate:"omitempty,max=240"`
	Born            *time.Time `json:"born"`
	Died            *time.Time `json:"died"`
	IsActive        *bool      `json:"isActive"`
}

func (in Input) apply(a *Artist) {
	if in.Handle != nil {
		a.Handle = *in.Handle
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.MetaTitle != nil {
		a.MetaTitle = *in.MetaTitle
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.MetaDescription != nil {
		a.MetaDescription = *in.MetaDescription
	}
	if in.Born != nil {
		a.Born = in.Born
	}
	if in.Died != nil {
		a.Died = in.Died
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
}
