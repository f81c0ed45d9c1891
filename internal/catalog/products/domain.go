package products

import (
	"encoding/json"
	"time"
)

// Product is a catalog product record. IDs are UUID strings assigned at
// creation time.
type Product struct {
	ID                    string          `json:"id"`
	Handle                string          `json:"handle"`
	Title                 string          `json:"title"`
	MetaTitle             string          `json:"metaTitle"`
	Description           string          `json:"description"`
	MetaDescription       string          `json:"metaDescription"`
	Body                  string          `json:"body"`
	HasOnlyDefaultVariant bool            `json:"hasOnlyDefaultVariant"`
	Options               []string        `json:"options"`
	Metafields            json.RawMessage `json:"metafields,omitempty"`
	IsActive              bool            `json:"isActive"`
	IsDeleted             bool            `json:"isDeleted"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	AddedBy               *int64          `json:"addedBy,omitempty"`
	UpdatedBy             *int64          `json:"updatedBy,omitempty"`
}

// Input carries the client-settable fields for create and partial update.
type Input struct {
	Handle                *string         `json:"handle" validate:"omitempty,min=3,max=128"`
	Title                 *string         `json:"title" validate:"omitempty,min=3,max=128"`
	MetaTitle             *string         `json:"metaTitle" validate:"omitempty,max=96"`
	Description           *string         `json:"description" validate:"omitempty,max=10000"`
	MetaDescription       *string         `json:"metaDescription" validate:"omitempty,max=255"`
	Body                  *string         `json:"body"`
	HasOnlyDefaultVariant *bool           `json:"hasOnlyDefaultVariant"`
	Options               []string        `json:"options"`
	Metafields            json.RawMessage `json:"metafields"`
	IsActive              *bool           `json:"isActive"`
}

func (in Input) apply(p *Product) {
	if in.Handle != nil {
		p.Handle = *in.Handle
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.MetaTitle != nil {
		p.MetaTitle = *in.MetaTitle
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.MetaDescription != nil {
		p.MetaDescription = *in.MetaDescription
	}
	if in.Body != nil {
		p.Body = *in.Body
	}
	if in.HasOnlyDefaultVariant != nil {
		p.HasOnlyDefaultVariant = *in.HasOnlyDefaultVariant
	}
	if in.Options != nil {
		p.Options = in.Options
	}
	if in.Metafields != nil {
		p.Metafields = in.Metafields
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}
