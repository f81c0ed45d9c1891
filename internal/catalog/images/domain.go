package images

import "time"

// Image is a catalog media record. IDs are UUID strings assigned at
// creation time.
type Image struct {
	ID        string    `json:"id"`
	Src       string    `json:"src"`
	AltText   string    `json:"altText"`
	Height    int       `json:"height"`
	Width     int       `json:"width"`
	IsActive  bool      `json:"isActive"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	AddedBy   *int64    `json:"addedBy,omitempty"`
	UpdatedBy *int64    `json:"updatedBy,omitempty"`
}

// Input carries the client-settable fields for create and partial update.
type Input struct {
	Src      *string `json:"src" validate:"omitempty,max=2048"`
	AltText  *string `json:"altText" validate:"omitempty,max=255"`
	Height   *int    `json:"height" validate:"omitempty,gte=0"`
	Width    *int    `json:"width" validate:"omitempty,gte=0"`
	IsActive *bool   `json:"isActive"`
}

func (in Input) apply(img *Image) {
	if in.Src != nil {
		img.Src = *in.Src
	}
	if in.AltText != nil {
		img.AltText = *in.AltText
	}
	if in.Height != nil {
		img.Height = *in.Height
	}
	if in.Width != nil {
		img.Width = *in.Width
	}
	if in.IsActive != nil {
		img.IsActive = *in.IsActive
	}
}
