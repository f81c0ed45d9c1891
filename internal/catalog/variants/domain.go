package variants

import "time"

// Variant is a sellable version of a product. The SKU is accepted on
// writes but never serialized back to clients.
type Variant struct {
	ID        string    `json:"id"`
	SKU       string    `json:"-"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	ProductID string    `json:"product"`
	IsActive  bool      `json:"isActive"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input carries the client-settable fields for create and partial update.
type Input struct {
	SKU       *string  `json:"sku" validate:"omitempty,max=64"`
	Title     *string  `json:"title" validate:"omitempty,max=128"`
	Quantity  *int     `json:"quantity" validate:"omitempty,gte=0"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
	ProductID *string  `json:"product" validate:"omitempty,uuid"`
	IsActive  *bool    `json:"isActive"`
}

func (in Input) apply(v *Variant) {
	if in.SKU != nil {
		v.SKU = *in.SKU
	}
	if in.Title != nil {
		v.Title = *in.Title
	}
	if in.Quantity != nil {
		v.Quantity = *in.Quantity
	}
	if in.Price != nil {
		v.Price = *in.Price
	}
	if in.ProductID != nil {
		v.ProductID = *in.ProductID
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
}
