package catalog

import "errors"

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product prices are integer minor currency units.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"imageUrl"`
	PublicID    string `json:"publicId,omitempty"`
	Type        string `json:"type"`
	Brand       string `json:"brand"`
	QtyInStock  int    `json:"quantityInStock"`
}

type Filters struct {
	Brands []string `json:"brands"`
	Types  []string `json:"types"`
}

// ProductInput is the admin-editable part of a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       int64  `json:"price" validate:"gte=100"`
	Type        string `json:"type" validate:"required"`
	Brand       string `json:"brand" validate:"required"`
	QtyInStock  int    `json:"quantityInStock" validate:"gte=0,lte=200"`
}

func (in ProductInput) apply(p *Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Type = in.Type
	p.Brand = in.Brand
	p.QtyInStock = in.QtyInStock
}
