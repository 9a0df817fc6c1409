package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
)

const StatusPending = "Pending"

var (
	ErrNotFound       = errors.New("order not found")
	ErrBasketNotFound = errors.New("could not locate basket")
	ErrPersistence    = errors.New("unable to create order")
)

// InsufficientStockError aborts a placement; nothing from the placement is saved.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Name, e.Requested, e.Available)
}

// ItemOrdered is a copy of the product taken when the order was placed.
type ItemOrdered struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
}

type Item struct {
	ItemOrdered ItemOrdered `json:"itemOrdered"`
	Price       int64       `json:"price"`
	Quantity    int         `json:"quantity"`
}

type Order struct {
	ID              int64           `json:"id"`
	BuyerID         string          `json:"buyerId"`
	OrderDate       time.Time       `json:"orderDate"`
	ShippingAddress account.Address `json:"shippingAddress"`
	Items           []Item          `json:"orderItems"`
	Subtotal        int64           `json:"subtotal"`
	DeliveryFee     int64           `json:"deliveryFee"`
	Status          string          `json:"orderStatus"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
}

func (o *Order) Total() int64 { return o.Subtotal + o.DeliveryFee }
