package httpapi

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/order"
)

type basketItemDTO struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"imageUrl"`
	Brand     string `json:"brand"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
}

type basketDTO struct {
	ID              int64           `json:"id"`
	BuyerID         string          `json:"buyerId"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	ClientSecret    string          `json:"clientSecret,omitempty"`
	Items           []basketItemDTO `json:"items"`
}

// toBasketDTO omits lines whose product has been deleted; there is nothing to show for them.
func toBasketDTO(b *basket.Basket) *basketDTO {
	if b == nil {
		return nil
	}
	out := &basketDTO{
		ID:              b.ID,
		BuyerID:         b.BuyerID,
		PaymentIntentID: b.PaymentIntentID,
		ClientSecret:    b.ClientSecret,
		Items:           make([]basketItemDTO, 0, len(b.Items)),
	}
	for _, it := range b.Items {
		if it.Product == nil {
			continue
		}
		out.Items = append(out.Items, basketItemDTO{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			ImageURL:  it.Product.ImageURL,
			Brand:     it.Product.Brand,
			Type:      it.Product.Type,
			Quantity:  it.Quantity,
		})
	}
	return out
}

type userDTO struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Token    string     `json:"token"`
	Basket   *basketDTO `json:"basket,omitempty"`
}

func toUserDTO(s *account.Session) userDTO {
	return userDTO{Username: s.Username, Email: s.Email, Token: s.Token, Basket: toBasketDTO(s.Basket)}
}

type orderItemDTO struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type orderDTO struct {
	ID              int64           `json:"id"`
	BuyerID         string          `json:"buyerId"`
	ShippingAddress account.Address `json:"shippingAddress"`
	OrderDate       time.Time       `json:"orderDate"`
	OrderItems      []orderItemDTO  `json:"orderItems"`
	Subtotal        int64           `json:"subtotal"`
	DeliveryFee     int64           `json:"deliveryFee"`
	OrderStatus     string          `json:"orderStatus"`
	Total           int64           `json:"total"`
}

func toOrderDTO(o *order.Order) orderDTO {
	out := orderDTO{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate,
		OrderItems:      make([]orderItemDTO, 0, len(o.Items)),
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		OrderStatus:     o.Status,
		Total:           o.Total(),
	}
	for _, it := range o.Items {
		out.OrderItems = append(out.OrderItems, orderItemDTO{
			ProductID: it.ItemOrdered.ProductID,
			Name:      it.ItemOrdered.Name,
			ImageURL:  it.ItemOrdered.ImageURL,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return out
}

type createOrderRequest struct {
	ShippingAddress account.Address `json:"shippingAddress"`
	SaveAddress     bool            `json:"saveAddress"`
}
