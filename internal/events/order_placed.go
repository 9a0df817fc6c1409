package events

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/order"
)

const (
	EventTypeOrderPlaced = "OrderPlaced"
	orderPlacedSchema    = "contracts/events/store/OrderPlaced.v1.payload.schema.json"
)

type OrderPlacedEvent struct {
	EventEnvelope
	Payload OrderPlacedPayload `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID     int64             `json:"orderId"`
	BuyerID     string            `json:"buyerId"`
	Items       []OrderPlacedItem `json:"items"`
	Subtotal    int64             `json:"subtotal"`
	DeliveryFee int64             `json:"deliveryFee"`
	Total       int64             `json:"total"`
	PlacedAt    time.Time         `json:"placedAt"`
}

type OrderPlacedItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

func newOrderPlacedPayload(o *order.Order) OrderPlacedPayload {
	p := OrderPlacedPayload{
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		Items:       make([]OrderPlacedItem, 0, len(o.Items)),
		Subtotal:    o.Subtotal,
		DeliveryFee: o.DeliveryFee,
		Total:       o.Total(),
		PlacedAt:    o.OrderDate,
	}
	for _, it := range o.Items {
		p.Items = append(p.Items, OrderPlacedItem{
			ProductID: it.ItemOrdered.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return p
}
