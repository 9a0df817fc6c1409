package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

// UnitOfWork is every write a placement needs, bound to one transaction.
type UnitOfWork interface {
	BasketByBuyer(ctx context.Context, buyerID string) (*basket.Basket, error)
	LockProduct(ctx context.Context, id int64) (*catalog.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) error
	CreateOrder(ctx context.Context, o *Order) error
	DeleteBasket(ctx context.Context, basketID int64) error
	SaveAddress(ctx context.Context, username string, a account.Address) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(UnitOfWork) error) error
}

type ProductInvalidator interface {
	Invalidate(ctx context.Context, ids ...int64)
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, o *Order) error
}

type PlaceRequest struct {
	BuyerID         string
	ShippingAddress account.Address
	SaveAddress     bool
}

type PlacementService struct {
	tx          Transactor
	pricing     Pricing
	invalidator ProductInvalidator
	publisher   Publisher
	logger      *log.Logger
}

// NewPlacementService wires order placement. invalidator and publisher may be nil.
func NewPlacementService(tx Transactor, pricing Pricing, invalidator ProductInvalidator, publisher Publisher, logger *log.Logger) *PlacementService {
	return &PlacementService{
		tx:          tx,
		pricing:     pricing,
		invalidator: invalidator,
		publisher:   publisher,
		logger:      logger,
	}
}

// Place turns the buyer's basket into an order. Stock decrements, the order,
// the basket deletion and the optional address save commit together or not at
// all. Basket lines whose product no longer exists are left out of the order.
func (s *PlacementService) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	var placed *Order
	err := s.tx.WithinTx(ctx, func(uow UnitOfWork) error {
		b, err := uow.BasketByBuyer(ctx, req.BuyerID)
		if errors.Is(err, basket.ErrNotFound) {
			return ErrBasketNotFound
		}
		if err != nil {
			return err
		}

		products, err := s.lockProducts(ctx, uow, b.Items)
		if err != nil {
			return err
		}

		items := make([]Item, 0, len(b.Items))
		for _, line := range b.Items {
			p := products[line.ProductID]
			if p == nil {
				s.logger.Printf("order for %s: product %d no longer exists, line dropped", req.BuyerID, line.ProductID)
				continue
			}
			if p.QtyInStock < line.Quantity {
				return stockErr(p, line.Quantity)
			}
			if err := uow.DecrementStock(ctx, p.ID, line.Quantity); err != nil {
				if errors.Is(err, catalog.ErrInsufficientStock) {
					return stockErr(p, line.Quantity)
				}
				return err
			}
			items = append(items, Item{
				ItemOrdered: ItemOrdered{ProductID: p.ID, Name: p.Name, ImageURL: p.ImageURL},
				Price:       p.Price,
				Quantity:    line.Quantity,
			})
		}

		subtotal := s.pricing.Subtotal(items)
		o := &Order{
			BuyerID:         req.BuyerID,
			ShippingAddress: req.ShippingAddress,
			Items:           items,
			Subtotal:        subtotal,
			DeliveryFee:     s.pricing.Fee(subtotal),
			Status:          StatusPending,
			PaymentIntentID: b.PaymentIntentID,
		}
		if err := uow.CreateOrder(ctx, o); err != nil {
			return err
		}
		if err := uow.DeleteBasket(ctx, b.ID); err != nil {
			return err
		}
		if req.SaveAddress {
			if err := uow.SaveAddress(ctx, req.BuyerID, req.ShippingAddress); err != nil {
				return err
			}
		}
		placed = o
		return nil
	})
	if err != nil {
		var stock *InsufficientStockError
		if errors.Is(err, ErrBasketNotFound) || errors.As(err, &stock) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.afterCommit(ctx, placed)
	return placed, nil
}

// lockProducts takes row locks in ascending product id order so concurrent
// placements cannot deadlock. Missing products map to nil.
func (s *PlacementService) lockProducts(ctx context.Context, uow UnitOfWork, lines []basket.Item) (map[int64]*catalog.Product, error) {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	out := make(map[int64]*catalog.Product, len(ids))
	for _, id := range ids {
		p, err := uow.LockProduct(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			out[id] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

func (s *PlacementService) afterCommit(ctx context.Context, o *Order) {
	if s.invalidator != nil && len(o.Items) > 0 {
		ids := make([]int64, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ItemOrdered.ProductID)
		}
		s.invalidator.Invalidate(ctx, ids...)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, o); err != nil {
			s.logger.Printf("publish OrderPlaced for order %d failed: %v", o.ID, err)
		}
	}
	s.logger.Printf("order %d placed for %s: %d items, total %d", o.ID, o.BuyerID, len(o.Items), o.Total())
}

func stockErr(p *catalog.Product, requested int) error {
	return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: requested, Available: p.QtyInStock}
}
