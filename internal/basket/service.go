package basket

import (
	"context"
	"errors"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

type ProductReader interface {
	Get(ctx context.Context, id int64) (*catalog.Product, error)
}

type Service struct {
	store    Store
	tx       Transactor
	products ProductReader
}

func NewService(store Store, tx Transactor, products ProductReader) *Service {
	return &Service{store: store, tx: tx, products: products}
}

func (s *Service) Get(ctx context.Context, buyerID string) (*Basket, error) {
	if buyerID == "" {
		return nil, ErrNotFound
	}
	return s.store.GetByBuyer(ctx, buyerID)
}

// AddItem creates the buyer's basket on first use.
func (s *Service) AddItem(ctx context.Context, buyerID string, productID int64, quantity int) (*Basket, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}

	var out *Basket
	err := s.tx.WithinTx(ctx, func(st Store) error {
		b, err := st.GetByBuyer(ctx, buyerID)
		if errors.Is(err, ErrNotFound) {
			b, err = st.Create(ctx, buyerID)
		}
		if err != nil {
			return err
		}
		if err := st.AddQuantity(ctx, b.ID, productID, quantity); err != nil {
			return err
		}
		out, err = st.GetByBuyer(ctx, buyerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RemoveItem(ctx context.Context, buyerID string, productID int64, quantity int) (*Basket, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if buyerID == "" {
		return nil, ErrNotFound
	}

	var out *Basket
	err := s.tx.WithinTx(ctx, func(st Store) error {
		b, err := st.GetByBuyer(ctx, buyerID)
		if err != nil {
			return err
		}
		if err := st.RemoveQuantity(ctx, b.ID, productID, quantity); err != nil {
			return err
		}
		out, err = st.GetByBuyer(ctx, buyerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
