package basket

import (
	"context"
	"errors"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

// memStore is an in-memory Store whose WithinTx restores the previous state
// when fn fails.
type memStore struct {
	baskets  map[int64]*Basket
	nextID   int64
	products map[int64]*catalog.Product

	failReassign error
}

func newMemStore() *memStore {
	return &memStore{baskets: map[int64]*Basket{}, products: map[int64]*catalog.Product{}}
}

func (m *memStore) put(buyerID string, items ...Item) *Basket {
	m.nextID++
	b := &Basket{ID: m.nextID, BuyerID: buyerID, Items: items}
	m.baskets[b.ID] = b
	return b
}

func (m *memStore) byBuyer(buyerID string) *Basket {
	for _, b := range m.baskets {
		if b.BuyerID == buyerID {
			return b
		}
	}
	return nil
}

func (m *memStore) GetByBuyer(_ context.Context, buyerID string) (*Basket, error) {
	b := m.byBuyer(buyerID)
	if b == nil {
		return nil, ErrNotFound
	}
	cp := *b
	cp.Items = make([]Item, len(b.Items))
	for i, it := range b.Items {
		it.Product = m.products[it.ProductID]
		cp.Items[i] = it
	}
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, buyerID string) (*Basket, error) {
	b := m.put(buyerID)
	cp := *b
	return &cp, nil
}

func (m *memStore) AddQuantity(_ context.Context, basketID, productID int64, quantity int) error {
	b := m.baskets[basketID]
	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			b.Items[i].Quantity += quantity
			return nil
		}
	}
	b.Items = append(b.Items, Item{ID: int64(len(b.Items) + 1), ProductID: productID, Quantity: quantity})
	return nil
}

func (m *memStore) RemoveQuantity(_ context.Context, basketID, productID int64, quantity int) error {
	b := m.baskets[basketID]
	kept := b.Items[:0]
	for _, it := range b.Items {
		if it.ProductID == productID {
			it.Quantity -= quantity
			if it.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, it)
	}
	b.Items = kept
	return nil
}

func (m *memStore) Delete(_ context.Context, basketID int64) error {
	delete(m.baskets, basketID)
	return nil
}

func (m *memStore) Reassign(_ context.Context, basketID int64, buyerID string) error {
	if m.failReassign != nil {
		return m.failReassign
	}
	b, ok := m.baskets[basketID]
	if !ok {
		return ErrNotFound
	}
	b.BuyerID = buyerID
	return nil
}

func (m *memStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	snapshot := make(map[int64]*Basket, len(m.baskets))
	for id, b := range m.baskets {
		cp := *b
		cp.Items = append([]Item(nil), b.Items...)
		snapshot[id] = &cp
	}
	nextID := m.nextID

	if err := fn(m); err != nil {
		m.baskets = snapshot
		m.nextID = nextID
		return err
	}
	return nil
}

func (m *memStore) Get(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

var errBoom = errors.New("boom")
