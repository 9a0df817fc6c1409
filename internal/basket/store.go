package basket

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/db"
)

// Store is the persistence surface used by the basket services.
type Store interface {
	GetByBuyer(ctx context.Context, buyerID string) (*Basket, error)
	Create(ctx context.Context, buyerID string) (*Basket, error)
	AddQuantity(ctx context.Context, basketID, productID int64, quantity int) error
	RemoveQuantity(ctx context.Context, basketID, productID int64, quantity int) error
	Delete(ctx context.Context, basketID int64) error
	Reassign(ctx context.Context, basketID int64, buyerID string) error
}

// Transactor runs fn against a Store bound to a single transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type PgTransactor struct {
	pool db.TxBeginner
	repo *Repository
}

func NewPgTransactor(pool db.TxBeginner, repo *Repository) *PgTransactor {
	return &PgTransactor{pool: pool, repo: repo}
}

func (t *PgTransactor) WithinTx(ctx context.Context, fn func(Store) error) error {
	return db.WithTx(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(t.repo.WithExecutor(tx))
	})
}
