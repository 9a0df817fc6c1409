package order

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/db"
)

// PgTransactor binds the basket, catalog, account and order repositories to
// one pgx transaction per placement.
type PgTransactor struct {
	pool     db.TxBeginner
	baskets  *basket.Repository
	products *catalog.Repository
	accounts *account.Repository
	orders   *Repository
}

func NewPgTransactor(pool db.TxBeginner, baskets *basket.Repository, products *catalog.Repository,
	accounts *account.Repository, orders *Repository) *PgTransactor {
	return &PgTransactor{pool: pool, baskets: baskets, products: products, accounts: accounts, orders: orders}
}

func (t *PgTransactor) WithinTx(ctx context.Context, fn func(UnitOfWork) error) error {
	return db.WithTx(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(&pgUnitOfWork{
			baskets:  t.baskets.WithExecutor(tx),
			products: t.products.WithExecutor(tx),
			accounts: t.accounts.WithExecutor(tx),
			orders:   t.orders.WithExecutor(tx),
		})
	})
}

type pgUnitOfWork struct {
	baskets  *basket.Repository
	products *catalog.Repository
	accounts *account.Repository
	orders   *Repository
}

func (u *pgUnitOfWork) BasketByBuyer(ctx context.Context, buyerID string) (*basket.Basket, error) {
	return u.baskets.GetByBuyer(ctx, buyerID)
}

func (u *pgUnitOfWork) LockProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return u.products.GetForUpdate(ctx, id)
}

func (u *pgUnitOfWork) DecrementStock(ctx context.Context, id int64, quantity int) error {
	return u.products.DecrementStock(ctx, id, quantity)
}

func (u *pgUnitOfWork) CreateOrder(ctx context.Context, o *Order) error {
	return u.orders.Create(ctx, o)
}

func (u *pgUnitOfWork) DeleteBasket(ctx context.Context, basketID int64) error {
	return u.baskets.Delete(ctx, basketID)
}

func (u *pgUnitOfWork) SaveAddress(ctx context.Context, username string, a account.Address) error {
	return u.accounts.SaveAddress(ctx, username, a)
}
