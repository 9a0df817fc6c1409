// Package app wires repositories, services and the HTTP router together.
package app

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/config"
	httpapi "github.com/andreasstove999/ecommerce-system/store-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/order"
)

// Options carries the optional collaborators. Nil values disable them.
type Options struct {
	Cache     catalog.Cache
	Images    catalog.ImageStore
	Publisher order.Publisher
}

type App struct {
	Router    http.Handler
	Catalog   *catalog.Service
	Baskets   *basket.Service
	Merge     *basket.MergeService
	Accounts  *account.Service
	Placement *order.PlacementService
	Orders    *order.QueryService
}

func New(cfg config.Config, pool *pgxpool.Pool, tokens *auth.JWTIssuer, logger *log.Logger, opts Options) *App {
	products := catalog.NewRepository(pool)
	baskets := basket.NewRepository(pool)
	accounts := account.NewRepository(pool)
	orders := order.NewRepository(pool)

	catalogSvc := catalog.NewService(products, opts.Cache, opts.Images, logger)
	basketTx := basket.NewPgTransactor(pool, baskets)
	basketSvc := basket.NewService(baskets, basketTx, catalogSvc)
	merge := basket.NewMergeService(basketTx, logger)
	accountSvc := account.NewService(accounts, merge, basketSvc, tokens, logger)

	pricing := order.Pricing{DeliveryFee: cfg.DeliveryFee, FreeDeliveryThreshold: cfg.FreeDeliveryThreshold}
	placement := order.NewPlacementService(
		order.NewPgTransactor(pool, baskets, products, accounts, orders),
		pricing, catalogSvc, opts.Publisher, logger,
	)
	querySvc := order.NewQueryService(orders)

	a := &App{
		Catalog:   catalogSvc,
		Baskets:   basketSvc,
		Merge:     merge,
		Accounts:  accountSvc,
		Placement: placement,
		Orders:    querySvc,
	}
	a.Router = httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		SecureCookies:    cfg.SecureCookies,
		Catalog:          catalogSvc,
		Baskets:          basketSvc,
		Accounts:         accountSvc,
		Placer:           placement,
		Orders:           querySvc,
		Verifier:         tokens,
		HealthCheck:      func(ctx context.Context) error { return pool.Ping(ctx) },
	})
	return a
}
