package httpapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/validation"
)

type CatalogService interface {
	List(ctx context.Context, params catalog.Params) (catalog.PagedList, error)
	Get(ctx context.Context, id int64) (*catalog.Product, error)
	Filters(ctx context.Context) (catalog.Filters, error)
	Create(ctx context.Context, in catalog.ProductInput, upload *catalog.Upload) (*catalog.Product, error)
	Update(ctx context.Context, id int64, in catalog.ProductInput, upload *catalog.Upload) (*catalog.Product, error)
	Delete(ctx context.Context, id int64) error
}

type BasketService interface {
	Get(ctx context.Context, buyerID string) (*basket.Basket, error)
	AddItem(ctx context.Context, buyerID string, productID int64, quantity int) (*basket.Basket, error)
	RemoveItem(ctx context.Context, buyerID string, productID int64, quantity int) (*basket.Basket, error)
}

type AccountService interface {
	SignUp(ctx context.Context, req account.SignUpRequest) error
	SignIn(ctx context.Context, req account.SignInRequest, anonymousID string) (*account.Session, error)
	CurrentUser(ctx context.Context, username string) (*account.Session, error)
	SavedAddress(ctx context.Context, username string) (*account.Address, error)
}

type OrderPlacer interface {
	Place(ctx context.Context, req order.PlaceRequest) (*order.Order, error)
}

type OrderReader interface {
	List(ctx context.Context, buyerID string) ([]order.Order, error)
	Get(ctx context.Context, buyerID string, id int64) (*order.Order, error)
}

type Deps struct {
	Logger           *log.Logger
	CORSAllowOrigins []string
	RequestTimeout   time.Duration
	SecureCookies    bool

	Catalog  CatalogService
	Baskets  BasketService
	Accounts AccountService
	Placer   OrderPlacer
	Orders   OrderReader
	Verifier middleware.TokenVerifier

	// HealthCheck reports dependency health; nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 5 * time.Second
	}
	h := &handler{deps: d, logger: d.Logger, validate: validation.New()}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))
	r.Use(chimw.Timeout(d.RequestTimeout))
	r.Use(middleware.Authenticate(d.Verifier))

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/account", func(r chi.Router) {
			r.Post("/signin", h.signIn)
			r.Post("/signup", h.signUp)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles())
				r.Get("/current/user", h.currentUser)
				r.Get("/saved/address", h.savedAddress)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/filters", h.productFilters)
			r.Get("/{id}", h.getProduct)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(auth.RoleAdmin))
				r.Post("/", h.createProduct)
				r.Put("/", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})
		})

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", h.getBasket)
			r.Post("/", h.addItem)
			r.Delete("/", h.removeItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireRoles())
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
			r.Get("/{id}", h.getOrder)
		})
	})

	return r
}

type handler struct {
	deps     Deps
	logger   *log.Logger
	validate *validation.Validator
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.deps.HealthCheck != nil {
		if err := h.deps.HealthCheck(r.Context()); err != nil {
			h.logger.Printf("health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "store-service"})
}
