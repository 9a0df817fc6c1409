package account

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/validation"
)

type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	Create(ctx context.Context, u *User, role string) error
}

type BasketMerger interface {
	Merge(ctx context.Context, username, anonymousID string) (basket.MergeResult, error)
}

type BasketReader interface {
	Get(ctx context.Context, buyerID string) (*basket.Basket, error)
}

type TokenIssuer interface {
	Issue(id auth.Identity, roles []string) (string, error)
}

// Session is what a signed-in client receives.
type Session struct {
	Username string
	Email    string
	Token    string
	Basket   *basket.Basket
}

type Service struct {
	store     Store
	merger    BasketMerger
	baskets   BasketReader
	tokens    TokenIssuer
	validator *validation.Validator
	logger    *log.Logger
	cost      int
}

func NewService(store Store, merger BasketMerger, baskets BasketReader, tokens TokenIssuer, logger *log.Logger) *Service {
	return &Service{
		store:     store,
		merger:    merger,
		baskets:   baskets,
		tokens:    tokens,
		validator: validation.New(),
		logger:    logger,
		cost:      bcrypt.DefaultCost,
	}
}

// SignUp creates a Member. All validation failures, including taken names,
// are returned together as *validation.Errors.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) error {
	verrs, err := s.validator.Struct(req)
	if err != nil {
		return err
	}
	if basket.IsAnonymousID(req.Username) {
		// would collide with anonymous basket owners
		verrs.Add("username", fmt.Sprintf("Username '%s' is not allowed.", req.Username))
	}
	if req.Password != "" {
		for _, msg := range passwordProblems(req.Password) {
			verrs.Add("password", msg)
		}
	}

	if req.Username != "" || req.Email != "" {
		userTaken, emailTaken, err := s.store.Taken(ctx, req.Username, req.Email)
		if err != nil {
			return err
		}
		if userTaken && req.Username != "" {
			verrs.Add("username", fmt.Sprintf("Username '%s' is already taken.", req.Username))
		}
		if emailTaken && req.Email != "" {
			verrs.Add("email", fmt.Sprintf("Email '%s' is already taken.", req.Email))
		}
	}
	if err := verrs.OrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.Create(ctx, u, auth.RoleMember); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// lost a race with a concurrent sign-up
			dup := &validation.Errors{}
			dup.Add("username", "Username or email is already taken.")
			return dup
		}
		return err
	}
	s.logger.Printf("user %s signed up", u.Username)
	return nil
}

// SignIn checks credentials, merges any anonymous basket into the user's and
// issues a token.
func (s *Service) SignIn(ctx context.Context, req SignInRequest, anonymousID string) (*Session, error) {
	u, err := s.store.FindByUsername(ctx, req.Username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrUnauthorized
	}

	merged, err := s.merger.Merge(ctx, u.Username, anonymousID)
	if err != nil {
		return nil, fmt.Errorf("merge baskets: %w", err)
	}
	return s.session(u, merged.Basket)
}

// CurrentUser re-issues a token for an authenticated user along with their basket.
func (s *Service) CurrentUser(ctx context.Context, username string) (*Session, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	b, err := s.baskets.Get(ctx, username)
	if err != nil && !errors.Is(err, basket.ErrNotFound) {
		return nil, err
	}
	return s.session(u, b)
}

// SavedAddress returns nil when the user never saved one.
func (s *Service) SavedAddress(ctx context.Context, username string) (*Address, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return u.Address, nil
}

func (s *Service) session(u *User, b *basket.Basket) (*Session, error) {
	token, err := s.tokens.Issue(auth.Identity{Username: u.Username, Email: u.Email}, u.Roles)
	if err != nil {
		return nil, err
	}
	return &Session{Username: u.Username, Email: u.Email, Token: token, Basket: b}, nil
}
