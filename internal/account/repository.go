package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

const uniqueViolation = "23505"

type Repository struct {
	exec catalog.Executor
}

func NewRepository(exec catalog.Executor) *Repository {
	return &Repository{exec: exec}
}

// WithExecutor returns a shallow copy using the provided executor (e.g., a transaction).
func (r *Repository) WithExecutor(exec catalog.Executor) *Repository {
	return &Repository{exec: exec}
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var (
		u    User
		addr nullableAddress
	)
	err := r.exec.QueryRow(ctx, `
		SELECT u.id::text, u.username, u.email, u.password_hash,
		       u.address_full_name, u.address_line1, u.address_line2, u.address_city,
		       u.address_state, u.address_zip, u.address_country,
		       COALESCE(array_agg(ur.role_name ORDER BY ur.role_name) FILTER (WHERE ur.role_name IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.username = $1
		GROUP BY u.id
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&addr.FullName, &addr.Address1, &addr.Address2, &addr.City,
		&addr.State, &addr.Zip, &addr.Country, &u.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	u.Address = addr.value()
	return &u, nil
}

// Taken reports whether the username and the email are already in use.
func (r *Repository) Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	err = r.exec.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1),
		       EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($2))
	`, username, email).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return usernameTaken, emailTaken, nil
}

// Create inserts the user and its role in a single statement.
func (r *Repository) Create(ctx context.Context, u *User, role string) error {
	_, err := r.exec.Exec(ctx, `
		WITH inserted AS (
			INSERT INTO users (id, username, email, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		)
		INSERT INTO user_roles (user_id, role_name)
		SELECT id, $5 FROM inserted
	`, u.ID, u.Username, u.Email, u.PasswordHash, role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.Roles = []string{role}
	return nil
}

// SaveAddress overwrites the whole saved address.
func (r *Repository) SaveAddress(ctx context.Context, username string, a Address) error {
	tag, err := r.exec.Exec(ctx, `
		UPDATE users
		SET address_full_name = $2, address_line1 = $3, address_line2 = $4, address_city = $5,
		    address_state = $6, address_zip = $7, address_country = $8
		WHERE username = $1
	`, username, a.FullName, a.Address1, a.Address2, a.City, a.State, a.Zip, a.Country)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type nullableAddress struct {
	FullName, Address1, Address2, City, State, Zip, Country *string
}

func (n nullableAddress) value() *Address {
	if n.FullName == nil {
		return nil
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return &Address{
		FullName: *n.FullName,
		Address1: deref(n.Address1),
		Address2: deref(n.Address2),
		City:     deref(n.City),
		State:    deref(n.State),
		Zip:      deref(n.Zip),
		Country:  deref(n.Country),
	}
}
