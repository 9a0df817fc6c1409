package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	exec Executor
}

func NewRepository(exec Executor) *Repository {
	return &Repository{exec: exec}
}

// WithExecutor returns a shallow copy using the provided executor (e.g., a transaction).
func (r *Repository) WithExecutor(exec Executor) *Repository {
	return &Repository{exec: exec}
}

const productColumns = `id, name, description, price, image_url, public_id, type, brand, qty_in_stock`

const productFilter = `
	WHERE ($1 = '' OR strpos(lower(name), $1) > 0)
	  AND (cardinality($2::text[]) = 0 OR lower(brand) = ANY($2::text[]))
	  AND (cardinality($3::text[]) = 0 OR lower(type) = ANY($3::text[]))`

func orderClause(orderBy string) string {
	switch orderBy {
	case OrderByPrice:
		return "price ASC, id ASC"
	case OrderByPriceDesc:
		return "price DESC, id ASC"
	default:
		return "name ASC, id ASC"
	}
}

// List filters by search term, then brand/type membership, sorts, and
// returns the requested page together with its metadata.
func (r *Repository) List(ctx context.Context, params Params) (PagedList, error) {
	p := params.Normalize()

	var total int
	if err := r.exec.QueryRow(ctx,
		`SELECT count(*) FROM products`+productFilter,
		p.SearchTerm, p.Brands, p.Types,
	).Scan(&total); err != nil {
		return PagedList{}, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.exec.Query(ctx,
		`SELECT `+productColumns+` FROM products`+productFilter+`
	ORDER BY `+orderClause(p.OrderBy)+`
	LIMIT $4 OFFSET $5`,
		p.SearchTerm, p.Brands, p.Types, p.PageSize, p.offset(),
	)
	if err != nil {
		return PagedList{}, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	items := make([]Product, 0, p.PageSize)
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return PagedList{}, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, prod)
	}
	if err := rows.Err(); err != nil {
		return PagedList{}, fmt.Errorf("rows: %w", err)
	}

	return PagedList{
		Items:    items,
		MetaData: NewMetaData(total, p.PageNumber, p.PageSize),
	}, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate reads the product and locks its row until the surrounding
// transaction ends. It must be called on a transaction executor.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) get(ctx context.Context, query string, id int64) (*Product, error) {
	p, err := scanProduct(r.exec.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select product %d: %w", id, err)
	}
	return &p, nil
}

// DecrementStock never takes stock below zero; a short row yields ErrInsufficientStock.
func (r *Repository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	tag, err := r.exec.Exec(ctx, `
		UPDATE products
		SET qty_in_stock = qty_in_stock - $2, updated_at = now()
		WHERE id = $1 AND qty_in_stock >= $2
	`, id, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock for product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, p *Product) error {
	err := r.exec.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image_url, public_id, type, brand, qty_in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Name, p.Description, p.Price, p.ImageURL, p.PublicID, p.Type, p.Brand, p.QtyInStock).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, p *Product) error {
	tag, err := r.exec.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, image_url = $5, public_id = $6,
		    type = $7, brand = $8, qty_in_stock = $9, updated_at = now()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.PublicID, p.Type, p.Brand, p.QtyInStock)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.exec.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Filters(ctx context.Context) (Filters, error) {
	brands, err := r.distinct(ctx, `SELECT DISTINCT brand FROM products WHERE brand <> '' ORDER BY brand`)
	if err != nil {
		return Filters{}, fmt.Errorf("select brands: %w", err)
	}
	types, err := r.distinct(ctx, `SELECT DISTINCT type FROM products WHERE type <> '' ORDER BY type`)
	if err != nil {
		return Filters{}, fmt.Errorf("select types: %w", err)
	}
	return Filters{Brands: brands, Types: types}, nil
}

func (r *Repository) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.exec.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.PublicID, &p.Type, &p.Brand, &p.QtyInStock)
	return p, err
}
