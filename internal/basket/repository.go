package basket

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

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

// GetByBuyer loads the basket with its items and their current products.
func (r *Repository) GetByBuyer(ctx context.Context, buyerID string) (*Basket, error) {
	b := &Basket{}
	err := r.exec.QueryRow(ctx, `
		SELECT id, buyer_id, COALESCE(payment_intent_id, ''), COALESCE(client_secret, '')
		FROM baskets
		WHERE buyer_id = $1
	`, buyerID).Scan(&b.ID, &b.BuyerID, &b.PaymentIntentID, &b.ClientSecret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select basket: %w", err)
	}

	rows, err := r.exec.Query(ctx, `
		SELECT bi.id, bi.product_id, bi.quantity,
		       p.id, p.name, p.description, p.price, p.image_url, p.public_id, p.type, p.brand, p.qty_in_stock
		FROM basket_items bi
		LEFT JOIN products p ON p.id = bi.product_id
		WHERE bi.basket_id = $1
		ORDER BY bi.id
	`, b.ID)
	if err != nil {
		return nil, fmt.Errorf("select basket items: %w", err)
	}
	defer rows.Close()

	b.Items = []Item{}
	for rows.Next() {
		var (
			it                                           Item
			pID, pPrice                                  *int64
			pName, pDesc, pImage, pPublic, pType, pBrand *string
			pQty                                         *int
		)
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity,
			&pID, &pName, &pDesc, &pPrice, &pImage, &pPublic, &pType, &pBrand, &pQty); err != nil {
			return nil, fmt.Errorf("scan basket item: %w", err)
		}
		if pID != nil {
			it.Product = &catalog.Product{
				ID:          *pID,
				Name:        *pName,
				Description: *pDesc,
				Price:       *pPrice,
				ImageURL:    *pImage,
				PublicID:    *pPublic,
				Type:        *pType,
				Brand:       *pBrand,
				QtyInStock:  *pQty,
			}
		}
		b.Items = append(b.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return b, nil
}

func (r *Repository) Create(ctx context.Context, buyerID string) (*Basket, error) {
	b := &Basket{BuyerID: buyerID, Items: []Item{}}
	if err := r.exec.QueryRow(ctx,
		`INSERT INTO baskets (buyer_id) VALUES ($1) RETURNING id`, buyerID,
	).Scan(&b.ID); err != nil {
		return nil, fmt.Errorf("insert basket: %w", err)
	}
	return b, nil
}

// AddQuantity inserts the line or increases an existing one.
func (r *Repository) AddQuantity(ctx context.Context, basketID, productID int64, quantity int) error {
	_, err := r.exec.Exec(ctx, `
		INSERT INTO basket_items (basket_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (basket_id, product_id)
		DO UPDATE SET quantity = basket_items.quantity + EXCLUDED.quantity
	`, basketID, productID, quantity)
	if err != nil {
		return fmt.Errorf("upsert basket item: %w", err)
	}
	return nil
}

// RemoveQuantity lowers a line and deletes it once it reaches zero.
// Removing a product that is not in the basket is a no-op.
func (r *Repository) RemoveQuantity(ctx context.Context, basketID, productID int64, quantity int) error {
	_, err := r.exec.Exec(ctx, `
		DELETE FROM basket_items
		WHERE basket_id = $1 AND product_id = $2 AND quantity <= $3
	`, basketID, productID, quantity)
	if err != nil {
		return fmt.Errorf("delete basket item: %w", err)
	}
	_, err = r.exec.Exec(ctx, `
		UPDATE basket_items SET quantity = quantity - $3
		WHERE basket_id = $1 AND product_id = $2
	`, basketID, productID, quantity)
	if err != nil {
		return fmt.Errorf("update basket item: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, basketID int64) error {
	if _, err := r.exec.Exec(ctx, `DELETE FROM baskets WHERE id = $1`, basketID); err != nil {
		return fmt.Errorf("delete basket %d: %w", basketID, err)
	}
	return nil
}

// Reassign moves a basket to a new buyer id.
func (r *Repository) Reassign(ctx context.Context, basketID int64, buyerID string) error {
	tag, err := r.exec.Exec(ctx, `UPDATE baskets SET buyer_id = $2 WHERE id = $1`, basketID, buyerID)
	if err != nil {
		return fmt.Errorf("reassign basket %d: %w", basketID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
