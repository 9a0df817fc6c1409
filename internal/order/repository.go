package order

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

// Create inserts the order and its items and fills in ID and OrderDate.
func (r *Repository) Create(ctx context.Context, o *Order) error {
	a := o.ShippingAddress
	err := r.exec.QueryRow(ctx, `
		INSERT INTO orders (buyer_id, ship_full_name, ship_line1, ship_line2, ship_city, ship_state,
		                    ship_zip, ship_country, subtotal, delivery_fee, status, payment_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, order_date
	`, o.BuyerID, a.FullName, a.Address1, a.Address2, a.City, a.State,
		a.Zip, a.Country, o.Subtotal, o.DeliveryFee, o.Status, o.PaymentIntentID,
	).Scan(&o.ID, &o.OrderDate)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err := r.exec.Exec(ctx, `
			INSERT INTO order_items (order_id, item_product_id, item_name, item_image_url, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, o.ID, it.ItemOrdered.ProductID, it.ItemOrdered.Name, it.ItemOrdered.ImageURL, it.Price, it.Quantity)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

const orderColumns = `id, buyer_id, order_date, ship_full_name, ship_line1, ship_line2, ship_city,
	ship_state, ship_zip, ship_country, subtotal, delivery_fee, status, payment_intent_id`

func (r *Repository) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	rows, err := r.exec.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 ORDER BY id`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	if len(orders) == 0 {
		return []Order{}, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}
	if err := r.loadItems(ctx, ids, func(orderID int64, it Item) {
		o := &orders[index[orderID]]
		o.Items = append(o.Items, it)
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetForBuyer only returns orders owned by buyerID.
func (r *Repository) GetForBuyer(ctx context.Context, buyerID string, id int64) (*Order, error) {
	rows, err := r.exec.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 AND id = $2`, buyerID, id)
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if err := r.loadItems(ctx, []int64{o.ID}, func(_ int64, it Item) {
		o.Items = append(o.Items, it)
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []int64, add func(orderID int64, it Item)) error {
	rows, err := r.exec.Query(ctx, `
		SELECT order_id, item_product_id, item_name, item_image_url, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, orderIDs)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int64
			it      Item
		)
		if err := rows.Scan(&orderID, &it.ItemOrdered.ProductID, &it.ItemOrdered.Name,
			&it.ItemOrdered.ImageURL, &it.Price, &it.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		add(orderID, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (Order, error) {
	var o Order
	a := &o.ShippingAddress
	err := row.Scan(&o.ID, &o.BuyerID, &o.OrderDate, &a.FullName, &a.Address1, &a.Address2, &a.City,
		&a.State, &a.Zip, &a.Country, &o.Subtotal, &o.DeliveryFee, &o.Status, &o.PaymentIntentID)
	o.Items = []Item{}
	return o, err
}
