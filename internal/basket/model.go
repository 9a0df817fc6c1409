package basket

import (
	"errors"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
)

var (
	ErrNotFound        = errors.New("basket not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type Basket struct {
	ID              int64
	BuyerID         string
	PaymentIntentID string
	ClientSecret    string
	Items           []Item
}

// Item references a product by id. Product is nil when the product row no
// longer exists.
type Item struct {
	ID        int64
	ProductID int64
	Quantity  int
	Product   *catalog.Product
}


// IsAnonymousID reports whether id has the shape of an issued anonymous buyer
// id. Usernames share the buyer_id column, so anything else is not anonymous.
func IsAnonymousID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
