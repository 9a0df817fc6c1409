package order

const (
	DefaultDeliveryFee           int64 = 500
	DefaultFreeDeliveryThreshold int64 = 10000
)

// Pricing holds the delivery fee rule. Amounts are minor currency units.
type Pricing struct {
	DeliveryFee           int64
	FreeDeliveryThreshold int64
}

func DefaultPricing() Pricing {
	return Pricing{DeliveryFee: DefaultDeliveryFee, FreeDeliveryThreshold: DefaultFreeDeliveryThreshold}
}

func (p Pricing) Subtotal(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}

// Fee is free only strictly above the threshold.
func (p Pricing) Fee(subtotal int64) int64 {
	if subtotal > p.FreeDeliveryThreshold {
		return 0
	}
	return p.DeliveryFee
}
