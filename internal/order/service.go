package order

import "context"

type Reader interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	GetForBuyer(ctx context.Context, buyerID string, id int64) (*Order, error)
}

// QueryService serves a buyer's order history.
type QueryService struct {
	reader Reader
}

func NewQueryService(reader Reader) *QueryService {
	return &QueryService{reader: reader}
}

func (s *QueryService) List(ctx context.Context, buyerID string) ([]Order, error) {
	return s.reader.ListByBuyer(ctx, buyerID)
}

func (s *QueryService) Get(ctx context.Context, buyerID string, id int64) (*Order, error) {
	return s.reader.GetForBuyer(ctx, buyerID, id)
}
