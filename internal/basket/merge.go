package basket

import (
	"context"
	"errors"
	"log"
)

type MergeState int

const (
	MergeNone MergeState = iota
	MergeUserOnly
	MergeAnonymousOnly
	MergeBoth
)

func (s MergeState) String() string {
	switch s {
	case MergeUserOnly:
		return "user-only"
	case MergeAnonymousOnly:
		return "anonymous-only"
	case MergeBoth:
		return "both"
	default:
		return "none"
	}
}

type MergeResult struct {
	Basket *Basket
	State  MergeState
}

// MergeService reconciles an anonymous basket with the signed-in user's basket.
type MergeService struct {
	tx     Transactor
	logger *log.Logger
}

func NewMergeService(tx Transactor, logger *log.Logger) *MergeService {
	return &MergeService{tx: tx, logger: logger}
}

// Merge resolves which basket the user keeps after sign-in. When both exist the
// anonymous basket wins and the user's previous basket is deleted; both writes
// share one transaction. An anonymousID that is not an issued anonymous id is
// ignored so another user's basket can never be claimed.
func (m *MergeService) Merge(ctx context.Context, username, anonymousID string) (MergeResult, error) {
	if anonymousID == username || !IsAnonymousID(anonymousID) {
		anonymousID = ""
	}

	var res MergeResult
	err := m.tx.WithinTx(ctx, func(s Store) error {
		userBasket, err := lookup(ctx, s, username)
		if err != nil {
			return err
		}
		var anonBasket *Basket
		if anonymousID != "" {
			if anonBasket, err = lookup(ctx, s, anonymousID); err != nil {
				return err
			}
		}

		switch {
		case anonBasket == nil && userBasket == nil:
			res = MergeResult{State: MergeNone}
		case anonBasket == nil:
			res = MergeResult{Basket: userBasket, State: MergeUserOnly}
		default:
			state := MergeAnonymousOnly
			if userBasket != nil {
				state = MergeBoth
				if err := s.Delete(ctx, userBasket.ID); err != nil {
					return err
				}
			}
			if err := s.Reassign(ctx, anonBasket.ID, username); err != nil {
				return err
			}
			anonBasket.BuyerID = username
			res = MergeResult{Basket: anonBasket, State: state}
		}
		return nil
	})
	if err != nil {
		return MergeResult{}, err
	}

	if res.State == MergeBoth || res.State == MergeAnonymousOnly {
		m.logger.Printf("basket %d merged into user %s (%s)", res.Basket.ID, username, res.State)
	}
	return res, nil
}

func lookup(ctx context.Context, s Store, buyerID string) (*Basket, error) {
	b, err := s.GetByBuyer(ctx, buyerID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return b, err
}
