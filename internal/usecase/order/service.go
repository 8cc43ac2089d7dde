package order

import (
	"sort"
	"sync"

	domorder "example.com/storefront/internal/domain/order"
)

// Service keeps the orders placed by this process. The storefront API has no
// order listing endpoint, so this is the only history there is.
type Service struct {
	mu     sync.RWMutex
	orders []domorder.Order
}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Record(o *domorder.Order) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, cloneOrder(*o))
}

// List returns the orders of userID, newest first. Orders placed at the same
// instant keep reverse insertion order.
func (s *Service) List(userID string) []*domorder.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domorder.Order, 0, len(s.orders))
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].UserID != userID {
			continue
		}
		o := cloneOrder(s.orders[i])
		out = append(out, &o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Service) Get(userID, id string) (*domorder.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id && o.UserID == userID {
			cp := cloneOrder(o)
			return &cp, nil
		}
	}
	return nil, domorder.ErrOrderNotFound
}

// Reset forgets the history of userID.
func (s *Service) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.UserID != userID {
			kept = append(kept, o)
		}
	}
	s.orders = kept
}

func cloneOrder(o domorder.Order) domorder.Order {
	o.Items = append([]domorder.OrderItem(nil), o.Items...)
	return o
}
