// Package cartstate holds the last-known cart for an interactive client
// session and applies optimistic updates so quantity changes render
// before the server confirms them. The server's cart always replaces
// the optimistic guess once any response arrives; on error the guess is
// NOT rolled back — reconciling requires a full refresh. That gap is
// deliberate and documented, not a defect to fix here.
package cartstate

import (
	"sync"

	"opacweb-server/models"
)

// Update is a reducer-style optimistic mutation.
type Update struct {
	Type     UpdateType
	LineID   string
	Quantity int
}

type UpdateType string

const (
	UpdateTypeUpdate UpdateType = "update"
	UpdateTypeRemove UpdateType = "remove"
)

// State tracks the confirmed cart plus any optimistic patch applied on
// top of it.
type State struct {
	mu   sync.Mutex
	cart *models.Cart
}

func New() *State {
	return &State{}
}

// SetCart installs the authoritative server cart, discarding whatever
// optimistic state was showing. Always replace, never merge.
func (s *State) SetCart(cart *models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart
}

// Cart returns the currently rendered cart, optimistic or confirmed.
func (s *State) Cart() *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// TotalQuantity is the badge count; 0 when no cart exists yet.
func (s *State) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.TotalQuantity
}

// Apply computes the predicted post-mutation cart in memory. A no-op
// when no cart is loaded or the line does not exist.
func (s *State) Apply(update Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return
	}
	// A line cannot exist below quantity 1, even optimistically; an
	// update to zero is a removal.
	if update.Type == UpdateTypeUpdate && update.Quantity < 1 {
		update.Type = UpdateTypeRemove
	}

	next := cloneCart(s.cart)
	switch update.Type {
	case UpdateTypeUpdate:
		for i := range next.Lines {
			if next.Lines[i].ID == update.LineID {
				next.TotalQuantity += update.Quantity - next.Lines[i].Quantity
				next.Lines[i].Quantity = update.Quantity
				break
			}
		}
	case UpdateTypeRemove:
		lines := next.Lines[:0]
		for _, line := range next.Lines {
			if line.ID == update.LineID {
				next.TotalQuantity -= line.Quantity
				continue
			}
			lines = append(lines, line)
		}
		next.Lines = lines
	}
	if next.TotalQuantity < 0 {
		next.TotalQuantity = 0
	}
	s.cart = next
}

func cloneCart(cart *models.Cart) *models.Cart {
	next := *cart
	next.Lines = make([]models.CartLine, len(cart.Lines))
	copy(next.Lines, cart.Lines)
	return &next
}
