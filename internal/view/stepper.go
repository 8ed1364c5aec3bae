package view

import "github.com/fairyhunter13/storefront-cart/internal/cart"

// Steppers holds the quantity picker value of each product card. Values are
// local to the grid and unrelated to cart line quantities; every value is
// between 1 and cart.MaxQuantity.
type Steppers struct {
	values map[string]int
}

// NewSteppers returns steppers all reading 1.
func NewSteppers() *Steppers {
	return &Steppers{values: make(map[string]int)}
}

// Value returns the current value for the card, 1 when untouched.
func (s *Steppers) Value(id string) int {
	if v, ok := s.values[id]; ok {
		return v
	}
	return 1
}

// Set stores n, clamped to [1, cart.MaxQuantity].
func (s *Steppers) Set(id string, n int) int {
	v := cart.ClampQuantity(n)
	s.values[id] = v
	return v
}

// Step moves the value by delta, clamped to [1, cart.MaxQuantity].
func (s *Steppers) Step(id string, delta int) int {
	return s.Set(id, cart.StepQuantity(s.Value(id), delta))
}
