// Package cart holds the in-memory cart store: product id to line, quantity
// arithmetic and the derived totals.
//
// A Store is owned by exactly one caller and is not safe for concurrent use;
// callers serialise access the way a UI thread serialises click handlers.
package cart

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-cart/internal/model"
)

// Op names a store mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpAdjust Op = "adjust"
)

// Line pairs a catalog product with a positive quantity.
type Line struct {
	Product  *model.Product
	Quantity int
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a point-in-time copy of the store's lines in insertion order.
type Snapshot struct {
	Version uint64
	Lines   []Line
}

// Empty reports whether the snapshot has no lines.
func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

// TotalQuantity sums quantities over all lines.
func (s Snapshot) TotalQuantity() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// TotalAmount sums price * quantity over all lines.
func (s Snapshot) TotalAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// Change is delivered to observers after every mutation.
type Change struct {
	Op        Op
	ProductID string
	Snapshot  Snapshot
}

type observer struct {
	id int
	fn func(Change)
}

// Store maps product ids to cart lines.
type Store struct {
	lines     map[string]*Line
	order     []string
	version   uint64
	observers []observer
	nextObsID int
}

// New returns an empty store.
func New() *Store {
	return &Store{lines: make(map[string]*Line)}
}

// Subscribe registers fn to be called after every mutation. The returned
// function unregisters it.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// AddLine adds qty units of p, creating the line when absent. Quantities
// accumulate, saturating at MaxQuantity; a repeated add never overwrites the
// existing quantity.
func (s *Store) AddLine(p *model.Product, qty int) {
	l, ok := s.lines[p.ID]
	if !ok {
		l = &Line{Product: p}
		s.lines[p.ID] = l
		s.order = append(s.order, p.ID)
	}
	l.Quantity = min(MaxQuantity, l.Quantity+boundDelta(qty))
	if l.Quantity <= 0 {
		s.delete(p.ID)
	}
	s.notify(OpAdd, p.ID)
}

// RemoveLine deletes the line for id. Absent ids are a no-op.
func (s *Store) RemoveLine(id string) {
	s.delete(id)
	s.notify(OpRemove, id)
}

// AdjustQuantity moves the quantity of id by delta, never below 1 nor above
// MaxQuantity. Absent ids are a no-op.
func (s *Store) AdjustQuantity(id string, delta int) {
	if l, ok := s.lines[id]; ok {
		l.Quantity = StepQuantity(l.Quantity, delta)
	}
	s.notify(OpAdjust, id)
}

// TotalAmount returns the sum of price * quantity over all lines.
func (s *Store) TotalAmount() decimal.Decimal { return s.Snapshot().TotalAmount() }

// TotalQuantity returns the sum of quantities over all lines.
func (s *Store) TotalQuantity() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Len returns the number of lines.
func (s *Store) Len() int { return len(s.lines) }

// Line returns the line for id.
func (s *Store) Line(id string) (Line, bool) {
	l, ok := s.lines[id]
	if !ok {
		return Line{}, false
	}
	return *l, true
}

// Lines returns the lines in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.lines[id])
	}
	return out
}

// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Version: s.version, Lines: s.Lines()}
}

func (s *Store) delete(id string) {
	if _, ok := s.lines[id]; !ok {
		return
	}
	delete(s.lines, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) notify(op Op, id string) {
	s.version++
	if len(s.observers) == 0 {
		return
	}
	ch := Change{Op: op, ProductID: id, Snapshot: s.Snapshot()}
	obs := make([]observer, len(s.observers))
	copy(obs, s.observers)
	for _, o := range obs {
		o.fn(ch)
	}
}

// MaxQuantity bounds every line and stepper quantity.
const MaxQuantity = 9999

// ClampQuantity bounds n to [1, MaxQuantity].
func ClampQuantity(n int) int {
	return min(MaxQuantity, max(1, n))
}

// StepQuantity moves q by delta within [1, MaxQuantity].
func StepQuantity(q, delta int) int {
	return ClampQuantity(q + boundDelta(delta))
}

// boundDelta keeps a change small enough that adding it to a bounded quantity cannot overflow.
func boundDelta(d int) int {
	return min(MaxQuantity, max(-MaxQuantity, d))
}

// ParseQuantity reads a user-entered quantity. Empty or non-numeric input counts as 1,
// oversized input as MaxQuantity.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-") {
		return MaxQuantity
	}
	if err != nil {
		return 1
	}
	return ClampQuantity(n)
}
