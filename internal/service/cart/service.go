// Package cart implements the cart state machine. The Store owns the
// authoritative line items; every other component works on snapshots.
package cart

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductLookup interface {
	Lookup(id string) (domain.Product, bool)
}

// ChangeKind names the operation that produced a Change.
type ChangeKind string

const (
	Added           ChangeKind = "added"
	QuantityChanged ChangeKind = "quantity_changed"
	Removed         ChangeKind = "removed"
	Cleared         ChangeKind = "cleared"
)

// Change is delivered to subscribers after every mutation. Items is the cart
// as it stands after the mutation.
type Change struct {
	Kind   ChangeKind
	ItemID string
	Items  []domain.LineItem
}

// Reveal reports whether the shopper should be shown the cart.
func (c Change) Reveal() bool {
	return c.Kind == Added
}

type subscriber struct {
	id int
	fn func(Change)
}

// Store holds the cart. Subscribers run synchronously while the store is
// locked and must not call back into it.
type Store struct {
	mu       sync.Mutex
	products ProductLookup
	items    []domain.LineItem
	subs     []subscriber
	nextSub  int
}

type Option func(*Store)

// WithItems seeds the store, typically from a persisted snapshot.
func WithItems(items []domain.LineItem) Option {
	return func(s *Store) {
		s.items = normalize(items)
	}
}

func New(products ProductLookup, opts ...Option) *Store {
	s := &Store{products: products}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalize drops lines without an id, merges repeated ids into their first
// occurrence and clamps quantities.
func normalize(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		if idx, ok := pos[item.ID]; ok {
			out[idx].Quantity = domain.AddQuantity(out[idx].Quantity, item.Quantity)
			continue
		}
		item.Quantity = domain.ClampQuantity(item.Quantity)
		pos[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// AddItem adds delta units of a catalog product. It returns false, leaving
// the cart untouched, when the product is unknown.
func (s *Store) AddItem(productID string, delta int) bool {
	if s.products == nil {
		return false
	}
	p, ok := s.products.Lookup(productID)
	if !ok {
		return false
	}
	s.AddRecord(domain.NewLineItem(p, delta), delta)
	return true
}

// AddRecord adds delta units using a caller-supplied record. Name, unit and
// price are only taken from the record when the line is new.
func (s *Store) AddRecord(item domain.LineItem, delta int) {
	if strings.TrimSpace(item.ID) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(item.ID); idx >= 0 {
		s.items[idx].Quantity = domain.AddQuantity(s.items[idx].Quantity, delta)
	} else {
		item.Quantity = domain.ClampQuantity(delta)
		s.items = append(s.items, item)
	}
	s.notify(Added, item.ID)
}

// SetQuantity replaces a line's quantity, clamped to [1, 99]. Zero and
// negative values clamp to 1; use RemoveItem to delete a line.
func (s *Store) SetQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setQuantity(id, func(int) int { return quantity })
}

// Increment raises a line's quantity by one, up to 99.
func (s *Store) Increment(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setQuantity(id, func(q int) int { return q + 1 })
}

// Decrement lowers a line's quantity by one, never below 1.
func (s *Store) Decrement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setQuantity(id, func(q int) int { return q - 1 })
}

func (s *Store) setQuantity(id string, next func(int) int) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.items[idx].Quantity = domain.ClampQuantity(next(s.items[idx].Quantity))
	s.notify(QuantityChanged, id)
}

// RemoveItem deletes a line. Unknown ids are ignored.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.notify(Removed, id)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.notify(Cleared, "")
}

// Total is recomputed from the current lines on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Total(s.items)
}

// Snapshot returns a copy of the lines in insertion order.
func (s *Store) Snapshot() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ItemCount sums quantities across lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Len reports the number of lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Empty() bool {
	return s.Len() == 0
}

// Subscribe registers fn for change notifications and returns a function
// that unregisters it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(kind ChangeKind, itemID string) {
	if len(s.subs) == 0 {
		return
	}
	change := Change{Kind: kind, ItemID: itemID, Items: s.snapshot()}
	for _, sub := range s.subs {
		sub.fn(change)
	}
}

func (s *Store) snapshot() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// ParseQuantity converts free-form input into a valid quantity. Input that
// is empty or not a number yields the minimum quantity.
func ParseQuantity(raw string) int {
	return domain.ClampQuantity(parseSigned(raw, domain.MinQuantity))
}

// ParseDelta converts free-form input into a signed quantity change bounded
// to [-MaxQuantity, MaxQuantity]. Input that is empty or not a number yields
// +1.
func ParseDelta(raw string) int {
	d := parseSigned(raw, 1)
	if d > domain.MaxQuantity {
		return domain.MaxQuantity
	}
	if d < -domain.MaxQuantity {
		return -domain.MaxQuantity
	}
	return d
}

// parseSigned reads an integer, truncating fractions and saturating
// out-of-range values one step past the quantity bounds.
func parseSigned(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fallback
	}
	switch {
	case math.IsNaN(f):
		return fallback
	case f > domain.MaxQuantity:
		return domain.MaxQuantity + 1
	case f < -domain.MaxQuantity:
		return -domain.MaxQuantity - 1
	}
	return int(f)
}
