// Package cart holds the per-session shopping cart and its durable snapshot.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LineItem is one product-and-quantity entry. ProductID is unique within a cart.
type LineItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Summary is a consistent read of a cart: its lines plus the derived totals.
type Summary struct {
	Items     []LineItem      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Store is the cart of a single session. Every mutation is written through to the
// snapshot store before it returns; the in-memory change stays applied even if that
// write fails, and the write error is handed back to the caller.
type Store struct {
	mu        sync.Mutex
	key       string
	items     []LineItem
	snapshots SnapshotStore
	logger    *zap.Logger
	now       func() time.Time

	// dirty is set while the last write to snapshots failed; the in-memory lines are
	// then newer than the snapshot and must not be replaced by it.
	dirty bool
}

// Open builds the store for key and hydrates it from snapshots. A missing, unreadable
// or malformed snapshot leaves the cart empty.
func Open(ctx context.Context, key string, snapshots SnapshotStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		key:       key,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	raw, err := s.snapshots.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			s.logger.Warn("cart snapshot unreadable, starting empty", zap.String("session", s.key), zap.Error(err))
		}
		return
	}
	items, err := Decode(raw)
	if err != nil {
		s.logger.Warn("cart snapshot rejected, starting empty", zap.String("session", s.key), zap.Error(err))
		return
	}
	s.items = items
}

// resyncLocked replaces the lines with the stored snapshot, so writes made through
// another process since this store last saved are not overwritten. An unreadable or
// missing snapshot keeps the in-memory lines.
func (s *Store) resyncLocked(ctx context.Context) {
	if s.dirty {
		return
	}
	raw, err := s.snapshots.Load(ctx, s.key)
	if err != nil {
		return
	}
	items, err := Decode(raw)
	if err != nil {
		return
	}
	s.items = items
}

// Refresh reloads the cart from its snapshot.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resyncLocked(ctx)
}

// Key is the session key the store is bound to.
func (s *Store) Key() string {
	return s.key
}

// AddItem appends item with quantity 1, or bumps the quantity of the line that
// already holds the same product. The quantity carried by item is ignored.
func (s *Store) AddItem(ctx context.Context, item LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resyncLocked(ctx)
	if i := s.indexLocked(item.ProductID); i >= 0 {
		s.items[i].Quantity++
	} else {
		item.Quantity = 1
		s.items = append(s.items, item)
	}
	return s.persistLocked(ctx)
}

// RemoveItem drops the line for productID whatever its quantity. Absent ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resyncLocked(ctx)
	i := s.indexLocked(productID)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persistLocked(ctx)
}

// UpdateQuantity sets the quantity of productID. A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resyncLocked(ctx)
	i := s.indexLocked(productID)
	if i < 0 {
		return nil
	}
	s.items[i].Quantity = quantity
	return s.persistLocked(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persistLocked(ctx)
}

// Subtract takes ordered lines out of the cart. Each matching line loses the ordered
// quantity and is dropped once nothing is left, so lines added or bumped after the
// order was read stay in the cart.
func (s *Store) Subtract(ctx context.Context, ordered []LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resyncLocked(ctx)
	changed := false
	for _, o := range ordered {
		i := s.indexLocked(o.ProductID)
		if i < 0 || o.Quantity < 1 {
			continue
		}
		changed = true
		if s.items[i].Quantity > o.Quantity {
			s.items[i].Quantity -= o.Quantity
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	if !changed {
		return nil
	}
	return s.persistLocked(ctx)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Total is the subtotal of all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalOf(s.items)
}

// ItemCount is the sum of quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.items)
}

// Summary reads lines and totals under one lock.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Items:     s.copyLocked(),
		ItemCount: countOf(s.items),
		Subtotal:  totalOf(s.items),
	}
}

// absorb folds items into the cart, summing quantities for products already present.
func (s *Store) absorb(ctx context.Context, items []LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resyncLocked(ctx)
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i := s.indexLocked(item.ProductID); i >= 0 {
			s.items[i].Quantity += item.Quantity
			continue
		}
		s.items = append(s.items, item)
	}
	return s.persistLocked(ctx)
}

func (s *Store) indexLocked(productID uint) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) copyLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := Encode(s.items, s.now())
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.snapshots.Save(ctx, s.key, raw); err != nil {
		s.dirty = true
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	s.dirty = false
	return nil
}

func totalOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func countOf(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
