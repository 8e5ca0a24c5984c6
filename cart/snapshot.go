package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const snapshotVersion = 1

// ErrSchemaMismatch marks a snapshot that parsed but does not describe a valid cart.
var ErrSchemaMismatch = errors.New("cart snapshot schema mismatch")

type snapshot struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
	SavedAt time.Time  `json:"saved_at"`
}

// Encode serializes the full cart.
func Encode(items []LineItem, savedAt time.Time) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(snapshot{
		Version: snapshotVersion,
		Items:   items,
		SavedAt: savedAt.UTC(),
	})
}

// Decode parses a snapshot written by Encode and checks the cart invariants.
func Decode(raw []byte) ([]LineItem, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse cart snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrSchemaMismatch, snap.Version)
	}

	seen := make(map[uint]struct{}, len(snap.Items))
	for _, item := range snap.Items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("%w: missing product id", ErrSchemaMismatch)
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, fmt.Errorf("%w: duplicate product %d", ErrSchemaMismatch, item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d has quantity %d", ErrSchemaMismatch, item.ProductID, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: product %d has negative price", ErrSchemaMismatch, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	if len(snap.Items) == 0 {
		return nil, nil
	}
	return snap.Items, nil
}
