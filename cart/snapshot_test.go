package cart

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestSnapshotRoundTrip(t *testing.T) {
	in := []LineItem{
		{ProductID: 1, Name: "Premium Dog Food", UnitPrice: decimal.RequireFromString("49.99"), ImageRef: "a.jpg", Quantity: 2},
		{ProductID: 3, Name: "Cozy Pet Bed", UnitPrice: decimal.RequireFromString("79.99"), ImageRef: "b.jpg", Quantity: 1},
	}
	raw, err := Encode(in, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out, decimalEqual); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeEmptyCart(t *testing.T) {
	raw, err := Encode(nil, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items":[]`)

	out, err := Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecodeRejectsInvalidCarts(t *testing.T) {
	cases := map[string]string{
		"version":   `{"version":2,"items":[]}`,
		"no id":     `{"version":1,"items":[{"product_id":0,"unit_price":"1","quantity":1}]}`,
		"duplicate": `{"version":1,"items":[{"product_id":4,"unit_price":"1","quantity":1},{"product_id":4,"unit_price":"1","quantity":2}]}`,
		"quantity":  `{"version":1,"items":[{"product_id":4,"unit_price":"1","quantity":0}]}`,
		"price":     `{"version":1,"items":[{"product_id":4,"unit_price":"-1","quantity":1}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			require.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("[]"))
	require.Error(t, err)
}
