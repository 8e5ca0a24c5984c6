package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id uint, price string) LineItem {
	return LineItem{
		ProductID: id,
		Name:      "product",
		UnitPrice: decimal.RequireFromString(price),
		ImageRef:  "/uploads/products/p.jpg",
	}
}

type brokenSnapshots struct {
	loadErr error
	saveErr error
}

func (b brokenSnapshots) Load(context.Context, string) ([]byte, error) { return nil, b.loadErr }
func (b brokenSnapshots) Save(context.Context, string, []byte) error  { return b.saveErr }
func (b brokenSnapshots) Delete(context.Context, string) error         { return nil }

func TestAddItemIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)

	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.AddItem(ctx, item(2, "5")))

	items := st.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestAddItemIgnoresIncomingQuantity(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)

	in := item(7, "3.50")
	in.Quantity = 40
	require.NoError(t, st.AddItem(ctx, in))
	assert.Equal(t, 1, st.ItemCount())
}

func TestTotalsScenario(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)

	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.UpdateQuantity(ctx, 1, 2))
	require.NoError(t, st.AddItem(ctx, item(2, "5")))

	assert.Equal(t, "25.00", st.Total().StringFixed(2))
	assert.Equal(t, 3, st.ItemCount())

	sum := st.Summary()
	assert.Equal(t, 3, sum.ItemCount)
	assert.True(t, sum.Subtotal.Equal(decimal.NewFromInt(25)))
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.AddItem(ctx, item(2, "5")))

	require.NoError(t, st.UpdateQuantity(ctx, 1, 0))
	for _, li := range st.Items() {
		assert.NotEqual(t, uint(1), li.ProductID)
	}

	require.NoError(t, st.UpdateQuantity(ctx, 2, -3))
	assert.Empty(t, st.Items())
}

func TestUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)
	require.NoError(t, st.UpdateQuantity(ctx, 99, 4))
	assert.Empty(t, st.Items())
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.UpdateQuantity(ctx, 1, 9))

	require.NoError(t, st.RemoveItem(ctx, 1))
	assert.Empty(t, st.Items())
	require.NoError(t, st.RemoveItem(ctx, 1))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	st := Open(ctx, GuestKey("g1"), snaps, nil)
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.Clear(ctx))
	assert.Zero(t, st.ItemCount())
	assert.True(t, st.Total().IsZero())

	reopened := Open(ctx, GuestKey("g1"), snaps, nil)
	assert.Empty(t, reopened.Items())
}

func TestEveryMutationIsPersisted(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	st := Open(ctx, UserKey("u1"), snaps, nil)

	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	reopened := Open(ctx, UserKey("u1"), snaps, nil)
	require.Len(t, reopened.Items(), 1)

	require.NoError(t, st.UpdateQuantity(ctx, 1, 5))
	reopened = Open(ctx, UserKey("u1"), snaps, nil)
	assert.Equal(t, 5, reopened.ItemCount())
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("redis down")
	st := Open(ctx, GuestKey("g1"), brokenSnapshots{loadErr: ErrNoSnapshot, saveErr: boom}, nil)

	err := st.AddItem(ctx, item(1, "10"))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, st.ItemCount())
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), brokenSnapshots{loadErr: errors.New("timeout")}, nil)
	assert.Empty(t, st.Items())
}

func TestCorruptedSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	require.NoError(t, snaps.Save(ctx, GuestKey("g1"), []byte("{not json")))

	st := Open(ctx, GuestKey("g1"), snaps, nil)
	assert.Empty(t, st.Items())

	require.NoError(t, snaps.Save(ctx, GuestKey("g1"), []byte(`{"version":9,"items":[]}`)))
	st = Open(ctx, GuestKey("g1"), snaps, nil)
	assert.Empty(t, st.Items())
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)
	require.NoError(t, st.AddItem(ctx, item(1, "10")))

	items := st.Items()
	items[0].Quantity = 100
	assert.Equal(t, 1, st.ItemCount())
}

func TestSubtractKeepsLinesAddedAfterRead(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.AddItem(ctx, item(2, "5")))

	ordered := st.Summary().Items

	// arrives while the order is being written
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.AddItem(ctx, item(3, "7")))

	require.NoError(t, st.Subtract(ctx, ordered))
	items := st.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, uint(3), items[1].ProductID)

	reopened := Open(ctx, GuestKey("g1"), st.snapshots, nil)
	assert.Equal(t, 2, reopened.ItemCount())
}

func TestSubtractEverythingEmptiesCart(t *testing.T) {
	ctx := context.Background()
	st := Open(ctx, GuestKey("g1"), NewMemorySnapshotStore(), nil)
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	require.NoError(t, st.AddItem(ctx, item(2, "5")))

	require.NoError(t, st.Subtract(ctx, st.Items()))
	assert.Empty(t, st.Items())
	assert.True(t, st.Total().IsZero())
}

type flakySnapshots struct {
	*MemorySnapshotStore
	failSaves bool
}

func (f *flakySnapshots) Save(ctx context.Context, key string, raw []byte) error {
	if f.failSaves {
		return errors.New("redis down")
	}
	return f.MemorySnapshotStore.Save(ctx, key, raw)
}

func TestUnsavedMutationSurvivesNextWrite(t *testing.T) {
	ctx := context.Background()
	snaps := &flakySnapshots{MemorySnapshotStore: NewMemorySnapshotStore()}
	st := Open(ctx, GuestKey("g1"), snaps, nil)
	require.NoError(t, st.AddItem(ctx, item(1, "10")))

	snaps.failSaves = true
	require.Error(t, st.AddItem(ctx, item(2, "5")))

	snaps.failSaves = false
	require.NoError(t, st.AddItem(ctx, item(3, "1")))
	assert.Len(t, st.Items(), 3)
}
