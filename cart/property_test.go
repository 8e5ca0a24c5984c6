package cart

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func priceFor(id uint) decimal.Decimal {
	// 1.25, 2.50, ... keeps cents in play
	return decimal.New(int64(id)*125, -2)
}

func TestAddItemKeepsOneLinePerProduct(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("one line per distinct product, quantity = times added", prop.ForAll(
		func(ids []uint) bool {
			ctx := context.Background()
			st := Open(ctx, GuestKey("prop"), NewMemorySnapshotStore(), nil)
			want := map[uint]int{}
			for _, id := range ids {
				if err := st.AddItem(ctx, LineItem{ProductID: id, UnitPrice: priceFor(id)}); err != nil {
					return false
				}
				want[id]++
			}
			items := st.Items()
			if len(items) != len(want) {
				return false
			}
			for _, li := range items {
				if want[li.ProductID] != li.Quantity {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UIntRange(1, 8)),
	))

	properties.TestingRun(t)
}

func TestTotalsMatchLines(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total = sum(price*qty) and count = sum(qty)", prop.ForAll(
		func(ids []uint, quantities []int) bool {
			ctx := context.Background()
			st := Open(ctx, GuestKey("prop"), NewMemorySnapshotStore(), nil)
			for _, id := range ids {
				_ = st.AddItem(ctx, LineItem{ProductID: id, UnitPrice: priceFor(id)})
			}
			for i, q := range quantities {
				if i < len(ids) {
					_ = st.UpdateQuantity(ctx, ids[i], q)
				}
			}

			total := decimal.Zero
			count := 0
			for _, li := range st.Items() {
				if li.Quantity < 1 {
					return false
				}
				total = total.Add(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
				count += li.Quantity
			}
			return st.Total().Equal(total) && st.ItemCount() == count
		},
		gen.SliceOf(gen.UIntRange(1, 6)),
		gen.SliceOf(gen.IntRange(-2, 9)),
	))

	properties.TestingRun(t)
}

func TestHydrationRestoresCart(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("reopened cart equals the original line by line", prop.ForAll(
		func(ids []uint) bool {
			ctx := context.Background()
			snaps := NewMemorySnapshotStore()
			st := Open(ctx, UserKey("prop"), snaps, nil)
			for _, id := range ids {
				_ = st.AddItem(ctx, LineItem{ProductID: id, Name: "p", UnitPrice: priceFor(id)})
			}

			before := st.Items()
			after := Open(ctx, UserKey("prop"), snaps, nil).Items()
			if len(before) != len(after) {
				return false
			}
			for i := range before {
				if before[i].ProductID != after[i].ProductID ||
					before[i].Quantity != after[i].Quantity ||
					!before[i].UnitPrice.Equal(after[i].UnitPrice) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UIntRange(1, 10)),
	))

	properties.TestingRun(t)
}
