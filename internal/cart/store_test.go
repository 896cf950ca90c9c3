package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parfum/internal/cart"
	"parfum/internal/models"
)

var (
	productA = models.Product{ID: "a", Name: "Chanel No. 5", Price: 150, InStock: true}
	productB = models.Product{ID: "b", Name: "Dior Sauvage", Price: 120, InStock: true}
)

func TestStore_AddIncrementsExistingLine(t *testing.T) {
	store := cart.NewStore()

	store.Add(productA)
	store.Add(productA)
	store.Add(productA)

	items := store.Items()
	assert.Len(t, items, 1, "repeated adds must keep a single line per product id")
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, productA, items[0].Product)
}

func TestStore_TotalPrice(t *testing.T) {
	store := cart.NewStore()

	store.Add(productA)
	store.Add(productA)
	store.Add(productB)

	// 150*2 + 120*1
	assert.Equal(t, 420.0, store.TotalPrice())

	// A zero-price product must not change the total.
	store.Add(models.Product{ID: "free", Name: "Tester Vial", Price: 0})
	assert.Equal(t, 420.0, store.TotalPrice())
}

func TestStore_TotalPriceRecomputedAfterMutation(t *testing.T) {
	store := cart.NewStore()

	store.Add(productA)
	assert.Equal(t, 150.0, store.TotalPrice())

	store.UpdateQuantity("a", 4)
	assert.Equal(t, 600.0, store.TotalPrice())

	store.Remove("a")
	assert.Equal(t, 0.0, store.TotalPrice())
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	store := cart.NewStore()
	store.Add(productA)

	store.Remove("missing")

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 150.0, store.TotalPrice())
}

func TestStore_UpdateQuantityZeroRemovesLine(t *testing.T) {
	store := cart.NewStore()
	store.Add(productA)

	store.UpdateQuantity("a", 0)
	assert.Equal(t, 0, store.Len())

	// Negative quantities behave exactly like zero.
	store.Add(productA)
	store.UpdateQuantity("a", -3)
	assert.Equal(t, 0, store.Len())
}

func TestStore_UpdateQuantityAbsentIsNoop(t *testing.T) {
	store := cart.NewStore()

	store.UpdateQuantity("missing", 5)

	assert.Equal(t, 0, store.Len())
}

func TestStore_Clear(t *testing.T) {
	store := cart.NewStore()
	store.Add(productA)
	store.Add(productB)

	store.Clear()

	assert.Empty(t, store.Items())
	assert.Equal(t, 0.0, store.TotalPrice())
}

func TestStore_ItemsReturnsSnapshotCopy(t *testing.T) {
	store := cart.NewStore()
	store.Add(productA)

	items := store.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, store.Items()[0].Quantity, "mutating the snapshot must not touch the store")
}

func TestStore_ItemsKeepInsertionOrder(t *testing.T) {
	store := cart.NewStore()
	store.Add(productB)
	store.Add(productA)
	store.Add(productB)

	items := store.Items()
	assert.Equal(t, "b", items[0].Product.ID)
	assert.Equal(t, "a", items[1].Product.ID)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	manager := cart.NewManager()

	first := manager.Get("session-1")
	second := manager.Get("session-2")
	first.Add(productA)

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 0, second.Len())
	assert.Same(t, first, manager.Get("session-1"))
}

func TestManager_DropDiscardsCart(t *testing.T) {
	manager := cart.NewManager()
	manager.Get("session-1").Add(productA)

	manager.Drop("session-1")

	assert.Equal(t, 0, manager.Get("session-1").Len())
}
