package catalog

import (
	"sync"
	"testing"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phone(seller string) ItemInput {
	return ItemInput{
		SellerID:    seller,
		Name:        "Phone",
		Category:    enums.CategoryElectronics,
		Price:       decimal.NewFromInt(500),
		Quantity:    10,
		Description: "a phone",
	}
}

func TestStore_AddAssignsSequentialIDs(t *testing.T) {
	store := NewStore()

	first, err := store.Add(phone("seller-1"))
	require.NoError(t, err)
	second, err := store.Add(phone("seller-1"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, RatingUnrated, first.Rating)
	assert.Equal(t, "seller-1", first.SellerID)
}

func TestStore_IDsNeverReused(t *testing.T) {
	store := NewStore()
	first, err := store.Add(phone("s"))
	require.NoError(t, err)

	_, err = store.Delete(first.ID)
	require.NoError(t, err)

	next, err := store.Add(phone("s"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
	assert.Equal(t, 1, store.Len())
}

func TestStore_AddValidation(t *testing.T) {
	store := NewStore()
	tests := []struct {
		name string
		edit func(*ItemInput)
	}{
		{name: "missing seller", edit: func(in *ItemInput) { in.SellerID = "" }},
		{name: "missing name", edit: func(in *ItemInput) { in.Name = "  " }},
		{name: "wildcard category", edit: func(in *ItemInput) { in.Category = enums.CategoryAny }},
		{name: "negative quantity", edit: func(in *ItemInput) { in.Quantity = -1 }},
		{name: "negative price", edit: func(in *ItemInput) { in.Price = decimal.NewFromInt(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := phone("s")
			tt.edit(&in)
			_, err := store.Add(in)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestStore_UpdateReplacesQuantityAndPriceOnly(t *testing.T) {
	store := NewStore()
	item, err := store.Add(phone("s"))
	require.NoError(t, err)

	updated, err := store.Update(item.ID, 4, decimal.RequireFromString("450.50"))
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("450.5")))
	assert.Equal(t, item.Name, updated.Name)
	assert.Equal(t, item.Description, updated.Description)

	_, err = store.Update(99, 1, decimal.Zero)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = store.Update(item.ID, -3, decimal.Zero)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	current, err := store.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, current.Quantity, "failed update must not mutate")
}

func TestStore_DeleteUnknown(t *testing.T) {
	store := NewStore()
	_, err := store.Delete(1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = store.Delete(0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestStore_Buy(t *testing.T) {
	store := NewStore()
	item, err := store.Add(phone("s"))
	require.NoError(t, err)

	after, err := store.Buy(item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, after.Quantity)

	_, err = store.Buy(item.ID, 8)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))

	_, err = store.Buy(item.ID, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = store.Buy(42, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	current, err := store.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, current.Quantity)

	drained, err := store.Buy(item.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, drained.Quantity)
}

func TestStore_ConcurrentBuysNeverOversell(t *testing.T) {
	store := NewStore()
	in := phone("s")
	in.Quantity = 100
	item, err := store.Add(in)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			if _, err := store.Buy(item.ID, qty); err == nil {
				mu.Lock()
				success += qty
				mu.Unlock()
			}
		}(i%5 + 1)
	}
	wg.Wait()

	current, err := store.Get(item.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, current.Quantity, 0)
	assert.Equal(t, 100, success+current.Quantity)
}

func TestStore_Search(t *testing.T) {
	store := NewStore()
	_, err := store.Add(phone("s1"))
	require.NoError(t, err)
	_, err = store.Add(ItemInput{SellerID: "s2", Name: "Smartphone Case", Category: enums.CategoryOthers, Price: decimal.NewFromInt(10), Quantity: 3})
	require.NoError(t, err)
	_, err = store.Add(ItemInput{SellerID: "s2", Name: "Jacket", Category: enums.CategoryFashion, Price: decimal.NewFromInt(80), Quantity: 1})
	require.NoError(t, err)

	all := store.Search("", enums.CategoryAny)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, ids(all))

	byName := store.Search("PHONE", enums.CategoryAny)
	assert.Equal(t, []int64{1, 2}, ids(byName))

	byBoth := store.Search("phone", enums.CategoryElectronics)
	assert.Equal(t, []int64{1}, ids(byBoth))

	assert.Empty(t, store.Search("tablet", enums.CategoryAny))
	assert.Equal(t, []int64{3}, ids(store.Search("", enums.CategoryFashion)))
}

func TestStore_SearchFoldsUnicode(t *testing.T) {
	store := NewStore()
	_, err := store.Add(ItemInput{SellerID: "s", Name: "Écran Plat", Category: enums.CategoryOthers, Price: decimal.Zero})
	require.NoError(t, err)
	assert.Len(t, store.Search("écran", enums.CategoryAny), 1)
}

func TestStore_BySeller(t *testing.T) {
	store := NewStore()
	_, err := store.Add(phone("s1"))
	require.NoError(t, err)
	_, err = store.Add(phone("s2"))
	require.NoError(t, err)
	_, err = store.Add(phone("s1"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, ids(store.BySeller("s1")))
	assert.NotNil(t, store.BySeller("ghost"))
	assert.Empty(t, store.BySeller("ghost"))
}

func TestStore_SetRating(t *testing.T) {
	store := NewStore()
	item, err := store.Add(phone("s"))
	require.NoError(t, err)

	require.NoError(t, store.SetRating(item.ID, 4))
	current, err := store.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, current.Rating)

	assert.True(t, pkgerrors.IsCode(store.SetRating(7, 1), pkgerrors.CodeNotFound))
}

func ids(items []Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
