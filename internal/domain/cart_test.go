package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_CountAndTotal(t *testing.T) {
	cart := Cart{
		{ID: 1, Price: 10, Qty: 2},
		{ID: 2, Price: 2.5, Qty: 4},
	}

	assert.Equal(t, 6, cart.Count())
	assert.InDelta(t, 30.0, cart.Total(), 1e-9)
}

func TestCart_EmptyAggregates(t *testing.T) {
	var cart Cart
	assert.Equal(t, 0, cart.Count())
	assert.Equal(t, 0.0, cart.Total())
}

func TestCart_Index(t *testing.T) {
	cart := Cart{{ID: 7}, {ID: 9}}
	assert.Equal(t, 1, cart.Index(9))
	assert.Equal(t, -1, cart.Index(3))
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(-5))
	assert.Equal(t, 1, ClampQuantity(0))
	assert.Equal(t, 1, ClampQuantity(1))
	assert.Equal(t, 250, ClampQuantity(250))
}

func TestSumQuantity(t *testing.T) {
	assert.Equal(t, 5, SumQuantity(2, 3))
	assert.Equal(t, math.MaxInt, SumQuantity(math.MaxInt, 1))
	assert.Equal(t, math.MaxInt, SumQuantity(math.MaxInt-1, math.MaxInt))

	cart := Cart{{ID: 1, Qty: math.MaxInt}, {ID: 2, Qty: 3}}
	assert.Equal(t, math.MaxInt, cart.Count())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "€0.00", FormatMoney(0))
	assert.Equal(t, "€19.99", FormatMoney(19.99))
	assert.Equal(t, "€3.50", FormatMoney(3.5))
}

func TestNewLineItem_CopiesProduct(t *testing.T) {
	item := NewLineItem(Product{ID: 4, Name: "Gundam", Price: 12, Img: "g.png", Brand: "Bandai"}, 3)
	assert.Equal(t, LineItem{ID: 4, Name: "Gundam", Price: 12, Img: "g.png", Brand: "Bandai", Series: "", Qty: 3}, item)
	assert.InDelta(t, 36.0, item.LineTotal(), 1e-9)
}
