package domain

import (
	"math"
	"strconv"
)

// MinQuantity is the smallest quantity a line item may hold.
const MinQuantity = 1

// CurrencySymbol prefixes every rendered amount.
const CurrencySymbol = "€"

// Product is what a catalog page hands over when something is added to the cart.
type Product struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Img    string  `json:"img"`
	Brand  string  `json:"brand,omitempty"`
	Series string  `json:"series,omitempty"`
}

// LineItem is one product entry in the cart with its quantity.
type LineItem struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Img    string  `json:"img"`
	Brand  string  `json:"brand"`
	Series string  `json:"series"`
	Qty    int     `json:"qty"`
}

// LineTotal is price * qty.
func (i LineItem) LineTotal() float64 {
	return i.Price * float64(i.Qty)
}

// Cart is insertion ordered and holds at most one LineItem per product ID.
type Cart []LineItem

func NewLineItem(p Product, qty int) LineItem {
	return LineItem{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Img:    p.Img,
		Brand:  p.Brand,
		Series: p.Series,
		Qty:    qty,
	}
}

// SumQuantity adds two non-negative quantities, saturating at math.MaxInt.
func SumQuantity(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Count is the sum of quantities.
func (c Cart) Count() int {
	count := 0
	for _, item := range c {
		count = SumQuantity(count, item.Qty)
	}
	return count
}

// Total is the sum of price * qty.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c {
		total += item.LineTotal()
	}
	return total
}

// Index returns the position of the item with the given id, or -1.
func (c Cart) Index(id int64) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

func ClampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	return qty
}

// FormatMoney renders an amount with the fixed currency symbol and two decimals.
func FormatMoney(v float64) string {
	return CurrencySymbol + strconv.FormatFloat(v, 'f', 2, 64)
}
