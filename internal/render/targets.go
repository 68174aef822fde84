package render

import "fmt"

// Targets names the page elements the renderer works on. List, Empty and
// Summary are required; the rest are filled when present.
type Targets struct {
	List       string
	Empty      string
	Summary    string
	ItemsCount string
	Subtotal   string
	Total      string
	Clear      string
	Checkout   string
	Notice     string
}

var DefaultTargets = Targets{
	List:       "cart-items",
	Empty:      "cart-empty",
	Summary:    "cart-summary",
	ItemsCount: "cart-items-count",
	Subtotal:   "cart-subtotal",
	Total:      "cart-total",
	Clear:      "cart-clear",
	Checkout:   "cart-checkout",
	Notice:     "cart-notice",
}

// Routes are the form actions wired into the page.
type Routes struct {
	Base string
}

var DefaultRoutes = Routes{Base: "/cart"}

func (r Routes) Remove(id int64) string {
	return fmt.Sprintf("%s/items/%d/remove", r.Base, id)
}

func (r Routes) Quantity(id int64) string {
	return fmt.Sprintf("%s/items/%d/quantity", r.Base, id)
}

func (r Routes) Clear() string {
	return r.Base + "/clear"
}

func (r Routes) Checkout() string {
	return r.Base + "/checkout"
}
