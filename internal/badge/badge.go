package badge

import (
	"context"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/dom"
)

// Attr marks the badge element on a page.
const Attr = "data-cart-count"

type Counter interface {
	Count(ctx context.Context) int
}

// Updater pushes the cart item count into the page badge.
type Updater struct {
	doc     *dom.Document
	counter Counter
}

func NewUpdater(doc *dom.Document, counter Counter) *Updater {
	return &Updater{doc: doc, counter: counter}
}

// Update is a no-op on pages without a badge. The badge is shown only while
// the cart holds something.
func (u *Updater) Update(ctx context.Context) {
	el := u.doc.QueryAttr(Attr)
	if el == nil {
		return
	}

	count := u.counter.Count(ctx)
	el.SetText(strconv.Itoa(count))
	if count > 0 {
		el.SetDisplay("inline-flex")
	} else {
		el.SetDisplay("none")
	}
}
