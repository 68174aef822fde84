package render

import (
	"html/template"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var rowTemplate = template.Must(template.New("row").Parse(`<article class="cart-item" data-id="{{.ID}}">
  <img src="{{.Img}}" alt="{{.Name}}" class="cart-thumb">
  <div>
    <div class="cart-title">{{.Name}}</div>
    <div class="cart-meta">{{.Meta}}</div>
    <div class="cart-price">{{.Price}}</div>
    <div class="cart-actions-inline">
      <form method="post" action="{{.QuantityAction}}" class="cart-qty-form">
        <label>Qty:
          <input type="number" min="1" name="qty" value="{{.Qty}}" class="cart-qty-input" data-id="{{.ID}}">
        </label>
        <button type="submit" class="btn-link">Update</button>
      </form>
      <form method="post" action="{{.RemoveAction}}">
        <button class="btn-link-danger" type="submit" data-action="remove" data-id="{{.ID}}">Remove</button>
      </form>
    </div>
  </div>
  <div class="cart-line-total">
    <div class="cart-line-label">Line total</div>
    <div class="cart-line-amount">{{.LineTotal}}</div>
  </div>
</article>`))

var confirmTemplate = template.Must(template.New("confirm").Parse(`<p class="cart-notice-text">{{.Question}}</p>
<form method="post" action="{{.Action}}" class="cart-confirm-form">
  <input type="hidden" name="confirm" value="yes">
  <button type="submit" class="btn-danger">Clear cart</button>
  <a href="{{.Cancel}}" class="btn-link">Keep items</a>
</form>`))

var noticeTemplate = template.Must(template.New("notice").Parse(`<div id="{{.}}" class="cart-notice" role="alert"></div>`))

var pageFormTemplate = template.Must(template.New("form").Parse(`<form id="{{.ID}}" method="post" action="{{.Action}}" hidden></form>`))

type rowView struct {
	ID             int64
	Name           string
	Img            string
	Meta           string
	Price          string
	Qty            int
	LineTotal      string
	QuantityAction string
	RemoveAction   string
}

func newRowView(item domain.LineItem, routes Routes) rowView {
	return rowView{
		ID:             item.ID,
		Name:           item.Name,
		Img:            item.Img,
		Meta:           meta(item),
		Price:          domain.FormatMoney(item.Price),
		Qty:            item.Qty,
		LineTotal:      domain.FormatMoney(item.LineTotal()),
		QuantityAction: routes.Quantity(item.ID),
		RemoveAction:   routes.Remove(item.ID),
	}
}

// meta joins brand and series with a bullet when a series is present.
func meta(item domain.LineItem) string {
	if item.Series == "" {
		return item.Brand
	}
	return item.Brand + " • " + item.Series
}

func execute(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
