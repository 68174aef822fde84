package render

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/dom"
)

type Outcome int

const (
	// NotApplicable means the page lacks a required region: it is not the cart page.
	NotApplicable Outcome = iota
	Empty
	Populated
)

func (o Outcome) String() string {
	switch o {
	case NotApplicable:
		return "not_applicable"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	default:
		return "unknown"
	}
}

// State is the slice of the cart state the renderer reads and mutates.
type State interface {
	Items(ctx context.Context) domain.Cart
	Remove(ctx context.Context, id int64) error
	UpdateQuantity(ctx context.Context, id int64, qty int) error
	Clear(ctx context.Context) error
}

type Renderer struct {
	doc     *dom.Document
	state   State
	targets Targets
	routes  Routes
}

type Option func(*Renderer)

func WithTargets(t Targets) Option {
	return func(r *Renderer) { r.targets = t }
}

func WithRoutes(routes Routes) Option {
	return func(r *Renderer) { r.routes = routes }
}

func New(doc *dom.Document, state State, opts ...Option) *Renderer {
	r := &Renderer{
		doc:     doc,
		state:   state,
		targets: DefaultTargets,
		routes:  DefaultRoutes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type regions struct {
	list, empty, summary *dom.Element
}

func (r *Renderer) regions() (regions, bool) {
	g := regions{
		list:    r.doc.ElementByID(r.targets.List),
		empty:   r.doc.ElementByID(r.targets.Empty),
		summary: r.doc.ElementByID(r.targets.Summary),
	}
	return g, g.list != nil && g.empty != nil && g.summary != nil
}

// Render rebuilds the item list and totals from the current cart.
func (r *Renderer) Render(ctx context.Context) (Outcome, error) {
	g, ok := r.regions()
	if !ok {
		return NotApplicable, nil
	}

	cart := r.state.Items(ctx)
	if len(cart) == 0 {
		g.list.ClearChildren()
		g.empty.SetDisplay("block")
		g.summary.SetDisplay("none")
		return Empty, nil
	}

	g.empty.SetDisplay("none")
	g.summary.SetDisplay("block")

	g.list.ClearChildren()
	for _, item := range cart {
		row, err := execute(rowTemplate, newRowView(item, r.routes))
		if err != nil {
			return Populated, fmt.Errorf("render row %d failed: %w", item.ID, err)
		}
		if err := g.list.AppendHTML(row); err != nil {
			return Populated, fmt.Errorf("append row %d failed: %w", item.ID, err)
		}
	}

	subtotal := domain.FormatMoney(cart.Total())
	r.setText(r.targets.ItemsCount, strconv.Itoa(cart.Count()))
	r.setText(r.targets.Subtotal, subtotal)
	// No discounts or shipping yet: total equals subtotal.
	r.setText(r.targets.Total, subtotal)

	return Populated, nil
}

func (r *Renderer) setText(id, text string) {
	if el := r.doc.ElementByID(id); el != nil {
		el.SetText(text)
	}
}
