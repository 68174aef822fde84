package render

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/fjod/go_cart/storefront/internal/dom"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	ClearQuestion  = "Clear all items from your cart?"
	CheckoutNotice = "This is a demo checkout. Hook this up to your real payment flow later!"
)

// Remove drops the item and redraws the page.
func (r *Renderer) Remove(ctx context.Context, id int64) (Outcome, error) {
	if err := r.state.Remove(ctx, id); err != nil {
		return NotApplicable, err
	}
	return r.Render(ctx)
}

// ChangeQuantity applies a raw quantity input and redraws the page.
func (r *Renderer) ChangeQuantity(ctx context.Context, id int64, raw string) (Outcome, error) {
	if err := r.state.UpdateQuantity(ctx, id, ParseQuantity(raw)); err != nil {
		return NotApplicable, err
	}
	return r.Render(ctx)
}

// Clear empties the cart once confirmed. Unconfirmed, it only shows the
// confirmation prompt.
func (r *Renderer) Clear(ctx context.Context, confirmed bool) (Outcome, error) {
	if !confirmed {
		if err := r.prompt(); err != nil {
			return NotApplicable, err
		}
		return r.Render(ctx)
	}
	if err := r.state.Clear(ctx); err != nil {
		return NotApplicable, err
	}
	return r.Render(ctx)
}

// Checkout is a placeholder: it shows a notice and leaves the cart alone.
func (r *Renderer) Checkout(ctx context.Context) (Outcome, error) {
	if err := r.notice(); err != nil {
		return NotApplicable, err
	}
	return r.Render(ctx)
}

// WirePage points the page-level clear and checkout controls at their
// routes. Controls are optional; calling it twice is harmless.
func (r *Renderer) WirePage() error {
	if err := r.wireControl(r.targets.Clear, r.routes.Clear()); err != nil {
		return err
	}
	return r.wireControl(r.targets.Checkout, r.routes.Checkout())
}

func (r *Renderer) wireControl(id, action string) error {
	ctrl := r.doc.ElementByID(id)
	if ctrl == nil {
		return nil
	}
	formID := id + "-form"
	if r.doc.ElementByID(formID) == nil {
		body := r.doc.Body()
		if body == nil {
			return nil
		}
		form, err := execute(pageFormTemplate, struct{ ID, Action string }{formID, action})
		if err != nil {
			return err
		}
		if err := body.AppendHTML(form); err != nil {
			return err
		}
	}
	ctrl.SetAttr("type", "submit")
	ctrl.SetAttr("form", formID)
	return nil
}

func (r *Renderer) prompt() error {
	el, err := r.noticeElement()
	if err != nil || el == nil {
		return err
	}
	content, err := execute(confirmTemplate, struct{ Question, Action, Cancel string }{
		Question: ClearQuestion,
		Action:   r.routes.Clear(),
		Cancel:   r.routes.Base,
	})
	if err != nil {
		return err
	}
	el.ClearChildren()
	if err := el.AppendHTML(content); err != nil {
		return err
	}
	el.SetDisplay("block")
	return nil
}

func (r *Renderer) notice() error {
	el, err := r.noticeElement()
	if err != nil || el == nil {
		return err
	}
	el.SetText(CheckoutNotice)
	el.SetDisplay("block")
	return nil
}

// noticeElement returns the notice region, adding one to the body if the
// page has none.
func (r *Renderer) noticeElement() (*dom.Element, error) {
	if el := r.doc.ElementByID(r.targets.Notice); el != nil {
		return el, nil
	}
	body := r.doc.Body()
	if body == nil {
		return nil, nil
	}
	div, err := execute(noticeTemplate, r.targets.Notice)
	if err != nil {
		return nil, err
	}
	if err := body.AppendHTML(div); err != nil {
		return nil, err
	}
	return r.doc.ElementByID(r.targets.Notice), nil
}

// ParseQuantity reads the leading integer of raw. Anything that is not a
// number, or is below one, becomes one. Values too large for an int saturate.
func ParseQuantity(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return domain.MinQuantity
	}
	qty, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && s[0] != '-' {
		return math.MaxInt
	}
	if err != nil {
		return domain.MinQuantity
	}
	return domain.ClampQuantity(qty)
}
