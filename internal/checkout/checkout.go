// Package checkout turns a cart into a prefilled order message and hands it
// off to an external messaging contact. There is no payment flow; the handoff
// is fire-and-forget.
package checkout

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/fairyhunter13/storefront-cart/internal/cart"
	"github.com/fairyhunter13/storefront-cart/internal/money"
)

var (
	// ErrMissingContact is returned when no contact number is configured.
	ErrMissingContact = errors.New("missing contact number")
	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = errors.New("empty cart")
)

// ContactSource yields the configured contact at the moment of checkout.
type ContactSource func() string

// Opener opens a URL in a new browsing context. No result is read back.
type Opener interface {
	Open(url string)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string)

// Open calls f(url).
func (f OpenerFunc) Open(url string) { f(url) }

// Handoff describes a completed checkout.
type Handoff struct {
	URL     string `json:"url"`
	Contact string `json:"contact"`
}

// Composer builds order messages for one store.
type Composer struct {
	storeName string
	baseURL   string
	contact   ContactSource
	money     *money.Formatter
}

// NewComposer returns a Composer. baseURL is the messaging service root, e.g. https://wa.me.
func NewComposer(storeName, baseURL string, contact ContactSource, f *money.Formatter) *Composer {
	return &Composer{
		storeName: storeName,
		baseURL:   strings.TrimRight(baseURL, "/"),
		contact:   contact,
		money:     f,
	}
}

// Message builds the plain order text, or "" for an empty cart.
func (c *Composer) Message(snap cart.Snapshot) string {
	if snap.Empty() {
		return ""
	}
	lines := make([]string, 0, len(snap.Lines)+9)
	lines = append(lines, "*Novo pedido - "+c.storeName+"*", "")
	for _, l := range snap.Lines {
		lines = append(lines, "• "+l.Product.Name+" ("+strconv.Itoa(l.Quantity)+"x) - "+c.money.Format(l.Subtotal()))
	}
	lines = append(lines,
		"",
		"Total: "+c.money.Format(snap.TotalAmount()),
		"",
		"Nome:",
		"Endereço:",
		"Forma de pagamento:",
	)
	return strings.Join(lines, "\n")
}

// ComposeOrderMessage returns the order text percent-encoded for a query
// parameter, or "" when the cart is empty.
func (c *Composer) ComposeOrderMessage(snap cart.Snapshot) string {
	msg := c.Message(snap)
	if msg == "" {
		return ""
	}
	return EncodeComponent(msg)
}

// Ready reports whether Checkout would currently succeed for snap.
func (c *Composer) Ready(snap cart.Snapshot) bool {
	return c.phone() != "" && !snap.Empty()
}

func (c *Composer) phone() string {
	if c.contact == nil {
		return ""
	}
	return DigitsOnly(c.contact())
}

// Checkout validates configuration and cart, then opens the messaging URL.
// On error nothing is opened and the cart is untouched.
func (c *Composer) Checkout(snap cart.Snapshot, opener Opener) (Handoff, error) {
	phone := c.phone()
	if phone == "" {
		return Handoff{}, ErrMissingContact
	}
	msg := c.ComposeOrderMessage(snap)
	if msg == "" {
		return Handoff{}, ErrEmptyCart
	}
	h := Handoff{URL: c.baseURL + "/" + phone + "?text=" + msg, Contact: phone}
	opener.Open(h.URL)
	return h, nil
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeComponent percent-encodes s for use as a query value, spaces as %20.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
