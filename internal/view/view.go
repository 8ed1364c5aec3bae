// Package view projects catalog and cart state into display models and renders
// them as HTML. Projections are pure: the same input always yields the same output.
package view

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/fairyhunter13/storefront-cart/internal/cart"
	"github.com/fairyhunter13/storefront-cart/internal/model"
	"github.com/fairyhunter13/storefront-cart/internal/money"
)

// EmptyCartMessage is shown in place of cart rows when the cart has no lines.
const EmptyCartMessage = "Seu carrinho está vazio."

// Card is one product tile in the grid.
type Card struct {
	ID       string `json:"id"`
	Image    string `json:"image"`
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// Row is one line in the cart summary.
type Row struct {
	ID       string `json:"id"`
	Image    string `json:"image"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// CartView is the cart summary: badge, rows or empty message, total.
type CartView struct {
	Badge   int    `json:"badge"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
	Rows    []Row  `json:"rows"`
	Total   string `json:"total"`
}

// Grid builds one card per product. A nil product list renders nothing.
func Grid(products []*model.Product, steppers *Steppers, f *money.Formatter) []Card {
	if len(products) == 0 {
		return nil
	}
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		qty := 1
		if steppers != nil {
			qty = steppers.Value(p.ID)
		}
		cards = append(cards, Card{
			ID:       p.ID,
			Image:    p.Image,
			Name:     p.Name,
			Subtitle: p.Subtitle,
			Price:    f.Format(p.Price),
			Quantity: qty,
		})
	}
	return cards
}

// Summary builds the cart summary from a snapshot.
func Summary(snap cart.Snapshot, f *money.Formatter) CartView {
	v := CartView{
		Badge: snap.TotalQuantity(),
		Rows:  make([]Row, 0, len(snap.Lines)),
		Total: f.Format(snap.TotalAmount()),
	}
	if snap.Empty() {
		v.Empty = true
		v.Message = EmptyCartMessage
		return v
	}
	for _, l := range snap.Lines {
		v.Rows = append(v.Rows, Row{
			ID:       l.Product.ID,
			Image:    l.Product.Image,
			Name:     l.Product.Name,
			Quantity: l.Quantity,
			Note:     strconv.Itoa(l.Quantity) + " x " + f.Format(l.Product.Price),
		})
	}
	return v
}

// Page is everything the storefront page displays.
type Page struct {
	StoreName  string
	Grid       []Card
	Cart       CartView
	DrawerOpen bool
	Notice     string
	Year       int
	// CheckoutReady opens the checkout handoff in a new tab; otherwise the
	// form posts in place so the notice shows in this tab.
	CheckoutReady bool
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Render writes the page as HTML.
func Render(w io.Writer, p Page) error {
	if err := pageTemplate.ExecuteTemplate(w, "page.html.tmpl", p); err != nil {
		return errors.Wrap(err, "render page")
	}
	return nil
}
