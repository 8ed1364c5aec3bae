// Package catalog loads the read-only product list the storefront sells.
package catalog

import (
	_ "embed"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/storefront-cart/internal/model"
)

// ErrMalformed is returned when the catalog document is absent or is not a list of products.
var ErrMalformed = errors.New("malformed catalog")

//go:embed products.yaml
var defaultCatalog []byte

// rawProduct mirrors the document schema; price stays textual so decimals are parsed exactly.
type rawProduct struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Subtitle string `yaml:"subtitle"`
	Price    string `yaml:"price"`
	Image    string `yaml:"image"`
}

// Catalog is an ordered, immutable set of products.
type Catalog struct {
	products []*model.Product
	byID     map[string]*model.Product
}

// Empty returns a catalog with no products.
func Empty() *Catalog {
	return &Catalog{byID: map[string]*model.Product{}}
}

// Load reads the catalog at path, or the embedded default catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return Parse(data)
}

// Parse decodes a YAML (or JSON) list of products.
func Parse(data []byte) (*Catalog, error) {
	var raw []rawProduct
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	if raw == nil {
		return nil, errors.Wrap(ErrMalformed, "no product list")
	}
	c := &Catalog{
		products: make([]*model.Product, 0, len(raw)),
		byID:     make(map[string]*model.Product, len(raw)),
	}
	for i, r := range raw {
		if r.ID == "" {
			return nil, errors.Wrapf(ErrMalformed, "product %d: missing id", i)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, errors.Wrapf(ErrMalformed, "product %q: duplicate id", r.ID)
		}
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "product %q: price %q", r.ID, r.Price)
		}
		if price.IsNegative() {
			return nil, errors.Wrapf(ErrMalformed, "product %q: negative price", r.ID)
		}
		p := &model.Product{ID: r.ID, Name: r.Name, Subtitle: r.Subtitle, Price: price, Image: r.Image}
		c.products = append(c.products, p)
		c.byID[p.ID] = p
	}
	return c, nil
}

// Products returns the products in catalog order.
func (c *Catalog) Products() []*model.Product {
	out := make([]*model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Find returns the product with the given id.
func (c *Catalog) Find(id string) (*model.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }
