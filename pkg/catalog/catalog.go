package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/checkoutkit/pkg/validator"
)

//go:embed default.yaml
var defaultCatalog []byte

// Config points at an optional catalog file. An empty path uses the built-in catalog.
type Config struct {
	Path string `env:"CATALOG_PATH"`
}

// Product is a one-time purchasable item.
type Product struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

// Plan is a recurring billing plan defined at the payment provider.
type Plan struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Interval string `yaml:"interval"`
	Price    string `yaml:"price,omitempty"`
}

type file struct {
	Currency string    `yaml:"currency"`
	Products []Product `yaml:"products"`
	Plans    []Plan    `yaml:"plans"`
}

// Catalog is the read-only set of known products and plans.
type Catalog struct {
	currency currency.Unit
	products map[string]Product
	plans    map[string]Plan
}

// Load reads the catalog named by cfg, or the built-in one when no path is set.
func Load(cfg Config) (*Catalog, error) {
	if cfg.Path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, errors.Join(ErrLoad, err)
	}
	return Parse(data)
}

// Default returns the built-in catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Join(ErrLoad, err)
	}

	if err := validator.Apply(validator.ValidCurrencyCode("currency", f.Currency)); err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}
	unit, err := currency.ParseISO(f.Currency)
	if err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}

	c := &Catalog{
		currency: unit,
		products: make(map[string]Product, len(f.Products)),
		plans:    make(map[string]Plan, len(f.Plans)),
	}

	for i, p := range f.Products {
		p.ID = strings.TrimSpace(p.ID)
		if err := validator.Apply(
			validator.RequiredString(fmt.Sprintf("products[%d].id", i), p.ID),
			validator.PositiveDecimal(fmt.Sprintf("products[%d].price", i), p.Price),
		); err != nil {
			return nil, errors.Join(ErrInvalid, err)
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product %q", ErrInvalid, p.ID)
		}
		c.products[p.ID] = p
	}

	for i, p := range f.Plans {
		p.ID = strings.TrimSpace(p.ID)
		if err := validator.Apply(validator.RequiredString(fmt.Sprintf("plans[%d].id", i), p.ID)); err != nil {
			return nil, errors.Join(ErrInvalid, err)
		}
		if _, dup := c.plans[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalid, p.ID)
		}
		c.plans[p.ID] = p
	}

	return c, nil
}

// Currency returns the ISO 4217 code every price is denominated in.
func (c *Catalog) Currency() string {
	return c.currency.String()
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Plan looks up a plan by id.
func (c *Catalog) Plan(id string) (Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

// Products returns all products sorted by id.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Product) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Plans returns all plans sorted by id.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Plan) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// HasProduct reports whether id names a known product.
func (c *Catalog) HasProduct(id string) bool {
	_, ok := c.products[id]
	return ok
}

// HasPlan reports whether id names a known plan.
func (c *Catalog) HasPlan(id string) bool {
	_, ok := c.plans[id]
	return ok
}
