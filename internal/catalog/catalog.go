package catalog

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

// AllCategories is the pseudo category that matches every product.
const AllCategories = "All"

var (
	ErrDuplicateProduct = errors.New("duplicate product id")
	ErrInvalidProduct   = errors.New("invalid product")
)

// Catalog is the read-only, ordered product list.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New validates products and builds a Catalog preserving their order.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProduct, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func validate(p domain.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name required for %q", ErrInvalidProduct, p.ID)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for %q", ErrInvalidProduct, p.ID)
	}
	return nil
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id string) (domain.Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[idx], true
}

// All returns a copy of every product in catalog order.
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Categories returns the distinct category labels in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Filter returns products whose name contains query (case-insensitive) and
// whose category matches. An empty category or AllCategories matches any.
func (c *Catalog) Filter(query, category string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	anyCategory := category == "" || category == AllCategories

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if !anyCategory && p.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Builder collects products before building a Catalog. It rejects duplicate
// ids as they are added so importers can report the offending row.
type Builder struct {
	products []domain.Product
	seen     map[string]struct{}
}

func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// Add appends a product.
func (b *Builder) Add(p domain.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	if _, ok := b.seen[p.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateProduct, p.ID)
	}
	b.seen[p.ID] = struct{}{}
	b.products = append(b.products, p)
	return nil
}

// Build returns the Catalog of every product added so far.
func (b *Builder) Build() (*Catalog, error) {
	return New(b.products)
}
