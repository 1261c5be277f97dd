package catalog

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type productSeed struct {
	ID       string
	Name     string
	Price    int64
	Category string
	Unit     string
	Image    string
}

var defaultSeeds = []productSeed{
	{
		ID:       "almond-choc-100",
		Name:     "Almond Chocolate Bar 100g",
		Price:    45,
		Category: "Chocolate",
		Unit:     "100 g",
		Image:    "https://images.unsplash.com/photo-1606313564200-e75d5e30476e?q=80&w=1200&auto=format&fit=crop",
	},
	{
		ID:       "hazelnut-choc-90",
		Name:     "Hazelnut Milk Chocolate 90g",
		Price:    40,
		Category: "Chocolate",
		Unit:     "90 g",
		Image:    "https://images.unsplash.com/photo-1616594099215-5e5dd2f3ee12?q=80&w=1200&auto=format&fit=crop",
	},
	{
		ID:       "pista-usa-250",
		Name:     "Pistachio USA Kernels 250g",
		Price:    120,
		Category: "Nuts",
		Unit:     "250 g",
		Image:    "https://images.unsplash.com/photo-1604908812839-7f98ae7f05e8?q=80&w=1200&auto=format&fit=crop",
	},
	{
		ID:       "apricot-tr-200",
		Name:     "Apricot (Turkey) 200g",
		Price:    65,
		Category: "Dried Fruit",
		Unit:     "200 g",
		Image:    "https://images.unsplash.com/photo-1621939514649-1af7cb68fde8?q=80&w=1200&auto=format&fit=crop",
	},
	{
		ID:       "mixed-cubes-200",
		Name:     "Mixed Fruit Cubes 200g",
		Price:    55,
		Category: "Snacks",
		Unit:     "200 g",
		Image:    "https://images.unsplash.com/photo-1572552630968-5f2c68f9632e?q=80&w=1200&auto=format&fit=crop",
	},
}

// Defaults returns the built-in storefront catalog, priced in MVR.
func Defaults() *Catalog {
	products := make([]domain.Product, 0, len(defaultSeeds))
	for _, s := range defaultSeeds {
		products = append(products, domain.Product{
			ID:       s.ID,
			Name:     s.Name,
			Price:    decimal.NewFromInt(s.Price),
			Category: s.Category,
			Unit:     s.Unit,
			Image:    s.Image,
		})
	}
	c, err := New(products)
	if err != nil {
		panic("catalog: invalid defaults: " + err.Error())
	}
	return c
}
