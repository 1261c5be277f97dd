package domain

import "github.com/shopspring/decimal"

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// LineItem is one cart entry. Name, Unit and UnitPrice are copied from the
// product when the line is created and are not refreshed afterwards.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
}

// LineTotal returns UnitPrice x Quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewLineItem builds a line from a product with the given quantity.
func NewLineItem(p Product, quantity int) LineItem {
	return LineItem{
		ID:        p.ID,
		Name:      p.Name,
		Unit:      p.Unit,
		UnitPrice: p.Price,
		Quantity:  ClampQuantity(quantity),
	}
}

// ClampQuantity bounds q to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// AddQuantity returns ClampQuantity(q + delta) without overflowing int.
func AddQuantity(q, delta int) int {
	return ClampQuantity(boundDelta(q) + boundDelta(delta))
}

func boundDelta(d int) int {
	if d > MaxQuantity {
		return MaxQuantity
	}
	if d < -MaxQuantity {
		return -MaxQuantity
	}
	return d
}

// Total sums the line totals of items.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
