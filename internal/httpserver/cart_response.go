package httpserver

import (
	"storefront/internal/domain"
)

type lineItemResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Unit               string `json:"unit"`
	UnitPrice          string `json:"unitPrice"`
	UnitPriceFormatted string `json:"unitPriceFormatted"`
	Quantity           int    `json:"quantity"`
	LineTotal          string `json:"lineTotal"`
	LineTotalFormatted string `json:"lineTotalFormatted"`
}

type cartResponse struct {
	Items           []lineItemResponse `json:"items"`
	Total           string             `json:"total"`
	TotalFormatted  string             `json:"totalFormatted"`
	ItemCount       int                `json:"itemCount"`
	CheckoutEnabled bool               `json:"checkoutEnabled"`
	CartOpen        bool               `json:"cartOpen,omitempty"`
}

type productResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          string `json:"price"`
	PriceFormatted string `json:"priceFormatted"`
	Category       string `json:"category"`
	Unit           string `json:"unit"`
	Image          string `json:"img,omitempty"`
}

type productListResponse struct {
	Count   int               `json:"count"`
	Results []productResponse `json:"results"`
}

type checkoutResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// toCartResponse renders one snapshot so totals always agree with the lines
// shown next to them.
func toCartResponse(items []domain.LineItem, money moneyFormatter) cartResponse {
	lines := make([]lineItemResponse, 0, len(items))
	count := 0
	for _, item := range items {
		lineTotal := item.LineTotal()
		lines = append(lines, lineItemResponse{
			ID:                 item.ID,
			Name:               item.Name,
			Unit:               item.Unit,
			UnitPrice:          item.UnitPrice.String(),
			UnitPriceFormatted: money.Format(item.UnitPrice),
			Quantity:           item.Quantity,
			LineTotal:          lineTotal.String(),
			LineTotalFormatted: money.Format(lineTotal),
		})
		count += item.Quantity
	}
	total := domain.Total(items)
	return cartResponse{
		Items:           lines,
		Total:           total.String(),
		TotalFormatted:  money.Format(total),
		ItemCount:       count,
		CheckoutEnabled: len(items) > 0,
	}
}

func toProductResponse(p domain.Product, money moneyFormatter) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price.String(),
		PriceFormatted: money.Format(p.Price),
		Category:       p.Category,
		Unit:           p.Unit,
		Image:          p.Image,
	}
}
