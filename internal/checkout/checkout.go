// Package checkout turns a cart snapshot into an order message and a
// messaging deep link that carries it.
package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// DeepLinkBase is the messaging scheme the order is handed to.
const DeepLinkBase = "https://wa.me/"

var ErrInvalidContact = errors.New("merchant contact must be digits only, in international format without a leading +")

// Merchant identifies the shop on the order message and deep link.
type Merchant struct {
	Name    string
	Contact string
}

// Validate checks Contact is a non-empty string of digits.
func (m Merchant) Validate() error {
	if m.Contact == "" {
		return ErrInvalidContact
	}
	for _, r := range m.Contact {
		if r < '0' || r > '9' {
			return ErrInvalidContact
		}
	}
	return nil
}

// Formatter renders money amounts.
type Formatter interface {
	Format(amount decimal.Decimal) string
}

// Builder produces order messages and checkout links. It performs no I/O
// and returns identical output for identical input.
type Builder struct {
	merchant Merchant
	money    Formatter
}

func NewBuilder(merchant Merchant, money Formatter) *Builder {
	return &Builder{merchant: merchant, money: money}
}

var customerDetailPrompts = []string{
	"Customer details:",
	"Name:",
	"Phone:",
	"Delivery address:",
	"Notes:",
}

// BuildOrderMessage renders the order summary for items in their stored
// order.
func (b *Builder) BuildOrderMessage(items []domain.LineItem) string {
	lines := make([]string, 0, len(items)+4+len(customerDetailPrompts))
	lines = append(lines, "New order — "+b.merchant.Name, "")
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s (%s) x %d — %s",
			i+1, item.Name, item.Unit, item.Quantity, b.money.Format(item.LineTotal())))
	}
	lines = append(lines, "", "Total: "+b.money.Format(domain.Total(items)), "")
	lines = append(lines, customerDetailPrompts...)
	return strings.Join(lines, "\n")
}

// BuildCheckoutURL returns the deep link that opens a chat with the merchant
// pre-filled with the order message.
func (b *Builder) BuildCheckoutURL(items []domain.LineItem) string {
	return DeepLinkBase + url.PathEscape(b.merchant.Contact) + "?text=" + EscapeComponent(b.BuildOrderMessage(items))
}

// EscapeComponent percent-encodes s for use as a query value. Spaces become
// %20 rather than +, matching what messaging apps expect.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
