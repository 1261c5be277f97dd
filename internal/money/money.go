// Package money renders amounts for display. The rule (currency label and
// fraction digits) is chosen per deployment.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rule describes how one deployment renders money.
type Rule struct {
	Code   string
	Prefix string
	Scale  int32
}

var (
	// MVR renders whole rufiyaa: "MVR 1,234".
	MVR = Rule{Code: "MVR", Prefix: "MVR ", Scale: 0}
	// USD renders dollars and cents: "$1,234.50".
	USD = Rule{Code: "USD", Prefix: "$", Scale: 2}
)

var rules = map[string]Rule{
	MVR.Code: MVR,
	USD.Code: USD,
}

// RuleFor looks up a rule by currency code, case-insensitively.
func RuleFor(code string) (Rule, bool) {
	r, ok := rules[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Formatter formats amounts according to a Rule.
type Formatter struct {
	rule Rule
}

func NewFormatter(rule Rule) *Formatter {
	return &Formatter{rule: rule}
}

// Rule returns the formatter's rule.
func (f *Formatter) Rule() Rule {
	return f.rule
}

// Format rounds amount half away from zero to the rule's scale and groups
// thousands. Digits come straight from the decimal, so large amounts stay
// exact.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(f.rule.Scale)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole, frac, _ := strings.Cut(rounded.StringFixed(f.rule.Scale), ".")
	out := groupThousands(whole)
	if frac != "" {
		out += "." + frac
	}
	return sign + f.rule.Prefix + out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
