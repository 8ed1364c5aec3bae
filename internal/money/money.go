// Package money formats amounts for display in the storefront's single locale and currency.
package money

import (
	"strings"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts as locale-aware currency strings. It holds no
// mutable state and may be shared.
type Formatter struct {
	unit    currency.Unit
	symbol  string
	scale   int
	group   string
	decimal string
}

// NewFormatter builds a formatter for a BCP 47 locale and an ISO 4217 currency code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, errors.Wrapf(err, "parse locale %q", locale)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, errors.Wrapf(err, "parse currency %q", code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	p := message.NewPrinter(tag)
	symbol := p.Sprint(currency.Symbol(unit))
	if symbol == "" {
		symbol = unit.String()
	}
	group, dec := separators(p)
	return &Formatter{unit: unit, symbol: symbol, scale: scale, group: group, decimal: dec}, nil
}

// separators reads the locale's grouping and decimal marks off a sample that
// float64 represents exactly.
func separators(p *message.Printer) (group, dec string) {
	sample := []rune(p.Sprint(number.Decimal(1000000.5, number.Scale(1))))
	group, dec = ",", "."
	if len(sample) < 3 {
		return group, dec
	}
	if r := sample[1]; !unicode.IsDigit(r) {
		group = string(r)
	} else {
		group = ""
	}
	if r := sample[len(sample)-2]; !unicode.IsDigit(r) {
		dec = string(r)
	}
	return group, dec
}

// MustFormatter is NewFormatter that panics on error.
func MustFormatter(locale, code string) *Formatter {
	f, err := NewFormatter(locale, code)
	if err != nil {
		panic(err)
	}
	return f
}

// Format renders amount, e.g. "R$ 1.234,50" for pt-BR/BRL. Digits come
// straight from the decimal, so any magnitude prints exactly.
func (f *Formatter) Format(amount decimal.Decimal) string {
	digits := amount.StringFixed(int32(f.scale))
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	intPart, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(f.symbol)
	b.WriteString(" ")
	b.WriteString(sign)
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(d)
	}
	if frac != "" {
		b.WriteString(f.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// Currency returns the ISO code.
func (f *Formatter) Currency() string { return f.unit.String() }
