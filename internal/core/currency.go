package core

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyCode is an ISO 4217 style code such as "USD" or "EUR".
type CurrencyCode struct {
	code string
}

// Common currencies.
var (
	USD = MustCurrencyCode("USD")
	EUR = MustCurrencyCode("EUR")
	GBP = MustCurrencyCode("GBP")
	JPY = MustCurrencyCode("JPY")
	CAD = MustCurrencyCode("CAD")
	AUD = MustCurrencyCode("AUD")
	CHF = MustCurrencyCode("CHF")
	CNY = MustCurrencyCode("CNY")
	INR = MustCurrencyCode("INR")
	BRL = MustCurrencyCode("BRL")
)

// NewCurrencyCode validates code: exactly 3 characters, each an uppercase
// ASCII letter or a digit.
func NewCurrencyCode(code string) (CurrencyCode, error) {
	if len(code) != 3 {
		return CurrencyCode{}, violation("CurrencyCode", "code", "must be exactly 3 characters")
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return CurrencyCode{}, violation("CurrencyCode", "code", "must be uppercase letters or digits")
		}
	}
	return CurrencyCode{code: code}, nil
}

// MustCurrencyCode is NewCurrencyCode for package-level constants; it panics
// on invalid input.
func MustCurrencyCode(code string) CurrencyCode {
	c, err := NewCurrencyCode(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CurrencyCode) Code() string   { return c.code }
func (c CurrencyCode) String() string { return c.code }
func (c CurrencyCode) IsZero() bool   { return c.code == "" }

// Symbol returns the display symbol for the code, or the code itself when
// the provider knows no symbol. A nil provider uses DefaultSymbols.
func (c CurrencyCode) Symbol(p SymbolProvider) string {
	if p == nil {
		p = DefaultSymbols
	}
	if sym, ok := p.Symbol(c.code); ok && sym != "" {
		return sym
	}
	return c.code
}

// MinorUnits is the number of decimal places amounts in this currency are
// rounded to (2 for EUR, 0 for JPY). Codes unknown to CLDR use 2.
func (c CurrencyCode) MinorUnits() int32 {
	unit, err := currency.ParseISO(c.code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// DisplayName renders "<symbol> (<code>)", e.g. "$ (USD)".
func (c CurrencyCode) DisplayName(p SymbolProvider) string {
	return c.Symbol(p) + " (" + c.code + ")"
}

// SymbolProvider looks up currency display symbols.
type SymbolProvider interface {
	Symbol(code string) (string, bool)
}

// LocaleSymbols resolves narrow CLDR symbols for one language.
type LocaleSymbols struct {
	printer *message.Printer
}

// DefaultSymbols renders symbols for English.
var DefaultSymbols SymbolProvider = NewLocaleSymbols(language.English)

func NewLocaleSymbols(tag language.Tag) *LocaleSymbols {
	return &LocaleSymbols{printer: message.NewPrinter(tag)}
}

func (l *LocaleSymbols) Symbol(code string) (string, bool) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", false
	}
	sym := l.printer.Sprint(currency.NarrowSymbol(unit))
	if sym == "" || sym == code {
		return "", false
	}
	return sym, true
}
