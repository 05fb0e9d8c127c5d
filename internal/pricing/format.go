package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders monetary amounts with exactly two decimal places
// and locale-aware digit grouping. The engine stores raw numbers;
// formatting is a presentation concern.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for the given locale.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format renders v as e.g. "1,299.00".
func (f *Formatter) Format(v float64) string {
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

var defaultFormatter = NewFormatter(language.English)

// Format renders v with the default (English) locale.
func Format(v float64) string {
	return defaultFormatter.Format(v)
}
