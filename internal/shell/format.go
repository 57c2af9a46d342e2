package shell

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ruleWidth = 70

// priceFormatter renders amounts with locale digit grouping and the store currency suffix.
type priceFormatter struct {
	printer *message.Printer
	suffix  string
}

func newPriceFormatter(locale, suffix string) priceFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return priceFormatter{printer: message.NewPrinter(tag), suffix: strings.TrimSpace(suffix)}
}

func (f priceFormatter) format(amount int64) string {
	text := f.printer.Sprintf("%d", amount)
	if f.suffix == "" {
		return text
	}
	return text + " " + f.suffix
}

func rule(char string) string {
	return strings.Repeat(char, ruleWidth)
}
