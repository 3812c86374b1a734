package classify

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// message keys with plural forms
const (
	msgPushed         = "pushed %d commits to %s"
	msgThreadResolved = "resolved a thread of %d comments on %s"
)

// newPrinter builds an English printer with the plural-aware descriptions
func newPrinter() (*message.Printer, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	if err := b.Set(language.English, msgPushed, plural.Selectf(1, "%d",
		plural.One, "Pushed %[1]d commit to %[2]s",
		plural.Other, "Pushed %[1]d commits to %[2]s",
	)); err != nil {
		return nil, err
	}
	if err := b.Set(language.English, msgThreadResolved, plural.Selectf(1, "%d",
		plural.One, "Resolved a review thread with %[1]d comment on pull request %[2]s",
		plural.Other, "Resolved a review thread with %[1]d comments on pull request %[2]s",
	)); err != nil {
		return nil, err
	}
	return message.NewPrinter(language.English, message.Catalog(b)), nil
}
