// Package translate localizes the emulator's user-facing strings.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supported = []language.Tag{
	language.AmericanEnglish,
	language.Russian,
}

var matcher = language.NewMatcher(supported)

var printer *message.Printer

// Language is the selected message language.
var Language language.Tag

func init() {
	registerRussian()

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("m20: locale: %v", err)
	}

	SetLanguage(locales...)
}

// SetLanguage selects the supported language closest to the locales,
// American English if none match.
func SetLanguage(locales ...string) language.Tag {
	var tags []language.Tag
	for _, name := range locales {
		tag, err := language.Parse(name)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}

	_, index, _ := matcher.Match(tags...)
	Language = supported[index]
	printer = message.NewPrinter(Language)

	return Language
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
