// Package i18n resolves multilingual popup text to a single locale.
package i18n

import (
	"strings"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
)

// DefaultLocale is the platform's base locale. Every popup must carry Spanish
// text; other locales are optional.
const DefaultLocale = "es"

// Resolve returns the text for the given locale, falling back to Spanish when
// the locale's entry is absent or the locale is unknown.
func Resolve(ms domain.MultilingualString, locale string) string {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en":
		if ms.EN != "" {
			return ms.EN
		}
	case "fr":
		if ms.FR != "" {
			return ms.FR
		}
	}
	return ms.ES
}
