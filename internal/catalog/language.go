package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// LanguageKey is the header field naming the catalog's target language.
const LanguageKey = "Language"

// CheckLanguage validates the Language header field as a BCP 47 tag.
// POSIX-style values such as "pt_BR" are accepted. A missing or empty
// field (as in POT templates) is not an error.
func (c *Catalog) CheckLanguage() error {
	value, ok := c.Metadata.Get(LanguageKey)
	if !ok || value == "" {
		return nil
	}
	if _, err := ParseLanguage(value); err != nil {
		return fmt.Errorf("%s %q: %w", LanguageKey, value, err)
	}
	return nil
}

// ParseLanguage parses a gettext language code into a language tag.
func ParseLanguage(value string) (language.Tag, error) {
	code := value
	// gettext codes may carry a POSIX modifier or codeset ("sr@latin", "de_DE.UTF-8").
	if i := strings.IndexAny(code, "@."); i >= 0 {
		code = code[:i]
	}
	return language.Parse(strings.ReplaceAll(code, "_", "-"))
}
