package mkv

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const undetermined = "und"

// maps a BCP 47 or ISO 639 code to the ISO 639-2 code mkvmerge expects
func ISO3(code string) string {
	tag, ok := parseLanguage(code)
	if !ok {
		return undetermined
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// English name for a language code, "Unknown" when it cannot be resolved
func DisplayName(code string) string {
	tag, ok := parseLanguage(code)
	if !ok {
		return "Unknown"
	}
	base, _ := tag.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return strings.ToUpper(code)
}

func parseLanguage(code string) (language.Tag, bool) {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, undetermined) {
		return language.Und, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, false
	}
	if _, conf := tag.Base(); conf != language.Exact {
		return language.Und, false
	}
	return tag, true
}
