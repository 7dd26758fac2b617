package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic maps ISO 639-2/B codes found in container tags to their
// ISO 639-1 equivalent.
var bibliographic = map[string]string{
	"fre": "fr",
	"ger": "de",
	"chi": "zh",
	"dut": "nl",
	"cze": "cs",
	"gre": "el",
	"per": "fa",
	"rum": "ro",
	"slo": "sk",
	"wel": "cy",
	"alb": "sq",
	"arm": "hy",
	"baq": "eu",
	"bur": "my",
	"geo": "ka",
	"ice": "is",
	"mac": "mk",
	"mao": "mi",
	"may": "ms",
	"tib": "bo",
}

// Normalize reduces a language hint to its ISO 639-1 base code. Empty input
// and "auto" mean auto-detect and yield an empty string.
func Normalize(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "auto") {
		return "", nil
	}
	if code, ok := bibliographic[strings.ToLower(value)]; ok {
		return code, nil
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", value, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// ToISO2 is Normalize without the error; unrecognized input yields "".
func ToISO2(code string) string {
	normalized, err := Normalize(code)
	if err != nil {
		return ""
	}
	return normalized
}

// DisplayName returns the English name for a language code, "Auto-detect" for
// an empty hint, or the uppercased input when it cannot be parsed.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Auto-detect"
	}
	normalized, err := Normalize(code)
	if err != nil || normalized == "" {
		return strings.ToUpper(code)
	}
	name := display.English.Languages().Name(language.Make(normalized))
	if name == "" {
		return strings.ToUpper(normalized)
	}
	return name
}

// ExtractFromTags returns the raw language value from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"} {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}

// Matches reports whether a stream language code and a hint name the same
// base language. An empty hint or an unknown code never matches.
func Matches(code, hint string) bool {
	a := ToISO2(code)
	b := ToISO2(hint)
	return a != "" && a == b
}
