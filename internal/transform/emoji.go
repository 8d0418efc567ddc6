package transform

import (
	"regexp"
	"strings"

	"github.com/kyokomi/emoji/v2"
)

var emojiRe = regexp.MustCompile(`:([a-z0-9_+-]+):`)

// emojiCodes substitutes :name: shortcodes with their Unicode characters.
// Region flags absent from the code map (:flag-xx:) are synthesised from
// regional-indicator symbols. Unrecognised shortcodes stay verbatim.
func emojiCodes(text string) string {
	codes := emoji.CodeMap()
	return emojiRe.ReplaceAllStringFunc(text, func(code string) string {
		if e, ok := codes[code]; ok {
			return e
		}
		if flag, ok := regionFlag(strings.Trim(code, ":")); ok {
			return flag
		}
		return code
	})
}

// regionFlag builds the flag emoji for a two-letter "flag-xx" shortcode.
func regionFlag(name string) (string, bool) {
	cc, ok := strings.CutPrefix(name, "flag-")
	if !ok || len(cc) != 2 {
		return "", false
	}
	var b strings.Builder
	for _, r := range cc {
		if r < 'a' || r > 'z' {
			return "", false
		}
		b.WriteRune('\U0001F1E6' + r - 'a')
	}
	return b.String(), true
}
