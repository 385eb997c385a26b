package tabular

import (
	"strings"
	"unicode"
)

// Slug canonicalizes a header cell: trim, lowercase, collapse runs of
// non-alphanumeric characters into a single underscore. Letters and digits in
// any script count as alphanumeric.
// "Campaign Name (L2)" -> "campaign_name_l2".
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
