package report

import (
	"fmt"
	"strings"
	"unicode"
)

// MakeAnchor turns a heading into the fragment identifier Markdown renderers
// generate for it: letters lowered, digits, '-' and '_' kept, whitespace
// runs become one '-', everything else is dropped.
func MakeAnchor(heading string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range heading {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		case unicode.IsSpace(r) || r == '-':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return b.String()
}

// anchorSet hands out unique anchors, suffixing repeated ones the same way
// renderers disambiguate duplicated headings.
type anchorSet map[string]int

func (as anchorSet) unique(heading string) string {
	anchor := MakeAnchor(heading)
	n, seen := as[anchor]
	as[anchor] = n + 1
	if !seen {
		return anchor
	}
	dedup := fmt.Sprintf("%s-%d", anchor, n)
	for as[dedup] > 0 {
		n++
		dedup = fmt.Sprintf("%s-%d", anchor, n)
	}
	as[dedup] = 1
	as[anchor] = n + 1
	return dedup
}
