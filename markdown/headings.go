package markdown

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	Slug  string
	Text  string
}

// ExtractHeadings returns the ATX headings of md in document order. Lines
// inside fenced code blocks are skipped.
func ExtractHeadings(md string) []Heading {
	var headings []Heading
	inCode := false
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		level, text, ok := matchHeading(line)
		if !ok {
			continue
		}
		headings = append(headings, Heading{
			Level: level,
			Slug:  HeadingSlug(text, level, len(headings)),
			Text:  text,
		})
	}
	return headings
}

func matchHeading(line string) (int, string, bool) {
	m := reHeading.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	text := strings.TrimSpace(m[2])
	if text == "" {
		return 0, "", false
	}
	return len(m[1]), text, true
}

// HeadingSlug derives an anchor id from heading text. CJK unified ideographs
// (U+4E00..U+9FA5) are kept alongside word characters and hyphens. When
// nothing survives, the id falls back to heading-<level>-<position>.
func HeadingSlug(text string, level, position int) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r) || r == '_':
			sep = true
		case isSlugRune(r):
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "heading-" + strconv.Itoa(level) + "-" + strconv.Itoa(position)
	}
	return slug
}

func isSlugRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '-' ||
		r >= 0x4e00 && r <= 0x9fa5
}
