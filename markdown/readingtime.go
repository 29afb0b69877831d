package markdown

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultWordsPerMinute is the reading speed used when none is given.
const DefaultWordsPerMinute = 200

var (
	reFence       = regexp.MustCompile("(?s)```.*?```")
	reCodeSpan    = regexp.MustCompile("`[^`]*`")
	reImageMarkup = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reLinkMarkup  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reEmphasis    = regexp.MustCompile(`\*\*|\*|__|_`)
	reQuoteMarker = regexp.MustCompile(`>\s?`)
)

// ReadingMinutes estimates how many whole minutes md takes to read. Code,
// image markup and formatting characters are not counted. The result is at
// least 1.
func ReadingMinutes(md string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	text := reFence.ReplaceAllString(md, "")
	text = reCodeSpan.ReplaceAllString(text, "")
	text = reImageMarkup.ReplaceAllString(text, "")
	text = reLinkMarkup.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "#", "")
	text = reEmphasis.ReplaceAllString(text, "")
	text = reQuoteMarker.ReplaceAllString(text, "")

	words := len(strings.Fields(text))
	minutes := int(math.Ceil(float64(words) / float64(wordsPerMinute)))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// EstimateReadingTime formats ReadingMinutes as "<n> min read".
func EstimateReadingTime(md string, wordsPerMinute int) string {
	return strconv.Itoa(ReadingMinutes(md, wordsPerMinute)) + " min read"
}
