package search

import (
	"math"
	"strings"
)

// maxBits is the longest pattern a single bitap pass can hold.
const maxBits = 32

type chunk struct {
	pattern  []rune
	alphabet map[rune]uint32
	start    int
}

// matcher scores text values against one query using bitap approximate
// matching.
type matcher struct {
	pattern []rune
	chunks  []chunk
	opts    Options
}

func newMatcher(query string, opts Options) *matcher {
	if !opts.CaseSensitive {
		query = strings.ToLower(query)
	}
	p := []rune(query)
	m := &matcher{pattern: p, opts: opts}
	if len(p) == 0 {
		return m
	}
	if len(p) <= maxBits {
		m.chunks = append(m.chunks, newChunk(p, 0))
		return m
	}
	remainder := len(p) % maxBits
	end := len(p) - remainder
	for i := 0; i < end; i += maxBits {
		m.chunks = append(m.chunks, newChunk(p[i:i+maxBits], i))
	}
	if remainder > 0 {
		start := len(p) - maxBits
		m.chunks = append(m.chunks, newChunk(p[start:], start))
	}
	return m
}

func newChunk(p []rune, start int) chunk {
	alphabet := make(map[rune]uint32, len(p))
	for i, r := range p {
		alphabet[r] |= 1 << uint(len(p)-i-1)
	}
	return chunk{pattern: p, alphabet: alphabet, start: start}
}

// match reports whether text matches and its score in [0, 1].
// text must already be lowercased unless the matcher is case sensitive.
func (m *matcher) match(text string) (bool, float64) {
	if len(m.chunks) == 0 {
		return false, 1
	}
	t := []rune(text)
	if runesEqual(m.pattern, t) {
		return true, 0
	}
	total := 0.0
	matched := false
	for _, c := range m.chunks {
		ok, score := m.bitap(t, c)
		if ok {
			matched = true
		}
		total += score
	}
	if !matched {
		return false, 1
	}
	return true, total / float64(len(m.chunks))
}

func (m *matcher) score(pattern []rune, errors, current, expected int) float64 {
	accuracy := float64(errors) / float64(len(pattern))
	if m.opts.IgnoreLocation {
		return accuracy
	}
	proximity := expected - current
	if proximity < 0 {
		proximity = -proximity
	}
	if m.opts.Distance == 0 {
		if proximity != 0 {
			return 1
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(m.opts.Distance)
}

func (m *matcher) bitap(text []rune, c chunk) (bool, float64) {
	pattern := c.pattern
	patternLen := len(pattern)
	textLen := len(text)
	expected := m.opts.Location + c.start
	if expected > textLen {
		expected = textLen
	}
	if expected < 0 {
		expected = 0
	}
	threshold := m.opts.Threshold

	// Exact occurrences tighten the threshold before the fuzzy pass.
	from := expected
	for {
		idx := indexRunes(text, pattern, from)
		if idx < 0 {
			break
		}
		s := m.score(pattern, 0, idx, expected)
		threshold = math.Min(s, threshold)
		from = idx + patternLen
	}

	bestLocation := -1
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := uint32(1) << uint(patternLen-1)
	var lastBits []uint32

	for i := 0; i < patternLen; i++ {
		binMin, binMid := 0, binMax
		for binMin < binMid {
			if m.score(pattern, i, expected+binMid, expected) <= threshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := expected - binMid + 1
		if start < 1 {
			start = 1
		}
		finish := expected + binMid
		if finish > textLen {
			finish = textLen
		}
		finish += patternLen

		bits := make([]uint32, finish+2)
		bits[finish+1] = uint32(1)<<uint(i) - 1

		for j := finish; j >= start; j-- {
			loc := j - 1
			var charMatch uint32
			if loc < textLen {
				charMatch = c.alphabet[text[loc]]
			}
			bits[j] = ((bits[j+1] << 1) | 1) & charMatch
			if i > 0 {
				bits[j] |= ((at(lastBits, j+1) | at(lastBits, j)) << 1) | 1 | at(lastBits, j+1)
			}
			if bits[j]&mask != 0 {
				finalScore = m.score(pattern, i, loc, expected)
				if finalScore <= threshold {
					threshold = finalScore
					bestLocation = loc
					if bestLocation <= expected {
						break
					}
					start = 2*expected - bestLocation
					if start < 1 {
						start = 1
					}
				}
			}
		}

		if m.score(pattern, i+1, expected, expected) > threshold {
			break
		}
		lastBits = bits
	}

	return bestLocation >= 0, math.Max(0.001, finalScore)
}

func at(bits []uint32, i int) uint32 {
	if i < 0 || i >= len(bits) {
		return 0
	}
	return bits[i]
}

func indexRunes(text, pattern []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(pattern) <= len(text); i++ {
		if runesEqual(text[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
