// Package search provides weighted fuzzy matching over an in-memory document
// list and the query state that keeps a search box in step with the page URL.
package search

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidWeight is returned for a key whose weight is not positive.
var ErrInvalidWeight = errors.New("search: key weight must be positive")

// Key describes one searchable field of T.
type Key[T any] struct {
	Name   string
	Weight float64
	// Values returns the field's strings: one for scalar fields, several for
	// list fields such as tags.
	Values func(T) []string
}

// Options tunes matching. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Threshold is the highest per-field score still counted as a match.
	// 0 requires an exact match, 1 matches anything.
	Threshold float64
	// IgnoreLocation scores a match the same wherever it occurs in the field.
	IgnoreLocation bool
	// Location and Distance weigh match position when IgnoreLocation is off.
	Location int
	Distance int
	// IgnoreFieldNorm disables the bonus for matches in short fields.
	IgnoreFieldNorm bool
	CaseSensitive   bool
	// MinQueryLength is the shortest query, in runes, that runs a search.
	MinQueryLength int
}

// DefaultOptions returns the tuning used for article search.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.4,
		IgnoreLocation: true,
		Distance:       100,
		MinQueryLength: 2,
	}
}

// Result is one ranked match.
type Result[T any] struct {
	Item     T
	RefIndex int
	Score    float64
}

type fieldValue struct {
	text string
	norm float64
}

type record struct {
	fields [][]fieldValue // indexed like Index.keys
}

// Index is an immutable searchable snapshot of docs. It is safe for
// concurrent use.
type Index[T any] struct {
	docs    []T
	keys    []Key[T]
	weights []float64
	records []record
	opts    Options
}

// NewIndex builds an index over docs.
func NewIndex[T any](docs []T, keys []Key[T], opts Options) (*Index[T], error) {
	total := 0.0
	for _, k := range keys {
		if k.Weight <= 0 {
			return nil, ErrInvalidWeight
		}
		total += k.Weight
	}
	weights := make([]float64, len(keys))
	for i, k := range keys {
		weights[i] = k.Weight / total
	}

	norms := make(map[string]float64)
	records := make([]record, len(docs))
	for di, doc := range docs {
		rec := record{fields: make([][]fieldValue, len(keys))}
		for ki, k := range keys {
			for _, v := range k.Values(doc) {
				if strings.TrimSpace(v) == "" {
					continue
				}
				text := v
				if !opts.CaseSensitive {
					text = strings.ToLower(v)
				}
				rec.fields[ki] = append(rec.fields[ki], fieldValue{text: text, norm: fieldNorm(norms, v)})
			}
		}
		records[di] = rec
	}

	return &Index[T]{
		docs:    docs,
		keys:    keys,
		weights: weights,
		records: records,
		opts:    opts,
	}, nil
}

// fieldNorm favours short fields: 1/sqrt(token count), rounded to 3 places.
func fieldNorm(cache map[string]float64, v string) float64 {
	if n, ok := cache[v]; ok {
		return n
	}
	tokens := len(strings.FieldsFunc(v, func(r rune) bool { return r == ' ' }))
	if tokens == 0 {
		tokens = 1
	}
	n := math.Round(1000/math.Sqrt(float64(tokens))) / 1000
	cache[v] = n
	return n
}

// Len returns the number of indexed documents.
func (ix *Index[T]) Len() int { return len(ix.docs) }

// Docs returns the indexed documents in their original order.
func (ix *Index[T]) Docs() []T { return ix.docs }

// Options returns the options the index was built with.
func (ix *Index[T]) Options() Options { return ix.opts }

// Searchable reports whether query is long enough to be searched.
func (ix *Index[T]) Searchable(query string) bool {
	n := utf8.RuneCountInString(query)
	return n > 0 && n >= ix.opts.MinQueryLength
}

// Search returns documents matching query, best first. Queries shorter than
// MinQueryLength return nil.
func (ix *Index[T]) Search(query string) []Result[T] {
	if !ix.Searchable(query) {
		return nil
	}
	m := newMatcher(query, ix.opts)

	var results []Result[T]
	for i, rec := range ix.records {
		score := 1.0
		matched := false
		for ki, values := range rec.fields {
			for _, fv := range values {
				ok, s := m.match(fv.text)
				if !ok {
					continue
				}
				matched = true
				if s == 0 {
					s = epsilon
				}
				exp := ix.weights[ki]
				if !ix.opts.IgnoreFieldNorm {
					exp *= fv.norm
				}
				score *= math.Pow(s, exp)
			}
		}
		if matched {
			results = append(results, Result[T]{Item: ix.docs[i], RefIndex: i, Score: score})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score < results[b].Score
		}
		return results[a].RefIndex < results[b].RefIndex
	})
	return results
}

// epsilon stands in for a perfect score so the product stays informative.
const epsilon = 2.220446049250313e-16
