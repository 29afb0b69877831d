package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Title       string
	Description string
	Tags        []string
	Author      string
}

func docKeys() []Key[doc] {
	return []Key[doc]{
		{Name: "title", Weight: 2, Values: func(d doc) []string { return []string{d.Title} }},
		{Name: "description", Weight: 1.5, Values: func(d doc) []string { return []string{d.Description} }},
		{Name: "tags", Weight: 1, Values: func(d doc) []string { return d.Tags }},
		{Name: "author", Weight: 0.5, Values: func(d doc) []string { return []string{d.Author} }},
	}
}

var corpus = []doc{
	{Title: "Go Concurrency Patterns", Description: "Channels, goroutines and pipelines.", Tags: []string{"Go"}, Author: "Ada"},
	{Title: "Understanding CSS Grid", Description: "Two-dimensional layouts in the browser.", Tags: []string{"CSS", "Web Development"}, Author: "Grace"},
	{Title: "Going Further with Go", Description: "Generics, iterators and the standard library.", Tags: []string{"Go"}, Author: "Ada"},
	{Title: "React Server Components", Description: "Rendering on the server again.", Tags: []string{"React", "JavaScript"}, Author: "Linus"},
}

func newCorpusIndex(t *testing.T) *Index[doc] {
	t.Helper()
	ix, err := NewIndex(corpus, docKeys(), DefaultOptions())
	require.NoError(t, err)
	return ix
}

func TestSearchExactTitleRanksFirst(t *testing.T) {
	ix := newCorpusIndex(t)
	for i, d := range corpus {
		results := ix.Search(d.Title)
		require.NotEmpty(t, results, d.Title)
		assert.Equal(t, i, results[0].RefIndex, d.Title)
		for _, r := range results[1:] {
			assert.Less(t, results[0].Score, r.Score, d.Title)
		}
	}
}

func TestSearchShortQueries(t *testing.T) {
	ix := newCorpusIndex(t)
	assert.Nil(t, ix.Search(""))
	assert.Nil(t, ix.Search("g"))
	assert.False(t, ix.Searchable("g"))
	assert.True(t, ix.Searchable("go"))
}

func TestSearchToleratesTypos(t *testing.T) {
	ix := newCorpusIndex(t)
	results := ix.Search("concurency")
	require.NotEmpty(t, results)
	assert.Equal(t, 0, results[0].RefIndex)
}

func TestSearchCaseInsensitive(t *testing.T) {
	ix := newCorpusIndex(t)
	results := ix.Search("UNDERSTANDING css")
	require.NotEmpty(t, results)
	assert.Equal(t, "Understanding CSS Grid", results[0].Item.Title)
}

func TestSearchMatchesListFields(t *testing.T) {
	ix := newCorpusIndex(t)
	results := ix.Search("javascript")
	require.NotEmpty(t, results)
	assert.Equal(t, "React Server Components", results[0].Item.Title)
}

func TestSearchNoMatch(t *testing.T) {
	ix := newCorpusIndex(t)
	assert.Empty(t, ix.Search("xqzwvkj"))
}

func TestSearchResultsAreOrdered(t *testing.T) {
	ix := newCorpusIndex(t)
	results := ix.Search("go")
	require.GreaterOrEqual(t, len(results), 2)
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		assert.True(t, prev.Score < cur.Score || (prev.Score == cur.Score && prev.RefIndex < cur.RefIndex))
	}
}

func TestSearchTiesKeepIndexOrder(t *testing.T) {
	docs := []doc{{Title: "same title"}, {Title: "same title"}}
	ix, err := NewIndex(docs, docKeys(), DefaultOptions())
	require.NoError(t, err)
	results := ix.Search("same")
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].RefIndex)
	assert.Equal(t, 1, results[1].RefIndex)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestSearchLongPattern(t *testing.T) {
	docs := []doc{
		{Title: "notes on structured concurrency in modern go services"},
		{Title: "baking bread"},
	}
	ix, err := NewIndex(docs, docKeys(), DefaultOptions())
	require.NoError(t, err)
	results := ix.Search("structured concurrency in modern go services")
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].RefIndex)
}

func TestNewIndexInvalidWeight(t *testing.T) {
	keys := []Key[doc]{{Name: "title", Weight: 0, Values: func(d doc) []string { return []string{d.Title} }}}
	_, err := NewIndex(corpus, keys, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestMatcherScores(t *testing.T) {
	m := newMatcher("grid", DefaultOptions())

	ok, score := m.match("grid")
	assert.True(t, ok)
	assert.Equal(t, 0.0, score)

	ok, score = m.match("css grid layout")
	assert.True(t, ok)
	assert.Equal(t, 0.001, score)

	ok, score = m.match("css grd layout")
	assert.True(t, ok)
	assert.Greater(t, score, 0.001)
	assert.LessOrEqual(t, score, 0.4)

	ok, _ = m.match("unrelated")
	assert.False(t, ok)
}

func TestMatcherLocation(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreLocation = false
	m := newMatcher("end", opts)

	ok, _ := m.match("end of the line")
	assert.True(t, ok)

	// 96 characters from the expected location is too far at distance 100.
	far := strings.Repeat("x", 96) + "end"
	ok, _ = m.match(far)
	assert.False(t, ok)
}
