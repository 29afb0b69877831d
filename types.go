package folio

import (
	"time"

	"github.com/eringen/folio/content"
)

// SearchDocument is one entry of the search-data JSON, the article fields a
// client-side index needs.
type SearchDocument struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Tags        []string  `json:"tags"`
	Categories  []string  `json:"categories"`
	Subject     string    `json:"subject"`
	PubDate     time.Time `json:"pubDate"`
	Author      string    `json:"author"`
}

func newSearchDocument(a content.Article) SearchDocument {
	return SearchDocument{
		Title:       a.Title,
		Description: a.Description,
		Slug:        a.Slug,
		Tags:        nonNil(a.Tags),
		Categories:  nonNil(a.Categories),
		Subject:     a.Subject,
		PubDate:     a.PubDate,
		Author:      a.Author,
	}
}

// SearchHit is one result of the search API.
type SearchHit struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Tags        []string  `json:"tags"`
	Categories  []string  `json:"categories"`
	PubDate     time.Time `json:"pubDate"`
	Score       float64   `json:"score"`
}

// SearchResponse is the body of GET /api/search/.
type SearchResponse struct {
	Query   string      `json:"query"`
	Total   int         `json:"total"`
	Results []SearchHit `json:"results"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
