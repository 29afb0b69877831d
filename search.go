package folio

import (
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/search"
)

// ArticleKeys are the weighted fields article search matches against.
func ArticleKeys() []search.Key[content.Article] {
	return []search.Key[content.Article]{
		{Name: "title", Weight: 2, Values: func(a content.Article) []string { return []string{a.Title} }},
		{Name: "description", Weight: 1.5, Values: func(a content.Article) []string { return []string{a.Description} }},
		{Name: "tags", Weight: 1, Values: func(a content.Article) []string { return a.Tags }},
		{Name: "categories", Weight: 1, Values: func(a content.Article) []string { return a.Categories }},
		{Name: "author", Weight: 0.5, Values: func(a content.Article) []string { return []string{a.Author} }},
	}
}

// SearchOptions returns the matching options for cfg.
func SearchOptions(cfg SearchConfig) search.Options {
	opts := search.DefaultOptions()
	if cfg.Threshold > 0 {
		opts.Threshold = cfg.Threshold
	}
	if cfg.MinQueryLength > 0 {
		opts.MinQueryLength = cfg.MinQueryLength
	}
	return opts
}
