package views

import (
	"html/template"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
)

// Site holds site-wide settings every page template can read.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	Language    string
	Header      []NavItem
	Footer      []NavItem
	Social      Social
	Features    Features
}

// NavItem is a navigation link.
type NavItem struct {
	Text string
	Href string
}

// Social lists profile handles shown in the footer.
type Social struct {
	Twitter  string
	GitHub   string
	LinkedIn string
}

// Features toggles optional page sections.
type Features struct {
	DarkMode        bool
	TableOfContents bool
	ReadingTime     bool
	Search          bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Page is embedded in every page's data.
type Page struct {
	Site   Site
	Meta   PageMeta
	Theme  string // "light", "dark" or "" to follow the system
	CSRF   string
	JSONLD template.JS
}

type HomeData struct {
	Page
	Featured []content.Article
	Recent   []content.Article
	Projects []content.Project
	Tags     []content.TagCount
}

type BlogData struct {
	Page
	Articles []content.Article
	Tags     []content.TagCount
}

type PostData struct {
	Page
	Article     content.Article
	Headings    []markdown.Heading
	ReadingTime string
	Related     []content.Article
}

type ProjectsData struct {
	Page
	Projects []content.Project
}

type ProjectData struct {
	Page
	Project content.Project
}

// TagData lists the articles under one tag or category. Label names the
// grouping in the heading and defaults to "Tag".
type TagData struct {
	Page
	Label    string
	Tag      content.TagCount
	Articles []content.Article
}

// SearchHit is one ranked search result.
type SearchHit struct {
	Article content.Article
	Score   float64
}

type SearchData struct {
	Page
	Query           string
	Results         []SearchHit
	All             []content.Article
	ShowAll         bool
	PopularTags     []string
	PopularSearches []string
	// ReplaceURL, when set, is the canonical URL the page script swaps into
	// the address bar without adding a history entry.
	ReplaceURL string
	// DataURL is the versioned search-data JSON the page script loads.
	DataURL string
}

type ErrorData struct {
	Page
	Code    int
	Message string
}
