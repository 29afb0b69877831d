package folio

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/folio/content"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// siteRoot returns base with exactly one trailing slash.
func siteRoot(base string) string {
	return strings.TrimRight(base, "/") + "/"
}

// RelatedArticles returns up to limit articles sharing at least one tag with
// current, most shared tags first, newest first among equals.
func RelatedArticles(current content.Article, articles []content.Article, limit int) []content.Article {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if s := content.TagSlug(t); s != "" {
			tagSet[s] = struct{}{}
		}
	}
	type scored struct {
		article content.Article
		shared  int
	}
	var related []scored
	for _, a := range articles {
		if a.Slug == current.Slug || a.Draft {
			continue
		}
		shared := 0
		for _, t := range a.Tags {
			if _, ok := tagSet[content.TagSlug(t)]; ok {
				shared++
			}
		}
		if shared > 0 {
			related = append(related, scored{a, shared})
		}
	}
	// articles arrive newest first; a stable insertion keeps that within a count
	for i := 1; i < len(related); i++ {
		for j := i; j > 0 && related[j].shared > related[j-1].shared; j-- {
			related[j], related[j-1] = related[j-1], related[j]
		}
	}
	if len(related) > limit {
		related = related[:limit]
	}
	out := make([]content.Article, len(related))
	for i, r := range related {
		out[i] = r.article
	}
	return out
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         siteRoot(cfg.URL),
		"description": cfg.Description,
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      BuildURL(cfg.URL, "search") + "?q={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(a content.Article, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blog", a.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      a.Title,
		"description":   a.Description,
		"datePublished": a.PubDate.Format(time.RFC3339),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if a.UpdatedDate != nil {
		data["dateModified"] = a.UpdatedDate.Format(time.RFC3339)
	}
	author := a.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if a.HeroImage != "" {
		data["image"] = absoluteURL(cfg.URL, a.HeroImage)
	}
	if len(a.Tags) > 0 {
		data["keywords"] = strings.Join(a.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// absoluteURL resolves ref against base; absolute refs are returned as is.
func absoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func lastMod(pub time.Time, updated *time.Time) string {
	if updated != nil {
		return updated.Format("2006-01-02")
	}
	return pub.Format("2006-01-02")
}
