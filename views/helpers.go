package views

import (
	"context"
	"html/template"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
)

var funcs = template.FuncMap{
	"date":     FormatDate,
	"iso":      func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"tagSlug":  content.TagSlug,
	"tagClass": TagClass,
	"markdown": renderMarkdown,
	"take":     take,
	"more":     func(tags []string, n int) int { return len(tags) - n },
	"hasTOC":   func(h []markdown.Heading) bool { return len(h) > 1 },
	"indent":   func(level int) int { return (level - 1) * 12 },
}

// FormatDate renders t the way article cards show it, e.g. "Mar 10, 2024".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "inline-flex items-center rounded-full px-2.5 py-0.5 text-xs bg-slate-100 dark:bg-slate-700 hover:bg-slate-200 dark:hover:bg-slate-600 transition-colors"
	if active {
		base += " bg-indigo-600 text-white dark:bg-indigo-500"
	}
	return base
}

// renderMarkdown embeds the markdown component in an html/template page.
func renderMarkdown(md string) (template.HTML, error) {
	return templ.ToGoHTML(context.Background(), markdown.Markdown(md))
}

func take(tags []string, n int) []string {
	if len(tags) <= n {
		return tags
	}
	return tags[:n]
}
