// Package views holds the default page templates. Each page is a Go
// html/template layered on base.html and exposed as a templ.Component so
// callers can swap any of them for their own templ components.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "blog", "post", "projects", "project", "tag", "search", "error"} {
		pages[name] = template.Must(template.New("base.html").Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/partials.html", "templates/"+name+".html"))
	}
}

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages[name], data)
}

func Home(d HomeData) templ.Component         { return page("home", d) }
func Blog(d BlogData) templ.Component         { return page("blog", d) }
func Post(d PostData) templ.Component         { return page("post", d) }
func Projects(d ProjectsData) templ.Component { return page("projects", d) }
func Project(d ProjectData) templ.Component   { return page("project", d) }
func Tag(d TagData) templ.Component           { return page("tag", d) }
func Search(d SearchData) templ.Component     { return page("search", d) }

// SearchResults renders only the results region of the search page, for
// in-place updates while typing.
func SearchResults(d SearchData) templ.Component {
	return templ.FromGoHTML(pages["search"].Lookup("results"), d)
}

func NotFound(d ErrorData) templ.Component {
	d.Code = 404
	if d.Message == "" {
		d.Message = "The page you are looking for does not exist."
	}
	return page("error", d)
}

func ServerError(d ErrorData) templ.Component {
	d.Code = 500
	if d.Message == "" {
		d.Message = "Something went wrong. Please try again later."
	}
	return page("error", d)
}
