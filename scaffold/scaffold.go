// Package scaffold provides the embedded frontmatter skeletons the folio
// CLI writes for new posts and projects.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed templates/*.tmpl
var Templates embed.FS

// Kinds names the scaffolds that exist.
var Kinds = []string{"post", "project"}

// Data holds the template variables passed to every scaffold template.
type Data struct {
	Title  string
	Slug   string
	Date   string // 2006-01-02
	Author string
}

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
}).ParseFS(Templates, "templates/*.tmpl"))

// Render writes the scaffold for kind ("post" or "project") to w.
func Render(w io.Writer, kind string, d Data) error {
	t := tmpl.Lookup(kind + ".md.tmpl")
	if t == nil {
		return fmt.Errorf("scaffold: unknown kind %q", kind)
	}
	return t.Execute(w, d)
}
