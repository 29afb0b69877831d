package folio

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// pageRecorder buffers one response rendered through the Echo stack.
type pageRecorder struct {
	header http.Header
	body   bytes.Buffer
	code   int
}

func newPageRecorder() *pageRecorder {
	return &pageRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *pageRecorder) Header() http.Header         { return r.header }
func (r *pageRecorder) Write(b []byte) (int, error) { return r.body.Write(b) }
func (r *pageRecorder) WriteHeader(code int)        { r.code = code }

// Routes lists every path the site serves for the loaded content, pages
// first. Build renders each of them.
func (a *App) Routes() ([]string, error) {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return nil, err
	}
	projects, err := a.Cache.ListProjects()
	if err != nil {
		return nil, err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return nil, err
	}
	cats, err := a.Cache.ListCategories()
	if err != nil {
		return nil, err
	}
	routes := []string{"/", "/blog/", "/projects/"}
	if a.site().Features.Search {
		routes = append(routes, "/search/")
	}
	for _, art := range articles {
		routes = append(routes, art.Link())
	}
	for _, p := range projects {
		routes = append(routes, p.Link())
	}
	for _, t := range tags {
		routes = append(routes, "/tags/"+t.Slug+"/")
	}
	for _, ct := range cats {
		routes = append(routes, "/categories/"+ct.Slug+"/")
	}
	routes = append(routes,
		"/feed.xml", "/rss.xml", "/sitemap.xml", "/robots.txt",
		"/data/search-data.json", "/api/search.json",
		"/public/search.js", "/public/theme.js",
	)
	return routes, nil
}

// Build renders every route into outDir as static files: pages become
// <path>/index.html, other documents keep their path. The user's static
// directory is copied to <outDir>/public and a 404.html is written.
func (a *App) Build(ctx context.Context, outDir string) (int, error) {
	if a.Config.SessionSecret == "" {
		// exported pages carry no sessions
		a.Config.SessionSecret = randomSecret()
	}
	if err := a.Setup(); err != nil {
		return 0, err
	}
	routes, err := a.Routes()
	if err != nil {
		return 0, fmt.Errorf("folio: list routes: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		rec, err := a.renderRoute(ctx, route)
		if err != nil {
			return written, err
		}
		if rec.code != http.StatusOK {
			return written, fmt.Errorf("folio: build %s: status %d", route, rec.code)
		}
		if err := writeOutput(outDir, outputPath(route), rec.body.Bytes()); err != nil {
			return written, err
		}
		written++
	}

	rec, err := a.renderRoute(ctx, "/404/")
	if err != nil {
		return written, err
	}
	if err := writeOutput(outDir, "404.html", rec.body.Bytes()); err != nil {
		return written, err
	}
	written++

	n, err := copyStatic(a.Config.StaticDir, filepath.Join(outDir, "public"))
	if err != nil {
		return written, fmt.Errorf("folio: copy static: %w", err)
	}
	a.Logger.Infof("built %d pages and copied %d static files into %s", written, n, outDir)
	return written + n, nil
}

func (a *App) renderRoute(ctx context.Context, route string) (*pageRecorder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, err
	}
	req.Host = "localhost"
	rec := newPageRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec, nil
}

// outputPath maps a route to its file under the output directory.
func outputPath(route string) string {
	if strings.HasSuffix(route, "/") {
		return path.Join(strings.TrimPrefix(route, "/"), "index.html")
	}
	return strings.TrimPrefix(route, "/")
}

func writeOutput(outDir, rel string, data []byte) error {
	dst := filepath.Join(outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// copyStatic copies every regular file under src into dst, overwriting
// existing files. A missing src copies nothing.
func copyStatic(src, dst string) (int, error) {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return 0, nil
	}
	n := 0
	err := fs.WalkDir(os.DirFS(src), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(filepath.Join(src, filepath.FromSlash(p)))
		if err != nil {
			return err
		}
		n++
		return writeOutput(dst, p, data)
	})
	return n, err
}
