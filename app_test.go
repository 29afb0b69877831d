package folio

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
)

var fixtures = map[string]string{
	"blog/go-concurrency.md": `---
title: Go Concurrency Patterns
description: Channels and goroutines in practice
pubDate: 2024-02-10
tags: [Go, Concurrency]
categories: [Programming]
featured: true
---
# Intro

Goroutines are cheap.

## Channels

Use them to communicate.
`,
	"blog/css-grid.md": `---
title: Understanding CSS Grid
description: Two-dimensional layouts for the web
pubDate: 2024-01-05
tags: [CSS, Web Dev]
categories: [Design]
---
Grid all the things.
`,
	"blog/going-further.md": `---
title: Going Further with Go
description: Generics, iterators and more
pubDate: 2023-12-01
tags: [Go]
---
More Go.
`,
	"blog/secret.md": `---
title: Secret Draft
description: Not ready yet
pubDate: 2024-03-01
tags: [Go]
draft: true
---
Shh.
`,
	"projects/folio.md": `---
title: Folio
description: A blog engine
pubDate: 2024-01-01
repoUrl: https://github.com/eringen/folio
tags: [Go]
featured: true
---
Source for this site.
`,
}

func writeFixtures(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

// newTestApp sets up an App over the fixtures with a throwaway database.
func newTestApp(t *testing.T, mutate ...func(*SiteConfig)) *App {
	t.Helper()
	dir := t.TempDir()
	writeFixtures(t, filepath.Join(dir, "content"), fixtures)
	cfg := SiteConfig{
		Name:          "Test Site",
		URL:           "http://example.com",
		Description:   "A test site",
		Author:        "Ada",
		ContentDir:    filepath.Join(dir, "content"),
		DatabasePath:  filepath.Join(dir, "data", "folio.db"),
		StaticDir:     filepath.Join(dir, "public"),
		SessionSecret: "test-secret",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	logger := log.New("folio-test")
	logger.SetOutput(io.Discard)
	a := New(cfg, WithLogger(logger))
	require.NoError(t, a.Setup())
	t.Cleanup(func() { a.Close() })
	return a
}

func production(cfg *SiteConfig) { cfg.Production = true }

func get(t *testing.T, a *App, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func isFullPage(body string) bool {
	return strings.Contains(body, "<!DOCTYPE html>")
}
