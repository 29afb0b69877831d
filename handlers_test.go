package folio

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomePage(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Go Concurrency Patterns")
	assert.Contains(t, body, "Understanding CSS Grid")
	assert.Contains(t, body, "Folio")
	assert.Contains(t, body, `"@type":"WebSite"`)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/blog/go-concurrency/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="intro"`)
	assert.Contains(t, body, `id="channels"`)
	assert.Contains(t, body, `aria-label="Table of contents"`)
	assert.Contains(t, body, "1 min read")
	assert.Contains(t, body, "Going Further with Go", "related by shared tag")
	assert.Contains(t, body, `"@type":"BlogPosting"`)
	assert.Contains(t, body, `<link rel="canonical" href="http://example.com/blog/go-concurrency/">`)
}

func TestPostPageFeatureFlags(t *testing.T) {
	off := false
	a := newTestApp(t, func(cfg *SiteConfig) {
		cfg.Features.TableOfContents = &off
		cfg.Features.ReadingTime = &off
	})
	body := get(t, a, "/blog/go-concurrency/").Body.String()
	assert.NotContains(t, body, "min read")
	assert.NotContains(t, body, `aria-label="Table of contents"`)
	assert.Contains(t, body, `id="channels"`, "headings keep their anchors")
}

func TestNotFound(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/blog/missing/", "/projects/missing/", "/tags/missing/", "/no/such/page/"} {
		rec := get(t, a, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "does not exist", path)
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/blog")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))
}

func TestDrafts(t *testing.T) {
	dev := newTestApp(t)
	assert.Equal(t, http.StatusOK, get(t, dev, "/blog/secret/").Code)

	prod := newTestApp(t, production)
	assert.Equal(t, http.StatusNotFound, get(t, prod, "/blog/secret/").Code)
	assert.NotContains(t, get(t, prod, "/blog/").Body.String(), "Secret Draft")
}

func TestProjectPages(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/projects/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Folio")

	rec = get(t, a, "/projects/folio/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://github.com/eringen/folio")
}

func TestTagPage(t *testing.T) {
	a := newTestApp(t, production)
	rec := get(t, a, "/tags/web-dev/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Understanding CSS Grid")
	assert.NotContains(t, body, "Go Concurrency Patterns")

	rec = get(t, a, "/tags/go/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Going Further with Go")
	assert.NotContains(t, rec.Body.String(), "Secret Draft")
}

func TestCategoryPage(t *testing.T) {
	a := newTestApp(t, production)
	rec := get(t, a, "/categories/design/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Category: Design")
	assert.Contains(t, body, "Understanding CSS Grid")
	assert.NotContains(t, body, "Go Concurrency Patterns")

	rec = get(t, a, "/categories/unknown/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, a, "/blog/go-concurrency/")
	assert.Contains(t, rec.Body.String(), `<a href="/categories/programming/" class="underline">Programming</a>`)
}

func TestSearchPageLoad(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/search/?q=concurrency")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, isFullPage(body))
	assert.Contains(t, body, `value="concurrency"`)
	assert.Contains(t, body, "Go Concurrency Patterns")
	assert.NotContains(t, body, "All Articles")
	assert.Empty(t, rec.Header().Get(HeaderSearchPush), "a page load never pushes")
	assert.Empty(t, rec.Header().Get(HeaderSearchReplace))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	popular, err := a.Store.PopularSearches(5)
	require.NoError(t, err)
	assert.Equal(t, []string{"concurrency"}, popular)
}

func TestSearchPageLoadNormalizesURL(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/search/?q=%20grid%20")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/search/?q=grid", rec.Header().Get(HeaderSearchReplace))
	assert.Contains(t, rec.Body.String(), `data-replace-url="/search/?q=grid"`)
	assert.Empty(t, rec.Header().Get(HeaderSearchPush))
}

func TestSearchPageEmptyShowsAll(t *testing.T) {
	a := newTestApp(t, production)
	require.NoError(t, a.Store.RecordSearch("grid", 1))

	rec := get(t, a, "/search/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "All Articles")
	assert.Contains(t, body, "Understanding CSS Grid")
	assert.Contains(t, body, "Going Further with Go")
	assert.Contains(t, body, "Popular searches")
	assert.Contains(t, body, `data-search-term="Go"`, "most used tag offered")
	assert.Contains(t, body, fmt.Sprintf(`data-search-data="/data/search-data.json?v=%d"`, a.Version()))
	assert.Empty(t, rec.Header().Get(HeaderSearchReplace))
	assert.Empty(t, rec.Header().Get(HeaderSearchResults), "full pages carry no result count")
}

func TestSearchInputPushes(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/search/?q=grid",
		HeaderSearchNavigation, "input",
		HeaderSearchCurrent, "/search/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/search/?q=grid", rec.Header().Get(HeaderSearchPush))
	assert.Empty(t, rec.Header().Get(HeaderSearchReplace))
	assert.NotEmpty(t, rec.Header().Get(HeaderSearchResults), "partial responses report their result count")
	body := rec.Body.String()
	assert.False(t, isFullPage(body), "navigation requests get the results region only")
	assert.Contains(t, body, "Understanding CSS Grid")
	assert.Contains(t, body, `"<span>grid</span>"`)

	popular, err := a.Store.PopularSearches(5)
	require.NoError(t, err)
	assert.Empty(t, popular, "keystrokes are not logged")
}

func TestSearchInputShortQuery(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/search/?q=g",
		HeaderSearchNavigation, "input",
		HeaderSearchCurrent, "/search/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderSearchPush))
	assert.Empty(t, rec.Header().Get(HeaderSearchReplace), "the address bar keeps its last searched URL")
	body := rec.Body.String()
	assert.Contains(t, body, "All Articles")
	assert.NotContains(t, body, "results matching")
}

func TestSearchHistoryNeverTouchesHistory(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/search/?q=grid",
		HeaderSearchNavigation, "history",
		HeaderSearchCurrent, "/search/?q=go")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderSearchPush))
	assert.Empty(t, rec.Header().Get(HeaderSearchReplace))
	assert.Contains(t, rec.Body.String(), "Understanding CSS Grid")
}

func TestSearchReset(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/search/",
		HeaderSearchNavigation, "reset",
		HeaderSearchCurrent, "/search/?q=grid")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/search/", rec.Header().Get(HeaderSearchPush))
	assert.Contains(t, rec.Body.String(), "All Articles")
}

func TestSearchDisabled(t *testing.T) {
	off := false
	a := newTestApp(t, func(cfg *SiteConfig) { cfg.Features.Search = &off })
	assert.Equal(t, http.StatusNotFound, get(t, a, "/search/?q=go").Code)
}

func TestSearchAPI(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/api/search/?q="+url.QueryEscape("Go Concurrency Patterns"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "go-concurrency", resp.Results[0].Slug)
	assert.Equal(t, "/blog/go-concurrency/", resp.Results[0].URL)
	for _, r := range resp.Results[1:] {
		assert.GreaterOrEqual(t, r.Score, resp.Results[0].Score)
	}

	rec = get(t, a, "/api/search/?q=g")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query":"g","total":0,"results":[]}`, rec.Body.String())
}

func TestSearchAPIRateLimited(t *testing.T) {
	a := newTestApp(t, func(cfg *SiteConfig) { cfg.Search.RateLimit = 2 })
	assert.Equal(t, http.StatusOK, get(t, a, "/api/search/?q=go").Code)
	assert.Equal(t, http.StatusOK, get(t, a, "/api/search/?q=go").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, a, "/api/search/?q=go").Code)
}

func TestSearchData(t *testing.T) {
	a := newTestApp(t, production)
	for _, path := range []string{"/data/search-data.json?v=1", "/api/search.json"} {
		rec := get(t, a, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "max-age=3600, stale-while-revalidate=86400", rec.Header().Get("Cache-Control"), path)

		var docs []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs), path)
		require.Len(t, docs, 3, "drafts excluded in production")
		first := docs[0]
		assert.Equal(t, "go-concurrency", first["slug"])
		assert.Equal(t, "Ada", first["author"])
		assert.Equal(t, []any{"Go", "Concurrency"}, first["tags"])
		assert.Equal(t, []any{"Programming"}, first["categories"])
		assert.Equal(t, "2024-02-10T00:00:00Z", first["pubDate"])
		for _, key := range []string{"title", "description", "subject"} {
			assert.Contains(t, first, key)
		}
	}
}

func TestFeed(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/feed.xml", "/rss.xml"} {
		rec := get(t, a, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		assert.Contains(t, body, "<language>en-us</language>")
		assert.Contains(t, body, "<link>http://example.com/blog/go-concurrency/</link>")
		assert.NotContains(t, body, "Secret Draft", "drafts never reach the feed")
		assert.Less(t, strings.Index(body, "Go Concurrency Patterns"), strings.Index(body, "Understanding CSS Grid"), "newest first")
	}
}

func TestSitemapAndRobots(t *testing.T) {
	a := newTestApp(t)
	body := get(t, a, "/sitemap.xml").Body.String()
	assert.Contains(t, body, "<loc>http://example.com/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/projects/folio/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/tags/web-dev/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/categories/design/</loc>")
	assert.NotContains(t, body, "secret")

	rec := get(t, a, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: http://example.com/sitemap.xml")
}

func TestRobotsFromStaticDir(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, os.MkdirAll(a.Config.StaticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(a.Config.StaticDir, "robots.txt"), []byte("User-agent: *\nDisallow: /\n"), 0o644))
	assert.Contains(t, get(t, a, "/robots.txt").Body.String(), "Disallow: /")
}

func TestEmbeddedScripts(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/public/search.js")
	require.Equal(t, http.StatusOK, rec.Code)
	script := rec.Body.String()
	assert.Contains(t, script, "X-Search-Navigation")
	assert.Contains(t, script, HeaderSearchResults, "script detects hosts that do not answer search requests")
	assert.Contains(t, script, "dataset.searchData", "script loads the versioned search data")
	assert.NotContains(t, script, "setTimeout", "every input change searches immediately")
	assert.Equal(t, http.StatusOK, get(t, a, "/public/theme.js").Code)
}

var csrfMeta = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

func TestThemeToggle(t *testing.T) {
	a := newTestApp(t)

	page := get(t, a, "/")
	m := csrfMeta.FindStringSubmatch(page.Body.String())
	require.Len(t, m, 2, "page carries a CSRF token")
	cookies := page.Result().Cookies()

	post := func(form url.Values, header ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/theme/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-CSRF-Token", m[1])
		for i := 0; i+1 < len(header); i += 2 {
			req.Header.Set(header[i], header[i+1])
		}
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, req)
		return rec
	}

	rec := post(url.Values{}, "X-Requested-With", "XMLHttpRequest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())
	cookies = append(cookies, rec.Result().Cookies()...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	home := httptest.NewRecorder()
	a.Echo.ServeHTTP(home, req)
	assert.Contains(t, home.Body.String(), `class="dark"`)

	rec = post(url.Values{"theme": {"light"}}, "Referer", "http://example.com/blog/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))

	rec = post(url.Values{"theme": {"purple"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemeRequiresCSRF(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/theme/", strings.NewReader("theme=dark"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReload(t *testing.T) {
	a := newTestApp(t)
	v := a.Version()

	writeFixtures(t, a.Config.ContentDir, map[string]string{"blog/new-post.md": `---
title: Brand New
description: Fresh
pubDate: 2024-06-01
---
Hello.
`})
	require.NoError(t, a.Reload())
	assert.Equal(t, http.StatusOK, get(t, a, "/blog/new-post/").Code)
	assert.GreaterOrEqual(t, a.Version(), v)

	writeFixtures(t, a.Config.ContentDir, map[string]string{"blog/broken.md": "---\ntitle: Broken\n---\n"})
	require.Error(t, a.Reload())
	assert.Equal(t, http.StatusOK, get(t, a, "/blog/new-post/").Code, "previous catalog stays live")
}
