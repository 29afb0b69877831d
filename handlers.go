package folio

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/search"
	"github.com/eringen/folio/views"
)

const (
	// HeaderSearchNavigation marks an in-page search request and names the
	// event behind it: input, history, or reset.
	HeaderSearchNavigation = "X-Search-Navigation"
	// HeaderSearchCurrent carries the URL the browser shows when the
	// request is made.
	HeaderSearchCurrent = "X-Search-Current-Url"
	// HeaderSearchPush and HeaderSearchReplace tell the page script to
	// pushState or replaceState the given URL.
	HeaderSearchPush    = "X-Search-Push-Url"
	HeaderSearchReplace = "X-Search-Replace-Url"
	// HeaderSearchResults carries the result count of a partial response.
	// Without it the page script assumes a static host and searches the
	// search-data JSON itself.
	HeaderSearchResults = "X-Search-Results"
)

const (
	homeRecent      = 6
	homeProjects    = 3
	relatedLimit    = 3
	popularTagCount = 8
	popularSearches = 5
)

func (a *App) site() views.Site {
	cfg := a.Config
	nav := func(items []NavItem) []views.NavItem {
		out := make([]views.NavItem, len(items))
		for i, it := range items {
			out[i] = views.NavItem{Text: it.Text, Href: it.Href}
		}
		return out
	}
	return views.Site{
		Name:        cfg.Name,
		URL:         cfg.URL,
		Description: cfg.Description,
		Author:      cfg.Author,
		Language:    cfg.Language,
		Header:      nav(cfg.Navigation.Header),
		Footer:      nav(cfg.Navigation.Footer),
		Social: views.Social{
			Twitter:  cfg.Social.Twitter,
			GitHub:   cfg.Social.GitHub,
			LinkedIn: cfg.Social.LinkedIn,
		},
		Features: views.Features{
			DarkMode:        enabled(cfg.Features.DarkMode),
			TableOfContents: enabled(cfg.Features.TableOfContents),
			ReadingTime:     enabled(cfg.Features.ReadingTime),
			Search:          enabled(cfg.Features.Search),
		},
	}
}

func (a *App) page(c echo.Context, meta views.PageMeta, jsonLD string) views.Page {
	if meta.URL == "" {
		meta.URL = siteRoot(a.Config.URL) + strings.TrimPrefix(c.Request().URL.Path, "/")
	}
	return views.Page{
		Site:   a.site(),
		Meta:   meta,
		Theme:  Theme(c),
		CSRF:   CsrfToken(c),
		JSONLD: template.JS(jsonLD),
	}
}

func (a *App) handleHome(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	projects, err := a.Cache.ListProjects()
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	d := views.HomeData{
		Page: a.page(c, views.PageMeta{Description: a.Config.Description}, WebsiteJsonLD(a.Config)),
		Tags: tags,
	}
	for _, art := range articles {
		if art.Featured {
			d.Featured = append(d.Featured, art)
		} else if len(d.Recent) < homeRecent {
			d.Recent = append(d.Recent, art)
		}
	}
	for _, p := range projects {
		if p.Featured && len(d.Projects) < homeProjects {
			d.Projects = append(d.Projects, p)
		}
	}
	if len(d.Projects) == 0 {
		d.Projects = firstN(projects, homeProjects)
	}
	return Render(c, a.Views.Home(d))
}

func (a *App) handleBlog(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(views.BlogData{
		Page:     a.page(c, views.PageMeta{Title: "Blog", Description: a.Config.Description}, ""),
		Articles: articles,
		Tags:     tags,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	art, err := a.Cache.GetArticle(c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	features := a.site().Features
	d := views.PostData{
		Page: a.page(c, views.PageMeta{
			Title:       art.Title,
			Description: art.Description,
			URL:         BuildURL(a.Config.URL, "blog", art.Slug),
			OGType:      "article",
			Image:       heroImageURL(a.Config.URL, art.HeroImage),
		}, BlogPostingJsonLD(art, a.Config)),
		Article: art,
		Related: RelatedArticles(art, articles, relatedLimit),
	}
	if features.TableOfContents {
		d.Headings = markdown.ExtractHeadings(art.Body)
	}
	if features.ReadingTime {
		d.ReadingTime = markdown.EstimateReadingTime(art.Body, markdown.DefaultWordsPerMinute)
	}
	return Render(c, a.Views.Post(d))
}

func (a *App) handleProjects(c echo.Context) error {
	projects, err := a.Cache.ListProjects()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Projects(views.ProjectsData{
		Page:     a.page(c, views.PageMeta{Title: "Projects"}, ""),
		Projects: projects,
	}))
}

func (a *App) handleProject(c echo.Context) error {
	p, err := a.Cache.GetProject(c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Project(views.ProjectData{
		Page: a.page(c, views.PageMeta{
			Title:       p.Title,
			Description: p.Description,
			URL:         BuildURL(a.Config.URL, "projects", p.Slug),
			Image:       heroImageURL(a.Config.URL, p.HeroImage),
		}, ""),
		Project: p,
	}))
}

func (a *App) handleTag(c echo.Context) error {
	raw := c.Param("tag")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	slug := content.TagSlug(raw)
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	var tag content.TagCount
	for _, t := range tags {
		if t.Slug == slug {
			tag = t
			break
		}
	}
	if tag.Slug == "" {
		return a.renderNotFound(c)
	}
	articles, err := a.Cache.ListArticles(slug)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tag(views.TagData{
		Page:     a.page(c, views.PageMeta{Title: "#" + tag.Name, URL: BuildURL(a.Config.URL, "tags", tag.Slug)}, ""),
		Tag:      tag,
		Articles: articles,
	}))
}

// handleCategory lists the articles filed under a category.
func (a *App) handleCategory(c echo.Context) error {
	raw := c.Param("category")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	slug := content.TagSlug(raw)
	cats, err := a.Cache.ListCategories()
	if err != nil {
		return err
	}
	var cat content.TagCount
	for _, ct := range cats {
		if ct.Slug == slug {
			cat = ct
			break
		}
	}
	if cat.Slug == "" {
		return a.renderNotFound(c)
	}
	articles, err := a.Cache.ListCategory(slug)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tag(views.TagData{
		Page:     a.page(c, views.PageMeta{Title: cat.Name, URL: BuildURL(a.Config.URL, "categories", cat.Slug)}, ""),
		Label:    "Category",
		Tag:      cat,
		Articles: articles,
	}))
}

// headerHistory answers a search request with the history change the page
// script should apply.
type headerHistory struct {
	header http.Header
	push   string
	repl   string
}

func (h *headerHistory) Push(u string) {
	h.push, h.repl = u, ""
	h.header.Del(HeaderSearchReplace)
	h.header.Set(HeaderSearchPush, u)
}

func (h *headerHistory) Replace(u string) {
	h.repl = u
	h.header.Set(HeaderSearchReplace, u)
}

// handleSearch renders the search page. Requests carrying
// HeaderSearchNavigation come from the page script and get only the results
// region back, plus the history change to apply.
func (a *App) handleSearch(c echo.Context) error {
	if !a.site().Features.Search {
		return a.renderNotFound(c)
	}
	ix, err := a.Cache.Index()
	if err != nil {
		return err
	}
	req := c.Request()
	nav := search.NavLoad
	partial := false
	if v := req.Header.Get(HeaderSearchNavigation); v != "" {
		nav = search.ParseNavigation(v)
		partial = true
	}
	current := req.URL
	if v := req.Header.Get(HeaderSearchCurrent); v != "" {
		if u, err := url.Parse(v); err == nil && u.Path == req.URL.Path {
			current = u
		}
	}

	c.Response().Header().Add(echo.HeaderVary, HeaderSearchNavigation)
	hist := &headerHistory{header: c.Response().Header()}
	sess := search.NewSession[content.Article](ix, hist, current)
	sess.Navigate(nav, req.URL)

	d := views.SearchData{
		Page:       a.page(c, views.PageMeta{Title: "Search", URL: BuildURL(a.Config.URL, "search")}, ""),
		Query:      sess.Query(),
		ShowAll:    sess.ShowAll(),
		ReplaceURL: hist.repl,
		DataURL:    a.searchDataURL(),
	}
	for _, r := range sess.Results() {
		d.Results = append(d.Results, views.SearchHit{Article: r.Item, Score: r.Score})
	}
	if d.ShowAll {
		d.All = ix.Docs()
		if d.PopularSearches, err = a.Store.PopularSearches(popularSearches); err != nil {
			c.Logger().Warnf("popular searches: %v", err)
		}
	} else if nav == search.NavLoad {
		if err := a.Store.RecordSearch(d.Query, len(d.Results)); err != nil {
			c.Logger().Warnf("record search %q: %v", d.Query, err)
		}
	}

	if partial {
		c.Response().Header().Set(HeaderSearchResults, strconv.Itoa(len(d.Results)))
		return Render(c, a.Views.SearchResults(d))
	}
	if d.PopularTags = a.Config.Search.PopularTags; len(d.PopularTags) == 0 {
		if d.PopularTags, err = a.Cache.PopularTags(popularTagCount); err != nil {
			return err
		}
	}
	return Render(c, a.Views.Search(d))
}

// handleSearchAPI answers GET /api/search/?q= with ranked results as JSON.
func (a *App) handleSearchAPI(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam(search.QueryParam))
	results, err := a.Cache.Search(q)
	if err != nil {
		return err
	}
	resp := SearchResponse{Query: q, Total: len(results), Results: make([]SearchHit, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, SearchHit{
			Title:       r.Item.Title,
			Description: r.Item.Description,
			Slug:        r.Item.Slug,
			URL:         r.Item.Link(),
			Tags:        nonNil(r.Item.Tags),
			Categories:  nonNil(r.Item.Categories),
			PubDate:     r.Item.PubDate,
			Score:       r.Score,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleSitemap(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	projects, err := a.Cache.ListProjects()
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	published := content.FilterDrafts(articles)
	return a.renderSitemap(c, published, projects, tags, content.CountCategories(published))
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, content.FilterDrafts(articles))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.Config.StaticDir, "favicon.svg"))
}

// handleRobots serves the site's own robots.txt when there is one, and a
// permissive default pointing at the sitemap otherwise.
func (a *App) handleRobots(c echo.Context) error {
	p := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\n\nSitemap: "+siteRoot(a.Config.URL)+"sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorData{
			Page: a.page(c, views.PageMeta{Title: "Error"}, ""),
		}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func heroImageURL(base, img string) string {
	if img == "" {
		return ""
	}
	return absoluteURL(base, img)
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
