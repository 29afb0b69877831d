package folio

import (
	"sync"
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/search"
)

// ArticleCache is an in-memory cache of the catalog with TTL. It also holds
// the search index, built once per load.
type ArticleCache struct {
	mu       sync.RWMutex
	articles []content.Article
	projects []content.Project
	tags     []content.TagCount
	cats     []content.TagCount
	index    *search.Index[content.Article]
	fetched  time.Time
	ttl      time.Duration
	store    *Store
	drafts   bool
	opts     search.Options
}

// NewArticleCache creates an ArticleCache backed by the given Store. Drafts
// are served only when includeDrafts is set.
func NewArticleCache(s *Store, ttl time.Duration, includeDrafts bool, opts search.Options) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl, drafts: includeDrafts, opts: opts}
}

func (c *ArticleCache) valid() bool {
	return c.articles != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.articles = nil
	c.projects = nil
	c.tags = nil
	c.cats = nil
	c.index = nil
	c.mu.Unlock()
}

func (c *ArticleCache) load() error {
	if c.valid() {
		return nil
	}
	articles, err := c.store.ListArticles(ArticleFilter{IncludeDrafts: c.drafts})
	if err != nil {
		return err
	}
	if articles == nil {
		articles = []content.Article{}
	}
	projects, err := c.store.ListProjects()
	if err != nil {
		return err
	}
	cats, err := c.store.ListCategories(c.drafts)
	if err != nil {
		return err
	}
	index, err := search.NewIndex(articles, ArticleKeys(), c.opts)
	if err != nil {
		return err
	}
	c.articles = articles
	c.projects = projects
	c.tags = content.CountTags(articles)
	c.cats = cats
	c.index = index
	c.fetched = time.Now()
	return nil
}

type snapshot struct {
	articles []content.Article
	projects []content.Project
	tags     []content.TagCount
	cats     []content.TagCount
	index    *search.Index[content.Article]
}

// ensureLoaded returns the cached catalog after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ArticleCache) ensureLoaded() (snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		s := snapshot{c.articles, c.projects, c.tags, c.cats, c.index}
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return snapshot{}, err
	}
	return snapshot{c.articles, c.projects, c.tags, c.cats, c.index}, nil
}

// ListArticles returns articles newest first, optionally filtered by tag
// slug. Filtered lists are read from the store.
func (c *ArticleCache) ListArticles(tagSlug string) ([]content.Article, error) {
	if tagSlug != "" {
		return c.store.ListArticles(ArticleFilter{Tag: tagSlug, IncludeDrafts: c.drafts})
	}
	s, err := c.ensureLoaded()
	return s.articles, err
}

// ListCategory returns the articles filed under a category slug.
func (c *ArticleCache) ListCategory(categorySlug string) ([]content.Article, error) {
	return c.store.ListArticles(ArticleFilter{Category: categorySlug, IncludeDrafts: c.drafts})
}

// GetArticle returns a single article by slug from the cache.
func (c *ArticleCache) GetArticle(slug string) (content.Article, error) {
	s, err := c.ensureLoaded()
	if err != nil {
		return content.Article{}, err
	}
	for _, a := range s.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return content.Article{}, ErrNotFound
}

func (c *ArticleCache) ListProjects() ([]content.Project, error) {
	s, err := c.ensureLoaded()
	return s.projects, err
}

func (c *ArticleCache) GetProject(slug string) (content.Project, error) {
	s, err := c.ensureLoaded()
	if err != nil {
		return content.Project{}, err
	}
	for _, p := range s.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return content.Project{}, ErrNotFound
}

// ListTags returns tag counts, most used first.
func (c *ArticleCache) ListTags() ([]content.TagCount, error) {
	s, err := c.ensureLoaded()
	return s.tags, err
}

// ListCategories returns category counts, most used first.
func (c *ArticleCache) ListCategories() ([]content.TagCount, error) {
	s, err := c.ensureLoaded()
	return s.cats, err
}

// PopularTags returns the names of the n most used tags.
func (c *ArticleCache) PopularTags(n int) ([]string, error) {
	s, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if n > len(s.tags) {
		n = len(s.tags)
	}
	out := make([]string, 0, n)
	for _, t := range s.tags[:n] {
		out = append(out, t.Name)
	}
	return out, nil
}

// Index returns the search index over the cached articles.
func (c *ArticleCache) Index() (*search.Index[content.Article], error) {
	s, err := c.ensureLoaded()
	return s.index, err
}

// Search ranks cached articles against query. Queries below the minimum
// length return nil.
func (c *ArticleCache) Search(query string) ([]search.Result[content.Article], error) {
	ix, err := c.Index()
	if err != nil {
		return nil, err
	}
	return ix.Search(query), nil
}
