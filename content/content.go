// Package content loads the blog and project collections from markdown files
// with YAML frontmatter.
package content

import (
	"sort"
	"strings"
	"time"
)

// Article is a blog post from the "blog" collection.
type Article struct {
	Title       string
	Description string
	Slug        string
	PubDate     time.Time
	UpdatedDate *time.Time
	HeroImage   string
	Tags        []string
	Categories  []string
	Subject     string
	Draft       bool
	Featured    bool
	Author      string
	Location    string
	Body        string
}

// Link returns the site-relative URL of the article.
func (a Article) Link() string {
	return "/blog/" + a.Slug + "/"
}

// Project is an entry from the "projects" collection.
type Project struct {
	Title       string
	Description string
	Slug        string
	PubDate     time.Time
	UpdatedDate *time.Time
	HeroImage   string
	RepoURL     string
	DemoURL     string
	Tags        []string
	Featured    bool
	Body        string
}

// Link returns the site-relative URL of the project.
func (p Project) Link() string {
	return "/projects/" + p.Slug + "/"
}

// Collection holds every loaded article and project, newest first.
type Collection struct {
	Articles []Article
	Projects []Project
}

// Published returns the articles that are not drafts.
func (c *Collection) Published() []Article {
	return FilterDrafts(c.Articles)
}

// FilterDrafts drops draft articles, keeping order.
func FilterDrafts(articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if !a.Draft {
			out = append(out, a)
		}
	}
	return out
}

// TagSlug converts a tag to its URL form: lowercase, whitespace runs to "-".
func TagSlug(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), "-")
}

// SortArticles orders articles by publish date descending, then slug.
func SortArticles(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].PubDate.Equal(articles[j].PubDate) {
			return articles[i].PubDate.After(articles[j].PubDate)
		}
		return articles[i].Slug < articles[j].Slug
	})
}

// SortProjects orders projects by publish date descending, then slug.
func SortProjects(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].PubDate.Equal(projects[j].PubDate) {
			return projects[i].PubDate.After(projects[j].PubDate)
		}
		return projects[i].Slug < projects[j].Slug
	})
}
