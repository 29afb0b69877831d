package folio

import (
	"encoding/json"
	"testing"

	"github.com/eringen/folio/content"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.22: What's New?  ", "go-1-22-what-s-new"},
		{"---", ""},
		{"Ünïcode Title", "n-code-title"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"http://example.com", []string{"blog", "post"}, "http://example.com/blog/post/"},
		{"http://example.com/", []string{"tags", "go"}, "http://example.com/tags/go/"},
		{"http://example.com/sub", []string{"blog"}, "http://example.com/sub/blog/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
	if got := siteRoot("http://example.com"); got != "http://example.com/" {
		t.Errorf("siteRoot = %q", got)
	}
}

func TestRelatedArticles(t *testing.T) {
	articles := []content.Article{
		{Slug: "a", Tags: []string{"Go", "Web"}},
		{Slug: "b", Tags: []string{"go"}},
		{Slug: "c", Tags: []string{"Go", "Web"}},
		{Slug: "d", Tags: []string{"Rust"}},
		{Slug: "e", Tags: []string{"Web"}, Draft: true},
	}
	got := RelatedArticles(articles[0], articles, 5)
	if len(got) != 2 || got[0].Slug != "c" || got[1].Slug != "b" {
		t.Errorf("RelatedArticles = %v, want [c b]", got)
	}
	if got := RelatedArticles(articles[0], articles, 1); len(got) != 1 {
		t.Errorf("limit not applied: %v", got)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	a := content.Article{Slug: "p", Title: "T", Description: "D", PubDate: day("2024-01-02"),
		HeroImage: "/img/hero.png", Tags: []string{"go", "web"}}
	var data map[string]any
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(a, SiteConfig{URL: "https://ex.com", Name: "S", Author: "Ada"})), &data); err != nil {
		t.Fatal(err)
	}
	if data["url"] != "https://ex.com/blog/p/" {
		t.Errorf("url = %v", data["url"])
	}
	if data["image"] != "https://ex.com/img/hero.png" {
		t.Errorf("image = %v", data["image"])
	}
	if data["keywords"] != "go, web" {
		t.Errorf("keywords = %v", data["keywords"])
	}
	if author, _ := data["author"].(map[string]any); author["name"] != "Ada" {
		t.Errorf("author = %v", data["author"])
	}
}
