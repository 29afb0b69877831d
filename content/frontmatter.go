package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var errNoFrontmatter = errors.New("missing frontmatter block")

// FrontmatterError reports an invalid or incomplete frontmatter block.
type FrontmatterError struct {
	Path  string
	Field string
	Err   error
}

func (e *FrontmatterError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FrontmatterError) Unwrap() error { return e.Err }

// Date decodes YAML dates written either as 2006-01-02 or RFC 3339.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", raw)
}

type frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Slug        string   `yaml:"slug"`
	PubDate     Date     `yaml:"pubDate"`
	UpdatedDate *Date    `yaml:"updatedDate"`
	HeroImage   string   `yaml:"heroImage"`
	Tags        []string `yaml:"tags"`
	Categories  []string `yaml:"categories"`
	Subject     string   `yaml:"subject"`
	Draft       bool     `yaml:"draft"`
	Featured    bool     `yaml:"featured"`
	Author      string   `yaml:"author"`
	Location    string   `yaml:"location"`
	RepoURL     string   `yaml:"repoUrl"`
	DemoURL     string   `yaml:"demoUrl"`
}

// splitFrontmatter separates the leading "---" fenced YAML block from the body.
func splitFrontmatter(src string) (string, string, error) {
	s := strings.TrimPrefix(src, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return "", "", errNoFrontmatter
	}
	rest := s[len("---\n"):]
	if strings.HasPrefix(rest, "---\n") || rest == "---" {
		return "", strings.TrimPrefix(rest, "---"), nil
	}
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n---") {
			return rest[:len(rest)-len("\n---")], "", nil
		}
		return "", "", errNoFrontmatter
	}
	return rest[:end], strings.TrimPrefix(rest[end+len("\n---\n"):], "\n"), nil
}

func parseFrontmatter(path, src string) (frontmatter, string, error) {
	head, body, err := splitFrontmatter(src)
	if err != nil {
		return frontmatter{}, "", &FrontmatterError{Path: path, Err: err}
	}
	var fm frontmatter
	if err := yaml.Unmarshal([]byte(head), &fm); err != nil {
		return frontmatter{}, "", &FrontmatterError{Path: path, Err: err}
	}
	fm.Title = strings.TrimSpace(fm.Title)
	fm.Description = strings.TrimSpace(fm.Description)
	switch {
	case fm.Title == "":
		return fm, "", &FrontmatterError{Path: path, Field: "title", Err: errors.New("required")}
	case fm.Description == "":
		return fm, "", &FrontmatterError{Path: path, Field: "description", Err: errors.New("required")}
	case fm.PubDate.IsZero():
		return fm, "", &FrontmatterError{Path: path, Field: "pubDate", Err: errors.New("required")}
	}
	fm.Tags = cleanList(fm.Tags)
	fm.Categories = cleanList(fm.Categories)
	return fm, body, nil
}

// cleanList trims entries and drops blanks.
func cleanList(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
