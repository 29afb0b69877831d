package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Collection directory names under the content root.
const (
	BlogDir     = "blog"
	ProjectsDir = "projects"
)

// LoadOptions controls defaults applied while loading.
type LoadOptions struct {
	// DefaultAuthor is used for articles without an author field.
	DefaultAuthor string
}

// Load reads both collections under dir. A missing collection directory
// yields an empty collection; any malformed file fails the whole load.
func Load(dir string, opts LoadOptions) (*Collection, error) {
	return LoadFS(os.DirFS(dir), opts)
}

// LoadFS is Load over an fs.FS rooted at the content directory.
func LoadFS(fsys fs.FS, opts LoadOptions) (*Collection, error) {
	c := &Collection{}

	err := eachEntry(fsys, BlogDir, func(path, slug, src string) error {
		fm, body, err := parseFrontmatter(path, src)
		if err != nil {
			return err
		}
		if fm.Slug != "" {
			slug = fm.Slug
		}
		author := strings.TrimSpace(fm.Author)
		if author == "" {
			author = opts.DefaultAuthor
		}
		c.Articles = append(c.Articles, Article{
			Title:       fm.Title,
			Description: fm.Description,
			Slug:        slug,
			PubDate:     fm.PubDate.Time,
			UpdatedDate: optionalTime(fm.UpdatedDate),
			HeroImage:   fm.HeroImage,
			Tags:        fm.Tags,
			Categories:  fm.Categories,
			Subject:     fm.Subject,
			Draft:       fm.Draft,
			Featured:    fm.Featured,
			Author:      author,
			Location:    fm.Location,
			Body:        body,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachEntry(fsys, ProjectsDir, func(path, slug, src string) error {
		fm, body, err := parseFrontmatter(path, src)
		if err != nil {
			return err
		}
		if fm.Slug != "" {
			slug = fm.Slug
		}
		c.Projects = append(c.Projects, Project{
			Title:       fm.Title,
			Description: fm.Description,
			Slug:        slug,
			PubDate:     fm.PubDate.Time,
			UpdatedDate: optionalTime(fm.UpdatedDate),
			HeroImage:   fm.HeroImage,
			RepoURL:     fm.RepoURL,
			DemoURL:     fm.DemoURL,
			Tags:        fm.Tags,
			Featured:    fm.Featured,
			Body:        body,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := checkDuplicates(BlogDir, len(c.Articles), func(i int) string { return c.Articles[i].Slug }); err != nil {
		return nil, err
	}
	if err := checkDuplicates(ProjectsDir, len(c.Projects), func(i int) string { return c.Projects[i].Slug }); err != nil {
		return nil, err
	}

	SortArticles(c.Articles)
	SortProjects(c.Projects)
	return c, nil
}

func eachEntry(fsys fs.FS, dir string, fn func(path, slug, src string) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".md" && ext != ".mdx" {
			continue
		}
		path := dir + "/" + e.Name()
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := fn(path, strings.TrimSuffix(e.Name(), ext), string(b)); err != nil {
			return err
		}
	}
	return nil
}

func checkDuplicates(collection string, n int, slugAt func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		s := slugAt(i)
		if _, ok := seen[s]; ok {
			return fmt.Errorf("%s: duplicate slug %q", collection, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func optionalTime(d *Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
