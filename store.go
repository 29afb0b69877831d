package folio

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/folio/content"
)

// ErrNotFound is returned when a requested article or project does not exist.
var ErrNotFound = sql.ErrNoRows

// Store is the SQLite catalog of loaded content plus the search log.
// Markdown files stay the source of truth; the catalog is rebuilt from them
// with Sync.
type Store struct {
	db *sql.DB
}

// ArticleFilter narrows ListArticles. Tag and Category compare by slug.
type ArticleFilter struct {
	Tag           string
	Category      string
	IncludeDrafts bool
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets page renders read while a reload rewrites the catalog.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// List columns hold JSON arrays so entries may contain any character.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    pub_date TEXT NOT NULL,
    updated_date TEXT,
    hero_image TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    tag_slugs TEXT NOT NULL DEFAULT '[]',
    categories TEXT NOT NULL DEFAULT '[]',
    category_slugs TEXT NOT NULL DEFAULT '[]',
    subject TEXT NOT NULL DEFAULT '',
    draft INTEGER NOT NULL DEFAULT 0,
    featured INTEGER NOT NULL DEFAULT 0,
    author TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS projects (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    pub_date TEXT NOT NULL,
    updated_date TEXT,
    hero_image TEXT NOT NULL DEFAULT '',
    repo_url TEXT NOT NULL DEFAULT '',
    demo_url TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    featured INTEGER NOT NULL DEFAULT 0,
    body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS searches (
    term TEXT PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0,
    results INTEGER NOT NULL DEFAULT 0,
    last_at TEXT NOT NULL
);
`)
	return err
}

const articleColumns = `slug, title, description, pub_date, updated_date, hero_image, tags, categories, subject, draft, featured, author, location, body`

// Sync replaces the whole catalog with coll in one transaction, so a failed
// sync leaves the previous articles and projects in place together.
func (s *Store) Sync(coll *content.Collection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := syncArticles(tx, coll.Articles); err != nil {
		return err
	}
	if err := syncProjects(tx, coll.Projects); err != nil {
		return err
	}
	return tx.Commit()
}

func syncArticles(tx *sql.Tx, articles []content.Article) error {
	if _, err := tx.Exec(`DELETE FROM articles`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO articles (` + articleColumns + `, tag_slugs, category_slugs) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range articles {
		if _, err := stmt.Exec(a.Slug, a.Title, a.Description, formatTime(a.PubDate), formatOptionalTime(a.UpdatedDate),
			a.HeroImage, EncodeList(a.Tags), EncodeList(a.Categories), a.Subject, boolInt(a.Draft), boolInt(a.Featured),
			a.Author, a.Location, a.Body, EncodeList(slugs(a.Tags)), EncodeList(slugs(a.Categories))); err != nil {
			return fmt.Errorf("insert article %s: %w", a.Slug, err)
		}
	}
	return nil
}

func syncProjects(tx *sql.Tx, projects []content.Project) error {
	if _, err := tx.Exec(`DELETE FROM projects`); err != nil {
		return err
	}
	for _, p := range projects {
		if _, err := tx.Exec(`INSERT INTO projects (slug, title, description, pub_date, updated_date, hero_image, repo_url, demo_url, tags, featured, body) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Slug, p.Title, p.Description, formatTime(p.PubDate), formatOptionalTime(p.UpdatedDate),
			p.HeroImage, p.RepoURL, p.DemoURL, EncodeList(p.Tags), boolInt(p.Featured), p.Body); err != nil {
			return fmt.Errorf("insert project %s: %w", p.Slug, err)
		}
	}
	return nil
}

// ListArticles returns articles newest first, narrowed by f.
func (s *Store) ListArticles(f ArticleFilter) ([]content.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE 1 = 1`
	var args []any
	if !f.IncludeDrafts {
		query += ` AND draft = 0`
	}
	if tag := content.TagSlug(f.Tag); tag != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(articles.tag_slugs) WHERE json_each.value = ?)`
		args = append(args, tag)
	}
	if cat := content.TagSlug(f.Category); cat != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(articles.category_slugs) WHERE json_each.value = ?)`
		args = append(args, cat)
	}
	query += ` ORDER BY pub_date DESC, slug ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []content.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListCategories counts categories across articles, most used first.
func (s *Store) ListCategories(includeDrafts bool) ([]content.TagCount, error) {
	query := `SELECT categories FROM articles`
	if !includeDrafts {
		query += ` WHERE draft = 0`
	}
	query += ` ORDER BY pub_date DESC, slug ASC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []content.Article
	for rows.Next() {
		var cats string
		if err := rows.Scan(&cats); err != nil {
			return nil, err
		}
		list, err := DecodeList(cats)
		if err != nil {
			return nil, err
		}
		articles = append(articles, content.Article{Categories: list})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return content.CountCategories(articles), nil
}

const projectColumns = `slug, title, description, pub_date, updated_date, hero_image, repo_url, demo_url, tags, featured, body`

// ListProjects returns every project newest first.
func (s *Store) ListProjects() ([]content.Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY pub_date DESC, slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []content.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// RecordSearch logs a query typed on the search page with the number of
// results it returned. Queries are folded to lower case.
func (s *Store) RecordSearch(query string, results int) error {
	query = strings.ToLower(strings.Join(strings.Fields(query), " "))
	if query == "" {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO searches (term, count, results, last_at) VALUES (?, 1, ?, ?)
ON CONFLICT(term) DO UPDATE SET count = count + 1, results = excluded.results, last_at = excluded.last_at`,
		query, results, formatTime(time.Now()))
	return err
}

// PopularSearches returns the most repeated queries that found something.
func (s *Store) PopularSearches(limit int) ([]string, error) {
	rows, err := s.db.Query(`SELECT term FROM searches WHERE results > 0 ORDER BY count DESC, last_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (content.Article, error) {
	var a content.Article
	var pub, tags, cats string
	var updated sql.NullString
	var draft, featured int
	if err := row.Scan(&a.Slug, &a.Title, &a.Description, &pub, &updated, &a.HeroImage, &tags, &cats,
		&a.Subject, &draft, &featured, &a.Author, &a.Location, &a.Body); err != nil {
		return content.Article{}, err
	}
	var err error
	if a.PubDate, err = time.Parse(time.RFC3339, pub); err != nil {
		return content.Article{}, fmt.Errorf("article %s: pub_date: %w", a.Slug, err)
	}
	a.UpdatedDate = parseOptionalTime(updated)
	if a.Tags, err = DecodeList(tags); err != nil {
		return content.Article{}, fmt.Errorf("article %s: tags: %w", a.Slug, err)
	}
	if a.Categories, err = DecodeList(cats); err != nil {
		return content.Article{}, fmt.Errorf("article %s: categories: %w", a.Slug, err)
	}
	a.Draft = draft == 1
	a.Featured = featured == 1
	return a, nil
}

func scanProject(row scanner) (content.Project, error) {
	var p content.Project
	var pub, tags string
	var updated sql.NullString
	var featured int
	if err := row.Scan(&p.Slug, &p.Title, &p.Description, &pub, &updated, &p.HeroImage,
		&p.RepoURL, &p.DemoURL, &tags, &featured, &p.Body); err != nil {
		return content.Project{}, err
	}
	var err error
	if p.PubDate, err = time.Parse(time.RFC3339, pub); err != nil {
		return content.Project{}, fmt.Errorf("project %s: pub_date: %w", p.Slug, err)
	}
	p.UpdatedDate = parseOptionalTime(updated)
	if p.Tags, err = DecodeList(tags); err != nil {
		return content.Project{}, fmt.Errorf("project %s: tags: %w", p.Slug, err)
	}
	p.Featured = featured == 1
	return p, nil
}

// EncodeList stores a list column as a JSON array; nil becomes "[]".
func EncodeList(vals []string) string {
	if len(vals) == 0 {
		return "[]"
	}
	b, err := json.Marshal(vals)
	if err != nil {
		// a []string always marshals
		panic(err)
	}
	return string(b)
}

// DecodeList reads a list column written by EncodeList. Empty input yields
// an empty, non-nil slice.
func DecodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func slugs(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = content.TagSlug(v)
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseOptionalTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
