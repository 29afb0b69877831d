package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/scaffold"
)

var newCmd = &cobra.Command{
	Use:       "new post|project TITLE",
	Short:     "Write a new content file with a frontmatter skeleton",
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: scaffold.Kinds,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := runNew(cfg, args[0], strings.Join(args[1:], " "), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}

// runNew writes a scaffold for kind under the content directory and returns
// its path. Existing files are never overwritten.
func runNew(cfg folio.SiteConfig, kind, title string, now time.Time) (string, error) {
	var dir string
	switch kind {
	case "post":
		dir = content.BlogDir
	case "project":
		dir = content.ProjectsDir
	default:
		return "", fmt.Errorf("unknown kind %q: want post or project", kind)
	}
	slug := folio.Slugify(title)
	if slug == "" {
		return "", errors.New("title must contain at least one letter or digit")
	}

	path := filepath.Join(cfg.ContentDir, dir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data := scaffold.Data{
		Title:  strings.TrimSpace(title),
		Slug:   slug,
		Date:   now.Format("2006-01-02"),
		Author: cfg.Author,
	}
	if err := scaffold.Render(f, kind, data); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return path, f.Close()
}
