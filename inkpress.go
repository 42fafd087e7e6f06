// Package inkpress is a static blog generator built with Go, Echo, and templ.
// It turns a directory of dated Markdown posts with YAML front-matter into a
// static HTML file tree, with listing pages, category pages, an RSS feed, and
// a sitemap out of the box.
//
// Users provide their own templ components via the ViewFuncs struct, and
// inkpress handles content loading, rendering, asset copying, and the local
// preview server. The views package ships a default set.
package inkpress

import (
	"fmt"
	"io/fs"

	"github.com/a-h/templ"
)

// ViewFuncs holds the templ components the generator calls when rendering
// pages. This is the inversion-of-control mechanism that lets users own and
// customize all templates.
type ViewFuncs struct {
	Home          func(cfg SiteConfig, posts []Post, page, totalPages int) templ.Component
	Post          func(cfg SiteConfig, post Post, bodyHTML string, related []Post) templ.Component
	Category      func(cfg SiteConfig, category string, posts []Post) templ.Component
	CategoryIndex func(cfg SiteConfig, categories []string, counts map[string]int) templ.Component
	NotFound      func(cfg SiteConfig) templ.Component
}

func (v ViewFuncs) validate() error {
	if v.Home == nil || v.Post == nil || v.Category == nil || v.CategoryIndex == nil || v.NotFound == nil {
		return fmt.Errorf("inkpress: all ViewFuncs fields must be set")
	}
	return nil
}

// Site is the central inkpress application: configuration, loaded posts, and
// the views that render them.
type Site struct {
	Config SiteConfig
	Posts  []Post
	Views  ViewFuncs

	root          string // site root the config was loaded from
	themeAssets   fs.FS  // fallback assets when no theme is configured
	includeDrafts bool
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithDrafts includes draft posts in the build (preview use only).
func WithDrafts() Option {
	return func(s *Site) {
		s.includeDrafts = true
	}
}

// WithThemeAssets sets the asset tree used when site.yaml configures neither
// a vendored theme dir nor a theme URL. The CLI passes the built-in theme.
func WithThemeAssets(fsys fs.FS) Option {
	return func(s *Site) {
		s.themeAssets = fsys
	}
}

// Load reads the site config and all content under root.
func Load(root string, views ViewFuncs, opts ...Option) (*Site, error) {
	if err := views.validate(); err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	s := &Site{
		Config: cfg,
		Views:  views,
		root:   root,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads all posts from the content directory. Serve calls this
// before rebuilding when a content file changes.
func (s *Site) Reload() error {
	posts, err := LoadPosts(s.Config.ContentDir, s.includeDrafts)
	if err != nil {
		return err
	}
	s.Posts = posts
	return nil
}
