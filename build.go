package inkpress

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/inkpress/markdown"
)

// Build renders the whole site into Config.OutputDir. Pages are written to a
// staging directory first and swapped in atomically, so a failed build never
// leaves partial output behind. Rendering is deterministic: the same input
// tree always produces the same output bytes.
func (s *Site) Build(ctx context.Context) error {
	cfg := s.Config

	staging := cfg.OutputDir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	cache, err := OpenRenderCache(filepath.Join(cfg.CacheDir, "render.db"))
	if err != nil {
		return fmt.Errorf("open render cache: %w", err)
	}
	defer cache.Close()

	keep := make(map[string]bool)
	bodyHTML := func(p Post) (string, error) {
		hash := ContentHash(p.Body)
		keep[hash] = true
		if html, ok, err := cache.Get(hash); err != nil {
			return "", err
		} else if ok {
			return html, nil
		}
		var buf bytes.Buffer
		markdown.RenderMarkdown(&buf, p.Body)
		if err := cache.Put(hash, buf.String()); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	// Listing pages: /index.html, /page/2/, /page/3/, ...
	totalPages := (len(s.Posts) + cfg.PostsPerPage - 1) / cfg.PostsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	for page := 1; page <= totalPages; page++ {
		start := (page - 1) * cfg.PostsPerPage
		end := start + cfg.PostsPerPage
		if end > len(s.Posts) {
			end = len(s.Posts)
		}
		out := filepath.Join(staging, "index.html")
		if page > 1 {
			out = filepath.Join(staging, "page", strconv.Itoa(page), "index.html")
		}
		if err := renderToFile(ctx, s.Views.Home(cfg, s.Posts[start:end], page, totalPages), out); err != nil {
			return err
		}
	}

	// Post pages at /YYYY/MM/DD/slug/index.html.
	for _, p := range s.Posts {
		html, err := bodyHTML(p)
		if err != nil {
			return fmt.Errorf("render %s: %w", p.SourcePath, err)
		}
		related := FilterRelatedPosts(p, s.Posts)
		out := filepath.Join(staging, filepath.FromSlash(p.Link), "index.html")
		if err := renderToFile(ctx, s.Views.Post(cfg, p, html, related), out); err != nil {
			return fmt.Errorf("write %s: %w", p.Link, err)
		}
	}

	// Category pages.
	cats, counts := CollectCategories(s.Posts)
	if err := renderToFile(ctx, s.Views.CategoryIndex(cfg, cats, counts),
		filepath.Join(staging, "categories", "index.html")); err != nil {
		return err
	}
	for _, cat := range cats {
		var matching []Post
		for _, p := range s.Posts {
			for _, c := range p.Categories {
				if c == cat {
					matching = append(matching, p)
					break
				}
			}
		}
		out := filepath.Join(staging, "categories", cat, "index.html")
		if err := renderToFile(ctx, s.Views.Category(cfg, cat, matching), out); err != nil {
			return err
		}
	}

	// 404 page for static hosts.
	if err := renderToFile(ctx, s.Views.NotFound(cfg), filepath.Join(staging, "404.html")); err != nil {
		return err
	}

	if err := s.writeMetaFiles(staging); err != nil {
		return err
	}

	if err := CopyAssets(cfg.StaticDir, staging); err != nil {
		return fmt.Errorf("copy static assets: %w", err)
	}

	themeFS, err := ResolveThemeAssets(cfg)
	if err != nil {
		return err
	}
	if themeFS == nil {
		themeFS = s.themeAssets
	}
	if themeFS != nil {
		if err := CopyAssetsFS(themeFS, filepath.Join(staging, "theme")); err != nil {
			return fmt.Errorf("copy theme assets: %w", err)
		}
	}

	if err := cache.Prune(keep); err != nil {
		return err
	}

	// Swap staging into place.
	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return err
	}
	return os.Rename(staging, cfg.OutputDir)
}

// writeMetaFiles emits feed.xml, sitemap.xml, and robots.txt.
func (s *Site) writeMetaFiles(dir string) error {
	feed, err := os.Create(filepath.Join(dir, "feed.xml"))
	if err != nil {
		return err
	}
	if err := WriteRSS(feed, s.Config, s.Posts); err != nil {
		feed.Close()
		return err
	}
	if err := feed.Close(); err != nil {
		return err
	}

	sm, err := os.Create(filepath.Join(dir, "sitemap.xml"))
	if err != nil {
		return err
	}
	if err := WriteSitemap(sm, s.Config, s.Posts); err != nil {
		sm.Close()
		return err
	}
	if err := sm.Close(); err != nil {
		return err
	}

	robots := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", s.Config.URL)
	return os.WriteFile(filepath.Join(dir, "robots.txt"), []byte(robots), 0o644)
}

// renderToFile writes a templ component to path, creating parent directories.
func renderToFile(ctx context.Context, cmp templ.Component, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := cmp.Render(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
