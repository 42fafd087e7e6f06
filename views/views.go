// Package views is the built-in inkpress theme: a minimal, dependency-free
// set of templ components plus an embedded stylesheet. Sites that want a
// different look supply their own ViewFuncs instead.
package views

import (
	"bytes"
	"context"
	"embed"
	"html"
	"io"
	"io/fs"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/inkpress"
)

//go:embed assets
var assetsFS embed.FS

// Assets is the built-in theme's static asset tree, copied into the output
// under /theme/ when no external theme is configured.
var Assets = func() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}()

// Funcs returns the default ViewFuncs implementation.
func Funcs() inkpress.ViewFuncs {
	return inkpress.ViewFuncs{
		Home:          Home,
		Post:          Post,
		Category:      Category,
		CategoryIndex: CategoryIndex,
		NotFound:      NotFound,
	}
}

// Home renders one page of the post listing with excerpts.
func Home(cfg inkpress.SiteConfig, posts []inkpress.Post, page, totalPages int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		title := cfg.Name
		if page > 1 {
			title = cfg.Name + " - page " + strconv.Itoa(page)
		}
		openPage(&b, cfg, inkpress.PageMeta{
			Title:       title,
			Description: cfg.Description,
			URL:         inkpress.BuildURL(cfg.URL),
			OGType:      "website",
		})
		b.WriteString(`<script type="application/ld+json">` + inkpress.WebsiteJsonLD(cfg) + `</script>`)
		b.WriteString(`<main class="listing">`)
		writePostList(&b, posts)
		writePagination(&b, page, totalPages)
		b.WriteString(`</main>`)
		closePage(&b, cfg)
		_, err := w.Write(b.Bytes())
		return err
	})
}

// Post renders a single post page. bodyHTML is the pre-rendered Markdown body.
func Post(cfg inkpress.SiteConfig, post inkpress.Post, bodyHTML string, related []inkpress.Post) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		openPage(&b, cfg, inkpress.PageMeta{
			Title:       post.Title + " - " + cfg.Name,
			Description: post.Excerpt,
			URL:         inkpress.BuildURL(cfg.URL, post.Link),
			OGType:      "article",
		})
		b.WriteString(`<script type="application/ld+json">` + inkpress.BlogPostingJsonLD(post, cfg) + `</script>`)
		b.WriteString(`<article class="post">`)
		b.WriteString(`<h1>` + html.EscapeString(post.Title) + `</h1>`)
		b.WriteString(`<p class="post-meta"><time datetime="` + post.Date + `">` + formatDate(post.Date) + `</time>`)
		b.WriteString(` &middot; ` + strconv.Itoa(post.ReadingMinutes) + ` min read`)
		writeCategoryLinks(&b, post.Categories)
		b.WriteString(`</p>`)
		b.WriteString(`<div class="post-body">`)
		b.WriteString(bodyHTML)
		b.WriteString(`</div>`)
		b.WriteString(`</article>`)
		if len(related) > 0 {
			b.WriteString(`<aside class="related"><h2>Related posts</h2><ul>`)
			for _, r := range related {
				b.WriteString(`<li><a href="` + r.Link + `">` + html.EscapeString(r.Title) + `</a></li>`)
			}
			b.WriteString(`</ul></aside>`)
		}
		closePage(&b, cfg)
		_, err := w.Write(b.Bytes())
		return err
	})
}

// Category renders the listing of posts in one category.
func Category(cfg inkpress.SiteConfig, category string, posts []inkpress.Post) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		openPage(&b, cfg, inkpress.PageMeta{
			Title:       category + " - " + cfg.Name,
			Description: cfg.Description,
			URL:         inkpress.BuildURL(cfg.URL, "categories", category),
			OGType:      "website",
		})
		b.WriteString(`<main class="listing">`)
		b.WriteString(`<h1>` + html.EscapeString(category) + `</h1>`)
		writePostList(&b, posts)
		b.WriteString(`</main>`)
		closePage(&b, cfg)
		_, err := w.Write(b.Bytes())
		return err
	})
}

// CategoryIndex renders the list of all categories with post counts.
func CategoryIndex(cfg inkpress.SiteConfig, categories []string, counts map[string]int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		openPage(&b, cfg, inkpress.PageMeta{
			Title:       "Categories - " + cfg.Name,
			Description: cfg.Description,
			URL:         inkpress.BuildURL(cfg.URL, "categories"),
			OGType:      "website",
		})
		b.WriteString(`<main class="listing"><h1>Categories</h1><ul class="categories">`)
		for _, c := range categories {
			b.WriteString(`<li><a href="/categories/` + c + `/">` + html.EscapeString(c) + `</a>`)
			b.WriteString(` <span class="count">(` + strconv.Itoa(counts[c]) + `)</span></li>`)
		}
		b.WriteString(`</ul></main>`)
		closePage(&b, cfg)
		_, err := w.Write(b.Bytes())
		return err
	})
}

// NotFound renders the 404 page.
func NotFound(cfg inkpress.SiteConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		openPage(&b, cfg, inkpress.PageMeta{
			Title:  "Not found - " + cfg.Name,
			URL:    inkpress.BuildURL(cfg.URL),
			OGType: "website",
		})
		b.WriteString(`<main class="listing"><h1>Page not found</h1>`)
		b.WriteString(`<p>The page you were looking for does not exist. <a href="/">Back to the front page.</a></p></main>`)
		closePage(&b, cfg)
		_, err := w.Write(b.Bytes())
		return err
	})
}

func openPage(b *bytes.Buffer, cfg inkpress.SiteConfig, meta inkpress.PageMeta) {
	b.WriteString("<!DOCTYPE html>")
	b.WriteString(`<html lang="en"><head><meta charset="utf-8"/>`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	b.WriteString(`<title>` + html.EscapeString(meta.Title) + `</title>`)
	if meta.Description != "" {
		b.WriteString(`<meta name="description" content="` + html.EscapeString(meta.Description) + `"/>`)
	}
	b.WriteString(`<link rel="canonical" href="` + meta.URL + `"/>`)
	b.WriteString(`<meta property="og:title" content="` + html.EscapeString(meta.Title) + `"/>`)
	b.WriteString(`<meta property="og:type" content="` + meta.OGType + `"/>`)
	b.WriteString(`<meta property="og:url" content="` + meta.URL + `"/>`)
	b.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + html.EscapeString(cfg.Name) + `" href="/feed.xml"/>`)
	b.WriteString(`<link rel="stylesheet" href="/theme/style.css"/>`)
	b.WriteString(`</head><body>`)
	b.WriteString(`<header class="site-header"><a class="site-title" href="/">` + html.EscapeString(cfg.Name) + `</a>`)
	b.WriteString(`<nav><a href="/categories/">Categories</a> <a href="/feed.xml">RSS</a></nav></header>`)
}

func closePage(b *bytes.Buffer, cfg inkpress.SiteConfig) {
	b.WriteString(`<footer class="site-footer">`)
	if cfg.Author != "" {
		b.WriteString(`<p>&copy; ` + html.EscapeString(cfg.Author) + `</p>`)
	}
	b.WriteString(`</footer></body></html>`)
}

func writePostList(b *bytes.Buffer, posts []inkpress.Post) {
	b.WriteString(`<ul class="post-list">`)
	for _, p := range posts {
		b.WriteString(`<li class="post-item">`)
		b.WriteString(`<h2><a href="` + p.Link + `">` + html.EscapeString(p.Title) + `</a></h2>`)
		b.WriteString(`<p class="post-meta"><time datetime="` + p.Date + `">` + formatDate(p.Date) + `</time>`)
		writeCategoryLinks(b, p.Categories)
		b.WriteString(`</p>`)
		if p.Excerpt != "" {
			b.WriteString(`<p class="excerpt">` + html.EscapeString(p.Excerpt) + `</p>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
}

func writeCategoryLinks(b *bytes.Buffer, categories []string) {
	for _, c := range categories {
		b.WriteString(` <a class="category" href="/categories/` + c + `/">` + html.EscapeString(c) + `</a>`)
	}
}

func writePagination(b *bytes.Buffer, page, totalPages int) {
	if totalPages <= 1 {
		return
	}
	b.WriteString(`<nav class="pagination">`)
	if page > 1 {
		prev := "/"
		if page > 2 {
			prev = "/page/" + strconv.Itoa(page-1) + "/"
		}
		b.WriteString(`<a class="prev" href="` + prev + `">Newer</a>`)
	}
	b.WriteString(`<span>Page ` + strconv.Itoa(page) + ` of ` + strconv.Itoa(totalPages) + `</span>`)
	if page < totalPages {
		b.WriteString(`<a class="next" href="/page/` + strconv.Itoa(page+1) + `/">Older</a>`)
	}
	b.WriteString(`</nav>`)
}

func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}
