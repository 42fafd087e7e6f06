package inkpress_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/eringen/inkpress"
	"github.com/eringen/inkpress/views"
)

const fpPost = `---
title: "What is Functional Programming and why you should care?"
categories: [functional-programming]
excerpt: A gentle introduction to functional thinking in Swift.
---
# Why care?

Functions are **values**. Composition beats inheritance.
`

const coordinatorPost = `---
title: Coordinators in UIKit
categories: [architecture]
excerpt: Untangling navigation logic with the coordinator pattern.
---
Navigation code does not belong in view controllers.
`

// setupSite writes a minimal site fixture and loads it.
func setupSite(t *testing.T, opts ...inkpress.Option) *inkpress.Site {
	t.Helper()
	root := t.TempDir()

	postsDir := filepath.Join(root, "content", "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("site.yaml", "name: Test Blog\nurl: https://blog.example.com\ndescription: iOS notes.\nauthor: Jane\n")
	write("content/posts/2020-07-09-what-is-functional-programming-and-why-you-should-care.md", fpPost)
	write("content/posts/2021-03-15-coordinators-in-uikit.md", coordinatorPost)
	write("content/posts/2022-01-01-draft-idea.md", "---\ntitle: Draft Idea\ndraft: true\n---\nnot ready\n")
	write("static/robots-img.txt", "static asset\n")

	opts = append([]inkpress.Option{inkpress.WithThemeAssets(views.Assets)}, opts...)
	site, err := inkpress.Load(root, views.Funcs(), opts...)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return site
}

func buildSite(t *testing.T, site *inkpress.Site) string {
	t.Helper()
	if err := site.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return site.Config.OutputDir
}

func readOutput(t *testing.T, out string, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestBuildPostPermalink(t *testing.T) {
	site := setupSite(t)
	out := buildSite(t, site)

	page := readOutput(t, out, "2020/07/09/what-is-functional-programming-and-why-you-should-care/index.html")
	if !strings.Contains(page, "What is Functional Programming and why you should care?") {
		t.Error("post page missing title")
	}
	if !strings.Contains(page, "<strong>values</strong>") {
		t.Error("post body not rendered as HTML")
	}
	if !strings.Contains(page, `"datePublished":"2020-07-09"`) {
		t.Error("post page missing JSON-LD date")
	}
}

func TestBuildListingHasExcerpt(t *testing.T) {
	site := setupSite(t)
	out := buildSite(t, site)

	index := readOutput(t, out, "index.html")
	if !strings.Contains(index, "A gentle introduction to functional thinking in Swift.") {
		t.Error("listing page missing exact excerpt text")
	}
	if !strings.Contains(index, "/2020/07/09/what-is-functional-programming-and-why-you-should-care/") {
		t.Error("listing page missing post link")
	}
	// Newest first.
	coord := strings.Index(index, "Coordinators in UIKit")
	fp := strings.Index(index, "What is Functional Programming")
	if coord < 0 || fp < 0 || coord > fp {
		t.Error("posts not ordered newest first on the listing page")
	}
}

func TestBuildCategoryPages(t *testing.T) {
	site := setupSite(t)
	out := buildSite(t, site)

	catIndex := readOutput(t, out, "categories/index.html")
	for _, cat := range []string{"functional-programming", "architecture"} {
		if !strings.Contains(catIndex, cat) {
			t.Errorf("category index missing %q", cat)
		}
	}

	catPage := readOutput(t, out, "categories/functional-programming/index.html")
	if !strings.Contains(catPage, "What is Functional Programming") {
		t.Error("category page missing its post")
	}
	if strings.Contains(catPage, "Coordinators in UIKit") {
		t.Error("category page contains a post from another category")
	}
}

func TestBuildMetaFiles(t *testing.T) {
	site := setupSite(t)
	out := buildSite(t, site)

	feed := readOutput(t, out, "feed.xml")
	if !strings.Contains(feed, "<rss") || !strings.Contains(feed, "Test Blog") {
		t.Error("feed.xml malformed")
	}
	if !strings.Contains(feed, "https://blog.example.com/2020/07/09/what-is-functional-programming-and-why-you-should-care/") {
		t.Error("feed.xml missing post URL")
	}

	sitemap := readOutput(t, out, "sitemap.xml")
	for _, want := range []string{
		"https://blog.example.com/2021/03/15/coordinators-in-uikit/",
		"https://blog.example.com/categories/architecture/",
	} {
		if !strings.Contains(sitemap, want) {
			t.Errorf("sitemap.xml missing %q", want)
		}
	}

	robots := readOutput(t, out, "robots.txt")
	if !strings.Contains(robots, "Sitemap: https://blog.example.com/sitemap.xml") {
		t.Error("robots.txt missing sitemap line")
	}

	if _, err := os.Stat(filepath.Join(out, "404.html")); err != nil {
		t.Error("404.html not generated")
	}
}

func TestBuildCopiesAssets(t *testing.T) {
	site := setupSite(t)
	out := buildSite(t, site)

	if got := readOutput(t, out, "robots-img.txt"); got != "static asset\n" {
		t.Errorf("static asset = %q", got)
	}
	if _, err := os.Stat(filepath.Join(out, "theme", "style.css")); err != nil {
		t.Error("built-in theme stylesheet not copied")
	}
}

func TestBuildExcludesDrafts(t *testing.T) {
	site := setupSite(t)
	out := buildSite(t, site)

	if _, err := os.Stat(filepath.Join(out, "2022", "01", "01", "draft-idea")); !os.IsNotExist(err) {
		t.Error("draft post was built")
	}
	if strings.Contains(readOutput(t, out, "index.html"), "Draft Idea") {
		t.Error("draft post appears on the listing page")
	}
}

func TestBuildIncludesDraftsWhenAsked(t *testing.T) {
	site := setupSite(t, inkpress.WithDrafts())
	out := buildSite(t, site)

	page := readOutput(t, out, "2022/01/01/draft-idea/index.html")
	if !strings.Contains(page, "Draft Idea") {
		t.Error("draft post missing with WithDrafts")
	}
}

// hashTree fingerprints every file in a directory tree.
func hashTree(t *testing.T, root string) map[string][32]byte {
	t.Helper()
	sums := make(map[string][32]byte)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sums[rel] = sha256.Sum256(data)
		return nil
	})
	if err != nil {
		t.Fatalf("hash tree: %v", err)
	}
	return sums
}

func TestBuildIdempotent(t *testing.T) {
	site := setupSite(t)
	out := buildSite(t, site)
	first := hashTree(t, out)

	// Second build runs with a warm render cache; output must not change.
	buildSite(t, site)
	second := hashTree(t, out)

	if len(first) != len(second) {
		t.Fatalf("file count changed: %d vs %d", len(first), len(second))
	}
	for rel, sum := range first {
		if second[rel] != sum {
			t.Errorf("%s changed between identical builds", rel)
		}
	}
}

func TestBuildFailsOnMalformedFrontMatter(t *testing.T) {
	site := setupSite(t)
	bad := filepath.Join(site.Config.ContentDir, "2023-01-01-broken.md")
	if err := os.WriteFile(bad, []byte("---\ntitle: [broken\n---\nbody\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := site.Reload()
	if err == nil {
		t.Fatal("expected reload to fail on malformed front matter")
	}
	if !strings.Contains(err.Error(), "broken.md") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestBuildVendoredThemeOverridesBuiltin(t *testing.T) {
	site := setupSite(t)
	themeDir := filepath.Join(t.TempDir(), "mytheme")
	if err := os.MkdirAll(themeDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(themeDir, "style.css"), []byte("body{color:red}"), 0o644); err != nil {
		t.Fatal(err)
	}
	site.Config.ThemeDir = themeDir

	out := buildSite(t, site)
	if got := readOutput(t, out, "theme/style.css"); got != "body{color:red}" {
		t.Errorf("vendored theme not used: %q", got)
	}
}

// themeTarGz builds an in-memory theme archive from name->content pairs.
func themeTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range names {
		content := files[name]
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBuildFetchedThemeMatchesVendored(t *testing.T) {
	theme := map[string]string{
		"style.css":     "body{color:teal}",
		"fonts/ui.woff": "font-bytes",
	}
	archive := themeTarGz(t, theme)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	fetched := setupSite(t)
	fetched.Config.ThemeURL = srv.URL + "/theme.tar.gz"
	outFetched := buildSite(t, fetched)

	themeDir := t.TempDir()
	for name, content := range theme {
		path := filepath.Join(themeDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	vendored := setupSite(t)
	vendored.Config.ThemeDir = themeDir
	outVendored := buildSite(t, vendored)

	// Identical theme content must yield identical output trees regardless
	// of how the theme was obtained.
	first, second := hashTree(t, outFetched), hashTree(t, outVendored)
	if len(first) != len(second) {
		t.Fatalf("file count differs: fetched %d vs vendored %d", len(first), len(second))
	}
	for rel, sum := range first {
		if second[rel] != sum {
			t.Errorf("%s differs between fetched and vendored theme builds", rel)
		}
	}
}

func TestBuildEmptySite(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "content", "posts"), 0o755); err != nil {
		t.Fatal(err)
	}
	site, err := inkpress.Load(root, views.Funcs(), inkpress.WithThemeAssets(views.Assets))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	out := buildSite(t, site)

	if _, err := os.Stat(filepath.Join(out, "index.html")); err != nil {
		t.Error("empty site should still produce an index page")
	}
}

func TestViewsAssetsContainStylesheet(t *testing.T) {
	if _, err := fs.Stat(views.Assets, "style.css"); err != nil {
		t.Errorf("built-in theme missing style.css: %v", err)
	}
}
