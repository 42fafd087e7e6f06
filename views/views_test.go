package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/eringen/inkpress"
)

var testConfig = inkpress.SiteConfig{
	Name:        "Test Blog",
	URL:         "https://example.com",
	Description: "Notes on iOS.",
	Author:      "Jane",
}

var testPost = inkpress.Post{
	Slug:           "my-post",
	Title:          "My Post <Title>",
	Date:           "2020-07-09",
	Categories:     []string{"ios"},
	Excerpt:        "A short summary.",
	Link:           "/2020/07/09/my-post/",
	ReadingMinutes: 3,
}

func TestHome(t *testing.T) {
	var b bytes.Buffer
	cmp := Home(testConfig, []inkpress.Post{testPost}, 1, 1)
	if err := cmp.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	got := b.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Test Blog</title>",
		`href="/2020/07/09/my-post/"`,
		`<p class="excerpt">A short summary.</p>`,
		"July 9, 2020",
		`href="/theme/style.css"`,
		`"@type":"WebSite"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if strings.Contains(got, `class="pagination"`) {
		t.Error("pagination rendered for a single page")
	}
}

func TestHomePagination(t *testing.T) {
	var b bytes.Buffer
	cmp := Home(testConfig, []inkpress.Post{testPost}, 2, 3)
	if err := cmp.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	got := b.String()

	if !strings.Contains(got, `<a class="prev" href="/">Newer</a>`) {
		t.Errorf("page 2 should link back to the front page: %q", got)
	}
	if !strings.Contains(got, `<a class="next" href="/page/3/">Older</a>`) {
		t.Errorf("page 2 should link forward to page 3: %q", got)
	}
	if !strings.Contains(got, "<title>Test Blog - page 2</title>") {
		t.Error("paged title missing")
	}
}

func TestPost(t *testing.T) {
	var b bytes.Buffer
	related := []inkpress.Post{{Title: "Other", Link: "/2020/01/01/other/"}}
	cmp := Post(testConfig, testPost, "<p>body html</p>", related)
	if err := cmp.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	got := b.String()

	if !strings.Contains(got, "My Post &lt;Title&gt;") {
		t.Error("title not escaped")
	}
	if !strings.Contains(got, "<p>body html</p>") {
		t.Error("pre-rendered body must pass through unescaped")
	}
	if !strings.Contains(got, "3 min read") {
		t.Error("reading time missing")
	}
	if !strings.Contains(got, `property="og:type" content="article"`) {
		t.Error("og:type should be article")
	}
	if !strings.Contains(got, `"@type":"BlogPosting"`) {
		t.Error("JSON-LD missing")
	}
	if !strings.Contains(got, `href="/2020/01/01/other/"`) {
		t.Error("related post link missing")
	}
}

func TestCategory(t *testing.T) {
	var b bytes.Buffer
	cmp := Category(testConfig, "ios", []inkpress.Post{testPost})
	if err := cmp.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	got := b.String()

	if !strings.Contains(got, "<h1>ios</h1>") {
		t.Error("category heading missing")
	}
	if !strings.Contains(got, `href="/2020/07/09/my-post/"`) {
		t.Error("post link missing from category page")
	}
}

func TestCategoryIndex(t *testing.T) {
	var b bytes.Buffer
	cmp := CategoryIndex(testConfig, []string{"architecture", "ios"}, map[string]int{"architecture": 1, "ios": 4})
	if err := cmp.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	got := b.String()

	if !strings.Contains(got, `href="/categories/ios/"`) {
		t.Error("category link missing")
	}
	if !strings.Contains(got, `<span class="count">(4)</span>`) {
		t.Error("post count missing")
	}
}

func TestNotFound(t *testing.T) {
	var b bytes.Buffer
	if err := NotFound(testConfig).Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(b.String(), "Page not found") {
		t.Error("404 page missing message")
	}
}

func TestFuncsComplete(t *testing.T) {
	f := Funcs()
	if f.Home == nil || f.Post == nil || f.Category == nil || f.CategoryIndex == nil || f.NotFound == nil {
		t.Error("Funcs returned an incomplete ViewFuncs")
	}
}
