package inkpress

// Post is the core content type, parsed from a dated Markdown file with YAML
// front-matter. Posts are loaded once per build and never mutated afterwards.
type Post struct {
	Slug       string
	Title      string
	Date       string // YYYY-MM-DD
	Categories []string
	Excerpt    string
	Body       string // raw Markdown
	Link       string // permalink path, e.g. /2020/07/09/my-post/
	Draft      bool

	// SourcePath is the content file the post was loaded from, kept for
	// error messages.
	SourcePath string

	// ReadingMinutes is derived from the body word count at load time.
	ReadingMinutes int
}

// PageMeta carries per-page metadata into the <head> of a rendered page.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
