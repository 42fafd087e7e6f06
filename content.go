package inkpress

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// reDatedName matches content filenames like 2020-07-09-my-post.md.
var reDatedName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

const wordsPerMinute = 200

// frontMatter is the YAML metadata block at the top of a content file.
type frontMatter struct {
	Title      string     `yaml:"title"`
	Date       string     `yaml:"date"` // overrides the filename date
	Slug       string     `yaml:"slug"` // overrides the filename slug
	Categories stringList `yaml:"categories"`
	Excerpt    string     `yaml:"excerpt"`
	Draft      bool       `yaml:"draft"`
}

// stringList accepts either a YAML scalar or a sequence, so front-matter can
// say `categories: combine` as well as `categories: [combine, ios]`.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = FilterEmpty(strings.Split(s, ","))
		return nil
	case yaml.SequenceNode:
		var vals []string
		if err := node.Decode(&vals); err != nil {
			return err
		}
		*l = FilterEmpty(vals)
		return nil
	default:
		return fmt.Errorf("categories: expected string or list, got yaml kind %d", node.Kind)
	}
}

// LoadPosts reads every .md file under dir into a Post slice ordered by date
// descending (ties broken by slug, so ordering is deterministic). Drafts are
// skipped unless includeDrafts is set. Any malformed file fails the whole
// load with an error naming the file.
func LoadPosts(dir string, includeDrafts bool) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var posts []Post
	seen := make(map[string]string) // permalink -> source path
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		post, err := parsePostFile(path, data)
		if err != nil {
			return nil, err
		}
		if post.Draft && !includeDrafts {
			continue
		}
		if prev, ok := seen[post.Link]; ok {
			return nil, fmt.Errorf("%s: permalink %s collides with %s", path, post.Link, prev)
		}
		seen[post.Link] = path
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

// parsePostFile splits front-matter from body and derives date, slug, and
// permalink. The filename supplies defaults for both date and slug.
func parsePostFile(path string, data []byte) (Post, error) {
	fmBytes, body, err := splitFrontMatter(data)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", path, err)
	}

	var fm frontMatter
	if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
		return Post{}, fmt.Errorf("%s: parse front matter: %w", path, err)
	}
	if strings.TrimSpace(fm.Title) == "" {
		return Post{}, fmt.Errorf("%s: front matter is missing a title", path)
	}

	base := strings.TrimSuffix(filepath.Base(path), ".md")
	date := fm.Date
	slug := fm.Slug
	if m := reDatedName.FindStringSubmatch(base); m != nil {
		if date == "" {
			date = m[1]
		}
		if slug == "" {
			slug = Slugify(m[2])
		}
	}
	if date == "" {
		return Post{}, fmt.Errorf("%s: no date in front matter or filename (want YYYY-MM-DD prefix)", path)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Post{}, fmt.Errorf("%s: invalid date %q: use YYYY-MM-DD", path, date)
	}
	if slug == "" {
		slug = Slugify(fm.Title)
	}
	if slug == "" {
		return Post{}, fmt.Errorf("%s: cannot derive a slug from filename or title", path)
	}

	bodyText := string(body)
	return Post{
		Slug:           slug,
		Title:          fm.Title,
		Date:           date,
		Categories:     normalizeCategories(fm.Categories),
		Excerpt:        strings.TrimSpace(fm.Excerpt),
		Body:           bodyText,
		Link:           PermalinkFor(date, slug),
		Draft:          fm.Draft,
		SourcePath:     path,
		ReadingMinutes: readingMinutes(bodyText),
	}, nil
}

// splitFrontMatter separates the leading `---` delimited YAML block from the
// Markdown body. A missing or unterminated block is a build-time error.
func splitFrontMatter(data []byte) (fm, body []byte, err error) {
	content := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // strip UTF-8 BOM
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, nil, fmt.Errorf("missing front matter block")
	}
	rest := content[bytes.IndexByte(content, '\n')+1:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated front matter block")
	}
	fm = rest[:end+1]
	body = rest[end+1:]
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	return fm, bytes.TrimLeft(body, "\r\n"), nil
}

// PermalinkFor returns the date-prefixed permalink path for a post,
// e.g. /2020/07/09/what-is-functional-programming/.
func PermalinkFor(date, slug string) string {
	return "/" + strings.ReplaceAll(date, "-", "/") + "/" + slug + "/"
}

// normalizeCategories slugifies category names so they can double as output
// directory names and URL segments.
func normalizeCategories(cats []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, c := range cats {
		c = Slugify(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func readingMinutes(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// CollectCategories returns the sorted, deduplicated categories across posts
// together with per-category post counts.
func CollectCategories(posts []Post) ([]string, map[string]int) {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, c := range p.Categories {
			counts[c]++
		}
	}
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, counts
}
