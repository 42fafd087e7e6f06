package inkpress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for an inkpress site. It is read from
// site.yaml at the site root; environment variables override individual
// branding fields so deployments can adjust them without editing the file.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	ContentDir string `yaml:"content_dir"` // Markdown posts (default "content/posts")
	StaticDir  string `yaml:"static_dir"`  // Copied verbatim into the output (default "static")
	OutputDir  string `yaml:"output_dir"`  // Generated site (default "public")
	CacheDir   string `yaml:"cache_dir"`   // Render cache and fetched themes (default ".inkpress")

	// Theme assets are resolved in order: ThemeDir (vendored, preferred),
	// ThemeURL (fetched tarball), then the built-in theme.
	ThemeDir    string `yaml:"theme_dir"`
	ThemeURL    string `yaml:"theme_url"`
	ThemeCAFile string `yaml:"theme_ca_file"` // extra PEM roots for ThemeURL hosts

	PostsPerPage int    `yaml:"posts_per_page"` // Listing page size (default 10)
	Addr         string `yaml:"addr"`           // Preview server address (default ":3000")
}

// LoadConfig reads site.yaml from root if it exists, applies environment
// overrides and defaults, and resolves all directories relative to root.
func LoadConfig(root string) (SiteConfig, error) {
	var cfg SiteConfig

	path := filepath.Join(root, "site.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// A site without site.yaml runs entirely on defaults.
	default:
		return SiteConfig{}, err
	}

	cfg.applyEnv()
	cfg.setDefaults()
	cfg.resolve(root)
	return cfg, nil
}

func (c *SiteConfig) applyEnv() {
	if v := os.Getenv("SITE_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("SITE_DESCRIPTION"); v != "" {
		c.Description = v
	}
	if v := os.Getenv("SITE_AUTHOR"); v != "" {
		c.Author = v
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.ContentDir == "" {
		c.ContentDir = "content/posts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".inkpress"
	}
	if c.PostsPerPage == 0 {
		c.PostsPerPage = 10
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
}

// resolve makes all directory fields absolute with respect to the site root.
func (c *SiteConfig) resolve(root string) {
	for _, dir := range []*string{&c.ContentDir, &c.StaticDir, &c.OutputDir, &c.CacheDir, &c.ThemeDir, &c.ThemeCAFile} {
		if *dir != "" && !filepath.IsAbs(*dir) {
			*dir = filepath.Join(root, *dir)
		}
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
