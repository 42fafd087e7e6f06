package inkpress

import (
	"encoding/xml"
	"io"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes a sitemap covering the home page, every post, and every
// category listing page to w.
func WriteSitemap(w io.Writer, cfg SiteConfig, posts []Post) error {
	urls := []sitemapURL{
		{Loc: BuildURL(cfg.URL)},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(cfg.URL, p.Link),
			LastMod: p.Date,
		})
	}
	cats, _ := CollectCategories(posts)
	if len(cats) > 0 {
		urls = append(urls, sitemapURL{Loc: BuildURL(cfg.URL, "categories")})
	}
	for _, c := range cats {
		urls = append(urls, sitemapURL{Loc: BuildURL(cfg.URL, "categories", c)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}
