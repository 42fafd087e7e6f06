package inkpress

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ServeOptions configures the local preview server.
type ServeOptions struct {
	Addr       string // overrides SiteConfig.Addr when non-empty
	LiveReload bool   // rebuild on change and push reloads to browsers
}

// Serve builds the site once and serves the output directory until ctx is
// cancelled. With LiveReload, content and asset changes trigger a rebuild and
// a browser refresh over a websocket.
//
// This is a development preview: the built file tree is exactly what build
// produces, and the reload script is injected at response time so it never
// leaks into the output.
func (s *Site) Serve(ctx context.Context, opts ServeOptions) error {
	if err := s.Build(ctx); err != nil {
		return err
	}

	addr := opts.Addr
	if addr == "" {
		addr = s.Config.Addr
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	// Previews must never be cached, or edits look like they went missing.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Cache-Control", "no-store")
			return next(c)
		}
	})

	var hub *reloadHub
	if opts.LiveReload {
		hub = newReloadHub()
		e.GET("/livereload", hub.handle)
		e.GET("/livereload.js", func(c echo.Context) error {
			return c.Blob(http.StatusOK, "application/javascript", []byte(liveReloadScript))
		})

		watcher, err := NewWatcher(s.watchDirs(), func() {
			if err := s.rebuild(ctx); err != nil {
				e.Logger.Errorf("rebuild: %v", err)
				return
			}
			hub.broadcast()
		})
		if err != nil {
			return err
		}
		defer watcher.Close()
		watcher.Start(ctx)
	}

	e.GET("/*", s.serveFile(opts.LiveReload))

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

// watchDirs lists everything a rebuild depends on, including site.yaml so
// config edits take effect without a restart.
func (s *Site) watchDirs() []string {
	return []string{
		s.Config.ContentDir,
		s.Config.StaticDir,
		s.Config.ThemeDir,
		filepath.Join(s.root, "site.yaml"),
	}
}

// rebuild re-reads config and content, then rebuilds the output tree. An
// error (bad front-matter mid-edit) is reported but leaves the last good
// build serving. Directory settings are re-read too, but the watcher keeps
// its original paths; moving content dirs needs a restart.
func (s *Site) rebuild(ctx context.Context) error {
	cfg, err := LoadConfig(s.root)
	if err != nil {
		return err
	}
	s.Config = cfg
	if err := s.Reload(); err != nil {
		return err
	}
	return s.Build(ctx)
}

// serveFile returns the catch-all handler mapping request paths onto the
// built output tree, with a themed 404 and optional reload-script injection.
func (s *Site) serveFile(injectReload bool) echo.HandlerFunc {
	root := s.Config.OutputDir
	return func(c echo.Context) error {
		reqPath := path.Clean("/" + c.Request().URL.Path)
		file := filepath.Join(root, filepath.FromSlash(reqPath))

		if info, err := os.Stat(file); err == nil && info.IsDir() {
			file = filepath.Join(file, "index.html")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			notFound := filepath.Join(root, "404.html")
			if page, err := os.ReadFile(notFound); err == nil {
				return c.HTMLBlob(http.StatusNotFound, s.withReloadScript(page, injectReload))
			}
			return echo.NewHTTPError(http.StatusNotFound)
		}

		if strings.HasSuffix(file, ".html") {
			return c.HTMLBlob(http.StatusOK, s.withReloadScript(data, injectReload))
		}
		return c.Blob(http.StatusOK, contentTypeFor(file), data)
	}
}

// withReloadScript appends the livereload script tag before </body>.
func (s *Site) withReloadScript(page []byte, inject bool) []byte {
	if !inject {
		return page
	}
	tag := []byte(`<script src="/livereload.js"></script>`)
	if idx := bytes.LastIndex(page, []byte("</body>")); idx >= 0 {
		out := make([]byte, 0, len(page)+len(tag))
		out = append(out, page[:idx]...)
		out = append(out, tag...)
		out = append(out, page[idx:]...)
		return out
	}
	return append(append([]byte{}, page...), tag...)
}

func contentTypeFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".xml":
		return "application/xml; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
