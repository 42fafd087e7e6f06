package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/inkpress"
)

func newServeCmd() *cobra.Command {
	var (
		port       int
		livereload bool
		drafts     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build and preview the site locally",
		Long: `Build the site and serve the output directory on a local HTTP server.

With --livereload, content and asset changes trigger a rebuild and connected
browsers refresh automatically. With --drafts, posts marked draft: true are
included. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			site, err := loadSite(cmd, drafts)
			if err != nil {
				return err
			}
			addr := ""
			if port != 0 {
				addr = fmt.Sprintf(":%d", port)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return site.Serve(ctx, inkpress.ServeOptions{
				Addr:       addr,
				LiveReload: livereload,
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from site.yaml, 3000)")
	cmd.Flags().BoolVar(&livereload, "livereload", false, "rebuild and refresh browsers on change")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft posts")
	return cmd
}
