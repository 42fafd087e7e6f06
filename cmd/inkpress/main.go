// Package main provides the entry point for the inkpress CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/inkpress"
	"github.com/eringen/inkpress/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inkpress",
		Short: "A static blog generator",
		Long: `inkpress - a static blog generator built with Go, Echo, and templ.

It turns a directory of dated Markdown posts with YAML front-matter into a
static HTML site with listing pages, category pages, an RSS feed, and a
sitemap, ready for any static web host.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("site", "s", ".", "site root directory")
	root.AddCommand(newBuildCmd(), newServeCmd(), newNewCmd(), newVersionCmd())
	return root
}

func siteRoot(cmd *cobra.Command) string {
	root, _ := cmd.Flags().GetString("site")
	if root == "" {
		root = "."
	}
	return root
}

// loadSite wires the built-in theme into a Site loaded from the --site root.
func loadSite(cmd *cobra.Command, drafts bool) (*inkpress.Site, error) {
	opts := []inkpress.Option{inkpress.WithThemeAssets(views.Assets)}
	if drafts {
		opts = append(opts, inkpress.WithDrafts())
	}
	return inkpress.Load(siteRoot(cmd), views.Funcs(), opts...)
}
