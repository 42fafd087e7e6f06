package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var drafts bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the site into the output directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			site, err := loadSite(cmd, drafts)
			if err != nil {
				return err
			}
			if err := site.Build(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d posts into %s\n", len(site.Posts), site.Config.OutputDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft posts")
	return cmd
}
