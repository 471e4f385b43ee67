package main

import (
	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/shortcode"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/services"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <code>",
		Short: "Show click statistics for a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			service := services.NewLinkService(repo, shortcode.NewGenerator(shortcode.DefaultLength))

			link, err := service.GetLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			stats, err := service.GetLinkStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"id":           link.ID,
				"original_url": link.OriginalURL,
				"clicks":       link.Clicks,
				"status":       link.Status,
				"stats":        stats,
			})
		},
	}
}
