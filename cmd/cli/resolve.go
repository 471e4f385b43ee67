package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/deeplink"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/platform"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/services"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		userAgent string
		region    string
		track     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <code>",
		Short: "Show where a device would be redirected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			redirects := services.NewRedirectService(repo, deeplink.NewGenerator(a.cfg.DownloadURL),
				services.WithSyncTracking(),
				services.WithIPSalt(a.cfg.IPHashSalt),
			)

			device := platform.Detect(userAgent)
			device.Region = strings.ToUpper(region)

			var res domain.Resolution
			if track {
				res, err = redirects.ResolveShortCode(cmd.Context(), args[0], domain.VisitContext{Device: device})
			} else {
				res, err = redirects.Preview(cmd.Context(), args[0], device)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&userAgent, "ua", "", "user agent to resolve for")
	f.StringVar(&region, "region", "", "two letter region code")
	f.BoolVar(&track, "track", false, "record the resolution as a click")
	return cmd
}
