package main

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/sdk"
)

type parseResult struct {
	Handled          bool              `json:"handled"`
	Valid            bool              `json:"valid"`
	Parameters       map[string]string `json:"parameters,omitempty"`
	CustomParameters map[string]string `json:"custom_parameters,omitempty"`
	Timestamp        *time.Time        `json:"timestamp,omitempty"`
	Error            string            `json:"error,omitempty"`
}

func newParseCmd(a *app) *cobra.Command {
	var (
		domain       string
		customScheme string
		required     []string
	)

	cmd := &cobra.Command{
		Use:   "parse <url>",
		Short: "Parse a deep link with the configured rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if domain != "" {
				a.cfg.DeepLinkDomain = domain
			}
			if customScheme != "" {
				a.cfg.DeepLinkCustomScheme = customScheme
			}
			if cmd.Flags().Changed("required") {
				a.cfg.DeepLinkRequiredParams = required
			}
			dlCfg, err := a.cfg.DeepLink()
			if err != nil {
				return fmt.Errorf("deep link configuration: %w", err)
			}

			client, err := sdk.NewConfigured(dlCfg,
				sdk.WithLogger(sdk.NewStdLogger(log.New(cmd.ErrOrStderr(), "", 0))))
			if err != nil {
				return err
			}

			u, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", sdk.ErrInvalidURL, err)
			}
			link, ok, err := client.Parse(u)
			if err != nil {
				return err
			}

			res := parseResult{Handled: ok}
			if ok {
				ts := link.Timestamp
				res.Valid = link.IsValid()
				res.Parameters = link.Parameters
				res.CustomParameters = link.CustomParameters
				res.Timestamp = &ts
				if link.Err != nil {
					res.Error = link.Err.Error()
				}
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&domain, "domain", "", "universal link domain (overrides DEEPLINK_DOMAIN)")
	f.StringVar(&customScheme, "custom-scheme", "", "app custom scheme (overrides DEEPLINK_CUSTOM_SCHEME)")
	f.StringSliceVar(&required, "required", nil, "required query parameters")
	return cmd
}
