package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/shortcode"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/services"
	"gopkg.in/yaml.v3"
)

type createOptions struct {
	url        string
	customPath string
	rulesFile  string

	iosUniversal   string
	iosScheme      string
	appStoreID     string
	androidAppLink string
	androidScheme  string
	packageName    string
}

func newCreateCmd(a *app) *cobra.Command {
	var o createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dynamic link",
		Example: `  dynlink create --url https://example.com/promo --custom promo \
    --ios-universal https://app.example.com/promo --package com.example.app \
    --rules rules.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CreateLinkRequest{
				OriginalURL: o.url,
				CustomPath:  o.customPath,
			}
			if o.iosUniversal != "" || o.iosScheme != "" || o.appStoreID != "" {
				req.DeepLinkConfig.IOS = &domain.IOSConfig{
					UniversalLink: o.iosUniversal,
					CustomScheme:  o.iosScheme,
					AppStoreID:    o.appStoreID,
				}
			}
			if o.androidAppLink != "" || o.androidScheme != "" || o.packageName != "" {
				req.DeepLinkConfig.Android = &domain.AndroidConfig{
					AppLink:      o.androidAppLink,
					CustomScheme: o.androidScheme,
					PackageName:  o.packageName,
				}
			}
			if o.rulesFile != "" {
				rules, err := readRules(o.rulesFile)
				if err != nil {
					return err
				}
				req.RedirectRules = rules
			}

			repo, err := a.repository()
			if err != nil {
				return err
			}
			service := services.NewLinkService(repo, shortcode.NewGenerator(shortcode.DefaultLength))
			link, err := service.Shorten(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Code: %s\n", link.ID)
			fmt.Fprintf(out, "URL: %s/%s\n", strings.TrimRight(a.cfg.BaseURL, "/"), link.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.url, "url", "u", "", "destination URL")
	f.StringVar(&o.customPath, "custom", "", "custom short code")
	f.StringVar(&o.rulesFile, "rules", "", "YAML file with a list of redirect rules")
	f.StringVar(&o.iosUniversal, "ios-universal", "", "iOS universal link")
	f.StringVar(&o.iosScheme, "ios-scheme", "", "iOS custom scheme URL")
	f.StringVar(&o.appStoreID, "app-store-id", "", "App Store id")
	f.StringVar(&o.androidAppLink, "android-app-link", "", "Android app link")
	f.StringVar(&o.androidScheme, "android-scheme", "", "Android custom scheme URL")
	f.StringVar(&o.packageName, "package", "", "Android package name")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func readRules(path string) ([]domain.RedirectRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []domain.RedirectRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rules, nil
}
