package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"gopkg.in/yaml.v3"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all links as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			links, err := repo.Dump(cmd.Context())
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if output == "" {
				return encodeLinks(cmd.OutOrStdout(), format, links)
			}
			if !cmd.Flags().Changed("format") {
				format = formatFromPath(output)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			return writeLinks(f, format, links)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load links from a JSON or YAML export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			if format == "" {
				format = formatFromPath(file)
			}
			links, err := decodeLinks(f, format)
			if err != nil {
				return fmt.Errorf("decode failed: %w", err)
			}

			repo, err := a.repository()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			count := 0
			for i := range links {
				l := &links[i]
				if l.ID == "" {
					log.Printf("Skipping link without id (%s)", l.OriginalURL)
					continue
				}
				exists, err := repo.Exists(ctx, l.ID)
				if err != nil {
					return err
				}
				if exists {
					log.Printf("Skipping existing code: %s", l.ID)
					continue
				}
				l.ApplyDefaults()
				if err := repo.Set(ctx, l); err != nil {
					log.Printf("Failed to import %s: %v", l.ID, err)
					continue
				}
				count++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d links\n", count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or YAML file to import")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default: from file extension)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// writeLinks encodes links into wc and closes it, returning the close error
func writeLinks(wc io.WriteCloser, format string, links []domain.Link) error {
	if err := encodeLinks(wc, format, links); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	return nil
}

func encodeLinks(w io.Writer, format string, links []domain.Link) error {
	switch format {
	case "json":
		return printJSON(w, links)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(links); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

func decodeLinks(r io.Reader, format string) ([]domain.Link, error) {
	var links []domain.Link
	switch format {
	case "json":
		err := json.NewDecoder(r).Decode(&links)
		return links, err
	case "yaml":
		err := yaml.NewDecoder(r).Decode(&links)
		return links, err
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
