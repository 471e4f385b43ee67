package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/config"
)

// app holds what the subcommands share. The repository is opened on first use
// so commands like parse work without a database.
type app struct {
	dbURL string
	cfg   *config.Config
	repo  *sqlite.SQLiteRepository
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "dynlink",
		Short:        "Manage dynamic links and inspect deep links",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.dbURL != "" {
				a.cfg.DatabaseURL = a.dbURL
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.repo != nil {
				return a.repo.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.dbURL, "db", "", "database URL (overrides DATABASE_URL)")

	root.AddCommand(
		newCreateCmd(a),
		newStatsCmd(a),
		newResolveCmd(a),
		newParseCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) repository() (*sqlite.SQLiteRepository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	repo, err := sqlite.NewSQLiteRepository(a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.repo = repo
	return repo, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
