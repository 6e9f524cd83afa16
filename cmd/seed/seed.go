// Package seed implements the command that imports file templates into SQLite
package seed

import (
	"context"
	"fmt"
	"io"

	"fjacquet/sie-report/cmd/root"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/sqlstore"
	"fjacquet/sie-report/internal/store"
	"fjacquet/sie-report/internal/validation"

	"github.com/spf13/cobra"
)

// Options are the seed command flags.
type Options struct {
	From     string
	Database string
}

var flags Options

// Cmd represents the seed command
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Import YAML/CSV templates into the SQLite database",
	Long: `Import row templates, global constants and account descriptions from a
template directory into the SQLite database, replacing the stored templates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := flags
		cfg := root.Config()
		if opts.From == "" {
			opts.From = cfg.Templates.Directory
		}
		if opts.Database == "" {
			opts.Database = cfg.Database.Path
		}
		return Run(cmd.Context(), opts, root.Log, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.From, "from", "", "Template directory (default from config)")
	Cmd.Flags().StringVar(&flags.Database, "db", "", "SQLite database path (default from config)")
}

// Run seeds the database at opts.Database from the directory opts.From.
func Run(ctx context.Context, opts Options, logger logging.Logger, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.From == "" || opts.Database == "" {
		return fmt.Errorf("template directory and database path are required")
	}
	if err := validation.IsValidPath(opts.From); err != nil {
		return err
	}

	db, err := sqlstore.Open(opts.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	summary, err := db.Seed(ctx, store.NewFileStore(opts.From, logger))
	if err != nil {
		return fmt.Errorf("error seeding database: %w", err)
	}

	for _, section := range models.Sections {
		if _, err := fmt.Fprintf(stdout, "%s: %d rows\n", section, summary.Templates[section]); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(stdout, "constants: %d\ndescriptions: %d\n", summary.Constants, summary.Descriptions)
	return err
}
