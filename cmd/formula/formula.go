// Package formula implements the formula editing command
package formula

import (
	"context"
	"fmt"
	"io"

	"fjacquet/sie-report/cmd/root"
	"fjacquet/sie-report/internal/container"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"

	"github.com/spf13/cobra"
)

// Options are the formula command flags.
type Options struct {
	Section string
	RowID   int
	Formula string
}

var flags Options

// Cmd represents the formula command
var Cmd = &cobra.Command{
	Use:   "formula",
	Short: "Replace the calculation formula of a template row",
	Long: `Replace the calculation formula of one template row and mark the row as
calculated. The formula is validated before it is stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, flags, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.Section, "section", "", "Section: rr, br or ink2")
	Cmd.Flags().IntVar(&flags.RowID, "row", 0, "Row id")
	Cmd.Flags().StringVar(&flags.Formula, "formula", "", "New calculation formula")
	_ = Cmd.MarkFlagRequired("section")
	_ = Cmd.MarkFlagRequired("row")
	_ = Cmd.MarkFlagRequired("formula")
}

// Run stores the formula.
func Run(ctx context.Context, c *container.Container, opts Options, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	section, err := models.ParseSection(opts.Section)
	if err != nil {
		return err
	}
	if err := c.GetEngine().UpdateFormula(ctx, section, opts.RowID, opts.Formula); err != nil {
		return fmt.Errorf("error updating formula: %w", err)
	}
	c.GetLogger().Info("Formula updated",
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldRowID, opts.RowID),
		logging.F(logging.FieldFormula, opts.Formula))
	_, err = fmt.Fprintf(stdout, "%s row %d: %s\n", section, opts.RowID, opts.Formula)
	return err
}
