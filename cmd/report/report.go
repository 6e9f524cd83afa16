// Package report implements the report command
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/sie-report/cmd/common"
	"fjacquet/sie-report/cmd/root"
	"fjacquet/sie-report/internal/container"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/validation"

	"github.com/spf13/cobra"
)

// Options are the report command flags.
type Options struct {
	Input     string
	Output    string
	Format    string
	Sections  string
	NoPersist bool
}

var flags Options

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Build RR, BR and INK2 from a ledger export",
	Long: `Build the income statement, balance sheet and INK2 schedule from a SIE
ledger export and write them as JSON or CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags.Input = root.SharedFlags.Input
		flags.Output = root.SharedFlags.Output
		if flags.NoPersist {
			root.Config().Database.Persist = false
		}
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, flags, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&flags.Format, "format", "f", "", "Output format: json or csv (default from config)")
	Cmd.Flags().StringVarP(&flags.Sections, "section", "s", "all", "Sections to output: rr, br, ink2 or all")
	Cmd.Flags().BoolVar(&flags.NoPersist, "no-persist", false, "Do not store report rows")
}

// Run builds the report and writes it to opts.Output or stdout.
func Run(ctx context.Context, c *container.Container, opts Options, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := c.GetLogger()
	if opts.Input == "" {
		return fmt.Errorf("input file is required (--input)")
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = c.GetConfig().Output.Format
	}
	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}
	sections, err := common.ParseSections(opts.Sections)
	if err != nil {
		return err
	}

	log.Info("Building report",
		logging.F(logging.FieldFile, opts.Input),
		logging.F(logging.FieldOutputFormat, format))

	doc, err := c.GetEngine().BuildFile(ctx, opts.Input, nil)
	if err != nil {
		return fmt.Errorf("error building report: %w", err)
	}

	data, err := c.GetGenerator().Generate(doc.Only(sections...), format)
	if err != nil {
		return err
	}
	return common.WriteOutput(data, opts.Output, stdout, log)
}
