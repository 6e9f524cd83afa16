// Package stored implements the command that reads persisted report rows
package stored

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"fjacquet/sie-report/cmd/common"
	"fjacquet/sie-report/cmd/root"
	icommon "fjacquet/sie-report/internal/common"
	"fjacquet/sie-report/internal/container"
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Options are the stored command flags.
type Options struct {
	Output  string
	Company string
	Year    int
	List    bool
}

var flags Options

// Cmd represents the stored command
var Cmd = &cobra.Command{
	Use:   "stored",
	Short: "Show persisted report rows",
	Long:  `Show the report rows persisted for a company and fiscal year, or list every stored report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags.Output = root.SharedFlags.Output
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, flags, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.Company, "company", "", "Organization number")
	Cmd.Flags().IntVar(&flags.Year, "year", 0, "Fiscal year")
	Cmd.Flags().BoolVar(&flags.List, "list", false, "List stored reports")
}

// storedSection is one section of persisted rows, in variable order.
type storedSection struct {
	Section models.Section `json:"report_type"`
	Rows    []storedRow    `json:"rows"`
}

type storedRow struct {
	Variable string `json:"variable_name"`
	Amount   string `json:"amount"`
}

// Run writes the stored rows, or the list of stored reports, as JSON.
func Run(ctx context.Context, c *container.Container, opts Options, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var payload interface{}
	if opts.List {
		reports, err := c.GetEngine().StoredReports(ctx)
		if err != nil {
			return err
		}
		payload = reports
	} else {
		if opts.Company == "" || opts.Year == 0 {
			return fmt.Errorf("--company and --year are required unless --list is given")
		}
		rows, err := c.GetEngine().StoredRows(ctx, opts.Company, opts.Year)
		if err != nil {
			return err
		}
		payload = toSections(rows)
	}

	var buf bytes.Buffer
	if err := icommon.WriteJSON(&buf, payload); err != nil {
		return err
	}
	return common.WriteOutput(buf.Bytes(), opts.Output, stdout, c.GetLogger())
}

// toSections orders sections in build order and rows by variable name.
func toSections(rows map[models.Section]map[string]decimal.Decimal) []storedSection {
	out := []storedSection{}
	for _, section := range models.Sections {
		values, ok := rows[section]
		if !ok {
			continue
		}
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		s := storedSection{Section: section, Rows: make([]storedRow, 0, len(names))}
		for _, name := range names {
			v := values[name]
			s.Rows = append(s.Rows, storedRow{Variable: name, Amount: icommon.FormatAmount(&v)})
		}
		out = append(out, s)
	}
	return out
}
