package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mineraly/internal/catalog"
)

// ColumnInfo is one field binding in inspect output.
type ColumnInfo struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Index  int    `json:"index"`
	Header string `json:"header,omitempty"`
}

// Inspection summarizes how an export was read.
type Inspection struct {
	Source    string       `json:"source"`
	Delimiter string       `json:"delimiter"`
	Rows      int          `json:"rows"`
	Columns   []ColumnInfo `json:"columns"`
	Regions   []string     `json:"regions"`
}

func inspect(name string, d *catalog.Dataset) Inspection {
	out := Inspection{
		Source:    name,
		Delimiter: d.Delimiter(),
		Rows:      d.Len(),
		Regions:   d.Regions(),
	}
	for _, f := range catalog.Fields() {
		out.Columns = append(out.Columns, ColumnInfo{
			Field:  f.String(),
			Label:  f.Label(),
			Index:  d.Columns().Index(f),
			Header: d.Header(f),
		})
	}
	return out
}

func newInspectCmd() *cobra.Command {
	var flags sourceFlags
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <file|url>",
		Short: "Show how the columns of an export are recognized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON); err != nil {
				return err
			}
			d, err := flags.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			info := inspect(args[0], d)

			w := cmd.OutOrStdout()
			if format == formatJSON {
				return printJSON(w, info)
			}

			fmt.Fprintf(w, "Zdroj:      %s\n", info.Source)
			fmt.Fprintf(w, "Oddělovač:  %q\n", info.Delimiter)
			fmt.Fprintf(w, "Záznamů:    %d\n", info.Rows)
			fmt.Fprintf(w, "Regiony:    %s\n", strings.Join(info.Regions, ", "))

			rows := make([][]string, 0, len(info.Columns))
			for _, c := range info.Columns {
				index := "-"
				if c.Index != catalog.Unmapped {
					index = strconv.Itoa(c.Index + 1)
				}
				rows = append(rows, []string{c.Field, c.Label, index, c.Header})
			}
			return printTable(w, []string{"Pole", "Popisek", "Sloupec", "Hlavička"}, rows)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}
