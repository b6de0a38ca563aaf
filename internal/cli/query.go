package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/tui"
)

// QueryResult is the JSON output of query.
type QueryResult struct {
	Count int                 `json:"count"`
	Total int                 `json:"total"`
	Rows  []map[string]string `json:"rows"`
}

func newQueryCmd() *cobra.Command {
	var (
		flags     sourceFlags
		req       core.ViewRequest
		format    string
		photosDir string
		photoExt  string
	)

	cmd := &cobra.Command{
		Use:   "query <file|url>",
		Short: "Filter and sort an export and print the result",
		Long: `Filter and sort an export and print the result.

The query matches any cell case-insensitively, the region must match exactly.
Sort fields: inv, name, loc, locDetail, region, year, date, quality, rarity,
condition, size, group, desc.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON, formatCSV); err != nil {
				return err
			}
			if req.Sort != "" {
				if f, ok := catalog.ParseField(req.Sort); !ok || !f.Sortable() {
					return fmt.Errorf("cannot sort by %q", req.Sort)
				}
			}

			d, err := flags.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := catalog.NewPipeline(d).
				WithCriteria(req.Criteria()).
				WithSort(req.SortState())

			w := cmd.OutOrStdout()
			switch format {
			case formatCSV:
				return catalog.WriteCSV(w, d, p.View())
			case formatJSON:
				res := QueryResult{Count: len(p.View()), Total: d.Len(), Rows: make([]map[string]string, 0, len(p.View()))}
				for _, row := range p.View() {
					res.Rows = append(res.Rows, d.Record(row))
				}
				return printJSON(w, res)
			}

			var fields []catalog.Field
			for _, f := range catalog.Columns() {
				if f != catalog.FieldPhoto || req.Photos {
					fields = append(fields, f)
				}
			}
			rows := make([][]string, 0, len(p.View()))
			for _, row := range p.View() {
				cells := make([]string, len(fields))
				for i, f := range fields {
					if f == catalog.FieldPhoto {
						if id := d.Value(row, catalog.FieldIdentifier); id != "" {
							cells[i] = filepath.Join(photosDir, id+photoExt)
						}
						continue
					}
					cells[i] = d.Value(row, f)
				}
				rows = append(rows, cells)
			}
			if err := printTable(w, tui.Headers(fields, p.Sort()), rows); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "Zobrazeno %d z %d\n", len(p.View()), d.Len())
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "text to search for")
	cmd.Flags().StringVarP(&req.Region, "region", "r", "", "exact region")
	cmd.Flags().StringVarP(&req.Sort, "sort", "s", "", "field to sort by")
	cmd.Flags().StringVar(&req.Dir, "dir", "asc", "sort direction: asc or desc")
	cmd.Flags().BoolVar(&req.Photos, "photos", false, "include the photo path column")
	cmd.Flags().StringVar(&photosDir, "photos-dir", "", "directory of the photos")
	cmd.Flags().StringVar(&photoExt, "photo-ext", ".jpg", "photo file extension")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or csv")
	return cmd
}
