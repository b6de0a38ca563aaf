package catalog

import (
	"encoding/csv"
	"io"
)

// ExportHeader names a field in exported files. Every name maps back to its
// field when the export is loaded again.
func ExportHeader(f Field) string {
	if f == FieldIdentifier {
		return "Inventární číslo"
	}
	return f.Label()
}

// WriteCSV writes rows of d as a semicolon separated file with a UTF-8 BOM,
// one column per mappable field.
func WriteCSV(w io.Writer, d *Dataset, rows []Row) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	fields := Fields()
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	record := make([]string, len(fields))
	for i, f := range fields {
		record[i] = ExportHeader(f)
	}
	if err := cw.Write(record); err != nil {
		return err
	}

	for _, row := range rows {
		for i, f := range fields {
			record[i] = d.Value(row, f)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
