package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/socialpulse-cli/internal/dataset"
)

// ExportOptions controls how a view is written back out.
type ExportOptions struct {
	// IncludeLevel appends the derived Addiction_Level column. Loading such a
	// file drops the column again.
	IncludeLevel bool
	Delimiter    rune
}

// Export writes recs in the schema's source layout so the output can be
// loaded again. A nil schema uses the canonical column order.
func Export(w io.Writer, schema *dataset.Schema, recs []Record, opt ExportOptions) error {
	if !opt.IncludeLevel {
		rows := make([]dataset.Row, len(recs))
		for i, r := range recs {
			rows[i] = r.Row
		}
		return dataset.WriteCSV(w, schema, rows, dataset.Options{Delimiter: opt.Delimiter})
	}
	if schema == nil {
		schema = dataset.DefaultSchema()
	}
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if err := cw.Write(append(schema.Header(), dataset.LevelColumn)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range recs {
		if err := cw.Write(append(schema.Encode(r.Row), string(r.Level))); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
