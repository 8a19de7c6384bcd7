package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options controls how a source is read and written.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension (',' or '\t').
	Delimiter rune
}

// Load reads a CSV/TSV file into a Dataset.
func Load(path string, opt Options) (*Dataset, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataSourceError{Source: name, Reason: "open", Err: err}
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return Read(f, name, opt)
}

// Read parses delimited text with a header row into a Dataset. Header names
// are matched case-insensitively; unknown columns are carried through as extras
// and a derived Addiction_Level column is dropped.
func Read(src io.Reader, name string, opt Options) (*Dataset, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataSourceError{Source: name, Reason: "empty source, no header row"}
		}
		return nil, &DataSourceError{Source: name, Reason: "read header", Err: err}
	}
	schema, roles, err := buildSchema(header)
	if err != nil {
		return nil, &DataSourceError{Source: name, Reason: err.Error()}
	}

	var rows []Row
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataSourceError{Source: name, Reason: fmt.Sprintf("read row %d", line), Err: err}
		}
		line++
		if isBlank(rec) {
			continue
		}
		row, err := decodeRow(rec, roles, len(schema.extras))
		if err != nil {
			return nil, &DataSourceError{Source: name, Reason: fmt.Sprintf("line %d", line), Err: err}
		}
		rows = append(rows, row)
	}
	return New(name, schema, rows)
}

// role describes what a source column maps to.
type role struct {
	required int // index into columns, or -1
	extra    int // index into Row.Extra, or -1
}

func buildSchema(header []string) (*Schema, []role, error) {
	want := make(map[string]int, len(columns))
	for i, c := range columns {
		want[strings.ToLower(c.name)] = i
	}
	s := &Schema{required: make([]int, len(columns))}
	for i := range s.required {
		s.required[i] = -1
	}
	roles := make([]role, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		key := strings.ToLower(name)
		roles[i] = role{required: -1, extra: -1}
		if key == strings.ToLower(LevelColumn) {
			continue
		}
		if name == "" {
			return nil, nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		pos := len(s.header)
		s.header = append(s.header, name)
		if idx, ok := want[key]; ok {
			if s.required[idx] >= 0 {
				return nil, nil, fmt.Errorf("duplicate column %s", columns[idx].name)
			}
			s.required[idx] = pos
			roles[i].required = idx
			continue
		}
		roles[i].extra = len(s.extras)
		s.extras = append(s.extras, pos)
	}
	var missing []string
	for i, p := range s.required {
		if p < 0 {
			missing = append(missing, columns[i].name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return s, roles, nil
}

func decodeRow(rec []string, roles []role, nextra int) (Row, error) {
	var row Row
	if nextra > 0 {
		row.Extra = make([]string, nextra)
	}
	for i, ro := range roles {
		v := ""
		if i < len(rec) {
			v = strings.TrimSpace(rec[i])
		}
		switch {
		case ro.required >= 0:
			if v == "" {
				return Row{}, fmt.Errorf("%s: missing value", columns[ro.required].name)
			}
			if err := columns[ro.required].parse(&row, v); err != nil {
				return Row{}, fmt.Errorf("%s: %w", columns[ro.required].name, err)
			}
		case ro.extra >= 0:
			row.Extra[ro.extra] = v
		}
	}
	return row, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// WriteCSV writes rows in the schema's source layout, header first.
func WriteCSV(w io.Writer, schema *Schema, rows []Row, opt Options) error {
	if schema == nil {
		schema = DefaultSchema()
	}
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if err := cw.Write(schema.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(schema.Encode(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
