package blob

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
)

// ReadCSV reads and parses a CSV file from the folder. The first record is
// the header. Returns ErrNotFound when the file is absent.
func ReadCSV(ctx context.Context, f Folder, file string) ([][]string, error) {
	data, err := f.Read(ctx, file)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", f.Key(file), err)
	}
	return records, nil
}

// WriteCSV encodes records (header first) and replaces the file.
func WriteCSV(ctx context.Context, f Folder, file string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("encode csv %s: %w", f.Key(file), err)
	}
	return f.Write(ctx, file, buf.Bytes())
}

// HeaderIndex maps column names of a CSV header to their positions.
type HeaderIndex map[string]int

// NewHeaderIndex indexes header.
func NewHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

// Value returns the named column of rec, or "" when the column is absent.
func (h HeaderIndex) Value(rec []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// Has reports whether every column is present.
func (h HeaderIndex) Has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			return false
		}
	}
	return true
}
