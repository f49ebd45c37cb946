package entity

import "sort"

// Table is an immutable code-indexed view of the reference data.
type Table struct {
	byCode map[string]Instrument
	codes  []string
}

// NewTable indexes instruments by Code. Later duplicates replace earlier ones;
// instruments without a code are skipped.
func NewTable(instruments []Instrument) *Table {
	t := &Table{byCode: make(map[string]Instrument, len(instruments))}
	for _, in := range instruments {
		if in.Code == "" {
			continue
		}
		t.byCode[in.Code] = in
	}
	t.codes = make([]string, 0, len(t.byCode))
	for c := range t.byCode {
		t.codes = append(t.codes, c)
	}
	sort.Strings(t.codes)
	return t
}

// Lookup returns the instrument for code.
func (t *Table) Lookup(code string) (Instrument, bool) {
	if t == nil {
		return Instrument{}, false
	}
	in, ok := t.byCode[code]
	return in, ok
}

// Instruments returns every instrument ordered by code.
func (t *Table) Instruments() []Instrument {
	if t == nil {
		return nil
	}
	out := make([]Instrument, 0, len(t.codes))
	for _, c := range t.codes {
		out = append(out, t.byCode[c])
	}
	return out
}

// Len returns the number of instruments.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.codes)
}
