package sheet

// Table is a parsed spreadsheet whose headers went through NormalizeHeader.
type Table struct {
	header  []string
	records [][]string
	index   map[string]int
}

// NewTable normalizes header and indexes it. When two headers normalize to
// the same key the leftmost column wins.
func NewTable(header []string, records [][]string) Table {
	t := Table{
		header:  make([]string, len(header)),
		records: records,
		index:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		key := NormalizeHeader(h)
		t.header[i] = key
		if key == "" {
			continue
		}
		if _, ok := t.index[key]; !ok {
			t.index[key] = i
		}
	}
	return t
}

// Header returns the normalized header row.
func (t Table) Header() []string {
	return t.header
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.records)
}

// HasColumn reports whether a normalized column key is present.
func (t Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the cell of row i under column. Missing columns and short
// rows read as "".
func (t Table) Value(i int, column string) string {
	idx, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.records) {
		return ""
	}
	row := t.records[i]
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
