package table

import (
	"strconv"
	"strings"
)

// Column describes one column of a TableModel. UCD/Utype/Xtype carry the
// VO metadata tags used to locate columns without relying on names.
type Column struct {
	Name      string `json:"name"`
	UCD       string `json:"ucd,omitempty"`
	Utype     string `json:"utype,omitempty"`
	Xtype     string `json:"xtype,omitempty"`
	Type      string `json:"type,omitempty"`
	Units     string `json:"units,omitempty"`
	ArraySize string `json:"arraySize,omitempty"`
}

// SerDefParam is one declared parameter of a service descriptor.
// Value is the declared default, Ref binds the parameter to a column of
// the source table that produced the descriptor.
type SerDefParam struct {
	Name          string `json:"name"`
	Value         string `json:"value,omitempty"`
	Ref           string `json:"ref,omitempty"`
	ColName       string `json:"colName,omitempty"`
	UCD           string `json:"ucd,omitempty"`
	Utype         string `json:"utype,omitempty"`
	Xtype         string `json:"xtype,omitempty"`
	Units         string `json:"units,omitempty"`
	InputRequired bool   `json:"inputRequired,omitempty"`
	AllowsInput   bool   `json:"allowsInput,omitempty"`
}

// ServiceDescriptor is a VO service-descriptor resource block attached to
// a table. Ref-bound params resolve against a row of Source; the caller
// names the row when building the access URL.
type ServiceDescriptor struct {
	ID         string        `json:"id"`
	Title      string        `json:"title,omitempty"`
	AccessURL  string        `json:"accessURL"`
	StandardID string        `json:"standardID,omitempty"`
	Utype      string        `json:"utype,omitempty"`
	Params     []SerDefParam `json:"params,omitempty"`

	Source *TableModel `json:"-"`
}

// TableModel is the in-memory tabular unit exchanged with the table
// subsystem: a source (ObsCore) table or a fetched DataLink table.
// Cells are strings, as delivered by the table server.
type TableModel struct {
	ID             string              `json:"tbl_id"`
	Title          string              `json:"title,omitempty"`
	Columns        []Column            `json:"columns"`
	Rows           [][]string          `json:"rows"`
	Meta           map[string]string   `json:"meta,omitempty"`
	Descriptors    []ServiceDescriptor `json:"serviceDescriptors,omitempty"`
	HighlightedRow int                 `json:"highlightedRow,omitempty"`
}

// NRows returns the number of data rows.
func (t *TableModel) NRows() int { return len(t.Rows) }

// ColumnIndex returns the index of the named column, case-insensitive,
// or -1 when the column does not exist.
func (t *TableModel) ColumnIndex(name string) int {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return i
		}
	}
	return -1
}

// ColumnByUCD returns the first column whose UCD contains the given
// token, case-insensitive, or nil.
func (t *TableModel) ColumnByUCD(ucd string) *Column {
	ucd = strings.ToLower(ucd)
	for i := range t.Columns {
		if strings.Contains(strings.ToLower(t.Columns[i].UCD), ucd) {
			return &t.Columns[i]
		}
	}
	return nil
}

// Cell returns the raw cell value for a row and column name. The second
// return is false when the row or column does not exist.
func (t *TableModel) Cell(row int, col string) (string, bool) {
	idx := t.ColumnIndex(col)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	r := t.Rows[row]
	if idx >= len(r) {
		return "", false
	}
	return r[idx], true
}

// CellString is Cell with a default of "".
func (t *TableModel) CellString(row int, col string) string {
	v, _ := t.Cell(row, col)
	return v
}

// CellInt64 parses the cell as an integer; def is returned when the cell
// is missing or not a number.
func (t *TableModel) CellInt64(row int, col string, def int64) int64 {
	v, ok := t.Cell(row, col)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		// some services write sizes as floats
		f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if ferr != nil {
			return def
		}
		return int64(f)
	}
	return n
}

// CellFloat parses the cell as a float; def is returned when the cell is
// missing or not a number.
func (t *TableModel) CellFloat(row int, col string, def float64) float64 {
	v, ok := t.Cell(row, col)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// DescriptorByID resolves a service_def reference against the table's
// descriptor blocks. The leading '#' of an internal reference is ignored.
func (t *TableModel) DescriptorByID(id string) *ServiceDescriptor {
	id = strings.TrimPrefix(strings.TrimSpace(id), "#")
	if id == "" {
		return nil
	}
	for i := range t.Descriptors {
		if strings.TrimPrefix(t.Descriptors[i].ID, "#") == id {
			return &t.Descriptors[i]
		}
	}
	return nil
}
