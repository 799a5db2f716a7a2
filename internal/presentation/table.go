package presentation

import (
	"io"

	"github.com/spf13/cast"

	"github.com/deppfellow/cla-admin/internal/database"
)

// Table renders records as an HTML table. Columns default to the columns
// of the first record.
type Table struct {
	Columns   []string
	Records   []database.Record
	Class     string
	EmptyText string

	out *Output
}

// NewTable binds records to out for rendering.
func (o *Output) NewTable(records []database.Record) *Table {
	return &Table{Records: records, out: o}
}

// SetData replaces the records.
func (t *Table) SetData(records []database.Record) {
	t.Records = records
}

func (t *Table) Render(w io.Writer) error {
	return t.out.Table(w, t)
}

type tableView struct {
	Class     string
	EmptyText string
	Columns   []string
	Rows      [][]string
}

func (t *Table) view() tableView {
	columns := t.Columns
	if len(columns) == 0 && len(t.Records) > 0 {
		columns = t.Records[0].Columns()
	}

	rows := make([][]string, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cast.ToString(rec.Value(col))
		}
		rows = append(rows, row)
	}

	return tableView{
		Class:     t.Class,
		EmptyText: t.EmptyText,
		Columns:   columns,
		Rows:      rows,
	}
}
