package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// InsertBuilder renders a multi-row INSERT with numbered ($n) placeholders.
type InsertBuilder struct {
	table    string
	columns  []string
	rows     [][]any
	conflict *Conflict
	suffix   string
}

// Conflict renders an ON CONFLICT clause. With neither Excluded nor Set it renders
// DO NOTHING.
type Conflict struct {
	Target []string
	// Excluded columns take the value of the proposed row.
	Excluded []string
	// Set holds literal assignments such as "ingested_at = NOW()".
	Set []string
	// ChangedOnly skips the update unless one of these columns differs from the
	// proposed row.
	ChangedOnly []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values appends one row.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) OnConflict(conflict Conflict) *InsertBuilder {
	b.conflict = &conflict
	return b
}

// Suffix is appended verbatim after the conflict clause, e.g. RETURNING id.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	args := make([]any, 0, len(b.rows)*len(b.columns))
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			args = append(args, value)
			buf.WriteString(placeholder(len(args)))
		}
		buf.WriteString(")")
	}

	if b.conflict != nil {
		clause, err := b.conflict.render(b.table)
		if err != nil {
			return "", nil, err
		}
		buf.WriteString(" ")
		buf.WriteString(clause)
	}
	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), args, nil
}

func (c Conflict) render(table string) (string, error) {
	var buf strings.Builder
	buf.WriteString("ON CONFLICT")
	if len(c.Target) > 0 {
		buf.WriteString(" (")
		buf.WriteString(strings.Join(c.Target, ", "))
		buf.WriteString(")")
	}

	assignments := make([]string, 0, len(c.Excluded)+len(c.Set))
	for _, col := range c.Excluded {
		assignments = append(assignments, col+" = EXCLUDED."+col)
	}
	assignments = append(assignments, c.Set...)
	if len(assignments) == 0 {
		buf.WriteString(" DO NOTHING")
		return buf.String(), nil
	}
	if len(c.Target) == 0 {
		return "", fmt.Errorf("conflict target is required for DO UPDATE")
	}

	buf.WriteString(" DO UPDATE SET ")
	buf.WriteString(strings.Join(assignments, ", "))

	if len(c.ChangedOnly) > 0 {
		conditions := make([]string, 0, len(c.ChangedOnly))
		for _, col := range c.ChangedOnly {
			conditions = append(conditions, table+"."+col+" IS DISTINCT FROM EXCLUDED."+col)
		}
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(conditions, " OR "))
	}
	return buf.String(), nil
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}
