// Package patch builds single-row UPDATE statements from an explicit, ordered set of columns.
//
// Statements use "?" placeholders; the store gateway rebinds them for its dialect. The SET
// clause and the bound arguments are produced from the same slice walk, so the n-th
// placeholder always binds the n-th value.
package patch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Field is one column assignment or one equality constraint.
type Field struct {
	Column string
	Value  any
}

// Fields is an insertion-ordered column→value list.
type Fields []Field

// Set appends column, or overwrites its value in place when already present.
func (f *Fields) Set(column string, v any) {
	for i := range *f {
		if (*f)[i].Column == column {
			(*f)[i].Value = v
			return
		}
	}
	*f = append(*f, Field{Column: column, Value: v})
}

// Get returns the value stored for column.
func (f Fields) Get(column string) (any, bool) {
	for _, fd := range f {
		if fd.Column == column {
			return fd.Value, true
		}
	}
	return nil, false
}

// Without returns a copy of f with column removed.
func (f Fields) Without(column string) Fields {
	out := make(Fields, 0, len(f))
	for _, fd := range f {
		if fd.Column != column {
			out = append(out, fd)
		}
	}
	return out
}

func (f Fields) Columns() []string {
	cols := make([]string, len(f))
	for i, fd := range f {
		cols[i] = fd.Column
	}
	return cols
}

// Table names a table and the columns an UPDATE should hand back.
type Table struct {
	Name      string
	Returning []string
}

// Statement is SQL text plus the arguments bound to its placeholders, in order.
type Statement struct {
	SQL  string
	Args []any
}

// Build produces
//
//	UPDATE <table> SET c1 = ?, c2 = ? WHERE id = ? [AND a1 = ? ...] RETURNING ...
//
// An empty fields list fails with an InvalidPatch error and produces no statement.
func Build(t Table, fields Fields, id int64, scope Fields) (Statement, error) {
	if len(fields) == 0 {
		return Statement{}, apperr.InvalidPatch("no valid fields provided for update")
	}
	if err := checkIdent(t.Name); err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	args := make([]any, 0, len(fields)+1+len(scope))
	seen := make(map[string]struct{}, len(fields))

	sb.WriteString("UPDATE ")
	sb.WriteString(t.Name)
	sb.WriteString(" SET ")
	for i, fd := range fields {
		if err := checkIdent(fd.Column); err != nil {
			return Statement{}, err
		}
		if _, dup := seen[fd.Column]; dup {
			return Statement{}, apperr.InvalidPatch(fmt.Sprintf("column %q supplied twice", fd.Column))
		}
		seen[fd.Column] = struct{}{}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fd.Column)
		sb.WriteString(" = ?")
		args = append(args, fd.Value)
	}

	sb.WriteString(" WHERE id = ?")
	args = append(args, id)
	for _, sc := range scope {
		if err := checkIdent(sc.Column); err != nil {
			return Statement{}, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(sc.Column)
		sb.WriteString(" = ?")
		args = append(args, sc.Value)
	}

	if len(t.Returning) > 0 {
		for _, c := range t.Returning {
			if err := checkIdent(c); err != nil {
				return Statement{}, err
			}
		}
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(t.Returning, ", "))
	}
	return Statement{SQL: sb.String(), Args: args}, nil
}

func checkIdent(s string) error {
	if !identRe.MatchString(s) {
		return apperr.InvalidPatch(fmt.Sprintf("invalid identifier %q", s))
	}
	return nil
}
