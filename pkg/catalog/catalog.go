// Package catalog holds the immutable table/column snapshot the agent plans against.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCatalog   = errors.New("catalog has no tables")
	ErrDuplicateTable = errors.New("duplicate table name in catalog")
	ErrOrphanColumn   = errors.New("column references a table missing from the catalog")
)

// HiddenComment marks tables and columns that must never be shown to the model.
const HiddenComment = "hidden"

// Table is one queryable relation. External tables come from a federated
// catalog (e.g. a data lake schema mounted into the warehouse).
type Table struct {
	Name     string `json:"name"`
	Comment  string `json:"comment"`
	External bool   `json:"external,omitempty"`
}

// Column belongs to the table named by TableName.
type Column struct {
	TableName string `json:"table_name"`
	Name      string `json:"column_name"`
	DataType  string `json:"data_type"`
	Comment   string `json:"comment"`
}

// Catalog is built once and only read afterwards; accessors hand out copies
// so it can be shared between concurrent conversations.
type Catalog struct {
	tables    []Table
	columns   []Column
	comment   string
	federated bool
	byName    map[string]int
}

// New validates and freezes a catalog snapshot.
func New(tables []Table, columns []Column, comment string, federated bool) (*Catalog, error) {
	if len(tables) == 0 {
		return nil, ErrEmptyCatalog
	}

	byName := make(map[string]int, len(tables))
	for i, t := range tables {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("table #%d has an empty name", i)
		}
		if _, dup := byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTable, t.Name)
		}
		byName[t.Name] = i
	}

	for _, c := range columns {
		if _, ok := byName[c.TableName]; !ok && !federated {
			return nil, fmt.Errorf("%w: %s.%s", ErrOrphanColumn, c.TableName, c.Name)
		}
	}

	return &Catalog{
		tables:    append([]Table(nil), tables...),
		columns:   append([]Column(nil), columns...),
		comment:   comment,
		federated: federated,
		byName:    byName,
	}, nil
}

func (c *Catalog) Tables() []Table {
	return append([]Table(nil), c.tables...)
}

func (c *Catalog) Columns() []Column {
	return append([]Column(nil), c.columns...)
}

// Comment is the catalog-level (schema) description, possibly empty.
func (c *Catalog) Comment() string { return c.comment }

// Federated reports whether columns may reference tables outside the listing.
func (c *Catalog) Federated() bool { return c.federated }

func (c *Catalog) Len() int { return len(c.tables) }

func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *Catalog) Table(name string) (Table, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Table{}, false
	}
	return c.tables[i], true
}

// Lookup resolves names in the given order, skipping unknown ones.
func (c *Catalog) Lookup(names []string) []Table {
	out := make([]Table, 0, len(names))
	for _, n := range names {
		if t, ok := c.Table(n); ok {
			out = append(out, t)
		}
	}
	return out
}

// ColumnsFor returns the columns of the named tables in catalog order.
// In a federated catalog, a column whose table is not listed is attached to a
// selected external table with the same unqualified name.
func (c *Catalog) ColumnsFor(names []string) []Column {
	selected := make(map[string]bool, len(names))
	external := make(map[string]string)
	for _, n := range names {
		t, ok := c.Table(n)
		if !ok {
			continue
		}
		selected[n] = true
		if t.External {
			external[Unqualified(n)] = n
		}
	}

	var out []Column
	for _, col := range c.columns {
		if selected[col.TableName] {
			out = append(out, col)
			continue
		}
		if !c.federated || c.Has(col.TableName) {
			continue
		}
		if owner, ok := external[Unqualified(col.TableName)]; ok {
			col.TableName = owner
			out = append(out, col)
		}
	}
	return out
}

// Describe is the "name: comment" text used for summaries and embeddings.
func Describe(t Table) string {
	return t.Name + ": " + t.Comment
}

// Summary lists every table as "name: comment", one per line.
func (c *Catalog) Summary() string {
	lines := make([]string, len(c.tables))
	for i, t := range c.tables {
		lines[i] = Describe(t)
	}
	return strings.Join(lines, "\n")
}

// Unqualified strips schema/catalog prefixes and quotes: awsdatacatalog."db".t -> t.
func Unqualified(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.Trim(name, `"[]`+"`")
}

// Visible reports whether an object with this comment may be exposed.
func Visible(comment string) bool {
	return strings.TrimSpace(comment) != HiddenComment
}
