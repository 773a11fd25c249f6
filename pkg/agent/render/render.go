// Package render turns a catalog subset into the schema text shown to the model.
package render

import (
	"strings"

	"ai-sqlagent-be/pkg/catalog"
)

// NoTables is rendered in place of an empty schema block.
const NoTables = "No tables available."

// Render emits, per table in input order, its name, description and the
// columns whose TableName equals the table name. It does no I/O.
func Render(tables []catalog.Table, columns []catalog.Column) string {
	if len(tables) == 0 {
		return NoTables
	}

	byTable := make(map[string][]catalog.Column, len(tables))
	for _, c := range columns {
		byTable[c.TableName] = append(byTable[c.TableName], c)
	}

	var b strings.Builder
	for _, t := range tables {
		b.WriteString("Table: ")
		b.WriteString(t.Name)
		b.WriteString("\nDescription: ")
		b.WriteString(strings.TrimSpace(t.Comment))
		b.WriteString("\nColumns:\n")
		for _, c := range byTable[t.Name] {
			b.WriteString("- ")
			b.WriteString(c.Name)
			if comment := strings.TrimSpace(c.Comment); comment != "" {
				b.WriteString(" / ")
				b.WriteString(comment)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Catalog renders the named tables of cat, resolving columns the same way
// the catalog does for federated sources.
func Catalog(cat *catalog.Catalog, names []string) string {
	return Render(cat.Lookup(names), cat.ColumnsFor(names))
}
