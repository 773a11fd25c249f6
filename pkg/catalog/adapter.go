package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Adapter introspects one backing schema. Implementations return empty
// strings, never nulls, for missing comments.
type Adapter interface {
	ListTables(ctx context.Context) ([]Table, error)
	ListColumns(ctx context.Context) ([]Column, error)
	SchemaComment(ctx context.Context) (string, error)
}

// Load snapshots every adapter into one catalog. More than one adapter, or
// any external table, makes the catalog federated.
func Load(ctx context.Context, adapters ...Adapter) (*Catalog, error) {
	var (
		tables    []Table
		columns   []Column
		comments  []string
		federated = len(adapters) > 1
	)

	for i, a := range adapters {
		ts, err := a.ListTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tables (adapter %d): %w", i, err)
		}
		cs, err := a.ListColumns(ctx)
		if err != nil {
			return nil, fmt.Errorf("list columns (adapter %d): %w", i, err)
		}
		comment, err := a.SchemaComment(ctx)
		if err != nil {
			return nil, fmt.Errorf("schema comment (adapter %d): %w", i, err)
		}

		hidden := make(map[string]bool)
		for _, t := range ts {
			if !Visible(t.Comment) {
				hidden[t.Name] = true
				continue
			}
			if t.External {
				federated = true
			}
			tables = append(tables, t)
		}
		for _, c := range cs {
			if hidden[c.TableName] || !Visible(c.Comment) {
				continue
			}
			columns = append(columns, c)
		}
		if s := strings.TrimSpace(comment); s != "" {
			comments = append(comments, s)
		}
	}

	return New(tables, columns, strings.Join(comments, "\n"), federated)
}

// Static is an in-memory Adapter, handy for fixtures and for catalogs
// described in configuration files.
type Static struct {
	TableList  []Table
	ColumnList []Column
	Comment    string
}

func (s Static) ListTables(context.Context) ([]Table, error)   { return s.TableList, nil }
func (s Static) ListColumns(context.Context) ([]Column, error) { return s.ColumnList, nil }
func (s Static) SchemaComment(context.Context) (string, error) { return s.Comment, nil }
