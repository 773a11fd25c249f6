// Package sqlite reads the catalog of a SQLite database.
//
// SQLite has no COMMENT ON, so descriptions come from an optional side table:
//
//	CREATE TABLE catalog_comments (table_name TEXT, column_name TEXT, comment TEXT);
//
// An empty column_name describes the table itself; a row with both names
// empty describes the whole schema.
package sqlite

import (
	"context"
	"fmt"

	"ai-sqlagent-be/pkg/catalog"

	"gorm.io/gorm"
)

const DefaultCommentsTable = "catalog_comments"

type Adapter struct {
	db            *gorm.DB
	commentsTable string
}

// NewAdapter reads descriptions from commentsTable when it exists; pass ""
// to use DefaultCommentsTable.
func NewAdapter(db *gorm.DB, commentsTable string) *Adapter {
	if commentsTable == "" {
		commentsTable = DefaultCommentsTable
	}
	return &Adapter{db: db, commentsTable: commentsTable}
}

type commentRow struct {
	TableName  string
	ColumnName string
	Comment    string
}

func (a *Adapter) comments(ctx context.Context) (map[[2]string]string, error) {
	out := make(map[[2]string]string)
	if !a.db.WithContext(ctx).Migrator().HasTable(a.commentsTable) {
		return out, nil
	}
	var rows []commentRow
	err := a.db.WithContext(ctx).
		Table(a.commentsTable).
		Select("COALESCE(table_name, '') AS table_name, COALESCE(column_name, '') AS column_name, COALESCE(comment, '') AS comment").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.commentsTable, err)
	}
	for _, r := range rows {
		out[[2]string{r.TableName, r.ColumnName}] = r.Comment
	}
	return out, nil
}

func (a *Adapter) ListTables(ctx context.Context) ([]catalog.Table, error) {
	var names []string
	err := a.db.WithContext(ctx).
		Raw(`SELECT name FROM sqlite_master
			WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite\_%' ESCAPE '\' AND name <> ?
			ORDER BY name`, a.commentsTable).
		Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	comments, err := a.comments(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]catalog.Table, 0, len(names))
	for _, n := range names {
		tables = append(tables, catalog.Table{Name: n, Comment: comments[[2]string{n, ""}]})
	}
	return tables, nil
}

type columnRow struct {
	TableName  string
	ColumnName string
	DataType   string
}

func (a *Adapter) ListColumns(ctx context.Context) ([]catalog.Column, error) {
	var rows []columnRow
	err := a.db.WithContext(ctx).
		Raw(`SELECT m.name AS table_name, p.name AS column_name, p.type AS data_type
			FROM sqlite_master m JOIN pragma_table_info(m.name) p
			WHERE m.type IN ('table', 'view') AND m.name NOT LIKE 'sqlite\_%' ESCAPE '\' AND m.name <> ?
			ORDER BY m.name, p.cid`, a.commentsTable).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}

	comments, err := a.comments(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]catalog.Column, 0, len(rows))
	for _, r := range rows {
		columns = append(columns, catalog.Column{
			TableName: r.TableName,
			Name:      r.ColumnName,
			DataType:  r.DataType,
			Comment:   comments[[2]string{r.TableName, r.ColumnName}],
		})
	}
	return columns, nil
}

func (a *Adapter) SchemaComment(ctx context.Context) (string, error) {
	comments, err := a.comments(ctx)
	if err != nil {
		return "", err
	}
	return comments[[2]string{"", ""}], nil
}
