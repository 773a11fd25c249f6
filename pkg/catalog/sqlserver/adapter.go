// Package sqlserver reads the catalog of a SQL Server or Azure SQL schema.
// Comments are the MS_Description extended properties.
package sqlserver

import (
	"context"
	"fmt"

	"ai-sqlagent-be/pkg/catalog"

	"gorm.io/gorm"
)

const DefaultSchema = "dbo"

type Adapter struct {
	db     *gorm.DB
	schema string
}

func NewAdapter(db *gorm.DB, schema string) *Adapter {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Adapter{db: db, schema: schema}
}

type tableRow struct {
	TableName    string
	TableComment string
}

type columnRow struct {
	TableName     string
	ColumnName    string
	DataType      string
	ColumnComment string
}

// sql_variant values are cast to NVARCHAR(4000), which holds any
// MS_Description (at most 7500 bytes).
const tablesSQL = `
SELECT CONCAT(s.name, '.', t.name) AS table_name,
    COALESCE(CAST(ep.value AS NVARCHAR(4000)), '') AS table_comment
FROM sys.tables t
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
LEFT JOIN sys.extended_properties ep
    ON ep.major_id = t.object_id AND ep.minor_id = 0 AND ep.name = 'MS_Description'
WHERE s.name = ?
ORDER BY t.name`

const columnsSQL = `
SELECT CONCAT(s.name, '.', t.name) AS table_name,
    c.name AS column_name,
    ty.name AS data_type,
    COALESCE(CAST(ep.value AS NVARCHAR(4000)), '') AS column_comment
FROM sys.tables t
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
INNER JOIN sys.columns c ON t.object_id = c.object_id
INNER JOIN sys.types ty ON c.user_type_id = ty.user_type_id
LEFT JOIN sys.extended_properties ep
    ON ep.major_id = t.object_id AND ep.minor_id = c.column_id AND ep.name = 'MS_Description'
WHERE s.name = ?
ORDER BY t.name, c.column_id`

const schemaCommentSQL = `
SELECT COALESCE(CAST(ep.value AS NVARCHAR(4000)), '') AS schema_comment
FROM sys.schemas s
LEFT JOIN sys.extended_properties ep
    ON ep.major_id = s.schema_id AND ep.minor_id = 0 AND ep.name = 'MS_Description'
WHERE s.name = ?`

func (a *Adapter) ListTables(ctx context.Context) ([]catalog.Table, error) {
	var rows []tableRow
	if err := a.db.WithContext(ctx).Raw(tablesSQL, a.schema).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", a.schema, err)
	}
	tables := make([]catalog.Table, 0, len(rows))
	for _, r := range rows {
		tables = append(tables, catalog.Table{Name: r.TableName, Comment: r.TableComment})
	}
	return tables, nil
}

func (a *Adapter) ListColumns(ctx context.Context) ([]catalog.Column, error) {
	var rows []columnRow
	if err := a.db.WithContext(ctx).Raw(columnsSQL, a.schema).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list columns in %s: %w", a.schema, err)
	}
	columns := make([]catalog.Column, 0, len(rows))
	for _, r := range rows {
		columns = append(columns, catalog.Column{
			TableName: r.TableName,
			Name:      r.ColumnName,
			DataType:  r.DataType,
			Comment:   r.ColumnComment,
		})
	}
	return columns, nil
}

func (a *Adapter) SchemaComment(ctx context.Context) (string, error) {
	var comment string
	if err := a.db.WithContext(ctx).Raw(schemaCommentSQL, a.schema).Scan(&comment).Error; err != nil {
		return "", fmt.Errorf("schema comment for %s: %w", a.schema, err)
	}
	return comment, nil
}
