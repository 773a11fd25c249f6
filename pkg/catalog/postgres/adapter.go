// Package postgres reads the catalog of a PostgreSQL or Redshift schema.
package postgres

import (
	"context"
	"fmt"

	"ai-sqlagent-be/pkg/catalog"

	"gorm.io/gorm"
)

type Config struct {
	Schema string
	// ExternalSchema names a Redshift external schema (Glue data catalog).
	// Its tables are listed from svv_external_tables and marked External.
	ExternalSchema string
}

type Adapter struct {
	db  *gorm.DB
	cfg Config
}

func NewAdapter(db *gorm.DB, cfg Config) *Adapter {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	return &Adapter{db: db, cfg: cfg}
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

const tablesSQL = `
SELECT
    n.nspname || '.' || c.relname AS table_name,
    COALESCE(obj_description(c.oid, 'pg_class'), '') AS table_comment
FROM pg_catalog.pg_namespace n
JOIN pg_catalog.pg_class c ON c.relnamespace = n.oid
WHERE c.relkind IN ('r', 'v', 'm', 'p')
    AND n.nspname = ?
ORDER BY c.relname`

const columnsSQL = `
SELECT
    c.table_schema || '.' || c.table_name AS table_name,
    c.column_name,
    c.data_type,
    COALESCE(d.description, '') AS column_comment
FROM information_schema.columns c
JOIN pg_catalog.pg_namespace ns ON ns.nspname = c.table_schema
JOIN pg_catalog.pg_class cls ON cls.relname = c.table_name AND cls.relnamespace = ns.oid
LEFT JOIN pg_catalog.pg_description d
    ON d.objoid = cls.oid AND d.objsubid = c.ordinal_position
WHERE c.table_schema = ?
ORDER BY c.table_name, c.ordinal_position`

const schemaCommentSQL = `
SELECT COALESCE(d.description, '') AS schema_comment
FROM pg_catalog.pg_namespace n
LEFT JOIN pg_catalog.pg_description d ON d.objoid = n.oid
WHERE n.nspname = ?`

const externalTablesSQL = `
SELECT schemaname || '.' || tablename AS table_name, '' AS table_comment
FROM svv_external_tables
WHERE schemaname = ?
ORDER BY tablename`

// External columns keep the bare table name; the catalog attaches them to
// the qualified external table when it is selected.
const externalColumnsSQL = `
SELECT tablename AS table_name, columnname AS column_name,
    external_type AS data_type, '' AS column_comment
FROM svv_external_columns
WHERE schemaname = ?
ORDER BY tablename, columnnum`

func (a *Adapter) ListTables(ctx context.Context) ([]catalog.Table, error) {
	var rows []tableRow
	if err := a.db.WithContext(ctx).Raw(tablesSQL, a.cfg.Schema).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", a.cfg.Schema, err)
	}
	tables := make([]catalog.Table, 0, len(rows))
	for _, r := range rows {
		tables = append(tables, catalog.Table{Name: r.TableName, Comment: r.TableComment})
	}

	if a.cfg.ExternalSchema == "" {
		return tables, nil
	}
	var ext []tableRow
	if err := a.db.WithContext(ctx).Raw(externalTablesSQL, a.cfg.ExternalSchema).Scan(&ext).Error; err != nil {
		return nil, fmt.Errorf("list external tables in %s: %w", a.cfg.ExternalSchema, err)
	}
	for _, r := range ext {
		tables = append(tables, catalog.Table{Name: r.TableName, Comment: r.TableComment, External: true})
	}
	return tables, nil
}

func (a *Adapter) ListColumns(ctx context.Context) ([]catalog.Column, error) {
	var rows []columnRow
	if err := a.db.WithContext(ctx).Raw(columnsSQL, a.cfg.Schema).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list columns in %s: %w", a.cfg.Schema, err)
	}

	if a.cfg.ExternalSchema != "" {
		var ext []columnRow
		if err := a.db.WithContext(ctx).Raw(externalColumnsSQL, a.cfg.ExternalSchema).Scan(&ext).Error; err != nil {
			return nil, fmt.Errorf("list external columns in %s: %w", a.cfg.ExternalSchema, err)
		}
		rows = append(rows, ext...)
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
	if err := a.db.WithContext(ctx).Raw(schemaCommentSQL, a.cfg.Schema).Scan(&comment).Error; err != nil {
		return "", fmt.Errorf("schema comment for %s: %w", a.cfg.Schema, err)
	}
	return comment, nil
}
