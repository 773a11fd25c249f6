package sqlserver

import (
	"context"
	"testing"

	"ai-sqlagent-be/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sysDB stands in for a SQL Server instance: an attached "sys" database holds
// the catalog views the adapter reads.
func sysDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlitedriver.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range []string{
		`ATTACH DATABASE ':memory:' AS sys`,
		`CREATE TABLE sys.schemas (schema_id INTEGER, name TEXT)`,
		`CREATE TABLE sys.tables (object_id INTEGER, schema_id INTEGER, name TEXT)`,
		`CREATE TABLE sys.columns (object_id INTEGER, column_id INTEGER, name TEXT, user_type_id INTEGER)`,
		`CREATE TABLE sys.types (user_type_id INTEGER, name TEXT)`,
		`CREATE TABLE sys.extended_properties (major_id INTEGER, minor_id INTEGER, name TEXT, value TEXT)`,
		`INSERT INTO sys.schemas VALUES (1, 'dbo'), (2, 'staging')`,
		`INSERT INTO sys.tables VALUES (10, 1, 'orders'), (11, 1, 'customers'), (12, 1, 'audit'), (13, 2, 'raw_orders')`,
		`INSERT INTO sys.types VALUES (56, 'int'), (231, 'nvarchar'), (106, 'decimal')`,
		`INSERT INTO sys.columns VALUES
			(10, 1, 'order_id', 56), (10, 2, 'customer_id', 56), (10, 3, 'total', 106),
			(11, 1, 'customer_id', 56), (11, 2, 'name', 231), (11, 3, 'password_hash', 231),
			(12, 1, 'id', 56),
			(13, 1, 'payload', 231)`,
		`INSERT INTO sys.extended_properties VALUES
			(1, 0, 'MS_Description', 'webshop'),
			(10, 0, 'MS_Description', 'one row per order'),
			(10, 3, 'MS_Description', 'gross amount'),
			(10, 3, 'MS_Caption', 'Total'),
			(11, 3, 'MS_Description', 'hidden'),
			(12, 0, 'MS_Description', 'hidden')`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestAdapterReadsDescriptions(t *testing.T) {
	a := NewAdapter(sysDB(t), "")
	ctx := context.Background()

	tables, err := a.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Table{
		{Name: "dbo.audit", Comment: "hidden"},
		{Name: "dbo.customers", Comment: ""},
		{Name: "dbo.orders", Comment: "one row per order"},
	}, tables)

	columns, err := a.ListColumns(ctx)
	require.NoError(t, err)
	var orderCols []catalog.Column
	for _, c := range columns {
		if c.TableName == "dbo.orders" {
			orderCols = append(orderCols, c)
		}
	}
	require.Len(t, orderCols, 3)
	assert.Equal(t, catalog.Column{TableName: "dbo.orders", Name: "order_id", DataType: "int"}, orderCols[0])
	assert.Equal(t, catalog.Column{TableName: "dbo.orders", Name: "total", DataType: "decimal", Comment: "gross amount"}, orderCols[2])

	comment, err := a.SchemaComment(ctx)
	require.NoError(t, err)
	assert.Equal(t, "webshop", comment)
}

func TestAdapterOtherSchema(t *testing.T) {
	a := NewAdapter(sysDB(t), "staging")

	tables, err := a.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.Table{{Name: "staging.raw_orders"}}, tables)

	comment, err := a.SchemaComment(context.Background())
	require.NoError(t, err)
	assert.Empty(t, comment)
}

func TestLoadHidesMarkedObjects(t *testing.T) {
	cat, err := catalog.Load(context.Background(), NewAdapter(sysDB(t), ""))
	require.NoError(t, err)

	assert.Equal(t, []string{"dbo.customers", "dbo.orders"}, cat.TableNames())
	for _, c := range cat.Columns() {
		assert.NotEqual(t, "password_hash", c.Name)
		assert.NotEqual(t, "dbo.audit", c.TableName)
	}
	assert.Equal(t, "webshop", cat.Comment())
}
