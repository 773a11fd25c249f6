package render

import (
	"strings"
	"testing"

	"ai-sqlagent-be/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tables = []catalog.Table{
		{Name: "orders", Comment: "customer orders"},
		{Name: "empty_table"},
	}
	columns = []catalog.Column{
		{TableName: "orders", Name: "order_id", DataType: "integer"},
		{TableName: "other", Name: "ignored"},
		{TableName: "orders", Name: "total", Comment: "  gross amount "},
		{TableName: "orders", Name: "note", Comment: "   "},
	}
)

func TestRender(t *testing.T) {
	want := "Table: orders\n" +
		"Description: customer orders\n" +
		"Columns:\n" +
		"- order_id\n" +
		"- total / gross amount\n" +
		"- note\n" +
		"\n" +
		"Table: empty_table\n" +
		"Description: \n" +
		"Columns:\n" +
		"\n"
	assert.Equal(t, want, Render(tables, columns))
}

func TestRenderIsPure(t *testing.T) {
	first := Render(tables, columns)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render(tables, columns))
	}
}

func TestRenderFollowsInputOrder(t *testing.T) {
	reversed := []catalog.Table{tables[1], tables[0]}
	out := Render(reversed, columns)
	assert.Less(t, strings.Index(out, "Table: empty_table"), strings.Index(out, "Table: orders"))
}

func TestRenderNoTables(t *testing.T) {
	assert.Equal(t, NoTables, Render(nil, columns))
	assert.Equal(t, NoTables, Render([]catalog.Table{}, nil))
}

func TestCatalog(t *testing.T) {
	cat, err := catalog.New(tables, columns[:1], "", false)
	require.NoError(t, err)
	assert.Equal(t, "Table: orders\nDescription: customer orders\nColumns:\n- order_id\n\n", Catalog(cat, []string{"orders", "missing"}))
	assert.Equal(t, NoTables, Catalog(cat, nil))
}

