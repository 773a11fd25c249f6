package synth

import (
	"fmt"
	"strings"
)

// Dialect describes the target engine to the model. Specifics is free text
// appended to the prompt, e.g. row-limiting rules.
type Dialect struct {
	Name      string
	Platform  string
	Schema    string
	Specifics string
}

var dialects = map[string]Dialect{
	"postgres": {Name: "postgres", Platform: "PostgreSQL", Schema: "public",
		Specifics: "Limit rows with LIMIT n. Quote identifiers with double quotes only when needed."},
	"redshift": {Name: "redshift", Platform: "AWS Redshift", Schema: "public",
		Specifics: "Limit rows with LIMIT n. External tables are referenced by their fully qualified name."},
	"sqlite": {Name: "sqlite", Platform: "SQLite", Schema: "main",
		Specifics: "Limit rows with LIMIT n. Use strftime for date arithmetic."},
	"mssql": {Name: "mssql", Platform: "Azure SQL Server", Schema: "dbo",
		Specifics: "Never use LIMIT; use TOP (n) instead."},
}

// LookupDialect returns the named profile with optional overrides; empty
// override strings keep the profile's defaults.
func LookupDialect(name, schema, specifics string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported dialect: %s", name)
	}
	if schema != "" {
		d.Schema = schema
	}
	if specifics != "" {
		d.Specifics = specifics
	}
	return d, nil
}
