package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	"gorm.io/gorm"
)

// Column is one introspected column of a live table.
type Column struct {
	Name         string `json:"name"`
	DatabaseType string `json:"database_type"`
	Nullable     bool   `json:"nullable"`
	PrimaryKey   bool   `json:"primary_key"`
}

// Table is one introspected table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the read-only description of the tables the service maps,
// loaded once at startup from the live database.
type Schema struct {
	tables map[string]Table
	order  []string
}

// LoadSchema introspects every mapped table and fails if a table or any
// column a model maps is missing from the database.
func LoadSchema(ctx context.Context, conn *gorm.DB) (*Schema, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	db := conn.WithContext(ctx)
	migrator := db.Migrator()

	s := &Schema{tables: map[string]Table{}}
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		name := stmt.Schema.Table

		if !migrator.HasTable(name) {
			return nil, fmt.Errorf("schema: table %q not found", name)
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("schema: read columns of %q: %w", name, err)
		}

		table := Table{Name: name}
		present := make(map[string]struct{}, len(columnTypes))
		for _, ct := range columnTypes {
			col := Column{Name: ct.Name(), DatabaseType: strings.ToLower(ct.DatabaseTypeName())}
			if nullable, ok := ct.Nullable(); ok {
				col.Nullable = nullable
			}
			if pk, ok := ct.PrimaryKey(); ok {
				col.PrimaryKey = pk
			}
			table.Columns = append(table.Columns, col)
			present[col.Name] = struct{}{}
		}

		var missing []string
		for _, dbName := range stmt.Schema.DBNames {
			if _, ok := present[dbName]; !ok {
				missing = append(missing, dbName)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, fmt.Errorf("schema: table %q missing columns %s", name, strings.Join(missing, ", "))
		}

		s.tables[name] = table
		s.order = append(s.order, name)
	}
	return s, nil
}

// Tables lists the loaded table names in foreign-key order.
func (s *Schema) Tables() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
