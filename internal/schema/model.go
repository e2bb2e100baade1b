// Package schema holds the in-memory model of a user database's structure
// and renders it as a create script that gives the LLM context.
package schema

import "sort"

// ColumnRow is one row of the columns/primary-keys introspection query.
type ColumnRow struct {
	Schema     string `json:"schema"`
	Table      string `json:"table"`
	Column     string `json:"column"`
	DataType   string `json:"dataType"`
	PrimaryKey bool   `json:"primaryKey"`
}

// ForeignKeyRow is one row of the foreign-keys introspection query.
type ForeignKeyRow struct {
	Schema           string `json:"schema"`
	Table            string `json:"table"`
	Column           string `json:"column"`
	ReferencedSchema string `json:"referencedSchema"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
}

type ForeignKey struct {
	ReferencedSchema string `json:"referencedSchema"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
}

type Column struct {
	Name       string      `json:"name"`
	DataType   string      `json:"dataType"`
	PrimaryKey bool        `json:"primaryKey"`
	ForeignKey *ForeignKey `json:"foreignKey,omitempty"`
}

// Table keeps its columns in declaration (ordinal) order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

type Schema struct {
	Name   string           `json:"name"`
	Tables map[string]Table `json:"tables"`
}

// Model maps schema name to schema. DefaultSchema is the engine's default
// (public, dbo, or the mysql database name); it is omitted when rendering
// foreign key references.
type Model struct {
	Schemas       map[string]Schema `json:"schemas"`
	DefaultSchema string            `json:"defaultSchema"`
}

// Build folds introspection rows into a Model in two passes: first the
// columns, then the foreign keys. A foreign key whose referenced
// schema.table.column is not part of the model is dropped.
func Build(columns []ColumnRow, foreignKeys []ForeignKeyRow, defaultSchema string) Model {
	schemas := make(map[string]Schema)

	for _, row := range columns {
		s, ok := schemas[row.Schema]
		if !ok {
			s = Schema{Name: row.Schema, Tables: make(map[string]Table)}
			schemas[row.Schema] = s
		}
		t, ok := s.Tables[row.Table]
		if !ok {
			t = Table{Name: row.Table}
		}
		t.Columns = append(t.Columns, Column{
			Name:       row.Column,
			DataType:   row.DataType,
			PrimaryKey: row.PrimaryKey,
		})
		s.Tables[row.Table] = t
	}

	model := Model{Schemas: schemas, DefaultSchema: defaultSchema}

	for _, fk := range foreignKeys {
		if !model.hasColumn(fk.ReferencedSchema, fk.ReferencedTable, fk.ReferencedColumn) {
			continue
		}
		s, ok := schemas[fk.Schema]
		if !ok {
			continue
		}
		t, ok := s.Tables[fk.Table]
		if !ok {
			continue
		}
		for i := range t.Columns {
			if t.Columns[i].Name == fk.Column {
				t.Columns[i].ForeignKey = &ForeignKey{
					ReferencedSchema: fk.ReferencedSchema,
					ReferencedTable:  fk.ReferencedTable,
					ReferencedColumn: fk.ReferencedColumn,
				}
			}
		}
		s.Tables[fk.Table] = t
	}

	return model
}

func (m Model) hasColumn(schemaName, tableName, columnName string) bool {
	s, ok := m.Schemas[schemaName]
	if !ok {
		return false
	}
	t, ok := s.Tables[tableName]
	if !ok {
		return false
	}
	for _, c := range t.Columns {
		if c.Name == columnName {
			return true
		}
	}
	return false
}

// sortedKeys returns map keys in lexicographic order so rendering is
// deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
