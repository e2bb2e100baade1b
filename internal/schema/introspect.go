package schema

import "context"

// Source supplies raw introspection rows. dao.DatabaseDAO satisfies it.
type Source interface {
	SchemaRows(ctx context.Context) ([]ColumnRow, error)
	ForeignKeyRows(ctx context.Context) ([]ForeignKeyRow, error)
	DefaultSchema() string
}

// Introspect reads the structural metadata of a live database and builds the
// model. A database without foreign keys yields a model with no references,
// never a nil one.
func Introspect(ctx context.Context, src Source) (Model, error) {
	columns, err := src.SchemaRows(ctx)
	if err != nil {
		return Model{}, err
	}
	foreignKeys, err := src.ForeignKeyRows(ctx)
	if err != nil {
		return Model{}, err
	}
	return Build(columns, foreignKeys, src.DefaultSchema()), nil
}
