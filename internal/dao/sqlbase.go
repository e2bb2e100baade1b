package dao

import (
	"context"
	"database/sql"

	"dbchat/internal/apperr"
	"dbchat/internal/schema"
)

// sqlDAO is the database/sql backed implementation shared by the mysql and
// sqlserver engines. Engine differences are the introspection query texts and
// the default schema name.
type sqlDAO struct {
	db              *sql.DB
	schemaQuery     string
	foreignKeyQuery string
	defaultSchema   string
}

func (slf *sqlDAO) DefaultSchema() string {
	return slf.defaultSchema
}

func (slf *sqlDAO) Ping(ctx context.Context) error {
	if err := slf.db.PingContext(ctx); err != nil {
		return &apperr.ConnectionError{Message: err.Error()}
	}
	return nil
}

func (slf *sqlDAO) Close() {
	_ = slf.db.Close()
}

func (slf *sqlDAO) Query(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := slf.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &apperr.DatabaseExecutionError{Message: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &apperr.DatabaseExecutionError{Message: err.Error()}
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &apperr.DatabaseExecutionError{Message: err.Error()}
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = renderValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.DatabaseExecutionError{Message: err.Error()}
	}

	return result, nil
}

func (slf *sqlDAO) SchemaRows(ctx context.Context) ([]schema.ColumnRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := slf.db.QueryContext(ctx, slf.schemaQuery)
	if err != nil {
		return nil, &apperr.IntrospectionError{Message: err.Error()}
	}
	defer rows.Close()

	var result []schema.ColumnRow
	for rows.Next() {
		var row schema.ColumnRow
		if err := rows.Scan(&row.Schema, &row.Table, &row.Column, &row.DataType, &row.PrimaryKey); err != nil {
			return nil, &apperr.IntrospectionError{Message: err.Error()}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.IntrospectionError{Message: err.Error()}
	}
	return result, nil
}

func (slf *sqlDAO) ForeignKeyRows(ctx context.Context) ([]schema.ForeignKeyRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := slf.db.QueryContext(ctx, slf.foreignKeyQuery)
	if err != nil {
		return nil, &apperr.IntrospectionError{Message: err.Error()}
	}
	defer rows.Close()

	var result []schema.ForeignKeyRow
	for rows.Next() {
		var row schema.ForeignKeyRow
		if err := rows.Scan(&row.Schema, &row.Table, &row.Column,
			&row.ReferencedSchema, &row.ReferencedTable, &row.ReferencedColumn); err != nil {
			return nil, &apperr.IntrospectionError{Message: err.Error()}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.IntrospectionError{Message: err.Error()}
	}
	return result, nil
}
