package dao

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"dbchat/internal/apperr"
	"dbchat/internal/schema"
)

type postgresDAO struct {
	pool *pgxpool.Pool
}

func newPostgresDAO(ctx context.Context, cfg ConnConfig) (*postgresDAO, error) {
	pool, err := pgxpool.New(ctx, cfg.BuildConnectionString())
	if err != nil {
		return nil, &apperr.ConnectionError{Message: err.Error()}
	}
	return &postgresDAO{pool: pool}, nil
}

func (slf *postgresDAO) DefaultSchema() string {
	return "public"
}

func (slf *postgresDAO) Ping(ctx context.Context) error {
	if err := slf.pool.Ping(ctx); err != nil {
		return &apperr.ConnectionError{Message: err.Error()}
	}
	return nil
}

func (slf *postgresDAO) Close() {
	slf.pool.Close()
}

func (slf *postgresDAO) Query(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := slf.pool.Query(ctx, query)
	if err != nil {
		return nil, &apperr.DatabaseExecutionError{Message: err.Error()}
	}
	defer rows.Close()

	result := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, string(fd.Name))
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
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

// Schemas, tables, columns and primary keys. Catalog schemas are excluded by
// prefix, views are excluded by restricting to base tables.
const postgresSchemaQuery = `
SELECT columns.table_schema,
       columns.table_name,
       columns.column_name,
       columns.data_type,
       constraint_name IS NOT NULL AS primary_key
FROM information_schema.columns AS columns
         LEFT JOIN information_schema.constraint_column_usage AS constraints
                   ON (columns.table_schema, columns.table_name, columns.column_name) =
                      (constraints.table_schema, constraints.table_name, constraints.column_name)
                       AND constraints.constraint_name LIKE '%pkey'
WHERE columns.table_schema NOT LIKE 'pg_%'
  AND columns.table_schema != 'information_schema'
  AND columns.table_name IN (SELECT table_name
                             FROM information_schema.tables
                             WHERE table_type = 'BASE TABLE'
                               AND table_catalog = current_database())
ORDER BY table_schema, table_name, ordinal_position;`

const postgresForeignKeyQuery = `
SELECT tc.table_schema,
       tc.table_name,
       kcu.column_name,
       ccu.table_schema AS referenced_schema,
       ccu.table_name   AS referenced_table,
       ccu.column_name  AS referenced_column
FROM information_schema.table_constraints tc
         JOIN information_schema.key_column_usage kcu
              ON tc.constraint_name = kcu.constraint_name
                  AND tc.table_schema = kcu.table_schema
         JOIN information_schema.constraint_column_usage ccu
              ON tc.constraint_name = ccu.constraint_name
                  AND tc.table_schema = ccu.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
ORDER BY tc.table_schema, tc.table_name, kcu.column_name;`

func (slf *postgresDAO) SchemaRows(ctx context.Context) ([]schema.ColumnRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := slf.pool.Query(ctx, postgresSchemaQuery)
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

func (slf *postgresDAO) ForeignKeyRows(ctx context.Context) ([]schema.ForeignKeyRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := slf.pool.Query(ctx, postgresForeignKeyQuery)
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
