package dao

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"dbchat/internal/apperr"
)

// MySQL has no schema level below the database itself, so the default schema
// is the connected database name.
const mysqlSchemaQuery = `
SELECT c.table_schema,
       c.table_name,
       c.column_name,
       c.data_type,
       c.column_key = 'PRI' AS primary_key
FROM information_schema.columns c
WHERE c.table_schema NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
  AND c.table_name IN (SELECT table_name
                       FROM information_schema.tables
                       WHERE table_type = 'BASE TABLE')
ORDER BY c.table_schema, c.table_name, c.ordinal_position;`

const mysqlForeignKeyQuery = `
SELECT kcu.table_schema,
       kcu.table_name,
       kcu.column_name,
       kcu.referenced_table_schema AS referenced_schema,
       kcu.referenced_table_name   AS referenced_table,
       kcu.referenced_column_name  AS referenced_column
FROM information_schema.key_column_usage kcu
WHERE kcu.referenced_table_name IS NOT NULL
ORDER BY kcu.table_schema, kcu.table_name, kcu.column_name;`

func newMySQLDAO(cfg ConnConfig) (*sqlDAO, error) {
	db, err := sql.Open("mysql", cfg.BuildConnectionString())
	if err != nil {
		return nil, &apperr.ConnectionError{Message: err.Error()}
	}
	db.SetConnMaxLifetime(time.Minute)
	db.SetMaxOpenConns(2)

	return &sqlDAO{
		db:              db,
		schemaQuery:     mysqlSchemaQuery,
		foreignKeyQuery: mysqlForeignKeyQuery,
		defaultSchema:   cfg.Database,
	}, nil
}

// NewFromDB wraps an existing connection, used by tests to inject sqlmock.
func NewFromDB(db *sql.DB, defaultSchema string) DatabaseDAO {
	return &sqlDAO{
		db:              db,
		schemaQuery:     mysqlSchemaQuery,
		foreignKeyQuery: mysqlForeignKeyQuery,
		defaultSchema:   defaultSchema,
	}
}
