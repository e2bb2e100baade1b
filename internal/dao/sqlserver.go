package dao

import (
	"database/sql"
	"time"

	_ "github.com/denisenkom/go-mssqldb"

	"dbchat/internal/apperr"
)

const sqlserverSchemaQuery = `
SELECT SCHEMA_NAME(t.schema_id) AS table_schema,
       t.name                   AS table_name,
       c.name                   AS column_name,
       ty.name                  AS data_type,
       CAST(ISNULL(pk.is_primary_key, 0) AS BIT) AS primary_key
FROM sys.tables t
         INNER JOIN sys.columns c ON t.object_id = c.object_id
         INNER JOIN sys.types ty ON c.user_type_id = ty.user_type_id
         LEFT JOIN (SELECT ic.object_id, ic.column_id, 1 AS is_primary_key
                    FROM sys.index_columns ic
                             JOIN sys.indexes i ON ic.object_id = i.object_id AND ic.index_id = i.index_id
                    WHERE i.is_primary_key = 1) pk
                   ON c.object_id = pk.object_id AND c.column_id = pk.column_id
WHERE t.is_ms_shipped = 0
ORDER BY table_schema, t.name, c.column_id;`

const sqlserverForeignKeyQuery = `
SELECT SCHEMA_NAME(tp.schema_id)                            AS table_schema,
       tp.name                                              AS table_name,
       COL_NAME(fkc.parent_object_id, fkc.parent_column_id) AS column_name,
       SCHEMA_NAME(tr.schema_id)                            AS referenced_schema,
       tr.name                                              AS referenced_table,
       COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id) AS referenced_column
FROM sys.foreign_key_columns fkc
         JOIN sys.tables tp ON fkc.parent_object_id = tp.object_id
         JOIN sys.tables tr ON fkc.referenced_object_id = tr.object_id
ORDER BY table_schema, tp.name, column_name;`

func newSQLServerDAO(cfg ConnConfig) (*sqlDAO, error) {
	db, err := sql.Open("sqlserver", cfg.BuildConnectionString())
	if err != nil {
		return nil, &apperr.ConnectionError{Message: err.Error()}
	}
	db.SetConnMaxLifetime(time.Minute)
	db.SetMaxOpenConns(2)

	return &sqlDAO{
		db:              db,
		schemaQuery:     sqlserverSchemaQuery,
		foreignKeyQuery: sqlserverForeignKeyQuery,
		defaultSchema:   "dbo",
	}, nil
}
