package dao

import (
	"context"
	"testing"
	"time"

	"dbchat/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConnectionString(t *testing.T) {
	cfg := ConnConfig{
		Host:     "db.example.com",
		Port:     5432,
		Username: "reader",
		Password: "s3cret",
		Database: "shop",
	}

	t.Run("postgres", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = EnginePostgres
		assert.Equal(t, "postgres", cfg.DriverName())
		assert.Equal(t,
			"host=db.example.com port=5432 user=reader password=s3cret dbname=shop sslmode=disable",
			cfg.BuildConnectionString())
	})

	t.Run("mysql", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = EngineMySQL
		cfg.Port = 3306
		assert.Equal(t, "mysql", cfg.DriverName())
		assert.Equal(t,
			"reader:s3cret@tcp(db.example.com:3306)/shop?parseTime=true",
			cfg.BuildConnectionString())
	})

	t.Run("sqlserver", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = EngineSQLServer
		cfg.Port = 1433
		assert.Equal(t, "sqlserver", cfg.DriverName())
		assert.Equal(t,
			"server=db.example.com;port=1433;user id=reader;password=s3cret;database=shop",
			cfg.BuildConnectionString())
	})
}

func TestNew_UnsupportedEngine(t *testing.T) {
	_, err := New(context.Background(), ConnConfig{Engine: "oracle"})
	assert.Error(t, err)
}

func TestRenderValue(t *testing.T) {
	assert.Equal(t, "", renderValue(nil))
	assert.Equal(t, "hello", renderValue("  hello  "))
	assert.Equal(t, "bytes", renderValue([]byte(" bytes ")))
	assert.Equal(t, "42", renderValue(int64(42)))
	assert.Equal(t, "3.14", renderValue(3.14))

	ts := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-17T10:30:00Z", renderValue(ts))
}

func TestSQLDAO_Introspection(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	d := NewFromDB(db, "shop")

	mock.ExpectQuery(mysqlSchemaQuery).WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "column_name", "data_type", "primary_key"}).
			AddRow("shop", "user", "id", "int", true).
			AddRow("shop", "user", "name", "varchar", false).
			AddRow("shop", "order", "id", "int", true).
			AddRow("shop", "order", "user_id", "int", false))
	mock.ExpectQuery(mysqlForeignKeyQuery).WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "column_name",
			"referenced_schema", "referenced_table", "referenced_column"}).
			AddRow("shop", "order", "user_id", "shop", "user", "id"))

	model, err := schema.Introspect(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, "shop", model.DefaultSchema)
	require.Contains(t, model.Schemas, "shop")

	order := model.Schemas["shop"].Tables["order"]
	require.Len(t, order.Columns, 2)
	require.NotNil(t, order.Columns[1].ForeignKey)
	assert.Equal(t, "user", order.Columns[1].ForeignKey.ReferencedTable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDAO_IntrospectionToleratesZeroForeignKeys(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	d := NewFromDB(db, "shop")

	mock.ExpectQuery(mysqlSchemaQuery).WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "column_name", "data_type", "primary_key"}).
			AddRow("shop", "user", "id", "int", true))
	mock.ExpectQuery(mysqlForeignKeyQuery).WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "column_name",
			"referenced_schema", "referenced_table", "referenced_column"}))

	model, err := schema.Introspect(context.Background(), d)
	require.NoError(t, err)
	assert.NotNil(t, model.Schemas["shop"].Tables)
}
