// Package dao accesses the user-supplied databases: engine-specific
// connections, introspection queries and generic query execution.
package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dbchat/internal/schema"
)

type Engine string

const (
	EnginePostgres  Engine = "postgres"
	EngineMySQL     Engine = "mysql"
	EngineSQLServer Engine = "sqlserver"
)

// Result is a materialized query result: column names in result-set metadata
// order, row values string-rendered and trimmed, NULL as empty string.
type Result struct {
	Columns []string
	Rows    [][]string
}

// DatabaseDAO abstracts one user database. Connections are pooled; each query
// checks one out and releases it when the result is materialized, so no
// connection is held across a retry boundary.
type DatabaseDAO interface {
	// Query executes a single statement and materializes the result.
	Query(ctx context.Context, query string) (*Result, error)

	// SchemaRows retrieves schemas, tables, columns and primary keys,
	// excluding system catalogs and views.
	SchemaRows(ctx context.Context) ([]schema.ColumnRow, error)

	// ForeignKeyRows retrieves foreign key relations.
	ForeignKeyRows(ctx context.Context) ([]schema.ForeignKeyRow, error)

	// DefaultSchema is the engine's default schema name.
	DefaultSchema() string

	Ping(ctx context.Context) error
	Close()
}

// ConnConfig describes a connection to a user database.
type ConnConfig struct {
	Engine   Engine `json:"engine"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// DriverName returns the database/sql driver name for the engine.
func (cfg ConnConfig) DriverName() string {
	switch cfg.Engine {
	case EngineMySQL:
		return "mysql"
	case EngineSQLServer:
		return "sqlserver"
	default:
		return "postgres"
	}
}

// BuildConnectionString builds the engine specific DSN.
func (cfg ConnConfig) BuildConnectionString() string {
	switch cfg.Engine {
	case EngineMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	case EngineSQLServer:
		return fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
	default:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, sslMode)
	}
}

// New opens a DAO for the configured engine.
func New(ctx context.Context, cfg ConnConfig) (DatabaseDAO, error) {
	switch cfg.Engine {
	case EnginePostgres:
		return newPostgresDAO(ctx, cfg)
	case EngineMySQL:
		return newMySQLDAO(cfg)
	case EngineSQLServer:
		return newSQLServerDAO(cfg)
	default:
		return nil, fmt.Errorf("unsupported database engine: %s", cfg.Engine)
	}
}

const queryTimeout = 30 * time.Second

// renderValue converts a scanned cell into its string form. NULL becomes an
// empty string; everything else is trimmed.
func renderValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case []byte:
		return strings.TrimSpace(string(value))
	case string:
		return strings.TrimSpace(value)
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
