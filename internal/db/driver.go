// internal/db/driver.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DriverType represents supported database types
type DriverType string

const (
	Postgres DriverType = "postgres"
	MySQL    DriverType = "mysql"
	SQLite   DriverType = "sqlite"
)

// ParseDriverType accepts the names used in the config file
func ParseDriverType(s string) (DriverType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unknown driver type: %s", s)
	}
}

// Column represents table column metadata
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Key      string // PRI, UNI, MUL
	// Text is true for character columns, which are matched by substring
	Text bool
}

// ConnectParams holds database connection details
type ConnectParams struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	// SSHConfig opens a tunnel owned by the connection
	SSHConfig *SSHConfig
	// Tunnel is an already open tunnel shared with other connections.
	// It takes precedence over SSHConfig and is not closed by the driver.
	Tunnel *SSHTunnel
}

// Driver defines the interface for database operations
type Driver interface {
	Connect(ctx context.Context, params ConnectParams) error
	Close() error
	Ping(ctx context.Context) error
	Type() DriverType
	DB() *sql.DB
	Dialect() Dialect
	GetTables(ctx context.Context) ([]string, error)
	GetColumns(ctx context.Context, tableName string) ([]Column, error)
}

// NewDriver creates a new driver instance by type
func NewDriver(driverType DriverType) (Driver, error) {
	switch driverType {
	case Postgres:
		return &PostgresDriver{}, nil
	case MySQL:
		return &MySQLDriver{}, nil
	case SQLite:
		return &SQLiteDriver{}, nil
	default:
		return nil, fmt.Errorf("unknown driver type: %s", driverType)
	}
}

// Open creates and connects a driver
func Open(ctx context.Context, driverType DriverType, params ConnectParams) (Driver, error) {
	d, err := NewDriver(driverType)
	if err != nil {
		return nil, err
	}
	if err := d.Connect(ctx, params); err != nil {
		return nil, err
	}
	return d, nil
}

// FromDB wraps an already open handle. The driver takes ownership of db.
func FromDB(driverType DriverType, db *sql.DB) (Driver, error) {
	switch driverType {
	case Postgres:
		return &PostgresDriver{db: db}, nil
	case MySQL:
		return &MySQLDriver{db: db}, nil
	case SQLite:
		return &SQLiteDriver{db: db}, nil
	default:
		return nil, fmt.Errorf("unknown driver type: %s", driverType)
	}
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func ping(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return WrapConnectionError(fmt.Errorf("not connected"))
	}
	return db.PingContext(ctx)
}

// scanStrings collects a single string column
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, WrapQueryError(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapQueryError(err)
	}
	return out, nil
}

// isTextType follows SQLite's affinity rule, which also covers the MySQL
// and Postgres character types
func isTextType(t string) bool {
	t = strings.ToLower(t)
	for _, s := range []string{"char", "text", "clob", "enum", "uuid", "json"} {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
