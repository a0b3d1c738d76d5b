// internal/db/mysql.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	"github.com/go-sql-driver/mysql"
)

var mysqlNetSeq atomic.Int64

// MySQLDriver implements Driver for MySQL
type MySQLDriver struct {
	db      *sql.DB
	tunnel  *SSHTunnel // owned tunnel, nil when shared or direct
	netName string     // Registered network name for SSH
}

// Connect establishes connection to MySQL
func (d *MySQLDriver) Connect(ctx context.Context, params ConnectParams) error {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(params.Host, strconv.Itoa(portOr(params.Port, 3306)))
	cfg.DBName = params.Database
	cfg.ParseTime = true

	tunnel := params.Tunnel
	if tunnel == nil && params.SSHConfig != nil && params.SSHConfig.Host != "" {
		t, err := NewSSHTunnel(params.SSHConfig)
		if err != nil {
			return WrapConnectionError(fmt.Errorf("failed to create SSH tunnel: %w", err))
		}
		d.tunnel = t
		tunnel = t
	}
	if tunnel != nil {
		// Register a unique network for this connection
		d.netName = fmt.Sprintf("mysql+ssh+%d", mysqlNetSeq.Add(1))
		mysql.RegisterDialContext(d.netName, func(ctx context.Context, addr string) (net.Conn, error) {
			return tunnel.DialContext(ctx, "tcp", addr)
		})
		cfg.Net = d.netName
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		d.Close()
		return WrapConnectionError(err)
	}
	db := sql.OpenDB(connector)
	configurePool(db)

	// Verify connection immediately (sql.Open is lazy)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		d.Close()
		return WrapConnectionError(err)
	}

	d.db = db
	return nil
}

// Close closes the database connection and an owned SSH tunnel
func (d *MySQLDriver) Close() error {
	var dbErr error
	if d.db != nil {
		dbErr = d.db.Close()
	}

	if d.tunnel != nil {
		if err := d.tunnel.Close(); err != nil {
			if dbErr != nil {
				return fmt.Errorf("db close err: %v, tunnel close err: %w", dbErr, err)
			}
			return err
		}
	}
	return dbErr
}

// Ping checks if database is reachable
func (d *MySQLDriver) Ping(ctx context.Context) error {
	return ping(ctx, d.db)
}

// Type returns the driver type
func (d *MySQLDriver) Type() DriverType {
	return MySQL
}

// DB returns the underlying handle
func (d *MySQLDriver) DB() *sql.DB {
	return d.db
}

// Dialect returns MySQL quoting rules
func (d *MySQLDriver) Dialect() Dialect {
	return mysqlDialect{}
}

// GetTables returns a list of tables in the current database
func (d *MySQLDriver) GetTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	return scanStrings(rows)
}

// GetColumns returns detailed column metadata for a table
func (d *MySQLDriver) GetColumns(ctx context.Context, tableName string) ([]Column, error) {
	query := `
		SELECT
			COLUMN_NAME,
			COLUMN_TYPE,
			IS_NULLABLE = 'YES',
			COLUMN_KEY
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = ? AND TABLE_SCHEMA = DATABASE()
		ORDER BY ORDINAL_POSITION`

	rows, err := d.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, WrapQueryError(err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.Key); err != nil {
			return nil, WrapQueryError(err)
		}
		col.Text = isTextType(col.Type)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapQueryError(err)
	}
	return columns, nil
}

func portOr(port, def int) int {
	if port <= 0 {
		return def
	}
	return port
}
