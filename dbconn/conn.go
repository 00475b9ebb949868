// Copyright 2024 Wikimedia Foundation

package dbconn

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	my "github.com/go-mysql/errors"
	ver "github.com/hashicorp/go-version"
)

// NoTimeout bypasses a default query timeout for a single call.
const NoTimeout = time.Duration(-1)

// DB wraps a *sql.DB to a single MariaDB instance. It injects per-query
// timeouts and formats the instance address for logging.
//
// Timeouts: a zero timeout argument means "use the default set with
// SetDefaultTimeout"; NoTimeout runs the query with no timeout even when a
// default is set. There is deliberately no batch-execute API: a timeout
// applies to one statement, so callers run statements one at a time.
type DB struct {
	db         *sql.DB
	user       string
	host       string
	socket     string
	port       int
	database   string
	defTimeout time.Duration
}

// SetDefaultTimeout sets the timeout used when Exec/Query are called with a
// zero timeout.
func (c *DB) SetDefaultTimeout(d time.Duration) {
	c.defTimeout = d
}

func (c *DB) Exec(ctx context.Context, timeout time.Duration, query string, args ...interface{}) (sql.Result, error) {
	return c.db.ExecContext(ctx, c.addTimeout(query, timeout), args...)
}

func (c *DB) Query(ctx context.Context, timeout time.Duration, query string, args ...interface{}) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, c.addTimeout(query, timeout), args...)
}

func (c *DB) QueryRow(ctx context.Context, timeout time.Duration, query string, args ...interface{}) *sql.Row {
	return c.db.QueryRowContext(ctx, c.addTimeout(query, timeout), args...)
}

// addTimeout prefixes query with a MariaDB per-statement time limit.
func (c *DB) addTimeout(query string, timeout time.Duration) string {
	if timeout == 0 {
		timeout = c.defTimeout
	}
	if timeout <= 0 {
		return query
	}
	secs := strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)
	return "SET STATEMENT max_statement_time=" + secs + " FOR " + query
}

// SelectDB changes the connection's current database.
func (c *DB) SelectDB(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, "USE `"+strings.ReplaceAll(name, "`", "")+"`"); err != nil {
		return err
	}
	c.database = name
	return nil
}

// CurrentDB returns the currently selected database, or "".
func (c *DB) CurrentDB() string {
	return c.database
}

func (c *DB) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *DB) Close() error {
	return c.db.Close()
}

// Host formats the instance host. IPv6 literals are bracketed, IPv4 is
// returned as-is, and hostnames are returned with the domain stripped.
func (c *DB) Host() string {
	h := c.host
	if c.socket != "" || h == "" {
		h = "localhost"
	}
	if strings.Contains(h, ":") {
		// IPv6
		return "[" + h + "]"
	}
	if h[0] >= '0' && h[0] <= '9' {
		// IPv4. WMF hostnames never start with a digit.
		return h
	}
	return strings.SplitN(h, ".", 2)[0]
}

// Addr formats the instance address: host:/path/to/socket for unix socket
// connections, host:port for non-3306 tcp ports, else just the host.
func (c *DB) Addr() string {
	h := c.Host()
	if c.socket != "" {
		return h + ":" + c.socket
	}
	if c.port != 3306 {
		return h + ":" + strconv.Itoa(c.port)
	}
	return h
}

// Desc formats the connection as user@addr[dbname], e.g.
// wikiadmin@db9999[plwiki]. The user is omitted when empty or root; a
// missing database shows as (none).
func (c *DB) Desc() string {
	name := c.database
	if name == "" {
		name = "(none)"
	}
	d := c.Addr() + "[" + name + "]"
	if c.user == "" || c.user == "root" {
		return d
	}
	return c.user + "@" + d
}

// Version returns the server version, or nil on query or parse failure.
func (c *DB) Version(ctx context.Context) *ver.Version {
	var val string
	if err := c.db.QueryRowContext(ctx, "SELECT @@version").Scan(&val); err != nil {
		return nil
	}
	// Strip distribution suffixes like 10.6.17-MariaDB-log.
	v, err := ver.NewVersion(strings.SplitN(val, "-", 2)[0])
	if err != nil {
		return nil
	}
	return v
}

// ReadOnly reports whether err is MySQL's read-only error.
func ReadOnly(err error) bool {
	mysqlError, myerr := my.Error(err)
	if !mysqlError {
		return false
	}
	return myerr == my.ErrReadOnly
}

// Down reports whether err means the instance cannot be reached at all.
func Down(err error) bool {
	mysqlError, myerr := my.Error(err)
	if !mysqlError {
		return false
	}
	return myerr == my.ErrCannotConnect || myerr == my.ErrConnLost
}
