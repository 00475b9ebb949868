package dbconn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/wmfdb/mycnf"
)

func TestAddTimeout(t *testing.T) {
	c := &DB{}

	// No default, no timeout: query unchanged.
	assert.Equal(t, "SELECT 1", c.addTimeout("SELECT 1", 0))

	// Explicit timeout.
	assert.Equal(t,
		"SET STATEMENT max_statement_time=1.5 FOR SELECT 1",
		c.addTimeout("SELECT 1", 1500*time.Millisecond))

	// Default timeout applies when the per-call timeout is zero.
	c.SetDefaultTimeout(30 * time.Second)
	assert.Equal(t,
		"SET STATEMENT max_statement_time=30 FOR SELECT 1",
		c.addTimeout("SELECT 1", 0))

	// NoTimeout bypasses the default.
	assert.Equal(t, "SELECT 1", c.addTimeout("SELECT 1", NoTimeout))
}

func TestHostFormatting(t *testing.T) {
	cases := []struct {
		host   string
		socket string
		expect string
	}{
		{"2001:db8::11", "", "[2001:db8::11]"},
		{"192.0.2.1", "", "192.0.2.1"},
		{"db2099.codfw.wmnet", "", "db2099"},
		{"db2099", "", "db2099"},
		{"db2099", "/run/mysqld/mysqld.sock", "localhost"},
	}
	for _, c := range cases {
		db := &DB{host: c.host, socket: c.socket}
		assert.Equal(t, c.expect, db.Host(), "host %q socket %q", c.host, c.socket)
	}
}

func TestAddrFormatting(t *testing.T) {
	db := &DB{host: "db2099.codfw.wmnet", port: 3306}
	assert.Equal(t, "db2099", db.Addr())

	db = &DB{host: "db2099.codfw.wmnet", port: 3317}
	assert.Equal(t, "db2099:3317", db.Addr())

	db = &DB{host: "localhost", port: 3306, socket: "/run/mysqld/mysqld.s1.sock"}
	assert.Equal(t, "localhost:/run/mysqld/mysqld.s1.sock", db.Addr())
}

func TestDesc(t *testing.T) {
	db := &DB{user: "wikiadmin", host: "db9999", port: 3306, database: "plwiki"}
	assert.Equal(t, "wikiadmin@db9999[plwiki]", db.Desc())

	// root and empty users are omitted; missing database shows as (none).
	db = &DB{user: "root", host: "db9999", port: 3306}
	assert.Equal(t, "db9999[(none)]", db.Desc())

	db = &DB{host: "db9999", port: 3306}
	assert.Equal(t, "db9999[(none)]", db.Desc())
}

func TestOpenRedactsPassword(t *testing.T) {
	db, dsn, err := Open(mycnf.ConnParams{
		User:     "wikiadmin",
		Password: "hunter2",
		Host:     "db2099.codfw.wmnet",
		Port:     3317,
	})
	require.NoError(t, err)
	defer db.Close()

	assert.NotContains(t, dsn, "hunter2")
	assert.Contains(t, dsn, "...")
	assert.Contains(t, dsn, "db2099.codfw.wmnet:3317")
}

func TestOpenSocket(t *testing.T) {
	db, dsn, err := Open(mycnf.ConnParams{
		User:       "root",
		UnixSocket: "/run/mysqld/mysqld.sock",
	})
	require.NoError(t, err)
	defer db.Close()

	assert.Contains(t, dsn, "unix(/run/mysqld/mysqld.sock)")
	assert.Equal(t, "localhost:/run/mysqld/mysqld.sock", db.Addr())
}

func TestErrorClassifiers(t *testing.T) {
	assert.False(t, ReadOnly(nil))
	assert.False(t, Down(nil))
}
