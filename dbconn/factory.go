// Package dbconn opens connections to MariaDB instances in the fleet and
// wraps them with per-query timeouts and descriptive formatting.
package dbconn

import (
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/wikimedia/wmfdb"
	"github.com/wikimedia/wmfdb/event"
	"github.com/wikimedia/wmfdb/mycnf"
)

const tlsConfigName = "wmfdb"

// Open makes a *sql.DB for the given connection parameters. On success it
// also returns a print-safe DSN (password replaced by "..."). The params
// must be complete: config files and overrides already merged, which is done
// by mycnf.Cnf.ConnParams.
func Open(params mycnf.ConnParams) (*DB, string, error) {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.DBName = params.Database

	if params.UnixSocket != "" {
		cfg.Net = "unix"
		cfg.Addr = params.UnixSocket
	} else {
		host := params.Host
		if host == "" {
			host = "localhost"
		}
		port := params.Port
		if port == 0 {
			port = 3306
		}
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	if params.Charset != "" {
		cfg.Params = map[string]string{"charset": params.Charset}
	}
	if params.ConnectTimeout > 0 {
		cfg.Timeout = time.Duration(params.ConnectTimeout * float64(time.Second))
	}
	if params.SSLCA != "" || params.SSLCert != "" {
		if err := registerTLS(params); err != nil {
			return nil, "", err
		}
		cfg.TLSConfig = tlsConfigName
	}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(3)
	db.SetMaxIdleConns(3)

	redacted := *cfg
	if redacted.Passwd != "" {
		redacted.Passwd = "..."
	}

	conn := &DB{
		db:       db,
		user:     params.User,
		host:     params.Host,
		socket:   params.UnixSocket,
		port:     params.Port,
		database: params.Database,
	}
	if conn.host == "" {
		conn.host = "localhost"
	}
	if conn.port == 0 {
		conn.port = 3306
	}

	ev := event.InstanceReceiver{Addr: conn.Addr()}
	ev.Sendf(event.CONN_OPENED, "opened %s", redacted.FormatDSN())

	return conn, redacted.FormatDSN(), nil
}

// registerTLS registers a driver TLS config built from the ssl_* params.
// Registration uses one fixed name; the last Open call wins, which is fine
// for a toolkit that opens one instance at a time.
func registerTLS(params mycnf.ConnParams) error {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: !params.SSLVerifyCert,
	}
	if params.SSLCA != "" {
		pem, err := os.ReadFile(params.SSLCA)
		if err != nil {
			return wmfdb.IOErrorf(err, "reading ssl_ca")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return wmfdb.ValueErrorf("no certificates found in ssl_ca file %s", params.SSLCA)
		}
		tlsCfg.RootCAs = pool
	}
	if params.SSLCert != "" && params.SSLKey != "" {
		cert, err := tls.LoadX509KeyPair(params.SSLCert, params.SSLKey)
		if err != nil {
			return wmfdb.ValueErrorf("loading ssl_cert/ssl_key: %s", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return mysql.RegisterTLSConfig(tlsConfigName, tlsCfg)
}
