// Package mysqlcli builds the command line for the mysql client binary from
// a resolved instance address. The binary itself is exec'd by bin/db-mysql.
package mysqlcli

import (
	"strconv"
	"strings"

	"github.com/wikimedia/wmfdb"
	"github.com/wikimedia/wmfdb/addr"
	"github.com/wikimedia/wmfdb/section"
)

const (
	// MysqlBin is the client binary exec'd with the built arguments.
	MysqlBin = "mysql"

	// DefaultSSLCA is the CA the fleet's server certs are signed with.
	DefaultSSLCA = "/etc/ssl/certs/Puppet_Internal_CA.pem"

	// cloudHostPrefix marks cloud-hosted replicas, which need an alternate
	// defaults group for credentials.
	cloudHostPrefix = "clouddb"
)

// Options are the wrapper's own flags. Anything not recognized is passed
// through to the mysql binary untouched.
type Options struct {
	Instance      string
	Log           string
	SkipSSL       bool
	PrintDefaults bool
	Rest          []string
}

// ParseArgs splits args into wrapper options and mysql passthrough
// arguments. The first bare (non-flag) argument is the instance; every
// unrecognized argument is kept, in order, for the mysql binary. A plain
// flags library can't express this parse-known-args split, hence the manual
// scan.
func ParseArgs(args []string) (Options, error) {
	var o Options
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--skip-ssl":
			o.SkipSSL = true
		case a == "--print-defaults":
			o.PrintDefaults = true
		case a == "--log":
			if i+1 >= len(args) {
				return o, wmfdb.ValueErrorf("--log requires a value")
			}
			i++
			o.Log = args[i]
		case strings.HasPrefix(a, "--log="):
			o.Log = strings.TrimPrefix(a, "--log=")
		case o.Instance == "" && !strings.HasPrefix(a, "-"):
			o.Instance = a
		default:
			o.Rest = append(o.Rest, a)
		}
	}
	if o.Instance == "" {
		return o, wmfdb.ValueErrorf("missing instance argument")
	}
	return o, nil
}

// SSLArgs returns the TLS arguments for the mysql command line. An empty CA
// enables TLS without server verification.
func SSLArgs(sslCA string) []string {
	args := []string{"--ssl"}
	if sslCA != "" {
		args = append(args, "--ssl-ca="+sslCA, "--ssl-verify-server-cert")
	}
	return args
}

// BuildCommand resolves the instance address and returns the full mysql
// argv, starting with MysqlBin.
func BuildCommand(o Options, sm *section.Map) ([]string, error) {
	host, port, err := addr.Split(o.Instance, sm, section.DefaultPort)
	if err != nil {
		return nil, err
	}
	args := []string{MysqlBin, "-h", host, "-P", strconv.Itoa(port)}
	if !o.SkipSSL {
		args = append(args, SSLArgs(DefaultSSLCA)...)
	}
	if strings.HasPrefix(host, cloudHostPrefix) {
		args = append(args, "--defaults-group-suffix=labsdb")
	}
	args = append(args, o.Rest...)
	return args, nil
}
