// db-mysql is a thin wrapper around the mysql command line client: it
// resolves an instance address (hostname, section alias, datacenter) and
// execs mysql with the derived flags. All unrecognized arguments are passed
// through.
//
// Example:
//
//	db-mysql --log=debug db1115:s3 -e 'show global status'
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"gopkg.in/yaml.v2"

	"github.com/wikimedia/wmfdb"
	"github.com/wikimedia/wmfdb/addr"
	"github.com/wikimedia/wmfdb/event"
	"github.com/wikimedia/wmfdb/mycnf"
	"github.com/wikimedia/wmfdb/mysqlcli"
	"github.com/wikimedia/wmfdb/section"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "db-mysql:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := mysqlcli.ParseArgs(os.Args[1:])
	if err != nil {
		return err
	}
	if strings.EqualFold(opts.Log, "debug") || os.Getenv(wmfdb.ENV_DEBUG) != "" {
		wmfdb.Debugging = true
		event.SetReceiver(event.Log{All: true}, true)
	}

	sm, err := section.NewMap("")
	if err != nil {
		return err
	}

	args, err := mysqlcli.BuildCommand(opts, sm)
	if err != nil {
		return err
	}

	if opts.PrintDefaults {
		host, _, err := addr.Split(opts.Instance, sm, section.DefaultPort)
		if err != nil {
			return err
		}
		if err := printDefaults(host); err != nil {
			return err
		}
	}

	bin, err := exec.LookPath(mysqlcli.MysqlBin)
	if err != nil {
		return fmt.Errorf("unable to execute command %q: %s", mysqlcli.MysqlBin, err)
	}
	event.Sendf(event.MYSQL_EXEC, "execing: %v", args)
	return syscall.Exec(bin, args, os.Environ())
}

// printDefaults shows the connection parameters the config files would
// produce for host, as YAML on stderr (stdout belongs to mysql).
func printDefaults(host string) error {
	sel := mycnf.NewSelector(mycnf.DefaultSectionOrder, mycnf.DefaultRules())
	if _, err := sel.Load(mycnf.DefaultPaths); err != nil {
		return err
	}
	params, err := sel.ConnParams(host, mycnf.ConnParams{})
	if err != nil {
		return err
	}
	params.Password = ""
	bytes, err := yaml.Marshal(params)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stderr, string(bytes))
	return nil
}
