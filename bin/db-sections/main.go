// db-sections is an operator tool for the section table: list sections,
// inspect one section's derived paths and ports, or split and resolve an
// instance address.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alexflint/go-arg"
	"gopkg.in/yaml.v2"

	"github.com/wikimedia/wmfdb"
	"github.com/wikimedia/wmfdb/addr"
	"github.com/wikimedia/wmfdb/section"
)

type commandLine struct {
	Names   bool   `arg:"--names" help:"list section names"`
	Ports   bool   `arg:"--ports" help:"list section ports"`
	Resolve string `arg:"--resolve" placeholder:"ADDR" help:"split ADDR and resolve its host to an FQDN"`
	Cfg     string `arg:"--cfg" placeholder:"PATH" help:"section ports csv file"`
	Debug   bool   `arg:"--debug" env:"WMFDB_DEBUG"`
	Section string `arg:"positional" help:"section name to describe"`
}

func (commandLine) Version() string {
	return "db-sections " + wmfdb.VERSION
}

// sectionInfo is the YAML shape for one described section.
type sectionInfo struct {
	Section    section.Section `yaml:",inline"`
	SocketPath string          `yaml:"socket_path"`
	DataDir    string          `yaml:"data_dir"`
	PromPort   int             `yaml:"prom_port"`
}

func main() {
	var c commandLine
	p := arg.MustParse(&c)
	wmfdb.Debugging = c.Debug

	if err := run(c); err != nil {
		p.Fail(err.Error())
	}
}

func run(c commandLine) error {
	sm, err := section.NewMap(c.Cfg)
	if err != nil {
		return err
	}

	switch {
	case c.Names:
		for _, name := range sm.Names() {
			fmt.Println(name)
		}
	case c.Ports:
		for _, port := range sm.Ports() {
			fmt.Println(port)
		}
	case c.Resolve != "":
		return resolve(c.Resolve, sm)
	case c.Section != "":
		sec, err := sm.ByName(c.Section)
		if err != nil {
			return err
		}
		return printYAML(sectionInfo{
			Section:    sec,
			SocketPath: sec.SocketPath(),
			DataDir:    sec.DataDir(),
			PromPort:   sec.PromPort(),
		})
	default:
		return wmfdb.ValueErrorf("nothing to do: pass --names, --ports, --resolve, or a section name")
	}
	return nil
}

func resolve(instance string, sm *section.Map) error {
	host, port, err := addr.Split(instance, sm, section.DefaultPort)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fqdn, err := addr.Resolve(ctx, host)
	if err != nil {
		return err
	}
	return printYAML(map[string]interface{}{
		"host": host,
		"port": port,
		"fqdn": fqdn,
	})
}

func printYAML(v interface{}) error {
	bytes, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(bytes))
	return nil
}
