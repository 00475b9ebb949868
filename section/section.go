// Copyright 2024 Wikimedia Foundation

// Package section maps logical database shard names ("sections") to ports
// and the filesystem/network conventions derived from them.
package section

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wikimedia/wmfdb"
	"github.com/wikimedia/wmfdb/event"
)

const (
	DefaultCfgPath = "/etc/wmfmariadbpy/section_ports.csv"

	// TestDataEnv switches NewMap to an embedded dataset instead of reading
	// from disk. For test hermeticity only.
	TestDataEnv = "WMFDB_SECTION_MAP_TEST_DATA"

	DefaultName = "default"
	DefaultPort = 3306

	defaultPromPort = 9104
)

const testData = `f0, 10110
f1, 10111
f2, 10112
f3, 10113
alpha, 10320
`

// Map maps between section names and port numbers. The "default" section is
// always valid and bound to port 3306 without appearing in the loaded table.
// Load once, then treat as read-only.
type Map struct {
	byName map[string]int
	byPort map[int]string
}

// NewMap loads the section table. If cfgPath is empty, DefaultCfgPath is
// read, unless TestDataEnv is set in the environment, in which case the
// embedded test dataset is used. Unlike my.cnf discovery, this file is
// mandatory: a missing or unreadable file is an error.
func NewMap(cfgPath string) (*Map, error) {
	m := &Map{
		byName: map[string]int{},
		byPort: map[int]string{},
	}
	if cfgPath == "" {
		if _, ok := os.LookupEnv(TestDataEnv); ok {
			if err := m.parse(strings.NewReader(testData)); err != nil {
				return nil, err
			}
			return m, nil
		}
		cfgPath = DefaultCfgPath
	}
	f, err := os.Open(cfgPath)
	if err != nil {
		return nil, wmfdb.IOErrorf(err, "loading section map")
	}
	defer f.Close()
	if err := m.parse(f); err != nil {
		event.Errorf(event.SECTION_MAP_ERROR, "%s", err)
		return nil, err
	}
	event.Sendf(event.SECTION_MAP_LOADED, "loaded %d sections from %s", len(m.byName), cfgPath)
	return m, nil
}

// parse reads "name, port" records. Duplicate names or ports are not
// rejected: the later record wins in each map independently.
func (m *Map) parse(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	line := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return wmfdb.ValueErrorf("line %d of config is not a name, port record: %s", line, err)
		}
		name := rec[0]
		if strings.TrimSpace(name) == "" {
			return wmfdb.ValueErrorf("line %d of config has a blank section entry", line)
		}
		port, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return wmfdb.ValueErrorf("line %d of config has an invalid port number: %s", line, rec[1])
		}
		m.byName[name] = port
		m.byPort[port] = name
	}
}

// Names returns all known section names, sorted. The implicit default
// section is not included.
func (m *Map) Names() []string {
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ports returns all known section ports, sorted. The implicit default
// section is not included.
func (m *Map) Ports() []int {
	ports := make([]int, 0, len(m.byPort))
	for port := range m.byPort {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports
}

func (m *Map) ByName(name string) (Section, error) {
	if name == DefaultName {
		return Section{Name: DefaultName, Port: DefaultPort}, nil
	}
	port, ok := m.byName[name]
	if !ok {
		return Section{}, wmfdb.ValueErrorf("invalid section name %q", name)
	}
	return New(name, port)
}

func (m *Map) ByPort(port int) (Section, error) {
	if port == DefaultPort {
		return Section{Name: DefaultName, Port: DefaultPort}, nil
	}
	name, ok := m.byPort[port]
	if !ok {
		return Section{}, wmfdb.ValueErrorf("invalid port number %d", port)
	}
	return New(name, port)
}

// Section is a validated (name, port) pair for one database shard.
type Section struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

// New validates and builds a Section. The name must be non-blank, the port
// positive, and the name is "default" if and only if the port is 3306.
func New(name string, port int) (Section, error) {
	if strings.TrimSpace(name) == "" {
		return Section{}, wmfdb.ValueErrorf("empty/blank section name %q", name)
	}
	if port <= 0 {
		return Section{}, wmfdb.ValueErrorf("invalid port number %d", port)
	}
	if name == DefaultName && port != DefaultPort {
		return Section{}, wmfdb.ValueErrorf("section %s must have default port (%d), not %d", name, DefaultPort, port)
	}
	if port == DefaultPort && name != DefaultName {
		return Section{}, wmfdb.ValueErrorf("port %d must have %s section name, not %s", port, DefaultName, name)
	}
	return Section{Name: name, Port: port}, nil
}

// SocketPath returns the mysqld unix socket path for the section,
// e.g. /run/mysqld/mysqld.s8.sock.
func (s Section) SocketPath() string {
	if s.Name == DefaultName {
		return "/run/mysqld/mysqld.sock"
	}
	return fmt.Sprintf("/run/mysqld/mysqld.%s.sock", s.Name)
}

// DataDir returns the mysql data directory, e.g. /srv/sqldata.s8.
func (s Section) DataDir() string {
	if s.Name == DefaultName {
		return "/srv/sqldata"
	}
	return "/srv/sqldata." + s.Name
}

// PromPort returns the prometheus mysqld-exporter port for the section.
func (s Section) PromPort() int {
	if s.Name == DefaultName {
		return defaultPromPort
	}
	return s.Port + 10000
}
