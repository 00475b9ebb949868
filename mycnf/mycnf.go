// Copyright 2024 Wikimedia Foundation

// Package mycnf reads mysql/mariadb .cnf files.
//
// my.cnf files are ini-like, with some non-standard differences:
//   - Dashes and underscores in key names are interchangeable:
//     "max-allowed-packet" is the same key as "max_allowed_packet" and
//     "max-allowed_packet".
//   - Single or double quotes around values are stripped.
//   - Values can have inline comments starting with #, unless the # falls
//     inside a quoted value: `port = 3306 # default` reads as "3306", but
//     `port = "3306 # default"` reads as "3306 # default".
//
// mysql loads .cnf files in a given order, later values overriding earlier
// ones, and can be told to search multiple sections for a key (first match
// wins). Cnf supports both via Load and the section order given to New.
package mycnf

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"

	"github.com/wikimedia/wmfdb"
	"github.com/wikimedia/wmfdb/event"
)

// DefaultPaths are the config files mysql reads by default, in load order.
var DefaultPaths = []string{
	"/etc/my.cnf",
	"/etc/mysql/my.cnf",
	"~/.my.cnf",
}

// DefaultSectionOrder is the section search order the mysql CLI uses.
var DefaultSectionOrder = []string{"client"}

// Cnf reads values from one or more my.cnf files. Load files first, then
// read; instances are not safe for concurrent load and read.
type Cnf struct {
	sectionOrder []string
	// section -> normalized key -> raw (uncleaned) value
	store map[string]map[string]string
}

func New(sectionOrder ...string) *Cnf {
	if len(sectionOrder) == 0 {
		sectionOrder = DefaultSectionOrder
	}
	return &Cnf{
		sectionOrder: sectionOrder,
		store:        map[string]map[string]string{},
	}
}

// normalizeKey maps the dash/underscore key variants to one spelling.
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// Load reads my.cnf files in order, later files overriding earlier ones for
// the same section and key. Paths that don't exist or aren't readable are
// skipped. Returns the number of files actually loaded.
func (c *Cnf) Load(paths []string) (int, error) {
	found := findCfgs(paths)
	wmfdb.Debug("config files: %v (of %v)", found, paths)
	for n, path := range found {
		if err := c.loadCfg(path); err != nil {
			event.Errorf(event.CONFIG_ERROR, "%s", err)
			return n, err
		}
	}
	event.Sendf(event.CONFIG_LOADED, "loaded %d config files", len(found))
	return len(found), nil
}

func (c *Cnf) loadCfg(path string) error {
	opts := ini.LoadOptions{
		AllowBooleanKeys:        true,
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}
	f, err := ini.LoadSources(opts, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return wmfdb.IOErrorf(err, "loading %s", path)
		}
		return wmfdb.ValueErrorf("parsing %s: %s", path, err)
	}
	// mysql requires every option to appear under a [section] header.
	if keys := f.Section(ini.DefaultSection).KeyStrings(); len(keys) > 0 {
		return wmfdb.ValueErrorf("parsing %s: no section header before %q", path, keys[0])
	}
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		m := c.store[sec.Name()]
		if m == nil {
			m = map[string]string{}
			c.store[sec.Name()] = m
		}
		for _, k := range sec.Keys() {
			m[normalizeKey(k.Name())] = k.Value()
		}
	}
	return nil
}

// findCfgs filters out missing and unreadable files, expanding ~ first.
func findCfgs(paths []string) []string {
	var found []string
	for _, path := range paths {
		path = expandHome(path)
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		f.Close()
		found = append(found, path)
	}
	return found
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// get searches the section order for key, returning the owning section and
// the cleaned value of the first match.
func (c *Cnf) get(key string) (section, val string, ok bool) {
	key = normalizeKey(key)
	for _, sec := range c.sectionOrder {
		if raw, ok := c.store[sec][key]; ok {
			return sec, cleanValue(raw), true
		}
	}
	return "", "", false
}

func (c *Cnf) GetString(key string) (string, bool) {
	_, val, ok := c.get(key)
	return val, ok
}

func (c *Cnf) GetInt(key string) (int, bool, error) {
	sec, val, ok := c.get(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, false, wmfdb.ValueErrorf("mysql config value [%s]%s has non-integer value: %q", sec, key, val)
	}
	return n, true, nil
}

func (c *Cnf) GetFloat(key string) (float64, bool, error) {
	sec, val, ok := c.get(key)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, false, wmfdb.ValueErrorf("mysql config value [%s]%s has non-float value: %q", sec, key, val)
	}
	return f, true, nil
}

func (c *Cnf) GetBool(key string) (bool, bool, error) {
	sec, val, ok := c.get(key)
	if !ok {
		return false, false, nil
	}
	switch strings.ToLower(val) {
	case "true", "1", "on":
		return true, true, nil
	case "false", "0", "off":
		return false, true, nil
	}
	return false, false, wmfdb.ValueErrorf("mysql config value [%s]%s has non-boolean value: %q", sec, key, val)
}

// GetNoValue reports whether key is present at all. Some keys are flags with
// no value, e.g. ssl_verify_server_cert. The double return mirrors the other
// getters.
func (c *Cnf) GetNoValue(key string) (bool, bool) {
	_, _, ok := c.get(key)
	return ok, ok
}
