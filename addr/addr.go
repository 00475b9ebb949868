// Package addr splits and resolves database instance addresses.
package addr

import (
	"context"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/wikimedia/wmfdb"
	"github.com/wikimedia/wmfdb/section"
)

// dcs maps the single-digit datacenter code embedded in WMF hostnames to
// the datacenter name used in FQDNs.
var dcs = map[int]string{
	1: "eqiad",
	2: "codfw",
	3: "esams",
	4: "ulsfo",
	5: "eqsin",
	6: "drmrs",
}

var (
	dcRx       = regexp.MustCompile(`^[a-zA-Z]+(\d)\d{3}$`)
	bracketsRx = regexp.MustCompile(`^\[([^\]]+)\](?::(\w+))?$`)
)

// Split splits an address into (host, port).
//
// Supported forms:
//   - Plain ipv4: "192.0.2.1"
//   - ipv4+port: "192.0.2.1:3007"
//   - Plain ipv6: "2001:db8::11" or "[2001:db8::11]"
//   - ipv6+port: "[2001:db8::11]:3116"
//   - Plain hostname: "db2034"
//   - Hostname+port: "db2054.codfw.wmnet:3241"
//
// A port alias (e.g. ":s4") is mapped to its tcp port via sm. If the address
// carries no port, defPort is returned. Hostname and IP formats are not
// otherwise validated.
func Split(addr string, sm *section.Map, defPort int) (string, int, error) {
	host := addr
	portStr := ""
	if strings.Count(addr, ":") > 1 {
		// IPv6
		if strings.HasPrefix(addr, "[") {
			m := bracketsRx.FindStringSubmatch(addr)
			if m == nil {
				return "", 0, wmfdb.ValueErrorf("invalid [ipv6]:port format: %q", addr)
			}
			host, portStr = m[1], m[2]
		}
		// plain ipv6: no port possible
	} else if i := strings.IndexByte(addr, ':'); i >= 0 {
		host, portStr = addr[:i], addr[i+1:]
	}

	if portStr == "" {
		return host, defPort, nil
	}
	if port, err := strconv.Atoi(portStr); err == nil {
		return host, port, nil
	}
	sec, err := sm.ByName(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, sec.Port, nil
}

// Resolve resolves a hostname or IP literal to an FQDN. IPs resolve via
// reverse DNS (loopback addresses map to "localhost"); bare hostnames get a
// datacenter suffix inferred from their embedded datacenter code.
func Resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return resolveIP(ctx, ip)
	}
	return dcMap(host)
}

func resolveIP(ctx context.Context, ip net.IP) (string, error) {
	if ip.IsLoopback() {
		return "localhost", nil
	}
	names, err := net.DefaultResolver.LookupAddr(ctx, ip.String())
	if err != nil {
		return "", wmfdb.ValueErrorf("unable to resolve ip address %q: %s", ip.String(), err)
	}
	if len(names) == 0 {
		return "", wmfdb.ValueErrorf("unable to resolve ip address %q: no PTR records", ip.String())
	}
	return strings.TrimSuffix(names[0], "."), nil
}

func dcMap(host string) (string, error) {
	m := dcRx.FindStringSubmatch(host)
	if m == nil {
		return "", wmfdb.ValueErrorf("no datacenter ID detected in %q", host)
	}
	dcID, _ := strconv.Atoi(m[1])
	dc, ok := dcs[dcID]
	if !ok {
		return "", wmfdb.ValueErrorf("unknown datacenter ID %d (from %q)", dcID, host)
	}
	return host + "." + dc + ".wmnet", nil
}
