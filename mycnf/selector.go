package mycnf

import (
	"regexp"
)

// cloudHostRx matches cloud-hosted database hostnames (clouddb1021,
// clouddb1021.eqiad.wmnet, etc.). Those replicas read credentials from a
// [clientlabsdb] section before falling back to [client].
var cloudHostRx = regexp.MustCompile(`^clouddb\d+(\.[\w.-]+)?$`)

// A Rule routes hosts whose name fully matches Pattern to a parser with the
// given section search order. Rules are evaluated in order, first match wins.
type Rule struct {
	Pattern      *regexp.Regexp
	SectionOrder []string
}

func DefaultRules() []Rule {
	return []Rule{
		{Pattern: cloudHostRx, SectionOrder: []string{"clientlabsdb", "client"}},
	}
}

type patternCnf struct {
	rule Rule
	cnf  *Cnf
}

// Selector routes a hostname to the right Cnf. All owned parsers load the
// same file set; they differ only in section search order.
type Selector struct {
	def      *Cnf
	patterns []patternCnf
}

func NewSelector(defaultOrder []string, rules []Rule) *Selector {
	s := &Selector{
		def: New(defaultOrder...),
	}
	for _, r := range rules {
		s.patterns = append(s.patterns, patternCnf{rule: r, cnf: New(r.SectionOrder...)})
	}
	return s
}

// Select returns the parser for the first rule whose pattern fully matches
// host, else the default parser.
func (s *Selector) Select(host string) *Cnf {
	for _, p := range s.patterns {
		if m := p.rule.Pattern.FindStringIndex(host); m != nil && m[0] == 0 && m[1] == len(host) {
			return p.cnf
		}
	}
	return s.def
}

// Load loads the same path list into every owned parser. The returned count
// is from the default parser; all parsers see the same file set.
func (s *Selector) Load(paths []string) (int, error) {
	n, err := s.def.Load(paths)
	if err != nil {
		return n, err
	}
	for _, p := range s.patterns {
		if _, err := p.cnf.Load(paths); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ConnParams builds connection parameters for host using the parser Select
// picks for it. The host is merged into overrides unless one is already set.
func (s *Selector) ConnParams(host string, overrides ConnParams) (ConnParams, error) {
	if overrides.Host == "" {
		overrides.Host = host
	}
	return s.Select(host).ConnParams(overrides)
}
