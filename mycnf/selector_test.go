package mycnf

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorSelect(t *testing.T) {
	s := NewSelector(DefaultSectionOrder, DefaultRules())

	cloud := s.Select("clouddb1001")
	assert.NotSame(t, s.def, cloud)
	assert.Same(t, cloud, s.Select("clouddb1001.eqiad.wmnet"))

	assert.Same(t, s.def, s.Select("db1001"))
	assert.Same(t, s.def, s.Select("db1001.eqiad.wmnet"))
	// Pattern must match the full host, not a substring.
	assert.Same(t, s.def, s.Select("notclouddb1001"))
}

func TestSelectorFirstRuleWins(t *testing.T) {
	rules := []Rule{
		{Pattern: regexp.MustCompile(`^db1\d+$`), SectionOrder: []string{"clientextra", "client"}},
		{Pattern: regexp.MustCompile(`^db\d+$`), SectionOrder: []string{"client"}},
	}
	s := NewSelector(DefaultSectionOrder, rules)
	assert.Same(t, s.patterns[0].cnf, s.Select("db1002"))
	assert.Same(t, s.patterns[1].cnf, s.Select("db2002"))
}

func TestSelectorLoad(t *testing.T) {
	s := NewSelector(DefaultSectionOrder, DefaultRules())
	n, err := s.Load([]string{fixture("base.cnf"), fixture("labsdb.cnf")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Cloud hosts read [clientlabsdb] first.
	val, ok := s.Select("clouddb1001").GetString("user")
	assert.True(t, ok)
	assert.Equal(t, "labsuser", val)

	val, ok = s.Select("db1001").GetString("user")
	assert.True(t, ok)
	assert.Equal(t, "user1", val)
}

func TestSelectorConnParams(t *testing.T) {
	s := NewSelector(DefaultSectionOrder, DefaultRules())
	_, err := s.Load([]string{fixture("base.cnf"), fixture("labsdb.cnf")})
	require.NoError(t, err)

	params, err := s.ConnParams("clouddb1001", ConnParams{})
	require.NoError(t, err)
	assert.Equal(t, "labsuser", params.User)
	assert.Equal(t, "labs # secret", params.Password)
	assert.Equal(t, "clouddb1001", params.Host)

	// Overrides beat the host argument.
	params, err = s.ConnParams("db1001", ConnParams{Host: "db2002"})
	require.NoError(t, err)
	assert.Equal(t, "user1", params.User)
	assert.Equal(t, "db2002", params.Host)
}
