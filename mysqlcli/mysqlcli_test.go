package mysqlcli_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/wmfdb/mysqlcli"
	"github.com/wikimedia/wmfdb/section"
)

func testMap(t *testing.T) *section.Map {
	t.Helper()
	t.Setenv(section.TestDataEnv, "y")
	sm, err := section.NewMap("")
	require.NoError(t, err)
	return sm
}

func TestParseArgs(t *testing.T) {
	opts, err := mysqlcli.ParseArgs([]string{"--log=debug", "db1115:f3", "-e", "show global status"})
	require.NoError(t, err)
	assert.Equal(t, "db1115:f3", opts.Instance)
	assert.Equal(t, "debug", opts.Log)
	assert.Equal(t, []string{"-e", "show global status"}, opts.Rest)

	opts, err = mysqlcli.ParseArgs([]string{"--log", "info", "--skip-ssl", "db2099"})
	require.NoError(t, err)
	assert.Equal(t, "info", opts.Log)
	assert.True(t, opts.SkipSSL)
	assert.Equal(t, "db2099", opts.Instance)
	assert.Empty(t, opts.Rest)
}

func TestParseArgsErrors(t *testing.T) {
	_, err := mysqlcli.ParseArgs([]string{"--skip-ssl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing instance")

	_, err = mysqlcli.ParseArgs([]string{"db2099", "--log"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log requires a value")
}

func TestSSLArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"--ssl", "--ssl-ca=/etc/ssl/certs/Puppet_Internal_CA.pem", "--ssl-verify-server-cert"},
		mysqlcli.SSLArgs(mysqlcli.DefaultSSLCA))
	assert.Equal(t, []string{"--ssl"}, mysqlcli.SSLArgs(""))
}

func TestBuildCommand(t *testing.T) {
	sm := testMap(t)
	opts, err := mysqlcli.ParseArgs([]string{"--skip-ssl", "db1115:f3", "-e", "select 1"})
	require.NoError(t, err)

	args, err := mysqlcli.BuildCommand(opts, sm)
	require.NoError(t, err)
	expect := []string{"mysql", "-h", "db1115", "-P", "10113", "-e", "select 1"}
	if diff := deep.Equal(expect, args); diff != nil {
		t.Error(diff)
	}
}

func TestBuildCommandSSL(t *testing.T) {
	sm := testMap(t)
	opts, err := mysqlcli.ParseArgs([]string{"db2099"})
	require.NoError(t, err)

	args, err := mysqlcli.BuildCommand(opts, sm)
	require.NoError(t, err)
	assert.Contains(t, args, "--ssl")
	assert.Contains(t, args, "--ssl-verify-server-cert")
}

func TestBuildCommandCloudHost(t *testing.T) {
	sm := testMap(t)
	opts, err := mysqlcli.ParseArgs([]string{"--skip-ssl", "clouddb1021:alpha"})
	require.NoError(t, err)

	args, err := mysqlcli.BuildCommand(opts, sm)
	require.NoError(t, err)
	expect := []string{"mysql", "-h", "clouddb1021", "-P", "10320", "--defaults-group-suffix=labsdb"}
	if diff := deep.Equal(expect, args); diff != nil {
		t.Error(diff)
	}
}

func TestBuildCommandBadAlias(t *testing.T) {
	sm := testMap(t)
	opts, err := mysqlcli.ParseArgs([]string{"db2099:nosuch"})
	require.NoError(t, err)

	_, err = mysqlcli.BuildCommand(opts, sm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid section name")
}
