package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdbebridge "github.com/opengovern/pdbe-bridge"
	"github.com/opengovern/pdbe-bridge/mock"
)

func run(t *testing.T, tr *mock.Transport, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(
		pdbebridge.WithTransport(tr),
		pdbebridge.WithClock(mock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
	)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGroupsAndOperations(t *testing.T) {
	out, err := run(t, &mock.Transport{}, "groups")
	require.NoError(t, err)
	assert.Contains(t, out, "The following endpoints are available:")
	assert.Contains(t, out, "\n    SIFTS\n")

	out, err = run(t, &mock.Transport{}, "operations", "COMPOUNDS")
	require.NoError(t, err)
	assert.Contains(t, out, "    getInPdbs\n")

	_, err = run(t, &mock.Transport{}, "operations", "NOPE")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestDescribe(t *testing.T) {
	out, err := run(t, &mock.Transport{}, "describe", "PISA", "getAssemblyComponent")
	require.NoError(t, err)

	assert.Contains(t, out, "PISA.getAssemblyComponent\n")
	assert.Contains(t, out, "url:          api/pisa/assemblycomponent/{{pdbid}}/{{assemblyid}}/{{assembly_index}}/{{assembly_component}}")
	assert.Contains(t, out, "methods:      GET\n")
	assert.Contains(t, out, "assembly_index (int): Index of assembly, zero based.")
	assert.Contains(t, out, "one of: energetics, interfaces, monomers")
	assert.NotContains(t, out, "post body:")
}

func TestCall(t *testing.T) {
	tr := &mock.Transport{Default: mock.Response{StatusCode: 200, Body: `{"1cbs":[{"title":"CRABP2"}]}`}}

	out, err := run(t, tr, "call", "PDB", "getSummary", "pdbid=1cbs")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"1cbs\": [\n        {\n            \"title\": \"CRABP2\"\n        }\n    ]\n}\n", out)
	assert.Equal(t, "https://www.ebi.ac.uk/pdbe/api/pdb/entry/summary/1cbs", tr.LastRequest().URL)

	out, err = run(t, tr, "call", "PDB", "getSummary", "pdbid=1cbs,2pah", "-X", "post", "--compact", "--base-url", "http://localhost:9000/")
	require.NoError(t, err)
	assert.Equal(t, "{\"1cbs\":[{\"title\":\"CRABP2\"}]}\n", out)
	assert.Equal(t, "POST", tr.LastRequest().Method)
	assert.Equal(t, "http://localhost:9000/api/pdb/entry/summary/", tr.LastRequest().URL)
	assert.Equal(t, "1cbs,2pah", string(tr.LastRequest().Body))
}

func TestCall_Errors(t *testing.T) {
	tr := &mock.Transport{}

	_, err := run(t, tr, "call", "PDB", "getSummary")
	assert.True(t, errors.Is(err, pdbebridge.ErrMissingParameter))
	assert.Equal(t, 2, ExitCode(err))

	_, err = run(t, tr, "call", "PDB", "getSummary", "1cbs")
	assert.Equal(t, 2, ExitCode(err))

	_, err = run(t, tr, "call", "PDB", "getSummary", "pdbid=1cbs", "pdbid=2pah")
	assert.Contains(t, err.Error(), "given twice")
	assert.Zero(t, tr.RequestCount())

	tr.Default = mock.Response{StatusCode: 404}
	_, err = run(t, tr, "call", "PDB", "getSummary", "pdbid=0000")
	assert.Equal(t, 404, pdbebridge.StatusCode(err))
	assert.Equal(t, 1, ExitCode(err))
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"pdbid=1cbs", "query=q=*:*&rows=5"})
	require.NoError(t, err)
	assert.Equal(t, pdbebridge.Params{"pdbid": "1cbs", "query": "q=*:*&rows=5"}, params)

	_, err = parseParams([]string{"=1cbs"})
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdbe.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url    = "http://localhost:9000/pdbe/"
method      = "post"
pretty_json = false
headers     = { "X-Trace" = "1" }

transport {
  timeout        = "10s"
  max_idle_conns = 2
}
`), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/pdbe/", cfg.BaseURL)
	assert.Equal(t, "post", cfg.Method)
	require.NotNil(t, cfg.PrettyJSON)
	assert.False(t, *cfg.PrettyJSON)
	assert.Equal(t, map[string]string{"X-Trace": "1"}, cfg.Headers)
	assert.Equal(t, map[string]any{"timeout": "10s", "max_idle_conns": 2}, cfg.Options)

	tr := &mock.Transport{}
	_, err = run(t, tr, "--config", path, "call", "PDB", "getMolecules", "pdbid=1cbs")
	require.NoError(t, err)
	assert.Equal(t, "POST", tr.LastRequest().Method)
	assert.Equal(t, "http://localhost:9000/pdbe/api/pdb/entry/molecules/", tr.LastRequest().URL)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte(`method = "DELETE"`), 0o600))
	_, err := LoadConfigFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Method")

	unknown := filepath.Join(dir, "unknown.hcl")
	require.NoError(t, os.WriteFile(unknown, []byte(`verify_ssl = false`), 0o600))
	_, err = LoadConfigFile(unknown)
	assert.Error(t, err)
}

func TestRegistryFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groups:
  LOCAL:
    getStatus:
      url: status
      methods: [GET]
`), 0o600))

	tr := &mock.Transport{}
	out, err := run(t, tr, "--registry", path, "groups")
	require.NoError(t, err)
	assert.Equal(t, "The following endpoints are available:\n    LOCAL\n", out)

	_, err = run(t, tr, "--registry", path, "call", "LOCAL", "getStatus")
	require.NoError(t, err)
	assert.Equal(t, "https://www.ebi.ac.uk/pdbe/status", tr.LastRequest().URL)
}

func TestHighlightJSON(t *testing.T) {
	out := highlightJSON(`{"a": 1}`)
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, "", highlightJSON(""))
}
