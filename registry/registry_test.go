package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsSelfConsistent(t *testing.T) {
	reg := Default()

	assert.Equal(t, []string{"COMPOUNDS", "EMDB", "PDB", "PISA", "SEARCH", "SIFTS", "SSM", "TOPOLOGY", "VALIDATION"}, reg.Groups())
	assert.Equal(t, 72, reg.Len())

	for _, group := range reg.Groups() {
		ops, err := reg.Operations(group)
		require.NoError(t, err)
		for _, op := range ops {
			d, err := reg.Descriptor(group, op)
			require.NoError(t, err)

			assert.ElementsMatch(t, d.Params, Placeholders(d.URL), "%s.%s params drift from url", group, op)
			assert.NotEmpty(t, d.Methods, "%s.%s", group, op)
			assert.Equal(t, DefaultContentType, d.ContentType, "%s.%s", group, op)
			assert.NotEmpty(t, d.Doc, "%s.%s", group, op)
			if d.Allows("POST") {
				assert.NotEmpty(t, d.BodyParameter(), "%s.%s posts without a body param", group, op)
			}
			for _, p := range d.Required() {
				_, ok := reg.Param(p)
				assert.True(t, ok, "%s.%s: %s undocumented", group, op, p)
			}
		}
	}
}

func TestDefault_KnownEntries(t *testing.T) {
	reg := Default()

	d, err := reg.Descriptor("PDB", "getSummary")
	require.NoError(t, err)
	assert.Equal(t, "api/pdb/entry/summary/{{pdbid}}", d.URL)
	assert.Equal(t, []string{"GET", "POST"}, d.Methods)
	assert.Equal(t, "pdbid", d.BodyParameter())

	d, err = reg.Descriptor("SIFTS", "getBestStructures")
	require.NoError(t, err)
	assert.Equal(t, "uniprotid", d.BodyParameter())

	d, err = reg.Descriptor("SEARCH", "getSearch")
	require.NoError(t, err)
	assert.Equal(t, []string{"query"}, d.Required())
	assert.Equal(t, []string{"GET"}, d.Methods)

	p, ok := reg.Param("assembly_component")
	require.True(t, ok)
	assert.Equal(t, []string{"energetics", "interfaces", "monomers"}, p.Allowed)
}

func TestRegistry_Lookup(t *testing.T) {
	reg := Default()

	_, err := reg.Descriptor("NOPE", "getSummary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownGroup))
	assert.False(t, errors.Is(err, ErrUnknownOperation))

	_, err = reg.Descriptor("PDB", "getNothing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOperation))
	assert.Contains(t, err.Error(), `"getNothing"`)

	_, err = reg.Operations("NOPE")
	assert.True(t, errors.Is(err, ErrUnknownGroup))
}

func TestRegistry_DescriptorIsACopy(t *testing.T) {
	reg := Default()

	d, err := reg.Descriptor("PDB", "getSummary")
	require.NoError(t, err)
	d.Methods[0] = "DELETE"
	d.Params[0] = "other"

	again, err := reg.Descriptor("PDB", "getSummary")
	require.NoError(t, err)
	assert.Equal(t, "GET", again.Methods[0])
	assert.Equal(t, "pdbid", again.Params[0])
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"pdbid", "entity"}, Placeholders("api/x/{{pdbid}}/{{entity}}/{{pdbid}}"))
	assert.Empty(t, Placeholders("api/status"))
	assert.Equal(t, "api/x/1cbs/-", Substitute("api/x/{{pdbid}}/{{entity}}", func(name string) string {
		if name == "pdbid" {
			return "1cbs"
		}
		return "-"
	}))
}

func TestBodyParameter_FallsBackToIdentifierParams(t *testing.T) {
	assert.Equal(t, "compid", Descriptor{URL: "api/compound/{{compid}}"}.BodyParameter())
	assert.Equal(t, "pdbid", Descriptor{URL: "api/{{chainid}}/{{pdbid}}"}.BodyParameter())
	assert.Equal(t, "", Descriptor{URL: "api/{{emdbid}}"}.BodyParameter())
	assert.Equal(t, "uniprotid", Descriptor{URL: "api/{{uniprotid}}", BodyParam: "uniprotid"}.BodyParameter())
}

func TestNew_NormalizesMethodsAndContentType(t *testing.T) {
	reg, err := New(map[string]map[string]Descriptor{
		"PDB": {"getSummary": {URL: "pdb/entry/summary/{{pdbid}}", Params: []string{"pdbid"}, Methods: []string{"get", " post"}}},
	}, nil)
	require.NoError(t, err)

	d, err := reg.Descriptor("PDB", "getSummary")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "POST"}, d.Methods)
	assert.Equal(t, DefaultContentType, d.ContentType)
}

func TestNew_RejectsInvalidDescriptors(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		params  map[string]ParamDoc
		wantErr string
	}{
		{
			name:    "params drift from placeholders",
			desc:    Descriptor{URL: "api/{{pdbid}}/{{chainid}}", Params: []string{"pdbid"}, Methods: []string{"GET"}},
			wantErr: "do not match url placeholders",
		},
		{
			name:    "empty url",
			desc:    Descriptor{Methods: []string{"GET"}},
			wantErr: "url template is empty",
		},
		{
			name:    "no methods",
			desc:    Descriptor{URL: "api/status"},
			wantErr: "no methods declared",
		},
		{
			name:    "unsupported method",
			desc:    Descriptor{URL: "api/status", Methods: []string{"DELETE"}},
			wantErr: `unsupported method "DELETE"`,
		},
		{
			name:    "post without body param",
			desc:    Descriptor{URL: "api/{{emdbid}}", Params: []string{"emdbid"}, Methods: []string{"GET", "POST"}},
			wantErr: "no parameter carries the request body",
		},
		{
			name:    "body param not a placeholder",
			desc:    Descriptor{URL: "api/{{pdbid}}", Params: []string{"pdbid"}, Methods: []string{"POST"}, BodyParam: "compid"},
			wantErr: `body_param "compid" is not a url placeholder`,
		},
		{
			name:    "undocumented placeholder",
			desc:    Descriptor{URL: "api/{{pdbid}}", Params: []string{"pdbid"}, Methods: []string{"GET"}},
			params:  map[string]ParamDoc{"compid": {Type: "string"}},
			wantErr: `placeholder "pdbid" has no parameter documentation`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(map[string]map[string]Descriptor{"G": {"op": tt.desc}}, tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRegistry))
			assert.Contains(t, err.Error(), "G.op")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_ReportsEveryProblem(t *testing.T) {
	_, err := New(map[string]map[string]Descriptor{
		"A": {"one": {URL: "api/{{pdbid}}", Methods: []string{"GET"}}},
		"B": {"two": {URL: "", Methods: []string{"PUT"}}},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A.one")
	assert.Contains(t, err.Error(), "B.two: url template is empty")
	assert.Contains(t, err.Error(), `B.two: unsupported method "PUT"`)
}

func TestNew_RequiresGroups(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRegistry))
}

func TestLoad(t *testing.T) {
	table := `
params:
  pdbid:
    type: string
    doc: PDB id
groups:
  PDB:
    getSummary:
      url: pdb/entry/summary/{{pdbid}}
      params: [pdbid]
      methods: [GET, POST]
`
	reg, err := Load(strings.NewReader(table))
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	d, err := reg.Descriptor("PDB", "getSummary")
	require.NoError(t, err)
	assert.Equal(t, "pdbid", d.BodyParameter())
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	table := `
groups:
  PDB:
    getSummary:
      url: pdb/entry/summary/{{pdbid}}
      parms: [pdbid]
      methods: [GET]
`
	_, err := Load(strings.NewReader(table))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parms")
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRegistry))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups:\n  G:\n    op:\n      url: api/{{pdbid}}\n      methods: [GET]\n"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.True(t, errors.Is(err, ErrInvalidRegistry))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
