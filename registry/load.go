package registry

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// defaultTable is the PDBe REST API endpoint table.
//
//go:embed endpoints.yaml
var defaultTable []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

type document struct {
	Params map[string]ParamDoc              `yaml:"params"`
	Groups map[string]map[string]Descriptor `yaml:"groups"`
}

// Load decodes a YAML endpoint table and builds a Registry from it.
// Unknown fields are rejected so that typos in the table do not pass silently.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty endpoint table", ErrInvalidRegistry)
		}
		return nil, fmt.Errorf("decoding endpoint table: %w", err)
	}
	return New(doc.Groups, doc.Params)
}

// LoadFile reads an endpoint table from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening endpoint table: %w", err)
	}
	defer f.Close()

	reg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Default returns the registry built from the embedded PDBe endpoint table.
// The table ships with the binary, so a failure here is a build defect and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load(bytes.NewReader(defaultTable))
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("registry: embedded endpoint table is invalid: %v", defaultErr))
	}
	return defaultRegistry
}
