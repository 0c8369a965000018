// CUE schema validation code
package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

//go:embed simulation.cue
var defaultSchema []byte

// DefaultSchema returns the embedded CUE schema.
func DefaultSchema() []byte { return append([]byte(nil), defaultSchema...) }

// ValidateWithCue validates YAML configuration bytes against the #Simulation
// definition of a CUE schema. filename is only used in error messages.
func ValidateWithCue(filename string, yamlBytes, schemaBytes []byte) error {
	ctx := cuecontext.New()

	file, err := yaml.Extract(filename, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if configVal.Err() != nil {
		return fmt.Errorf("cannot build YAML config: %w", configVal.Err())
	}

	schemaVal := ctx.CompileBytes(schemaBytes, cue.Filename("simulation.cue"))
	if schemaVal.Err() != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", schemaVal.Err())
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Simulation"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no #Simulation definition")
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
