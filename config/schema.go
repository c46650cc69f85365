package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/randalmurphal/quorum/consensus"
)

// Schema returns the JSON schema of the run configuration, for editor
// integration and external validation of config files.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&consensus.Config{})
	return json.MarshalIndent(schema, "", "  ")
}
