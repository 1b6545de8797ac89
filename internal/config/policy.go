package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lox/blackjackmdp/blackjack"
)

const policySchemaURL = "https://blackjackmdp.local/schemas/policy.json"

//go:embed schemas/policy.json
var policySchema []byte

// PolicyFile is the JSON document external solvers hand back: one action code
// per state id, 0 for stand and 1 for draw.
type PolicyFile struct {
	Policy   []int   `json:"policy"`
	Discount float64 `json:"discount,omitempty"`
	Solver   string  `json:"solver,omitempty"`
}

func compilePolicySchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(policySchemaURL, bytes.NewReader(policySchema)); err != nil {
		return nil, fmt.Errorf("failed to add policy schema: %w", err)
	}
	schema, err := compiler.Compile(policySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile policy schema: %w", err)
	}
	return schema, nil
}

// ParsePolicy validates data against the policy schema and decodes it.
func ParsePolicy(data []byte) (*PolicyFile, error) {
	schema, err := compilePolicySchema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var pf PolicyFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	return &pf, nil
}

// LoadPolicy reads a policy file and binds it to model m.
func LoadPolicy(path string, m *blackjack.Model) (blackjack.PolicyVector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pf, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return blackjack.NewPolicyVector(m, pf.Policy)
}
