package protocol

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks raw action lines against schemas/action.schema.json
// before decoding them.
type Validator struct {
	action *jsonschema.Schema
}

func LoadValidator(schemaDir string) (*Validator, error) {
	s, err := jsonschema.Compile(filepath.Join(schemaDir, "action.schema.json"))
	if err != nil {
		return nil, fmt.Errorf("compile action schema: %w", err)
	}
	return &Validator{action: s}, nil
}

// DecodeAction validates line against the action schema and then decodes
// it. A nil Validator only decodes.
func (v *Validator) DecodeAction(line []byte) (Action, error) {
	if v == nil || v.action == nil {
		return DecodeAction(line)
	}
	var doc any
	if err := json.Unmarshal(line, &doc); err != nil {
		return Action{}, fmt.Errorf("action json: %w", err)
	}
	if err := v.action.Validate(doc); err != nil {
		return Action{}, err
	}
	var a Action
	if err := json.Unmarshal(line, &a); err != nil {
		return a, err
	}
	return a, a.Validate()
}
