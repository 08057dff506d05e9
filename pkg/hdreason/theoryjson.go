package hdreason

import (
	"encoding/json"
	"sync"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// theoryConstraintsSchema is the JSON Schema for the machine-generated
// alternative to the DSL's mutuallyExclusive/contradictsSameArgs/
// DISJOINT_WITH/cardinality/functional builtins (spec.md §4.7, SPEC_FULL.md
// DOMAIN STACK). It is a fixed literal schema rather than one reflected from
// a Go struct, since the shape is a stable wire contract independent of the
// in-process theoryConstraints representation.
const theoryConstraintsSchema = `{
  "$id": "hdreason-theory-constraints",
  "type": "object",
  "properties": {
    "mutuallyExclusive": {
      "type": "array",
      "items": {
        "type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 3
      }
    },
    "contradictsSameArgs": {
      "type": "array",
      "items": {
        "type": "array", "items": {"type": "string"}, "minItems": 2, "maxItems": 2
      }
    },
    "disjointWith": {
      "type": "array",
      "items": {
        "type": "array", "items": {"type": "string"}, "minItems": 2, "maxItems": 2
      }
    },
    "functional": {
      "type": "array",
      "items": {"type": "string"}
    },
    "cardinality": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "relation", "min", "max"],
        "properties": {
          "type":     {"type": "string"},
          "relation": {"type": "string"},
          "min":      {"type": "integer"},
          "max":      {"type": "integer"}
        }
      }
    }
  }
}`

var (
	theorySchemaOnce sync.Once
	theorySchema     *jschema.Schema
	theorySchemaErr  error
)

func compiledTheorySchema() (*jschema.Schema, error) {
	theorySchemaOnce.Do(func() {
		var raw any
		if err := json.Unmarshal([]byte(theoryConstraintsSchema), &raw); err != nil {
			theorySchemaErr = err
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("theory-constraints.json", raw); err != nil {
			theorySchemaErr = err
			return
		}
		theorySchema, theorySchemaErr = c.Compile("theory-constraints.json")
	})
	return theorySchema, theorySchemaErr
}

// theoryConstraintsDoc is the JSON wire shape validateTheoryJSON checks and
// LoadTheoryConstraintsJSON decodes into theoryConstraints declarations.
type theoryConstraintsDoc struct {
	MutuallyExclusive   [][3]string `json:"mutuallyExclusive"`
	ContradictsSameArgs [][2]string `json:"contradictsSameArgs"`
	DisjointWith        [][2]string `json:"disjointWith"`
	Functional          []string    `json:"functional"`
	Cardinality         []struct {
		Type     string `json:"type"`
		Relation string `json:"relation"`
		Min      int    `json:"min"`
		Max      int    `json:"max"`
	} `json:"cardinality"`
}

// validateTheoryJSON compiles/validates the named file against
// theoryConstraintsSchema without applying it; a missing file is not an
// error (theory.json is optional even when opts.Validate is set — it only
// validates what's present).
func (s *Session) validateTheoryJSON(path string) error {
	data, err := readFileIfExists(path)
	if err != nil || data == nil {
		return err
	}
	sch, err := compiledTheorySchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return newExecutionError("InvalidArgument", "theory.json: "+err.Error())
	}
	if err := sch.Validate(doc); err != nil {
		return newExecutionError("InvalidArgument", "theory.json: "+err.Error())
	}
	return nil
}

// LoadTheoryConstraintsJSON validates data against theoryConstraintsSchema
// and, if it passes, declares every constraint it names into the session's
// theoryConstraints — the JSON-form alternative to the DSL's
// mutuallyExclusive/contradictsSameArgs/DISJOINT_WITH/cardinality/functional
// builtins (spec.md §4.7).
func (s *Session) LoadTheoryConstraintsJSON(data []byte) error {
	sch, err := compiledTheorySchema()
	if err != nil {
		return err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return newExecutionError("InvalidArgument", "theory constraints: "+err.Error())
	}
	if err := sch.Validate(raw); err != nil {
		return newExecutionError("InvalidArgument", "theory constraints: "+err.Error())
	}

	var doc theoryConstraintsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return newExecutionError("InvalidArgument", "theory constraints: "+err.Error())
	}

	for _, m := range doc.MutuallyExclusive {
		s.theory.declareMutuallyExclusive(m[0], m[1], m[2])
	}
	for _, c := range doc.ContradictsSameArgs {
		s.theory.declareContradictsSameArgs(c[0], c[1])
	}
	for _, d := range doc.DisjointWith {
		s.theory.declareDisjoint(d[0], d[1])
	}
	for _, f := range doc.Functional {
		s.theory.declareFunctional(f)
	}
	for _, c := range doc.Cardinality {
		s.theory.declareCardinality(c.Type, c.Relation, c.Min, c.Max)
	}
	return nil
}
