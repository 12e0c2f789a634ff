// Package layout loads warehouse layouts from YAML documents.
//
// A document either generates the default layout from dimensions:
//
//	name: default
//	width: 20
//	height: 15
//
// or spells out every cell ('.' aisle, '#' shelf, 'P' picking station):
//
//	name: split
//	rows:
//	  - "..#.."
//	  - ".P#.#"
//	  - "..#.."
//
// Documents are checked against a JSON Schema before the topology is built.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// Document is the YAML representation of a layout.
type Document struct {
	Name   string   `yaml:"name"`
	Width  int      `yaml:"width,omitempty"`
	Height int      `yaml:"height,omitempty"`
	Rows   []string `yaml:"rows,omitempty"`
}

const schemaURL = "layout.schema.json"

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "name":   {"type": "string"},
    "width":  {"type": "integer", "minimum": 2},
    "height": {"type": "integer", "minimum": 2},
    "rows": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "pattern": "^[.#P]+$"}
    }
  },
  "oneOf": [
    {"required": ["width", "height"], "not": {"required": ["rows"]}},
    {"required": ["rows"], "not": {"anyOf": [{"required": ["width"]}, {"required": ["height"]}]}}
  ]
}`

var schema = jsonschema.MustCompileString(schemaURL, schemaJSON)

// Load reads and builds the layout at path.
func Load(path string) (*sim.Topology, Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Document{}, fmt.Errorf("load layout %q: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a layout document from r, validates it and builds the topology.
func Read(r io.Reader) (*sim.Topology, Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, Document{}, fmt.Errorf("read layout: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, Document{}, err
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, Document{}, fmt.Errorf("parse layout: %w", err)
	}
	topo, err := doc.Build()
	if err != nil {
		return nil, doc, err
	}
	return topo, doc, nil
}

// Validate checks a YAML layout document against the layout schema.
func Validate(raw []byte) error {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if v == nil {
		return fmt.Errorf("%w: empty layout document", sim.ErrInvalidLayout)
	}
	// The schema validator expects JSON-decoded values.
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: layout must be a mapping with string keys: %v", sim.ErrInvalidLayout, err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", sim.ErrInvalidLayout, verr.Error())
		}
		return fmt.Errorf("%w: %v", sim.ErrInvalidLayout, err)
	}
	return nil
}

// Build constructs the topology described by the document.
func (d Document) Build() (*sim.Topology, error) {
	if len(d.Rows) > 0 {
		return sim.NewTopologyFromRows(d.Rows)
	}
	return sim.NewTopology(d.Width, d.Height)
}

// FromTopology renders a topology as an explicit-rows document.
func FromTopology(name string, t *sim.Topology) Document {
	rows := bytes.Split(bytes.TrimSuffix([]byte(t.String()), []byte("\n")), []byte("\n"))
	doc := Document{Name: name, Rows: make([]string, len(rows))}
	for i, r := range rows {
		doc.Rows[i] = string(r)
	}
	return doc
}

// Write encodes the document as YAML.
func (d Document) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return enc.Close()
}
