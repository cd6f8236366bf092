package oncotree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Spec is one node of the nested taxonomy input. Children may be given as a
// JSON array of nodes or as a JSON object keyed by code (the OncoTree API
// tree format); object key order is preserved.
type Spec struct {
	Code     string
	Name     string
	Tissue   *bool
	Children []Spec
}

// UnmarshalJSON decodes a node and its children, accepting both child layouts.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code     string          `json:"code"`
		Name     string          `json:"name"`
		Tissue   *bool           `json:"tissue"`
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Code = raw.Code
	s.Name = raw.Name
	s.Tissue = raw.Tissue

	children := bytes.TrimSpace(raw.Children)
	if len(children) == 0 || bytes.Equal(children, []byte("null")) {
		s.Children = nil
		return nil
	}

	switch children[0] {
	case '[':
		return json.Unmarshal(children, &s.Children)
	case '{':
		specs, err := decodeOrderedChildren(children)
		if err != nil {
			return err
		}
		s.Children = specs
		return nil
	default:
		return fmt.Errorf("node %q: children must be an array or object", s.Code)
	}
}

// decodeOrderedChildren decodes a code-keyed object of nodes, keeping key order.
func decodeOrderedChildren(data []byte) ([]Spec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var specs []Spec
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in children object", tok)
		}
		var child Spec
		if err := dec.Decode(&child); err != nil {
			return nil, fmt.Errorf("child %q: %w", key, err)
		}
		if child.Code == "" {
			child.Code = key
		}
		specs = append(specs, child)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return specs, nil
}

// DecodeSpec reads a taxonomy document. The document is either a single
// root node, or an object with exactly one key whose value is the root node
// (e.g. {"TISSUE": {...}}).
func DecodeSpec(r io.Reader) (Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Spec{}, fmt.Errorf("read oncotree: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Spec{}, fmt.Errorf("decode oncotree: %w", err)
	}

	if _, hasCode := probe["code"]; !hasCode && len(probe) == 1 {
		for key, inner := range probe {
			var root Spec
			if err := json.Unmarshal(inner, &root); err != nil {
				return Spec{}, fmt.Errorf("decode oncotree: %w", err)
			}
			if root.Code == "" {
				root.Code = key
			}
			return root, nil
		}
	}

	var root Spec
	if err := json.Unmarshal(data, &root); err != nil {
		return Spec{}, fmt.Errorf("decode oncotree: %w", err)
	}
	return root, nil
}

// Load decodes a taxonomy document and builds the tree.
func Load(r io.Reader) (*Tree, error) {
	spec, err := DecodeSpec(r)
	if err != nil {
		return nil, err
	}
	return Build(spec)
}

// LoadFile builds a tree from a JSON file on disk.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open oncotree file: %w", err)
	}
	defer f.Close()

	return Load(f)
}
