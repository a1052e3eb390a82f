package fsmkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileDefinition is the serialized form of a Definition. States accept both
// a mapping keyed by state id and a sequence of nodes carrying their own id;
// the sequence form can express duplicate ids, which the loader rejects.
type fileDefinition struct {
	ID      string         `json:"id" yaml:"id"`
	Initial StateID        `json:"initial" yaml:"initial"`
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	States  statesSection  `json:"states" yaml:"states"`
}

type statesSection map[StateID]*StateNode

// namedState is the sequence-form entry: a StateNode plus its id.
type namedState struct {
	ID        StateID `json:"id" yaml:"id"`
	StateNode `yaml:",inline"`
}

func (s *statesSection) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		m := make(map[StateID]*StateNode)
		if err := node.Decode(&m); err != nil {
			return err
		}
		*s = m
		return nil
	case yaml.SequenceNode:
		var list []namedState
		if err := node.Decode(&list); err != nil {
			return err
		}
		m := make(map[StateID]*StateNode, len(list))
		for i := range list {
			entry := list[i]
			if entry.ID == "" {
				return fmt.Errorf("states[%d]: id is required in sequence form", i)
			}
			if _, exists := m[entry.ID]; exists {
				return &DuplicateStateError{ID: entry.ID}
			}
			node := entry.StateNode
			m[entry.ID] = &node
		}
		*s = m
		return nil
	default:
		return fmt.Errorf("states: expected mapping or sequence, got %v", node.Kind)
	}
}

// ParseYAML decodes and validates a Definition from YAML. States may be a
// mapping keyed by id or a sequence of nodes with explicit ids.
func ParseYAML(data []byte) (Definition, error) {
	var fd fileDefinition
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return Definition{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return fd.definition()
}

// ParseJSON decodes and validates a Definition from JSON.
func ParseJSON(data []byte) (Definition, error) {
	var fd struct {
		ID      string                 `json:"id"`
		Initial StateID                `json:"initial"`
		Context map[string]any         `json:"context"`
		States  map[StateID]*StateNode `json:"states"`
	}
	if err := json.Unmarshal(data, &fd); err != nil {
		return Definition{}, fmt.Errorf("json unmarshal: %w", err)
	}
	def := Definition{ID: fd.ID, Initial: fd.Initial, InitialContext: fd.Context, States: fd.States}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func (fd fileDefinition) definition() (Definition, error) {
	def := Definition{
		ID:             fd.ID,
		Initial:        fd.Initial,
		InitialContext: fd.Context,
		States:         fd.States,
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// LoadDefinition reads a definition file, dispatching on extension
// (.yaml/.yml or .json).
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return Definition{}, fmt.Errorf("unsupported definition format %q", filepath.Ext(path))
	}
}

// MarshalYAML serializes a Definition to YAML in the mapping form understood
// by ParseYAML.
func MarshalYAML(def Definition) ([]byte, error) {
	return yaml.Marshal(fileDefinition{
		ID:      def.ID,
		Initial: def.Initial,
		Context: def.InitialContext,
		States:  def.States,
	})
}
