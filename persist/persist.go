// Package persist writes interpreter snapshots to durable storage. It is a
// write-side audit trail: records can be loaded back for inspection, but a
// stopped interpreter is never resumed from one (construct a fresh
// interpreter instead).
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corvid-labs/fsmkit"
)

// Record is the serializable form of one snapshot.
type Record struct {
	MachineID  string         `json:"machineID" yaml:"machineID"`
	InstanceID string         `json:"instanceID" yaml:"instanceID"`
	State      fsmkit.StateID `json:"state" yaml:"state"`
	Context    map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	Timestamp  time.Time      `json:"timestamp" yaml:"timestamp"`
}

// Persister saves and loads snapshot records keyed by machine ID.
type Persister interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, machineID string) (Record, error)
}

// JSONPersister is a file-based persister using JSON serialization, one file
// per machine ID, last write wins.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	fn := filepath.Join(p.dir, rec.MachineID+".json")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *JSONPersister) Load(ctx context.Context, machineID string) (Record, error) {
	fn := filepath.Join(p.dir, machineID+".json")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return Record{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return rec, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, rec Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	fn := filepath.Join(p.dir, rec.MachineID+".yaml")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *YAMLPersister) Load(ctx context.Context, machineID string) (Record, error) {
	fn := filepath.Join(p.dir, machineID+".yaml")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return Record{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return rec, nil
}

// Attach subscribes to the interpreter and saves every snapshot it produces,
// including the one current at attach time. Save errors go to onError when
// non-nil and are otherwise dropped. The returned function detaches; calling
// it more than once is a no-op.
func Attach(in *fsmkit.Interpreter, p Persister, onError func(error)) func() {
	machineID := in.Definition().ID
	instanceID := in.InstanceID()
	return in.Subscribe(func(snap fsmkit.Snapshot) {
		rec := Record{
			MachineID:  machineID,
			InstanceID: instanceID,
			State:      snap.State,
			Context:    snap.Context,
			Timestamp:  time.Now(),
		}
		if err := p.Save(context.Background(), rec); err != nil && onError != nil {
			onError(err)
		}
	})
}
