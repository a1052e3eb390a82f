package fsmkit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/fsmkit"
)

const mappingYAML = `
id: geoposition
initial: idle
context:
  position: null
states:
  idle:
    on:
      START:
        - target: pending
  pending:
    entry: [startWatch]
    on:
      RESOLVE:
        - target: resolved
          actions: [setPosition]
      REJECT:
        - target: rejected
          guard: isFatal
          actions: [setError]
  resolved: {}
  rejected: {}
`

const sequenceYAML = `
id: m
initial: a
states:
  - id: a
    on:
      GO:
        - target: b
  - id: b
`

const duplicateYAML = `
id: m
initial: a
states:
  - id: a
  - id: b
  - id: a
`

func TestParseYAMLMappingForm(t *testing.T) {
	t.Parallel()

	def, err := fsmkit.ParseYAML([]byte(mappingYAML))
	require.NoError(t, err)

	assert.Equal(t, "geoposition", def.ID)
	assert.Equal(t, fsmkit.StateID("idle"), def.Initial)
	require.Len(t, def.States, 4)

	pending := def.States["pending"]
	assert.Equal(t, []fsmkit.ActionRef{"startWatch"}, pending.Entry)

	reject := pending.On["REJECT"]
	require.Len(t, reject, 1)
	assert.Equal(t, fsmkit.GuardRef("isFatal"), reject[0].Guard)
	assert.Equal(t, []fsmkit.ActionRef{"setError"}, reject[0].Actions)

	_, ok := def.InitialContext["position"]
	assert.True(t, ok, "null context values survive parsing")
}

func TestParseYAMLSequenceForm(t *testing.T) {
	t.Parallel()

	def, err := fsmkit.ParseYAML([]byte(sequenceYAML))
	require.NoError(t, err)
	require.Len(t, def.States, 2)
	assert.Equal(t, fsmkit.StateID("b"), def.States["a"].On["GO"][0].Target)
}

func TestParseYAMLRejectsDuplicateStates(t *testing.T) {
	t.Parallel()

	_, err := fsmkit.ParseYAML([]byte(duplicateYAML))
	var dup *fsmkit.DuplicateStateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, fsmkit.StateID("a"), dup.ID)
}

func TestParseYAMLValidates(t *testing.T) {
	t.Parallel()

	_, err := fsmkit.ParseYAML([]byte("id: m\ninitial: ghost\nstates:\n  a: {}\n"))
	require.ErrorIs(t, err, fsmkit.ErrUnknownInitialState)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	data := `{
	  "id": "m",
	  "initial": "a",
	  "context": {"n": 1},
	  "states": {
	    "a": {"on": {"GO": [{"target": "b"}]}},
	    "b": {}
	  }
	}`

	def, err := fsmkit.ParseJSON([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, fsmkit.StateID("a"), def.Initial)
	assert.Equal(t, float64(1), def.InitialContext["n"])
}

func TestLoadDefinitionDispatchesOnExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "machine.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sequenceYAML), 0o644))
	def, err := fsmkit.LoadDefinition(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "m", def.ID)

	txtPath := filepath.Join(dir, "machine.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(sequenceYAML), 0o644))
	_, err = fsmkit.LoadDefinition(txtPath)
	require.Error(t, err)

	_, err = fsmkit.LoadDefinition(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	def, err := fsmkit.ParseYAML([]byte(mappingYAML))
	require.NoError(t, err)

	data, err := fsmkit.MarshalYAML(def)
	require.NoError(t, err)

	again, err := fsmkit.ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, def.ID, again.ID)
	assert.Equal(t, def.Initial, again.Initial)
	assert.Equal(t, len(def.States), len(again.States))
}

func TestLoadedDefinitionRuns(t *testing.T) {
	t.Parallel()

	def, err := fsmkit.ParseYAML([]byte(mappingYAML))
	require.NoError(t, err)

	in, err := fsmkit.New(def, fsmkit.ActionMap{
		"startWatch":  func(ctx *fsmkit.Context, event fsmkit.Event) error { return nil },
		"setPosition": func(ctx *fsmkit.Context, event fsmkit.Event) error { return nil },
		"setError":    func(ctx *fsmkit.Context, event fsmkit.Event) error { return nil },
	}, fsmkit.GuardMap{
		"isFatal": func(ctx *fsmkit.Context, event fsmkit.Event) (bool, error) { return true, nil },
	})
	require.NoError(t, err)

	snap, err := in.Send(fsmkit.NewEvent("START", nil))
	require.NoError(t, err)
	assert.Equal(t, fsmkit.StateID("pending"), snap.State)
}
