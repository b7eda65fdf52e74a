package conversation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/iris/internal/action"
)

func sampleState() State {
	return State{
		Turns: []Turn{
			UserTurn("Add lunch with Sam tomorrow at noon"),
			AssistantTurn("Lunch with Sam is booked."),
			UserTurn("Actually make it 1pm"),
			AssistantTurn("Moved to 1pm."),
		},
		LastAction: &action.Record{
			Action:    action.KindUpdate,
			Summary:   "Lunch with Sam",
			StartTime: "2025-09-03T13:00:00-06:00",
			EndTime:   "2025-09-03T14:00:00-06:00",
			Reply:     "Moved to 1pm.",
		},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	for _, name := range []string{"memory.json", "memory.yaml", "memory.yml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			fs := NewFileStore(filepath.Join(t.TempDir(), name))

			want := sampleState()
			require.NoError(t, fs.Save(ctx, want))

			got, err := fs.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFileStore_Format(t *testing.T) {
	assert.Equal(t, FormatJSON, NewFileStore("memory.json").Format())
	assert.Equal(t, FormatJSON, NewFileStore("memory").Format())
	assert.Equal(t, FormatYAML, NewFileStore("memory.YAML").Format())
}

func TestFileStore_JSONKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(ctx, State{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"conversation": [], "last_event": null}`, string(data))
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	state, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Turns)
	assert.Nil(t, state.LastAction)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "memory.json"))

	for i := 0; i < 5; i++ {
		require.NoError(t, fs.Save(ctx, sampleState()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "memory.json", entries[0].Name())
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"))
	}
}

func TestFileStore_SaveIntoMissingDirectoryFails(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "missing", "memory.json"))
	assert.Error(t, fs.Save(context.Background(), sampleState()))
}

func TestFileStore_WithStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.json")

	s := NewStore(NewFileStore(path))
	require.NoError(t, s.Append(ctx, UserTurn("hi")))
	require.NoError(t, s.SetLastAction(ctx, action.Record{Action: action.KindCreate, Summary: "Gym", Reply: "ok"}))

	reopened, err := Open(ctx, NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}
