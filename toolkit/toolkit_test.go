package toolkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/store"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

func newToolContext(t *testing.T, clientID string) *tool.Context {
	t.Helper()
	run := core.NewRunContext(
		context.Background(),
		"run-1",
		core.Identity{UserID: "coach-1", Roles: []string{"coach"}},
		clientID,
		"scripted",
		nil,
		8,
		nil,
	)
	return tool.NewContext(context.Background(), run, "call-1")
}

func newSeededStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.CreateClient(ctx, store.Client{
		ID: "client-1", FullName: "Alex Doe", Email: "alex@example.com", Goals: "run a 10k",
	}))
	require.NoError(t, st.AddBiometricSample(ctx, store.BiometricSample{
		ID: "b-1", ClientID: "client-1", Kind: "resting_hr", Value: 58, Unit: "bpm",
	}))
	return st
}

func TestCurrentDateTimeTool(t *testing.T) {
	fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	dt := NewCurrentDateTimeTool(func() time.Time { return fixed })

	out, err := dt.Call(newToolContext(t, ""), map[string]any{})
	assert.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "2026-08-29T10:00:00Z", m["iso"])
	assert.Equal(t, "Saturday", m["weekday"])
	assert.Equal(t, "UTC", m["timezone"])
}

func TestCurrentDateTimeToolUnknownTimezone(t *testing.T) {
	dt := NewCurrentDateTimeTool(nil)

	_, err := dt.Call(newToolContext(t, ""), map[string]any{"timezone": "Mars/Olympus"})
	assert.Error(t, err)
}

func TestClientProfileToolRequiresScope(t *testing.T) {
	st := newSeededStore(t)
	profile := NewClientProfileTool(st)

	_, err := profile.Call(newToolContext(t, ""), map[string]any{})
	assert.Error(t, err)

	out, err := profile.Call(newToolContext(t, "client-1"), map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, "Alex Doe", out.(store.Client).FullName)
}

func TestNotesAddThenGet(t *testing.T) {
	st := newSeededStore(t)
	add := NewClientNotesAddTool(st)
	get := NewClientNotesGetTool(st)
	tc := newToolContext(t, "client-1")

	out, err := add.Call(tc, map[string]any{"body": "great progress this week"})
	assert.NoError(t, err)
	assert.Equal(t, "created", out.(map[string]any)["status"])

	listed, err := get.Call(tc, map[string]any{})
	assert.NoError(t, err)
	notes := listed.([]store.Note)
	require.Len(t, notes, 1)
	assert.Equal(t, "great progress this week", notes[0].Body)
	assert.Equal(t, "coach-1", notes[0].Author)
}

func TestBiometricsToolKindFilterAndLimit(t *testing.T) {
	st := newSeededStore(t)
	bio := NewClientBiometricsTool(st)
	tc := newToolContext(t, "client-1")

	out, err := bio.Call(tc, map[string]any{"kind": "resting_hr", "limit": float64(1)})
	assert.NoError(t, err)
	samples := out.([]store.BiometricSample)
	require.Len(t, samples, 1)
	assert.Equal(t, 58.0, samples[0].Value)

	out, err = bio.Call(tc, map[string]any{"kind": "weight"})
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestAllClientProfilesTool(t *testing.T) {
	st := newSeededStore(t)
	all := NewAllClientProfilesTool(st)

	// Cross-client tools need no selected client.
	out, err := all.Call(newToolContext(t, ""), map[string]any{})
	assert.NoError(t, err)
	assert.Len(t, out.([]store.Client), 1)
}

func TestSQLQueryTool(t *testing.T) {
	st := newSeededStore(t)
	q := NewSQLQueryTool(st)
	tc := newToolContext(t, "")

	out, err := q.Call(tc, map[string]any{"query": "SELECT id FROM clients"})
	assert.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, 1, m["count"])

	_, err = q.Call(tc, map[string]any{"query": "DELETE FROM clients"})
	assert.Error(t, err)
}

func TestAllRegistersCleanly(t *testing.T) {
	st := newSeededStore(t)
	registry := tool.NewRegistry()

	for _, tl := range All(st) {
		assert.NoError(t, registry.Register(tl))
	}
	assert.Len(t, registry.IDs(), 9)
}
