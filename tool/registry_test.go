package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func staticTool(id string) *FunctionTool {
	return NewFunctionTool(id, "test tool "+id, map[string]any{"type": "object"},
		func(tc *Context, args map[string]any) (any, error) { return id, nil })
}

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	r := NewRegistry()

	assert.NoError(t, r.Register(staticTool("client.notes.get")))
	err := r.Register(staticTool("client.notes.get"))
	assert.ErrorIs(t, err, ErrDuplicateToolID)
}

func TestRegistryGetAndIDs(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(staticTool("b.tool"), staticTool("a.tool"))

	_, ok := r.Get("a.tool")
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a.tool", "b.tool"}, r.IDs())
}

func TestResolveIntersectsInRequestedOrder(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(
		staticTool("client.notes.get"),
		staticTool("client.profile.get"),
		staticTool("db.sqlQuery.get"),
	)

	requested := []string{"db.sqlQuery.get", "client.profile.get", "client.notes.get"}
	authorized := []string{"client.notes.get", "client.profile.get"}

	resolved := r.Resolve(requested, authorized)

	ids := make([]string, 0, len(resolved))
	for _, tl := range resolved {
		ids = append(ids, tl.ID())
	}
	// Requested order wins; unauthorized entries are dropped.
	assert.Equal(t, []string{"client.profile.get", "client.notes.get"}, ids)
}

func TestResolveDropsUnknownIDsSilently(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(staticTool("utility.currentDateTime.get"))

	resolved := r.Resolve(
		[]string{"utility.currentDateTime.get", "not.a.tool"},
		[]string{"utility.currentDateTime.get", "not.a.tool"},
	)
	assert.Len(t, resolved, 1)
	assert.Equal(t, "utility.currentDateTime.get", resolved[0].ID())
}

func TestResolveDeduplicates(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(staticTool("utility.currentDateTime.get"))

	resolved := r.Resolve(
		[]string{"utility.currentDateTime.get", "utility.currentDateTime.get"},
		[]string{"utility.currentDateTime.get"},
	)
	assert.Len(t, resolved, 1)
}

func TestResolveEmptyInputs(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(staticTool("a.tool"))

	assert.Empty(t, r.Resolve(nil, []string{"a.tool"}))
	assert.Empty(t, r.Resolve([]string{"a.tool"}, nil))
}
