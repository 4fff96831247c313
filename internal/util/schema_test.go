package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleArgs struct {
	Name   string  `json:"name" description:"Display name"`
	Limit  *int    `json:"limit,omitempty" description:"Optional cap"`
	Weight float64 `json:"weight" description:"Body weight"`
	hidden string  //nolint:unused
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "limit")
	assert.Contains(t, props, "weight")
	assert.NotContains(t, props, "hidden")

	name := props["name"].(map[string]any)
	assert.Equal(t, "string", name["type"])
	assert.Equal(t, "Display name", name["description"])

	limit := props["limit"].(map[string]any)
	assert.Equal(t, "integer", limit["type"])

	// Required excludes pointer and omitempty fields.
	assert.ElementsMatch(t, []string{"name", "weight"}, RequiredStrings(schema))
}

func TestCreateSchemaNonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestRequiredStringsDecodedForms(t *testing.T) {
	assert.Equal(t, []string{"a"}, RequiredStrings(map[string]any{"required": []string{"a"}}))
	assert.Equal(t, []string{"a"}, RequiredStrings(map[string]any{"required": []any{"a"}}))
	assert.Nil(t, RequiredStrings(map[string]any{}))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("Client is {{.ClientID}}.", map[string]any{"ClientID": "c-1"})
	assert.NoError(t, err)
	assert.Equal(t, "Client is c-1.", out)

	// Plain text passes through untouched.
	out, err = RenderTemplate("no templates here", nil)
	assert.NoError(t, err)
	assert.Equal(t, "no templates here", out)

	// Conditionals render the way text/template does.
	out, err = RenderTemplate("{{if .ClientID}}scoped{{else}}unscoped{{end}}", map[string]any{"ClientID": ""})
	assert.NoError(t, err)
	assert.Equal(t, "unscoped", out)

	// Malformed templates surface the parse error.
	_, err = RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
