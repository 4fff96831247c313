package toolkit

import (
	"github.com/service-bene-fit-co-nz/coachflow/internal/util"
	"github.com/service-bene-fit-co-nz/coachflow/store"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

// defaultListLimit bounds list-style tool results unless the model asks for
// fewer.
const defaultListLimit = 20

type noArgs struct{}

type listArgs struct {
	Limit *int `json:"limit,omitempty" description:"Maximum number of entries to return"`
}

type addNoteArgs struct {
	Body string `json:"body" description:"Note text to record"`
}

type biometricsArgs struct {
	Kind  *string `json:"kind,omitempty" description:"Measurement kind filter, e.g. weight or resting_hr"`
	Limit *int    `json:"limit,omitempty" description:"Maximum number of samples to return"`
}

// NewClientProfileTool returns client.profile.get.
func NewClientProfileTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"client.profile.get",
		"Get the selected client's profile: name, email and stated goals.",
		noArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			clientID, err := tc.ClientID()
			if err != nil {
				return nil, err
			}
			return st.GetClient(tc.Context(), clientID)
		},
	)
}

// NewClientNotesGetTool returns client.notes.get.
func NewClientNotesGetTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"client.notes.get",
		"List coaching notes for the selected client, newest first.",
		listArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			clientID, err := tc.ClientID()
			if err != nil {
				return nil, err
			}
			return st.ListNotes(tc.Context(), clientID, intArg(args, "limit", defaultListLimit))
		},
	)
}

// NewClientNotesAddTool returns client.notes.add.
func NewClientNotesAddTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"client.notes.add",
		"Record a new coaching note for the selected client.",
		addNoteArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			clientID, err := tc.ClientID()
			if err != nil {
				return nil, err
			}
			body, _ := args["body"].(string)
			note := store.Note{
				ID:       util.NewID(),
				ClientID: clientID,
				Author:   tc.Caller().UserID,
				Body:     body,
			}
			if err := st.AddNote(tc.Context(), note); err != nil {
				return nil, err
			}
			return map[string]any{"id": note.ID, "status": "created"}, nil
		},
	)
}

// NewClientBiometricsTool returns client.biometrics.get.
func NewClientBiometricsTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"client.biometrics.get",
		"List biometric samples for the selected client, newest first. Optionally filter by kind.",
		biometricsArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			clientID, err := tc.ClientID()
			if err != nil {
				return nil, err
			}
			kind, _ := args["kind"].(string)
			return st.ListBiometrics(tc.Context(), clientID, kind, intArg(args, "limit", defaultListLimit))
		},
	)
}

// NewClientMessagesTool returns client.messages.get.
func NewClientMessagesTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"client.messages.get",
		"List the message history with the selected client, newest first.",
		listArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			clientID, err := tc.ClientID()
			if err != nil {
				return nil, err
			}
			return st.ListChatMessages(tc.Context(), clientID, intArg(args, "limit", defaultListLimit))
		},
	)
}

// intArg reads an optional numeric argument, falling back to def. JSON
// decoding hands numbers over as float64.
func intArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}
