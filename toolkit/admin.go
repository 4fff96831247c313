package toolkit

import (
	"github.com/service-bene-fit-co-nz/coachflow/store"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

type rawFitbitArgs struct {
	Kind  *string `json:"kind,omitempty" description:"Record kind filter, e.g. heart_rate or sleep"`
	Limit *int    `json:"limit,omitempty" description:"Maximum number of records to return"`
}

type sqlQueryArgs struct {
	Query string `json:"query" description:"A single read-only SELECT statement"`
}

// NewAllClientProfilesTool returns allClients.profiles.get.
func NewAllClientProfilesTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"allClients.profiles.get",
		"List every client profile in the system.",
		noArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			return st.ListClients(tc.Context())
		},
	)
}

// NewRawFitbitDataTool returns allClients.rawFitbitData.get.
func NewRawFitbitDataTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"allClients.rawFitbitData.get",
		"List raw synced Fitbit payloads across all clients, newest first.",
		rawFitbitArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			kind, _ := args["kind"].(string)
			return st.ListRawFitbitRecords(tc.Context(), kind, intArg(args, "limit", defaultListLimit))
		},
	)
}

// NewSQLQueryTool returns db.sqlQuery.get. The store enforces that only a
// single SELECT statement reaches the database.
func NewSQLQueryTool(st *store.Store) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"db.sqlQuery.get",
		"Run a read-only SQL SELECT against the coaching database and return the rows.",
		sqlQueryArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			rows, err := st.Query(tc.Context(), query)
			if err != nil {
				return nil, tool.NewError("db.sqlQuery.get", err.Error(), "query_rejected")
			}
			return map[string]any{"rows": rows, "count": len(rows)}, nil
		},
	)
}

// All returns every built-in tool bound to the given store, ready for
// registration.
func All(st *store.Store) []tool.Tool {
	return []tool.Tool{
		NewCurrentDateTimeTool(nil),
		NewClientProfileTool(st),
		NewClientNotesGetTool(st),
		NewClientNotesAddTool(st),
		NewClientBiometricsTool(st),
		NewClientMessagesTool(st),
		NewAllClientProfilesTool(st),
		NewRawFitbitDataTool(st),
		NewSQLQueryTool(st),
	}
}
