package toolkit

import (
	"time"

	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

type currentDateTimeArgs struct {
	Timezone *string `json:"timezone,omitempty" description:"IANA timezone name, defaults to UTC"`
}

// NewCurrentDateTimeTool returns utility.currentDateTime.get, reporting the
// current wall clock. now is injectable for tests; pass nil for time.Now.
func NewCurrentDateTimeTool(now func() time.Time) *tool.FunctionTool {
	if now == nil {
		now = time.Now
	}
	return tool.NewFunctionToolFromStruct(
		"utility.currentDateTime.get",
		"Get the current date and time, optionally in a specific timezone.",
		currentDateTimeArgs{},
		func(tc *tool.Context, args map[string]any) (any, error) {
			loc := time.UTC
			if tz, ok := args["timezone"].(string); ok && tz != "" {
				parsed, err := time.LoadLocation(tz)
				if err != nil {
					return nil, tool.NewError("utility.currentDateTime.get", "unknown timezone: "+tz, "invalid_timezone")
				}
				loc = parsed
			}
			t := now().In(loc)
			return map[string]any{
				"iso":      t.Format(time.RFC3339),
				"weekday":  t.Weekday().String(),
				"timezone": loc.String(),
			}, nil
		},
	)
}
