package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/service-bene-fit-co-nz/coachflow"
	"github.com/service-bene-fit-co-nz/coachflow/config"
	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/logging"
	"github.com/service-bene-fit-co-nz/coachflow/model"
	"github.com/service-bene-fit-co-nz/coachflow/model/anthropic"
	"github.com/service-bene-fit-co-nz/coachflow/model/openai"
	"github.com/service-bene-fit-co-nz/coachflow/store"
	"github.com/service-bene-fit-co-nz/coachflow/stream"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
	"github.com/service-bene-fit-co-nz/coachflow/toolkit"
)

func newChatCmd(configPath *string) *cobra.Command {
	var (
		modelID  string
		clientID string
		userID   string
		roles    []string
		tools    []string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Run one conversation turn and stream the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if modelID != "" {
				cfg.Model = modelID
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cf, st, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			message := strings.Join(args, " ")
			requested := tools
			if len(requested) == 0 {
				requested = cf.Registry().IDs()
			}

			_, events, err := cf.RunConversation(ctx, coachflow.RunRequest{
				Messages:       []core.Message{core.NewUserMessage(message)},
				Model:          cfg.Model,
				RequestedTools: requested,
				Caller:         core.Identity{UserID: userID, Roles: roles},
				ClientID:       clientID,
			})
			if err != nil {
				return err
			}

			return renderEvents(events)
		},
	}

	cmd.Flags().StringVarP(&modelID, "model", "m", "", "model identifier (overrides config)")
	cmd.Flags().StringVar(&clientID, "client", "", "selected client id for client.* tools")
	cmd.Flags().StringVarP(&userID, "user", "u", "cli", "caller user id")
	cmd.Flags().StringSliceVarP(&roles, "role", "r", []string{"coach"}, "caller roles")
	cmd.Flags().StringSliceVarP(&tools, "tool", "t", nil, "tool ids to request (default: all)")

	return cmd
}

func newToolsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cf, st, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range cf.Registry().IDs() {
				t, _ := cf.Registry().Get(id)
				fmt.Printf("%-32s %s\n", id, t.Description())
			}
			return nil
		},
	}
}

// buildApp wires the store, toolset and model adapters from config.
func buildApp(ctx context.Context, cfg config.Config) (*coachflow.CoachFlow, *store.Store, error) {
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	registry := tool.NewRegistry()
	for _, t := range toolkit.All(st) {
		if err := registry.Register(t); err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	models := model.NewResolver()
	if os.Getenv("OPENAI_API_KEY") != "" {
		models.Register("gpt-4o-mini", openai.NewModel())
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		models.Register("claude-3-5-sonnet", anthropic.NewModel())
	}
	models.Register("scripted", model.NewScriptedModel("scripted",
		model.TextTurn("No real model is configured. Set OPENAI_API_KEY or ANTHROPIC_API_KEY."),
	))

	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, false)

	cf := coachflow.New(func(o *coachflow.Options) {
		o.Registry = registry
		o.Models = models
		o.MaxRounds = cfg.MaxRounds
		o.ToolTimeout = cfg.ToolTimeout.Std()
		o.RunTimeout = cfg.RunTimeout.Std()
		o.EnableStreaming = cfg.Streaming
		o.MaxParallelTools = cfg.MaxParallelTools
		o.Logger = logger
		if cfg.SystemPrompt != "" {
			o.SystemPrompt = cfg.SystemPrompt
		}
	})

	return cf, st, nil
}

// renderEvents prints the run's event stream: text deltas inline, tool
// activity on stderr, and a failure as the command error.
func renderEvents(events <-chan stream.Event) error {
	for ev := range events {
		switch e := ev.(type) {
		case stream.TextDelta:
			fmt.Print(e.Text)
		case stream.ToolCallStarted:
			fmt.Fprintf(os.Stderr, "\n[tool %s started]\n", e.ToolID)
		case stream.ToolCallFinished:
			if e.ErrorKind != "" {
				fmt.Fprintf(os.Stderr, "[tool %s failed: %s]\n", e.ToolID, e.ErrorMessage)
			} else {
				fmt.Fprintf(os.Stderr, "[tool %s finished]\n", e.ToolID)
			}
		case stream.RunCompleted:
			fmt.Println()
		case stream.RunFailed:
			fmt.Println()
			return fmt.Errorf("run failed (%s): %s", e.Kind, e.Message)
		}
	}
	return nil
}
