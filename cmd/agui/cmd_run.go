package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agui/agent"
	"github.com/hupe1980/agui/core"
	"github.com/hupe1980/agui/logging"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("url", "", "agent endpoint URL (required)")
	runCmd.Flags().String("message", "", "user message to send (required)")
	runCmd.Flags().String("thread", "", "thread id to continue an existing conversation")
	runCmd.Flags().String("state", "", "initial state document as JSON")
	runCmd.Flags().Bool("json", false, "print every snapshot as JSON instead of final text")
	runCmd.Flags().Bool("verbose", false, "enable debug logging to stderr")
	_ = runCmd.MarkFlagRequired("url")
	_ = runCmd.MarkFlagRequired("message")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an agent once and stream its output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		message, _ := cmd.Flags().GetString("message")
		thread, _ := cmd.Flags().GetString("thread")
		stateDoc, _ := cmd.Flags().GetString("state")
		asJSON, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")

		logger := logging.Logger(logging.NoOpLogger{})
		if verbose {
			logger = logging.NewLogger(&logging.Config{Level: logging.LogLevelDebug, Format: "text", Output: os.Stderr})
		}

		a := agent.New(url, func(o *agent.Options) {
			o.ThreadID = thread
			o.InitialMessages = []core.Message{{ID: core.NewID(), Role: core.RoleUser, Content: message}}
			if stateDoc != "" {
				o.InitialState = json.RawMessage(stateDoc)
			}
			o.Logger = logger
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		statesCh, errCh := a.RunAgent(ctx, nil)

		g, ctx := errgroup.WithContext(ctx)

		// Abort the run when the context ends before the stream does.
		g.Go(func() error {
			<-ctx.Done()
			a.AbortRun()
			return nil
		})

		g.Go(func() error {
			defer stop()

			var final core.AgentState

			for snapshot := range statesCh {
				final = snapshot

				if asJSON {
					out, err := json.Marshal(snapshot)
					if err != nil {
						return err
					}
					fmt.Println(string(out))
				}
			}

			if err := <-errCh; err != nil {
				return err
			}

			if !asJSON {
				printConversation(final.Messages)
			}

			return nil
		})

		return g.Wait()
	},
}

func printConversation(messages []core.Message) {
	for _, m := range messages {
		if m.Content == "" && len(m.ToolCalls) == 0 {
			continue
		}

		fmt.Printf("[%s] %s\n", m.Role, m.Content)

		for _, tc := range m.ToolCalls {
			fmt.Printf("  -> %s(%s)\n", tc.Function.Name, tc.Function.Arguments)
		}
	}
}
