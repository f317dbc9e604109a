package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"calagent/internal/agent"
	"calagent/internal/calendar"
	"calagent/internal/google"
	"calagent/internal/llm"
)

func newChatCmd() *cobra.Command {
	var (
		account   string
		timezone  string
		modelName string
		yolo      bool
		debugMode bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the calendar assistant on the terminal",
		Long: `Start an interactive session with the calendar assistant.

Each request goes to the Gemini model, which manages your calendar through
the assistant's tool set. Deleting an event asks for confirmation on the
terminal unless --yolo is set.

Requires GEMINI_API_KEY and a stored Google OAuth token (see "calagent auth").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(account, timezone, modelName, yolo, debugMode)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().StringVar(&timezone, "timezone", os.Getenv("CALAGENT_TIMEZONE"), "IANA time zone for interpreting dates and times (default: the calendar's own time zone)")
	cmd.Flags().StringVar(&modelName, "model", envOrDefault("GEMINI_MODEL", llm.DefaultModel), "Gemini model name. Can also use GEMINI_MODEL env var.")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Delete events without asking for confirmation")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	return cmd
}

func runChat(account, timezone, modelName string, yolo, debugMode bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(debugMode)

	model, err := llm.NewGemini(ctx, llm.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  modelName,
	}, logger, nil)
	if err != nil {
		return err
	}

	if !calendar.HasTokenForAccount(account) {
		return fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
	}
	client, err := calendar.NewClientForAccount(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to create calendar client for account %s: %w", account, err)
	}

	loc, err := resolveTimezone(client, timezone)
	if err != nil {
		return err
	}

	var gate agent.ConfirmationGate = &agent.ConsoleGate{In: os.Stdin, Out: os.Stdout}
	if yolo {
		gate = &agent.StaticGate{Approve: true}
	}

	dispatcher := agent.NewDispatcher(client, gate, loc, logger, nil)
	orchestrator := agent.NewOrchestrator(model, dispatcher, logger)
	if n := maxIterationsFromEnv(); n > 0 {
		orchestrator.SetMaxIterations(n)
	}

	fmt.Printf("calagent %s (account %q, timezone %s)\n", version, account, loc)
	fmt.Println(`Type a request, or "exit" to quit.`)

	var history []agent.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		outcome, err := orchestrator.Run(ctx, history, line)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(outcome.Text)
		history = outcome.Conversation
	}
	return scanner.Err()
}

// resolveTimezone picks the timezone for the session: an explicit flag
// value, else the calendar's own timezone, else the local one.
func resolveTimezone(client *calendar.Client, timezone string) (*time.Location, error) {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
		return loc, nil
	}
	if tz, err := client.Timezone(); err == nil {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc, nil
		}
	}
	return time.Local, nil
}
