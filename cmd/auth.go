package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"calagent/internal/google"
	"calagent/internal/instrumentation"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to a Google Calendar account",
		Long: `Run the OAuth authorization flow for a Google account and store the
resulting token. The assistant uses the stored token for all calendar
operations; it is refreshed automatically.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runAuth(ctx, account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize")
	return cmd
}

func runAuth(ctx context.Context, account string) error {
	var metrics *instrumentation.Metrics
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if provider, err := instrumentation.NewProvider(ctx, instrConfig); err == nil && provider.Enabled() {
		defer func() { _ = provider.Shutdown(ctx) }()
		metrics = provider.Metrics()
	}

	fmt.Printf("Visit this URL to authorize calendar access for account %q:\n\n  %s\n\n",
		account, google.GetAuthURLForAccount(account))
	fmt.Print("Paste the authorization code: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	code := strings.TrimSpace(line)
	if code == "" {
		if err != nil {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		return fmt.Errorf("authorization code cannot be empty")
	}

	if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
		if metrics != nil {
			metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		}
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}
	if metrics != nil {
		metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	}

	fmt.Printf("Token stored for account %q.\n", account)
	return nil
}
