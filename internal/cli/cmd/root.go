package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billsplit/backend/internal/cli/client"
	"github.com/billsplit/backend/internal/cli/config"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	apiClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "splitctl",
	Short: "splitctl: split shared bills from the terminal",
	Long: `splitctl talks to a billsplit server to manage groups, bills and balances.

Get started:
  splitctl login --phone +15550001        Sign in
  splitctl groups create "Flatmates"      Create a group
  splitctl bills add <group> ...          Record a bill you paid
  splitctl balance <group>                See who owes whom`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = client.NewClient(cfg.ServerURL, cfg.Token)
		apiClient.RefreshToken = cfg.RefreshToken
		apiClient.OnRefresh = persistTokens
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return fmt.Errorf("not authenticated: run \"splitctl login\" first")
	}
	return nil
}

// persistTokens saves a pair obtained by the client's automatic refresh. The
// command still succeeds when the save fails; the next run logs in again.
func persistTokens(pair client.TokenPair) {
	cfg.SetTokens(pair.AccessToken, pair.RefreshToken)
	if err := config.Save(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not save refreshed tokens:", err)
	}
}
