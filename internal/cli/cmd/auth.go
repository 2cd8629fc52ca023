package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billsplit/backend/internal/cli/client"
	"github.com/billsplit/backend/internal/cli/config"
	"github.com/billsplit/backend/internal/cli/output"
)

var (
	flagPhone    string
	flagPassword string
	flagName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your phone number and password",
	Long: `Sign in and store the issued tokens in the config file.

  splitctl login --phone +15550001
  splitctl login --phone +15550001 --password secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPhone == "" {
			return fmt.Errorf("--phone is required")
		}
		password, err := passwordOrPrompt()
		if err != nil {
			return err
		}

		var resp client.Response[client.Session]
		err = client.NewClient(cfg.ServerURL, "").Post("/auth/login", map[string]string{
			"phone_number": flagPhone,
			"password":     password,
		}, &resp)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
				return fmt.Errorf("invalid phone number or password")
			}
			return fmt.Errorf("logging in: %w", err)
		}

		return saveSession(resp.Data)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPhone == "" || flagName == "" {
			return fmt.Errorf("--name and --phone are required")
		}
		password, err := passwordOrPrompt()
		if err != nil {
			return err
		}

		var resp client.Response[client.Session]
		err = client.NewClient(cfg.ServerURL, "").Post("/auth/register", map[string]string{
			"name":                  flagName,
			"phone_number":          flagPhone,
			"password":              password,
			"password_confirmation": password,
		}, &resp)
		if err != nil {
			return fmt.Errorf("registering: %w", err)
		}

		return saveSession(resp.Data)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the current token and remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.HasToken() {
			// The token may already be expired; local credentials are cleared either way.
			if err := apiClient.Post("/auth/logout", nil, nil); err != nil {
				fmt.Fprintln(os.Stderr, "Warning: server logout failed:", err)
			}
		}
		if err := config.Clear(); err != nil {
			return fmt.Errorf("clearing config: %w", err)
		}
		fmt.Fprintln(output.Out, "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp client.Response[client.User]
		if err := apiClient.Get("/auth/me", &resp); err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.UserInfo(resp.Data)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagPhone, "phone", "", "Phone number")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&flagName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&flagPhone, "phone", "", "Phone number")
	registerCmd.Flags().StringVar(&flagPassword, "password", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func passwordOrPrompt() (string, error) {
	if flagPassword != "" {
		return flagPassword, nil
	}
	fmt.Fprint(output.Out, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(password, "\r\n"), nil
}

func saveSession(s client.Session) error {
	cfg.SetTokens(s.Tokens.AccessToken, s.Tokens.RefreshToken)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(output.Out, "Logged in as %s (%s)\n", s.Name, s.PhoneNumber)
	return nil
}
