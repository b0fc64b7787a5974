package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/remotecfg/internal/cli/userconfig"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts *Options) *cobra.Command {
	var username, password, consoleURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the remote config API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), cmd.OutOrStdout(), opts.APIURL, username, password, consoleURL)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set REMOTECFG_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set REMOTECFG_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&consoleURL, "console", "", "Console URL opened by 'remotecfg dash'")

	return cmd
}

func runLogin(ctx context.Context, out io.Writer, apiFlag, username, password, consoleURL string) error {
	apiURL, err := resolveAPIURL(apiFlag)
	if err != nil {
		return err
	}

	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv(usernameEnv)
	}
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if username == "" {
		cfg, err := userconfig.Load()
		if err != nil {
			return err
		}
		username = cfg.Username
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or %s env var)", usernameEnv)
	}

	if consoleURL != "" {
		if consoleURL, err = normalizeURL(consoleURL); err != nil {
			return err
		}
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Logging in to %s as %s...\n", apiURL, username)

	loginResp, err := newAPIClient(apiURL).Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := tokenStore.SaveToken(apiURL, loginResp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	if err := userconfig.SetLogin(apiURL, loginResp.User.Username, consoleURL); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s\n", loginResp.User.Username)
	if loginResp.User.IsAdmin {
		fmt.Fprintln(out, "  Role: Admin")
	}

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.OutOrStdout(), opts.APIURL)
		},
	}
}

func runLogout(out io.Writer, apiFlag string) error {
	apiURL, err := resolveAPIURL(apiFlag)
	if err != nil {
		return err
	}

	if err := tokenStore.DeleteToken(apiURL); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Logged out of %s\n", apiURL)
	return nil
}
