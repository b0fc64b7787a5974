package commands

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/remotecfg/internal/cli/userconfig"
)

// NewDashCmd creates the dash command
func NewDashCmd() *cobra.Command {
	var consoleURL string

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the web console in browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(cmd.OutOrStdout(), consoleURL)
		},
	}

	cmd.Flags().StringVar(&consoleURL, "url", "", "Console URL (defaults to the one saved at login)")

	return cmd
}

func runDash(out io.Writer, consoleURL string) error {
	if consoleURL == "" {
		cfg, err := userconfig.Load()
		if err != nil {
			return err
		}
		consoleURL = cfg.ConsoleURL
	}
	if consoleURL == "" {
		consoleURL = defaultConsoleURL
	}

	consoleURL, err := normalizeURL(consoleURL)
	if err != nil {
		return err
	}

	dashboardURL := consoleURL + "/dashboard"
	fmt.Fprintf(out, "Opening console: %s\n", dashboardURL)

	// Open browser based on OS
	if err := openBrowser(dashboardURL); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, dashboardURL)
	}

	return nil
}

// openInBrowser opens the URL in the default browser
func openInBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
