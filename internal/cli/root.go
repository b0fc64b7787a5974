package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/remotecfg/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the remotecfg command tree
func NewRootCmd() *cobra.Command {
	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "remotecfg",
		Short: "remotecfg - Remote config flag control",
		Long: `remotecfg CLI - Flip the remote config flag and manage console users.

Talks to the same API as the web console. Log in once with
'remotecfg login --api <url>'; the token is kept in the OS keychain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.APIURL, "api", "", "API base URL (or set REMOTECFG_API_URL)")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "remotecfg version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(opts))
	rootCmd.AddCommand(commands.NewLogoutCmd(opts))
	rootCmd.AddCommand(commands.NewStatusCmd(opts))
	rootCmd.AddCommand(commands.NewActivateCmd(opts))
	rootCmd.AddCommand(commands.NewDeactivateCmd(opts))
	rootCmd.AddCommand(commands.NewUsersCmd(opts))
	rootCmd.AddCommand(commands.NewDashCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
