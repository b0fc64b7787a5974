package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the remote config flag is active",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), opts.APIURL)
		},
	}
}

func runStatus(ctx context.Context, out io.Writer, apiFlag string) error {
	apiURL, err := resolveAPIURL(apiFlag)
	if err != nil {
		return err
	}

	value, err := newAPIClient(apiURL).GetRemoteConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Remote config: %s\n", flagLabel(value))
	return nil
}

// NewActivateCmd creates the activate command
func NewActivateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Set the remote config flag to active",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetRemoteConfig(cmd.Context(), cmd.OutOrStdout(), opts.APIURL, true)
		},
	}
}

// NewDeactivateCmd creates the deactivate command
func NewDeactivateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Set the remote config flag to inactive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetRemoteConfig(cmd.Context(), cmd.OutOrStdout(), opts.APIURL, false)
		},
	}
}

func runSetRemoteConfig(ctx context.Context, out io.Writer, apiFlag string, value bool) error {
	apiURL, err := resolveAPIURL(apiFlag)
	if err != nil {
		return err
	}

	echoed, err := newAPIClient(apiURL).SetRemoteConfig(ctx, value)
	if err != nil {
		return err
	}

	// The server's answer wins, even when it differs from the request
	if echoed != value {
		fmt.Fprintf(out, "! Requested %s but the server reports %s\n", flagLabel(value), flagLabel(echoed))
		return nil
	}

	fmt.Fprintf(out, "✓ Remote config is now %s\n", flagLabel(echoed))
	return nil
}
