package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/remotecfg/internal/apiclient"
)

// NewUsersCmd creates the users command group
func NewUsersCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage console users (admin only)",
	}

	cmd.AddCommand(newUsersListCmd(opts))
	cmd.AddCommand(newUsersAddCmd(opts))

	return cmd
}

func newUsersListCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd.Context(), cmd.OutOrStdout(), opts.APIURL)
		},
	}
}

func runUsersList(ctx context.Context, out io.Writer, apiFlag string) error {
	apiURL, err := resolveAPIURL(apiFlag)
	if err != nil {
		return err
	}

	token, err := tokenStore.LoadToken(apiURL)
	if err != nil {
		return err
	}

	users, err := newAPIClient(apiURL).ListUsers(ctx, token)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users found.")
		fmt.Fprintln(out, "\nAdd a user with: remotecfg users add <username>")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tCREATED AT")
	fmt.Fprintln(w, "──\t────────\t────\t──────────")

	for _, user := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", user.ID, user.Username, user.Role(), user.CreatedAt.String())
	}

	return w.Flush()
}

func newUsersAddCmd(opts *Options) *cobra.Command {
	var password string
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersAdd(cmd.Context(), cmd.OutOrStdout(), opts.APIURL, args[0], password, isAdmin)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password for the new user (will prompt if not provided)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant admin privileges")

	return cmd
}

func runUsersAdd(ctx context.Context, out io.Writer, apiFlag, username, password string, isAdmin bool) error {
	// Checked before any network call
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}

	apiURL, err := resolveAPIURL(apiFlag)
	if err != nil {
		return err
	}

	token, err := tokenStore.LoadToken(apiURL)
	if err != nil {
		return err
	}

	if password == "" {
		if password, err = readPassword(fmt.Sprintf("Password for %s: ", username)); err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	user, err := newAPIClient(apiURL).CreateUser(ctx, token, apiclient.CreateUserRequest{
		Username: username,
		Password: password,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Created user %s (%s)\n", user.Username, user.Role())
	return nil
}
