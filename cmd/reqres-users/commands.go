package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/reqres-client/internal/config"
	"github.com/Sternrassler/reqres-client/pkg/user"
)

// newRootCmd builds the command tree. Configuration is loaded and the
// app wired only when a command that talks to the API runs, so help and
// completion work without any environment.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "reqres-users",
		Short:        "Fetch users from a reqres-compatible API",
		SilenceUsage: true,
	}

	root.AddCommand(newGetCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newServeCmd())

	return root
}

// withApp loads configuration, wires the app and runs fn with it.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return runApp(a, fn)
}

// runApp runs fn and closes a afterwards, also when fn fails.
func runApp(a *app, fn func(a *app) error) (err error) {
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close app: %w", cerr)
		}
	}()
	return fn(a)
}

func newGetCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a single user by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			var (
				u     user.User
				found bool
			)
			err = withApp(cmd, func(a *app) error {
				var err error
				u, found, err = a.users.GetUserByID(cmd.Context(), id)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !found {
				fmt.Fprintln(out, "User not found.")
				return nil
			}
			if asJSON {
				return writeJSON(out, u)
			}
			printUser(out, u)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the user as JSON")
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch every user across all pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var users []user.User
			err := withApp(cmd, func(a *app) error {
				var err error
				users, err = a.users.GetAllUsers(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, users)
			}
			for _, u := range users {
				printUser(out, u)
			}
			fmt.Fprintf(out, "%d users\n", len(users))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print users as a JSON array")
	return cmd
}

func printUser(w io.Writer, u user.User) {
	fmt.Fprintf(w, "User %d: %s %s (%s)\n", u.ID, u.FirstName, u.LastName, u.Email)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
