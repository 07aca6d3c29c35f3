package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/store"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the user directory",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE:  runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new user",
	Long: `Register a new user in the directory.

Example:
  presencia users add --name "Ana Pérez" --rut 12.345.678-9 --program "Ingeniería"`,
	RunE: runUsersAdd,
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an existing user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersUpdate,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersUpdateCmd)

	usersAddCmd.Flags().String("name", "", "Full name (required)")
	usersAddCmd.Flags().String("rut", "", "National id")
	usersAddCmd.Flags().String("program", "", "Program or course")
	usersAddCmd.MarkFlagRequired("name")

	usersUpdateCmd.Flags().String("name", "", "Full name (required)")
	usersUpdateCmd.Flags().String("rut", "", "National id")
	usersUpdateCmd.Flags().String("program", "", "Program or course")
	usersUpdateCmd.MarkFlagRequired("name")
}

// commandContext returns a context cancelled by SIGINT/SIGTERM, shared
// by the short directory commands.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx, stop := commandContext()
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	users, err := backend.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tRUT\tPROGRAM")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.RUT, u.Program)
	}
	return w.Flush()
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx, stop := commandContext()
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	user := store.User{
		Name:    mustGetString(cmd, "name"),
		RUT:     mustGetString(cmd, "rut"),
		Program: mustGetString(cmd, "program"),
	}
	if err := backend.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	fmt.Printf("Created user %d: %s\n", user.ID, user.Name)
	fmt.Printf("Run 'presencia capture --user %d' to capture face samples\n", user.ID)
	return nil
}

func runUsersUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	cfg := config.Load()
	ctx, stop := commandContext()
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	user := store.User{
		ID:      id,
		Name:    mustGetString(cmd, "name"),
		RUT:     mustGetString(cmd, "rut"),
		Program: mustGetString(cmd, "program"),
	}
	if err := backend.UpdateUser(ctx, &user); err != nil {
		return fmt.Errorf("updating user %d: %w", id, err)
	}

	fmt.Printf("Updated user %d: %s\n", user.ID, user.Name)
	return nil
}
