package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all events",
	RunE:  runEventsList,
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new event",
	Long: `Register a new event.

Example:
  presencia events add --name "Charla de seguridad" --date 2026-09-01 --active`,
	RunE: runEventsAdd,
}

var eventsActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Activate an event so recognition sessions can pick it",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsActivate,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsActivateCmd)

	eventsAddCmd.Flags().String("name", "", "Event name (required)")
	eventsAddCmd.Flags().String("date", "", "Event date as YYYY-MM-DD (default: today)")
	eventsAddCmd.Flags().String("presenter", "", "Presenter name")
	eventsAddCmd.Flags().String("description", "", "Event description")
	eventsAddCmd.Flags().Bool("active", false, "Mark the event active immediately")
	eventsAddCmd.MarkFlagRequired("name")

	eventsActivateCmd.Flags().Bool("off", false, "Deactivate instead of activate")
}

func runEventsList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx, stop := commandContext()
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	events, err := backend.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDATE\tPRESENTER\tACTIVE")
	for _, e := range events {
		active := ""
		if e.Active {
			active = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Date.Format("2006-01-02"), e.Presenter, active)
	}
	return w.Flush()
}

func runEventsAdd(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if raw := mustGetString(cmd, "date"); raw != "" {
		var err error
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
		}
	}

	cfg := config.Load()
	ctx, stop := commandContext()
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	event := store.Event{
		Name:        mustGetString(cmd, "name"),
		Date:        date,
		Presenter:   mustGetString(cmd, "presenter"),
		Description: mustGetString(cmd, "description"),
		Active:      mustGetBool(cmd, "active"),
	}
	if err := backend.CreateEvent(ctx, &event); err != nil {
		return fmt.Errorf("creating event: %w", err)
	}

	fmt.Printf("Created event %d: %s (%s)\n", event.ID, event.Name, event.Date.Format("2006-01-02"))
	return nil
}

func runEventsActivate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid event id %q", args[0])
	}
	active := !mustGetBool(cmd, "off")

	cfg := config.Load()
	ctx, stop := commandContext()
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.SetEventActive(ctx, id, active); err != nil {
		return fmt.Errorf("updating event %d: %w", id, err)
	}

	if active {
		fmt.Printf("Event %d is now active\n", id)
	} else {
		fmt.Printf("Event %d is no longer active\n", id)
	}
	return nil
}
