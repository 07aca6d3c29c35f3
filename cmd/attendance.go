package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcastillom/presencia/internal/config"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "List recorded attendance",
	RunE:  runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
}

func runAttendance(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx, stop := commandContext()
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	records, err := backend.ListAttendance(ctx)
	if err != nil {
		return fmt.Errorf("listing attendance: %w", err)
	}

	names := map[int]string{}
	events := map[int]string{}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tEVENT\tRECORDED")
	for _, rec := range records {
		if _, ok := names[rec.UserID]; !ok {
			names[rec.UserID] = fmt.Sprintf("user %d", rec.UserID)
			if u, err := backend.UserByID(ctx, rec.UserID); err == nil {
				names[rec.UserID] = u.Name
			}
		}
		if _, ok := events[rec.EventID]; !ok {
			events[rec.EventID] = fmt.Sprintf("event %d", rec.EventID)
			if e, err := backend.EventByID(ctx, rec.EventID); err == nil {
				events[rec.EventID] = e.Name
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			rec.ID, names[rec.UserID], events[rec.EventID], rec.RecordedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
