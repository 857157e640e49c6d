package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/views"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the trip overview",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the full overview as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	ov := views.Build(a.store.Snapshot(), a.monitor.Online())
	out := cmd.OutOrStdout()
	if statusJSON {
		data, err := json.MarshalIndent(ov, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	printOverview(out, ov)
	return nil
}

// printOverview renders the overview tab: AI summary, counters, stay and
// the next activities.
func printOverview(w io.Writer, ov views.Overview) {
	if ov.Location != "" {
		fmt.Fprintf(w, "Destination: %s\n", ov.Location)
	}
	if !ov.HasData {
		fmt.Fprintln(w, "Adventure awaits. Run `lumina search <place>` for an AI-curated guide.")
	} else {
		fmt.Fprintf(w, "Weather:     %s\n", ov.Weather)
		fmt.Fprintf(w, "UTC offset:  %s\n", ov.UTCOffset)
		if ov.Itinerary != nil {
			fmt.Fprintln(w, "Highlights:")
			fmt.Fprintf(w, "  Morning    %s\n", ov.Itinerary.Morning)
			fmt.Fprintf(w, "  Afternoon  %s\n", ov.Itinerary.Afternoon)
			fmt.Fprintf(w, "  Evening    %s\n", ov.Itinerary.Evening)
		}
	}
	fmt.Fprintf(w, "Open tasks:  %d pending\n", ov.PendingTasks)
	fmt.Fprintf(w, "Shopping:    %d to buy\n", ov.PendingShopping)

	if ov.Hotel.Name != "" {
		fmt.Fprintf(w, "Stay:        %s", ov.Hotel.Name)
		if ov.Hotel.Room != "" {
			fmt.Fprintf(w, ", room %s", ov.Hotel.Room)
		}
		fmt.Fprintln(w)
	}
	if len(ov.Activities) > 0 {
		fmt.Fprintln(w, "Schedule:")
		for _, a := range ov.Activities {
			fmt.Fprintf(w, "  %s  %s\n", a.Time, a.Event)
		}
	}
	if !ov.Online {
		fmt.Fprintln(w, "(offline)")
	}
}

// mapLine renders an embed as a URL or the offline placeholder.
func mapLine(m *views.Embed) string {
	if m == nil {
		return ""
	}
	if m.URL != "" {
		return m.URL
	}
	return m.Placeholder
}
