package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/timecalc"
	"github.com/Tiliavir/lumina/internal/tripstore"
	"github.com/Tiliavir/lumina/internal/views"
)

var (
	activityTime     string
	activityLocation string
	activityRemarks  string
	activityEvent    string
	activityMaps     bool
)

var activityCmd = &cobra.Command{
	Use:     "activity",
	Aliases: []string{"act"},
	Short:   "Manage your own itinerary entries",
}

var activityAddCmd = &cobra.Command{
	Use:   "add <event...>",
	Short: "Add an itinerary entry",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runActivityAdd,
}

var activityEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an itinerary entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityEdit,
}

var activityRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an itinerary entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityRm,
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List itinerary entries by time",
	Args:  cobra.NoArgs,
	RunE:  runActivityList,
}

func init() {
	for _, c := range []*cobra.Command{activityAddCmd, activityEditCmd} {
		c.Flags().StringVar(&activityTime, "time", "", "Time as HH:MM (default 09:00)")
		c.Flags().StringVar(&activityLocation, "location", "", "Where it happens")
		c.Flags().StringVar(&activityRemarks, "remarks", "", "Notes")
	}
	activityEditCmd.Flags().StringVar(&activityEvent, "event", "", "Event name")
	activityListCmd.Flags().BoolVar(&activityMaps, "maps", false, "Show a map link for each location")

	activityCmd.AddCommand(activityAddCmd, activityEditCmd, activityRmCmd, activityListCmd)
}

func runActivityAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	act, ok, err := a.store.CreateActivity(tripstore.ActivityInput{
		Time:     activityTime,
		Event:    strings.Join(args, " "),
		Location: activityLocation,
		Remarks:  activityRemarks,
	})
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return withCode(exitUsage, errors.New("activity needs an event name and a valid HH:MM time"))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s  %s  [%s]\n", act.Time, act.Event, act.ID)
	return nil
}

// runActivityEdit loads the entry into the input buffer, applies the flags
// that were given and saves it back, the same way the form-based editor does.
func runActivityEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	if !a.store.BeginEdit(id) {
		return withCode(exitUsage, fmt.Errorf("no activity with id %s", id))
	}
	d := a.store.Draft()
	flags := cmd.Flags()
	if flags.Changed("event") {
		d.Event = activityEvent
	}
	if flags.Changed("location") {
		d.Location = activityLocation
	}
	if flags.Changed("remarks") {
		d.Remarks = activityRemarks
	}
	if flags.Changed("time") {
		clock, err := timecalc.ParseClock(activityTime)
		if err != nil {
			a.store.CancelEdit()
			return withCode(exitUsage, err)
		}
		d.Hour, d.Minute = timecalc.SplitClock(clock)
	}

	act, ok, err := a.store.UpsertActivity(d)
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		a.store.CancelEdit()
		return withCode(exitUsage, errors.New("activity needs an event name"))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s  %s  [%s]\n", act.Time, act.Event, act.ID)
	return nil
}

func runActivityRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := a.store.RemoveActivity(args[0])
	if err != nil {
		return storageErr(err)
	}
	if !found {
		return withCode(exitUsage, fmt.Errorf("no activity with id %s", args[0]))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Activity deleted.")
	return nil
}

func runActivityList(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	ov := views.Build(a.store.Snapshot(), a.monitor.Online())
	out := cmd.OutOrStdout()
	if len(ov.Activities) == 0 {
		fmt.Fprintln(out, "No activities planned.")
		return nil
	}
	for _, act := range ov.Activities {
		fmt.Fprintf(out, "%s  %s  [%s]\n", act.Time, act.Event, act.ID)
		if act.Location != "" {
			fmt.Fprintf(out, "       @ %s\n", act.Location)
		}
		if act.Remarks != "" {
			fmt.Fprintf(out, "       %q\n", act.Remarks)
		}
		if activityMaps && act.Map != nil {
			fmt.Fprintf(out, "       %s\n", mapLine(act.Map))
		}
	}
	return nil
}
