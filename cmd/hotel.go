package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/views"
)

var hotelRoom string

var hotelCmd = &cobra.Command{
	Use:   "hotel",
	Short: "Show where you are staying",
	Args:  cobra.NoArgs,
	RunE:  runHotelShow,
}

var hotelSetCmd = &cobra.Command{
	Use:   "set <name...>",
	Short: "Set the hotel name and room number",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHotelSet,
}

func init() {
	hotelSetCmd.Flags().StringVar(&hotelRoom, "room", "", "Room number")
	hotelCmd.AddCommand(hotelSetCmd)
}

func runHotelShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	h := views.Build(a.store.Snapshot(), a.monitor.Online()).Hotel
	out := cmd.OutOrStdout()
	if h.Name == "" {
		fmt.Fprintln(out, "Hotel: not set. Use `lumina hotel set <name> --room <n>`.")
	} else {
		fmt.Fprintf(out, "Hotel: %s\n", h.Name)
		if h.Room != "" {
			fmt.Fprintf(out, "Room:  %s\n", h.Room)
		}
		fmt.Fprintf(out, "Map:   %s\n", mapLine(h.Map))
	}
	if h.Tips != "" {
		fmt.Fprintf(out, "Tips:  %s\n", h.Tips)
	}
	return nil
}

func runHotelSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(args, " ")
	if err := a.store.SetHotel(name, hotelRoom); err != nil {
		return storageErr(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stay set: %s\n", name)
	return nil
}
