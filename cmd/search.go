package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lumina/internal/connectivity"
	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/planner"
	"github.com/Tiliavir/lumina/internal/views"
)

var (
	searchLat float64
	searchLng float64
)

var searchCmd = &cobra.Command{
	Use:   "search [place...]",
	Short: "Look up a destination and replace the AI suggestions",
	Long: `search asks Gemini for weather, UTC offset, a one-day itinerary, hotel tips
and suggested to-do/shopping items for a place. Pass --lat/--lng without a
place to search around your current position.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "Latitude hint")
	searchCmd.Flags().Float64Var(&searchLng, "lng", 0, "Longitude hint")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var coords *model.Coords
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		coords = &model.Coords{Lat: searchLat, Lng: searchLng}
	}
	place := strings.Join(args, " ")
	if strings.TrimSpace(place) == "" && coords == nil {
		return withCode(exitUsage, errors.New("enter a destination or pass --lat/--lng"))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Searching...")
	_, err = a.searcher.Search(ctx, place, coords)
	switch {
	case errors.Is(err, connectivity.ErrOffline):
		return withCode(exitUsage, errors.New(planner.MsgOffline))
	case errors.Is(err, planner.ErrFetchFailed):
		return withCode(exitUsage, errors.New(planner.MsgFetchFailed))
	case err != nil:
		return storageErr(err)
	}

	printOverview(out, views.Build(a.store.Snapshot(), a.monitor.Online()))
	return nil
}
