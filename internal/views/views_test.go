package views_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/views"
)

func stateWithAI() model.TripState {
	return model.TripState{
		Location:  "Kyoto",
		HotelName: "Ryokan Sakura",
		AIData: &model.TravelData{
			Weather:        "Mild",
			UTCOffset:      "UTC+9",
			ItineraryTable: model.ItineraryTable{Morning: "Fushimi Inari", Afternoon: "Gion", Evening: "Pontocho"},
			HotelInfo:      "Stay near Kyoto Station",
			TodoList:       []string{"Buy ICOCA card", "Reserve tea ceremony"},
			ShoppingList:   []string{"Matcha"},
		},
		TodoList: model.TimedList{
			{ID: "t1", Text: "Print tickets", Time: "10:00"},
			{ID: "t2", Text: "Pack charger", Time: "10:00", Completed: true},
		},
		ShoppingList: model.TimedList{
			{ID: "s1", Text: "Fan", Time: "14:00", Completed: true},
		},
	}
}

func TestPendingCounts(t *testing.T) {
	st := stateWithAI()
	assert.Equal(t, 1+2, views.PendingTaskCount(st))
	assert.Equal(t, 0+1, views.PendingShoppingCount(st))

	st.AIData = nil
	assert.Equal(t, 1, views.PendingTaskCount(st))
	assert.Equal(t, 0, views.PendingShoppingCount(st))
}

func permutations(in []model.Activity) [][]model.Activity {
	if len(in) <= 1 {
		return [][]model.Activity{append([]model.Activity(nil), in...)}
	}
	var out [][]model.Activity
	for i := range in {
		rest := make([]model.Activity, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]model.Activity{in[i]}, p...))
		}
	}
	return out
}

func TestSortedActivitiesIsStable(t *testing.T) {
	base := []model.Activity{
		{ID: "a", Time: "12:00"},
		{ID: "b", Time: "09:00"},
		{ID: "c", Time: "12:00"},
		{ID: "d", Time: "07:30"},
		{ID: "e", Time: "12:00"},
	}
	for _, perm := range permutations(base) {
		got := views.SortedActivities(perm)

		for i := 1; i < len(got); i++ {
			require.LessOrEqual(t, got[i-1].Time, got[i].Time)
		}

		// Ties keep insertion order.
		var wantNoon, gotNoon []string
		for _, a := range perm {
			if a.Time == "12:00" {
				wantNoon = append(wantNoon, a.ID)
			}
		}
		for _, a := range got {
			if a.Time == "12:00" {
				gotNoon = append(gotNoon, a.ID)
			}
		}
		assert.Equal(t, wantNoon, gotNoon)
	}
}

func TestSortedActivitiesDoesNotMutateInput(t *testing.T) {
	in := []model.Activity{{ID: "x", Time: "18:00"}, {ID: "y", Time: "08:00"}}
	_ = views.SortedActivities(in)
	assert.Equal(t, "x", in[0].ID)
}

func TestCombinedList(t *testing.T) {
	st := stateWithAI()

	rows := views.CombinedList(st, model.ListTodo)
	assert.Equal(t, []views.Row{
		{ID: "t1", Text: "Print tickets", Time: "10:00"},
		{ID: "t2", Text: "Pack charger", Time: "10:00", Completed: true},
		{Text: "Buy ICOCA card", Suggested: true},
		{Text: "Reserve tea ceremony", Suggested: true},
	}, rows)

	assert.Empty(t, views.CombinedList(st, model.ListPrep), "prep has no suggestions")
	assert.Nil(t, views.CombinedList(st, model.ListName("nope")))
}

func TestMapEmbed(t *testing.T) {
	on := views.MapEmbed("Eiffel Tower, Paris", true)
	assert.Equal(t, "https://www.google.com/maps?q=Eiffel%20Tower%2C%20Paris&output=embed", on.URL)
	assert.Empty(t, on.Placeholder)

	off := views.MapEmbed("Eiffel Tower", false)
	assert.Empty(t, off.URL)
	assert.Equal(t, views.MapPlaceholder, off.Placeholder)
}

func TestBuild(t *testing.T) {
	st := stateWithAI()
	st.Activities = []model.Activity{
		{ID: "a1", Time: "15:00", Event: "Temple", Location: "Kinkaku-ji"},
		{ID: "a2", Time: "08:00", Event: "Breakfast"},
	}
	st.Expenses = []model.Expense{
		{ID: "e2", Item: "Taxi", Amount: 2000, Currency: "JPY"},
		{ID: "e1", Item: "Coffee", Amount: 4.5, Currency: "USD"},
		{ID: "e0", Item: "Snack", Amount: 500, Currency: "JPY"},
	}

	ov := views.Build(st, false)
	assert.True(t, ov.HasData)
	assert.Equal(t, "UTC+9", ov.UTCOffset)
	require.NotNil(t, ov.Itinerary)
	assert.Equal(t, "Gion", ov.Itinerary.Afternoon)
	assert.Equal(t, "Stay near Kyoto Station", ov.Hotel.Tips)
	require.NotNil(t, ov.Hotel.Map)
	assert.Equal(t, views.MapPlaceholder, ov.Hotel.Map.Placeholder)

	require.Len(t, ov.Activities, 2)
	assert.Equal(t, "a2", ov.Activities[0].ID)
	assert.Nil(t, ov.Activities[0].Map, "no location, no map")
	require.NotNil(t, ov.Activities[1].Map)

	require.Len(t, ov.Lists, 3)
	assert.Equal(t, model.ListPrep, ov.Lists[0].Name)
	assert.Equal(t, 1, ov.Lists[1].Pending)

	assert.Equal(t, []views.Total{
		{Currency: "JPY", Amount: 2500, Count: 2},
		{Currency: "USD", Amount: 4.5, Count: 1},
	}, ov.Totals)

	online := views.Build(st, true)
	assert.True(t, strings.HasPrefix(online.Hotel.Map.URL, "https://www.google.com/maps?q=Ryokan%20Sakura%20Kyoto"))
}

func TestBuildEmptyState(t *testing.T) {
	ov := views.Build(model.TripState{}, true)
	assert.False(t, ov.HasData)
	assert.Nil(t, ov.Itinerary)
	assert.Nil(t, ov.Hotel.Map)
	assert.Zero(t, ov.PendingTasks)
}

func TestShareText(t *testing.T) {
	st := model.TripState{Location: "Rome", HotelName: "Hotel Roma", Activities: make([]model.Activity, 3)}
	text := views.ShareText(st)
	assert.Contains(t, text, "Check out my travel plan for Rome!")
	assert.Contains(t, text, "Stay: Hotel Roma\n")
	assert.Contains(t, text, "Activities: 3 planned.")
	assert.Equal(t, "Lumina Itinerary: Rome", views.ShareTitle(st))

	empty := views.ShareText(model.TripState{})
	assert.Contains(t, empty, "for this trip!")
	assert.Contains(t, empty, "Stay: Not set")
	assert.Equal(t, "Lumina Itinerary: My Trip", views.ShareTitle(model.TripState{}))
}
