// Package views derives presentation data from a TripState snapshot. Every
// function here is pure: no I/O, no mutation of its input.
package views

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/Tiliavir/lumina/internal/model"
)

// MapPlaceholder replaces embedded maps while offline.
const MapPlaceholder = "Map Offline"

// Row is one line of a combined list: either a user item or an AI suggestion.
// Suggestions have no id, no time and are never completed.
type Row struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Time      string `json:"time,omitempty"`
	Completed bool   `json:"completed"`
	Suggested bool   `json:"suggested"`
}

// ListView is one rendered timed list.
type ListView struct {
	Name    model.ListName `json:"name"`
	Title   string         `json:"title"`
	Rows    []Row          `json:"rows"`
	Pending int            `json:"pending"`
}

// Embed is a map embed, or the placeholder text when URL is empty.
type Embed struct {
	URL         string `json:"url,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// ActivityView is an activity with its optional location map.
type ActivityView struct {
	model.Activity
	Map *Embed `json:"map,omitempty"`
}

// HotelCard groups the user's stay with the AI hotel tips.
type HotelCard struct {
	Name string `json:"name"`
	Room string `json:"room"`
	Tips string `json:"tips,omitempty"`
	Map  *Embed `json:"map,omitempty"`
}

// Total is the sum of expenses in one currency.
type Total struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// Overview is everything the presentation layer needs in one record.
type Overview struct {
	Location        string                `json:"location"`
	Online          bool                  `json:"online"`
	HasData         bool                  `json:"hasData"`
	Weather         string                `json:"weather,omitempty"`
	UTCOffset       string                `json:"utcOffset,omitempty"`
	Itinerary       *model.ItineraryTable `json:"itinerary,omitempty"`
	PendingTasks    int                   `json:"pendingTasks"`
	PendingShopping int                   `json:"pendingShopping"`
	Hotel           HotelCard             `json:"hotel"`
	Activities      []ActivityView        `json:"activities"`
	Lists           []ListView            `json:"lists"`
	Expenses        []model.Expense       `json:"expenses"`
	Totals          []Total               `json:"totals"`
}

// PendingTaskCount is the number of open user to-dos plus every AI to-do
// suggestion.
func PendingTaskCount(st model.TripState) int {
	n := st.TodoList.Pending()
	if st.AIData != nil {
		n += len(st.AIData.TodoList)
	}
	return n
}

// PendingShoppingCount is PendingTaskCount for the shopping list.
func PendingShoppingCount(st model.TripState) int {
	n := st.ShoppingList.Pending()
	if st.AIData != nil {
		n += len(st.AIData.ShoppingList)
	}
	return n
}

// SortedActivities returns the activities ordered by time. Equal times keep
// insertion order. The input slice is not modified.
func SortedActivities(activities []model.Activity) []model.Activity {
	out := slices.Clone(activities)
	slices.SortStableFunc(out, func(a, b model.Activity) int {
		return strings.Compare(a.Time, b.Time)
	})
	return out
}

// suggestions returns the AI strings that accompany a list. The prep list
// has no AI counterpart.
func suggestions(st model.TripState, name model.ListName) []string {
	if st.AIData == nil {
		return nil
	}
	switch name {
	case model.ListTodo:
		return st.AIData.TodoList
	case model.ListShopping:
		return st.AIData.ShoppingList
	}
	return nil
}

// CombinedList renders a list as the user's items followed by the advisory
// AI suggestions.
func CombinedList(st model.TripState, name model.ListName) []Row {
	list := st.List(name)
	ai := suggestions(st, name)
	if list == nil {
		return nil
	}
	rows := make([]Row, 0, len(*list)+len(ai))
	for _, it := range *list {
		rows = append(rows, Row{ID: it.ID, Text: it.Text, Time: it.Time, Completed: it.Completed})
	}
	for _, s := range ai {
		rows = append(rows, Row{Text: s, Suggested: true})
	}
	return rows
}

// MapEmbed returns the embed for a free-text place, or the placeholder while
// offline.
func MapEmbed(query string, online bool) Embed {
	if !online {
		return Embed{Placeholder: MapPlaceholder}
	}
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return Embed{URL: "https://www.google.com/maps?q=" + q + "&output=embed"}
}

// ExpenseTotals sums expenses per currency, ordered by currency code.
func ExpenseTotals(expenses []model.Expense) []Total {
	byCur := make(map[string]*Total)
	for _, e := range expenses {
		t, ok := byCur[e.Currency]
		if !ok {
			t = &Total{Currency: e.Currency}
			byCur[e.Currency] = t
		}
		t.Amount += e.Amount
		t.Count++
	}
	out := make([]Total, 0, len(byCur))
	for _, t := range byCur {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// Build assembles the full presentation record for st.
func Build(st model.TripState, online bool) Overview {
	ov := Overview{
		Location:        st.Location,
		Online:          online,
		HasData:         st.AIData != nil,
		PendingTasks:    PendingTaskCount(st),
		PendingShopping: PendingShoppingCount(st),
		Hotel:           HotelCard{Name: st.HotelName, Room: st.RoomNumber},
		Expenses:        slices.Clone(st.Expenses),
		Totals:          ExpenseTotals(st.Expenses),
	}
	if ai := st.AIData; ai != nil {
		ov.Weather = ai.Weather
		ov.UTCOffset = ai.UTCOffset
		it := ai.ItineraryTable
		ov.Itinerary = &it
		ov.Hotel.Tips = ai.HotelInfo
	}
	if st.HotelName != "" {
		q := st.HotelName
		if st.Location != "" {
			q += " " + st.Location
		}
		m := MapEmbed(q, online)
		ov.Hotel.Map = &m
	}

	for _, a := range SortedActivities(st.Activities) {
		av := ActivityView{Activity: a}
		if a.Location != "" {
			m := MapEmbed(a.Location, online)
			av.Map = &m
		}
		ov.Activities = append(ov.Activities, av)
	}

	for _, name := range model.ListNames {
		ov.Lists = append(ov.Lists, ListView{
			Name:    name,
			Title:   name.Title(),
			Rows:    CombinedList(st, name),
			Pending: st.List(name).Pending(),
		})
	}
	return ov
}

// ShareTitle is the heading used when sharing the plan.
func ShareTitle(st model.TripState) string {
	return "Lumina Itinerary: " + orDefault(st.Location, "My Trip")
}

// ShareText is the shareable plain-text trip summary.
func ShareText(st model.TripState) string {
	return fmt.Sprintf("Check out my travel plan for %s! 🌍✈️\n\nStay: %s\nActivities: %d planned.\n\nView more on Lumina Travel Planner.",
		orDefault(st.Location, "this trip"),
		orDefault(st.HotelName, "Not set"),
		len(st.Activities),
	)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
