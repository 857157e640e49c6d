package model

import "slices"

// TripState is the complete in-memory snapshot of one trip: the user's own
// data plus the last AI suggestion set.
type TripState struct {
	Location     string      `json:"location"`
	AIData       *TravelData `json:"aiData,omitempty"`
	HotelName    string      `json:"hotelName"`
	RoomNumber   string      `json:"roomNumber"`
	Activities   []Activity  `json:"activities"`
	PrepList     TimedList   `json:"prepList"`
	TodoList     TimedList   `json:"todoList"`
	ShoppingList TimedList   `json:"shoppingList"`
	Expenses     []Expense   `json:"expenses"`
}

// List returns a pointer to the timed list selected by name, or nil for an
// unknown name.
func (s *TripState) List(name ListName) *TimedList {
	switch name {
	case ListPrep:
		return &s.PrepList
	case ListTodo:
		return &s.TodoList
	case ListShopping:
		return &s.ShoppingList
	}
	return nil
}

// Clone returns a deep copy of s.
func (s TripState) Clone() TripState {
	out := s
	if s.AIData != nil {
		ai := s.AIData.Clone()
		out.AIData = &ai
	}
	out.Activities = slices.Clone(s.Activities)
	out.PrepList = slices.Clone(s.PrepList)
	out.TodoList = slices.Clone(s.TodoList)
	out.ShoppingList = slices.Clone(s.ShoppingList)
	out.Expenses = slices.Clone(s.Expenses)
	return out
}

// Activity is a user-planned itinerary entry. Time is "HH:MM", 24h, zero padded.
type Activity struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Event    string `json:"event"`
	Location string `json:"location"`
	Remarks  string `json:"remarks"`
}

// Coords is an optional latitude/longitude hint for a search.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// View identifies the active display tab.
type View string

const (
	ViewOverview  View = "overview"
	ViewItinerary View = "itinerary"
	ViewHotel     View = "hotel"
	ViewExpenses  View = "expenses"
	ViewLists     View = "lists"
)
