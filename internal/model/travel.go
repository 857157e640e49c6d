package model

import "slices"

// TravelData is the structured result of the AI lookup for a location. It is
// an immutable snapshot: a new search replaces it wholesale.
type TravelData struct {
	Weather        string         `json:"weather" validate:"required"`
	UTCOffset      string         `json:"utcOffset" validate:"required"`
	ItineraryTable ItineraryTable `json:"itineraryTable"`
	HotelInfo      string         `json:"hotelInfo" validate:"required"`
	// TodoList and ShoppingList are advisory suggestions shown next to, never
	// merged into, the user's own lists.
	TodoList     []string `json:"todoList" validate:"required"`
	ShoppingList []string `json:"shoppingList" validate:"required"`
}

// ItineraryTable is a one-day highlight plan.
type ItineraryTable struct {
	Morning   string `json:"morning" validate:"required"`
	Afternoon string `json:"afternoon" validate:"required"`
	Evening   string `json:"evening" validate:"required"`
}

// Clone returns a deep copy of d.
func (d TravelData) Clone() TravelData {
	out := d
	out.TodoList = slices.Clone(d.TodoList)
	out.ShoppingList = slices.Clone(d.ShoppingList)
	return out
}
