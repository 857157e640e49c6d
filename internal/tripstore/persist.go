package tripstore

import (
	"fmt"

	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/storage"
)

// Persisted keys. The three timed lists use model.ListName.StorageKey.
const (
	KeyLocation   = "lastLocation"
	KeyTravelData = "lastTravelData"
	KeyHotelName  = "userHotelName"
	KeyRoomNumber = "userRoomNumber"
	KeyActivities = "customActivities"
	KeyExpenses   = "expenses"
)

func load(p *storage.Persistent) model.TripState {
	st := model.TripState{
		Location:   storage.Load(p, KeyLocation, ""),
		AIData:     storage.Load[*model.TravelData](p, KeyTravelData, nil),
		HotelName:  storage.Load(p, KeyHotelName, ""),
		RoomNumber: storage.Load(p, KeyRoomNumber, ""),
		Activities: storage.Load(p, KeyActivities, []model.Activity{}),
		Expenses:   storage.Load(p, KeyExpenses, []model.Expense{}),
	}
	for _, name := range model.ListNames {
		*st.List(name) = storage.Load(p, name.StorageKey(), model.TimedList{})
	}
	return st
}

// saveLocked writes every persisted field as one batch. The caller holds s.mu.
func (s *Store) saveLocked() error {
	st := s.state
	var aiData any
	if st.AIData != nil {
		aiData = st.AIData
	}
	changes := []storage.Change{
		{Key: KeyLocation, Value: st.Location},
		{Key: KeyHotelName, Value: st.HotelName},
		{Key: KeyRoomNumber, Value: st.RoomNumber},
		{Key: KeyActivities, Value: nonNil(st.Activities)},
		{Key: model.ListPrep.StorageKey(), Value: nonNil(st.PrepList)},
		{Key: model.ListTodo.StorageKey(), Value: nonNil(st.TodoList)},
		{Key: model.ListShopping.StorageKey(), Value: nonNil(st.ShoppingList)},
		{Key: KeyExpenses, Value: nonNil(st.Expenses)},
		{Key: KeyTravelData, Value: aiData},
	}
	if err := s.persist.SaveAll(changes); err != nil {
		return fmt.Errorf("persisting trip state: %w", err)
	}
	return nil
}

// commitLocked persists the state and, if that fails, puts back prev so the
// failed operation leaves no trace in memory. The caller holds s.mu.
func (s *Store) commitLocked(prev model.TripState) error {
	if err := s.saveLocked(); err != nil {
		s.state = prev
		return err
	}
	return nil
}

// nonNil keeps empty collections serialized as [] rather than null.
func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
