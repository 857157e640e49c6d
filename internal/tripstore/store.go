// Package tripstore owns the mutable trip state. Every successful mutation
// is mirrored to the persistent key-value store before it returns.
package tripstore

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/storage"
	"github.com/Tiliavir/lumina/internal/timecalc"
)

// ErrNotFound is returned when an update targets an id that does not exist.
var ErrNotFound = errors.New("not found")

// Options tunes a Store. Zero values select the defaults.
type Options struct {
	// NewID generates entity ids. Defaults to random UUIDs.
	NewID func() string
	// Now is the clock used for expense dates. Defaults to time.Now.
	Now func() time.Time
	// DateLayout formats expense dates. Defaults to timecalc.DefaultDateLayout.
	DateLayout string
	// DefaultCurrency is used when an expense has none. Defaults to USD.
	DefaultCurrency string
}

// Store holds one TripState plus the transient UI state around it (active
// view, activity being edited, activity input buffer).
type Store struct {
	mu       sync.Mutex
	persist  *storage.Persistent
	validate *validator.Validate
	opts     Options

	state     model.TripState
	view      model.View
	editingID string
	draft     ActivityDraft
}

// Open loads every persisted field from p, using the documented defaults for
// anything absent or corrupt.
func Open(p *storage.Persistent, opts Options) *Store {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DateLayout == "" {
		opts.DateLayout = timecalc.DefaultDateLayout
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "USD"
	}
	s := &Store{
		persist:  p,
		validate: validator.New(),
		opts:     opts,
		view:     model.ViewOverview,
		draft:    DefaultDraft(),
	}
	s.state = load(p)
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.TripState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View returns the active display view.
func (s *Store) View() model.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches the active display view.
func (s *Store) SetView(v model.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// SetLocation replaces the searched location.
func (s *Store) SetLocation(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Clone()
	s.state.Location = text
	return s.commitLocked(prev)
}

// SetHotel replaces the user's hotel name and room number.
func (s *Store) SetHotel(name, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Clone()
	s.state.HotelName = name
	s.state.RoomNumber = room
	return s.commitLocked(prev)
}

// ReplaceAIData swaps in a fresh search result and returns to the overview.
func (s *Store) ReplaceAIData(data model.TravelData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceAIDataLocked(s.state.Location, data)
}

// ApplySearch records a completed search: the location and its result are
// persisted together and the view returns to the overview. On failure
// neither changes.
func (s *Store) ApplySearch(location string, data model.TravelData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceAIDataLocked(location, data)
}

func (s *Store) replaceAIDataLocked(location string, data model.TravelData) error {
	prev := s.state.Clone()
	d := data.Clone()
	s.state.Location = location
	s.state.AIData = &d
	if err := s.commitLocked(prev); err != nil {
		return err
	}
	s.view = model.ViewOverview
	return nil
}

// AddListItem appends a trimmed, non-empty item to the named list. An empty
// clock falls back to the list's default time. ok is false when the input
// was rejected or could not be saved.
func (s *Store) AddListItem(name model.ListName, text, clock string) (item model.ListItem, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ListItem{}, false, nil
	}
	if clock == "" {
		clock = name.DefaultTime()
	}
	clock, err = timecalc.ParseClock(clock)
	if err != nil {
		return model.ListItem{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Clone()
	list := s.state.List(name)
	if list == nil {
		return model.ListItem{}, false, fmt.Errorf("unknown list %q", name)
	}
	item = model.ListItem{ID: s.opts.NewID(), Text: text, Time: clock}
	*list = list.Add(item)
	if err := s.commitLocked(prev); err != nil {
		return model.ListItem{}, false, err
	}
	return item, true, nil
}

// ToggleListItem flips the completed flag of an item. found is false (and
// nothing is written) when the id is unknown.
func (s *Store) ToggleListItem(name model.ListName, id string) (found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Clone()
	list := s.state.List(name)
	if list == nil {
		return false, fmt.Errorf("unknown list %q", name)
	}
	if !list.Toggle(id) {
		return false, nil
	}
	return true, s.commitLocked(prev)
}

// RemoveListItem deletes an item by id.
func (s *Store) RemoveListItem(name model.ListName, id string) (found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Clone()
	list := s.state.List(name)
	if list == nil {
		return false, fmt.Errorf("unknown list %q", name)
	}
	var removed bool
	if *list, removed = list.Remove(id); !removed {
		return false, nil
	}
	return true, s.commitLocked(prev)
}

// ExpenseInput carries the user-entered fields of a new expense.
type ExpenseInput struct {
	Item     string  `validate:"required"`
	Amount   float64 `validate:"gt=0"`
	Currency string
	Method   model.PaymentMethod
	Payer    string
}

// AddExpense prepends an expense dated today. Inputs with an empty item or a
// non-positive amount are rejected.
func (s *Store) AddExpense(in ExpenseInput) (model.Expense, bool, error) {
	if err := s.validate.Struct(in); err != nil {
		return model.Expense{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Clone()
	e := model.Expense{
		ID:       s.opts.NewID(),
		Item:     in.Item,
		Amount:   in.Amount,
		Currency: strings.ToUpper(orDefault(strings.TrimSpace(in.Currency), s.opts.DefaultCurrency)),
		Method:   model.PaymentMethod(orDefault(string(in.Method), string(model.CreditCard))),
		Payer:    orDefault(in.Payer, "Me"),
		Date:     timecalc.FormatDate(s.opts.Now(), s.opts.DateLayout),
	}
	s.state.Expenses = append([]model.Expense{e}, s.state.Expenses...)
	if err := s.commitLocked(prev); err != nil {
		return model.Expense{}, false, err
	}
	return e, true, nil
}

// RemoveExpense deletes an expense by id.
func (s *Store) RemoveExpense(id string) (found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Clone()
	for i, e := range s.state.Expenses {
		if e.ID == id {
			s.state.Expenses = append(s.state.Expenses[:i:i], s.state.Expenses[i+1:]...)
			return true, s.commitLocked(prev)
		}
	}
	return false, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
