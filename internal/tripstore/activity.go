package tripstore

import (
	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/timecalc"
)

// ActivityInput carries the editable fields of an activity. An empty Time
// means 09:00.
type ActivityInput struct {
	Time     string
	Event    string `validate:"required"`
	Location string
	Remarks  string
}

// ActivityDraft is the activity input buffer: the form the user is filling
// in, with the time kept as separate hour and minute fields.
type ActivityDraft struct {
	Event    string `json:"event"`
	Location string `json:"location"`
	Remarks  string `json:"remarks"`
	Hour     string `json:"hour"`
	Minute   string `json:"minute"`
}

// DefaultDraft is the empty input buffer.
func DefaultDraft() ActivityDraft {
	return ActivityDraft{Hour: "09", Minute: "00"}
}

// Input converts the buffer into an ActivityInput with a padded HH:MM time.
func (d ActivityDraft) Input() ActivityInput {
	return ActivityInput{
		Time:     timecalc.FormatClock(d.Hour, d.Minute),
		Event:    d.Event,
		Location: d.Location,
		Remarks:  d.Remarks,
	}
}

// normalize validates in and pads its time. ok is false for rejected input.
func (s *Store) normalize(in ActivityInput) (ActivityInput, bool) {
	if err := s.validate.Struct(in); err != nil {
		return in, false
	}
	if in.Time == "" {
		in.Time = "09:00"
	}
	clock, err := timecalc.ParseClock(in.Time)
	if err != nil {
		return in, false
	}
	in.Time = clock
	return in, true
}

// CreateActivity appends a new activity with a fresh id. Inputs without an
// event are rejected.
func (s *Store) CreateActivity(in ActivityInput) (model.Activity, bool, error) {
	in, ok := s.normalize(in)
	if !ok {
		return model.Activity{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(in)
}

func (s *Store) createLocked(in ActivityInput) (model.Activity, bool, error) {
	prev := s.state.Clone()
	a := model.Activity{
		ID:       s.opts.NewID(),
		Time:     in.Time,
		Event:    in.Event,
		Location: in.Location,
		Remarks:  in.Remarks,
	}
	s.state.Activities = append(s.state.Activities, a)
	if err := s.commitLocked(prev); err != nil {
		return model.Activity{}, false, err
	}
	return a, true, nil
}

// UpdateActivity overwrites the fields of an existing activity, keeping its
// id. An unknown id yields ErrNotFound.
func (s *Store) UpdateActivity(id string, in ActivityInput) (model.Activity, bool, error) {
	in, ok := s.normalize(in)
	if !ok {
		return model.Activity{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(id, in)
}

func (s *Store) updateLocked(id string, in ActivityInput) (model.Activity, bool, error) {
	i := s.indexOfActivity(id)
	if i < 0 {
		return model.Activity{}, false, ErrNotFound
	}
	prev := s.state.Clone()
	a := &s.state.Activities[i]
	a.Time = in.Time
	a.Event = in.Event
	a.Location = in.Location
	a.Remarks = in.Remarks
	updated := *a
	if err := s.commitLocked(prev); err != nil {
		return model.Activity{}, false, err
	}
	return updated, true, nil
}

// UpsertActivity saves d as an update of the activity being edited, or as a
// new activity when nothing is being edited. An edit marker pointing at an
// activity that no longer exists is dropped and d is created instead. Only a
// successful save resets the edit marker and input buffer.
func (s *Store) UpsertActivity(d ActivityDraft) (model.Activity, bool, error) {
	in, ok := s.normalize(d.Input())
	if !ok {
		return model.Activity{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		a   model.Activity
		err error
	)
	if s.editingID != "" && s.indexOfActivity(s.editingID) >= 0 {
		a, _, err = s.updateLocked(s.editingID, in)
	} else {
		a, _, err = s.createLocked(in)
	}
	if err != nil {
		return model.Activity{}, false, err
	}
	s.editingID = ""
	s.draft = DefaultDraft()
	return a, true, nil
}

// RemoveActivity deletes an activity, cancelling an edit that targets it.
func (s *Store) RemoveActivity(id string) (found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfActivity(id)
	if i < 0 {
		if s.editingID == id {
			s.editingID = ""
		}
		return false, nil
	}
	prev := s.state.Clone()
	s.state.Activities = append(s.state.Activities[:i:i], s.state.Activities[i+1:]...)
	if err := s.commitLocked(prev); err != nil {
		return false, err
	}
	if s.editingID == id {
		s.editingID = ""
	}
	return true, nil
}

// BeginEdit marks an activity as being edited and loads it into the input
// buffer. It reports false for an unknown id.
func (s *Store) BeginEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfActivity(id)
	if i < 0 {
		return false
	}
	a := s.state.Activities[i]
	hour, minute := timecalc.SplitClock(a.Time)
	s.editingID = id
	s.draft = ActivityDraft{
		Event:    a.Event,
		Location: a.Location,
		Remarks:  a.Remarks,
		Hour:     hour,
		Minute:   minute,
	}
	return true
}

// CancelEdit clears the edit marker and resets the input buffer.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingID = ""
	s.draft = DefaultDraft()
}

// EditingID returns the id of the activity being edited, or "".
func (s *Store) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// Draft returns the activity input buffer.
func (s *Store) Draft() ActivityDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the activity input buffer.
func (s *Store) SetDraft(d ActivityDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

func (s *Store) indexOfActivity(id string) int {
	for i, a := range s.state.Activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}
