package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tiliavir/lumina/internal/tripstore"
)

// DraftResponse is the activity form state.
type DraftResponse struct {
	EditingID string                  `json:"editingId,omitempty"`
	Draft     tripstore.ActivityDraft `json:"draft"`
}

func (s *Server) draftResponse() DraftResponse {
	return DraftResponse{EditingID: s.store.EditingID(), Draft: s.store.Draft()}
}

// BeginEdit handles POST /activities/{id}/edit: it loads the activity into
// the draft and marks it as the edit target.
func (s *Server) BeginEdit(w http.ResponseWriter, r *http.Request) {
	if !s.store.BeginEdit(chi.URLParam(r, "id")) {
		s.notFound(w, "activity")
		return
	}
	s.writeJSON(w, http.StatusOK, s.draftResponse())
}

// GetDraft handles GET /draft.
func (s *Server) GetDraft(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.draftResponse())
}

// PutDraft handles PUT /draft.
func (s *Server) PutDraft(w http.ResponseWriter, r *http.Request) {
	var d tripstore.ActivityDraft
	if !s.decode(w, r, &d) {
		return
	}
	s.store.SetDraft(d)
	s.writeJSON(w, http.StatusOK, s.draftResponse())
}

// SaveDraft handles POST /draft: the draft becomes an update of the edit
// target, or a new activity when there is none.
func (s *Server) SaveDraft(w http.ResponseWriter, r *http.Request) {
	a, ok, err := s.store.UpsertActivity(s.store.Draft())
	if err != nil {
		s.internal(w, r, err)
		return
	}
	if !ok {
		s.rejected(w, "event is required")
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

// CancelDraft handles DELETE /draft.
func (s *Server) CancelDraft(w http.ResponseWriter, _ *http.Request) {
	s.store.CancelEdit()
	w.WriteHeader(http.StatusNoContent)
}
