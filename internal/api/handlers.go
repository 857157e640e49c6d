package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Tiliavir/lumina/internal/connectivity"
	"github.com/Tiliavir/lumina/internal/currency"
	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/planner"
	"github.com/Tiliavir/lumina/internal/tripstore"
	"github.com/Tiliavir/lumina/internal/views"
)

// StateResponse is the full client state: raw trip data plus the derived
// presentation record.
type StateResponse struct {
	State      model.TripState         `json:"state"`
	Overview   views.Overview          `json:"overview"`
	ActiveView model.View              `json:"activeView"`
	EditingID  string                  `json:"editingId,omitempty"`
	Draft      tripstore.ActivityDraft `json:"draft"`
	Loading    bool                    `json:"loading"`
}

func (s *Server) stateResponse() StateResponse {
	st := s.store.Snapshot()
	return StateResponse{
		State:      st,
		Overview:   views.Build(st, s.monitor.Online()),
		ActiveView: s.store.View(),
		EditingID:  s.store.EditingID(),
		Draft:      s.store.Draft(),
		Loading:    s.searcher.Loading(),
	}
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.stateResponse())
}

// PutView handles PUT /view.
func (s *Server) PutView(w http.ResponseWriter, r *http.Request) {
	var body struct {
		View model.View `json:"view"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	switch body.View {
	case model.ViewOverview, model.ViewItinerary, model.ViewHotel, model.ViewExpenses, model.ViewLists:
	default:
		s.rejected(w, "unknown view")
		return
	}
	s.store.SetView(body.View)
	w.WriteHeader(http.StatusNoContent)
}

// PutLocation handles PUT /location.
func (s *Server) PutLocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Location string `json:"location"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.store.SetLocation(body.Location); err != nil {
		s.internal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutHotel handles PUT /hotel.
func (s *Server) PutHotel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
		Room string `json:"room"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.store.SetHotel(body.Name, body.Room); err != nil {
		s.internal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostSearch handles POST /search.
func (s *Server) PostSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Location string        `json:"location"`
		Coords   *model.Coords `json:"coords"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	_, err := s.searcher.Search(r.Context(), body.Location, body.Coords)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, s.stateResponse())
	case errors.Is(err, connectivity.ErrOffline):
		s.writeError(w, http.StatusServiceUnavailable, "offline", planner.MsgOffline)
	case errors.Is(err, planner.ErrSearchInProgress):
		s.writeError(w, http.StatusConflict, "in_progress", planner.MsgInProgress)
	case errors.Is(err, planner.ErrFetchFailed):
		s.writeError(w, http.StatusBadGateway, "fetch_failed", planner.MsgFetchFailed)
	default:
		s.internal(w, r, err)
	}
}

// PutConnectivity handles PUT /connectivity, the browser's online/offline
// notification.
func (s *Server) PutConnectivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Online *bool `json:"online"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Online == nil {
		s.rejected(w, "online is required")
		return
	}
	s.monitor.SetOnline(*body.Online)
	w.WriteHeader(http.StatusNoContent)
}

// ConvertResponse is the body of GET /convert.
type ConvertResponse struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Rate   float64 `json:"rate"`
	Known  bool    `json:"known"`
	Result float64 `json:"result"`
}

// GetConvert handles GET /convert?amount=&from=&to=.
func (s *Server) GetConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "amount must be a number")
		return
	}
	from := strings.ToUpper(q.Get("from"))
	to := strings.ToUpper(q.Get("to"))
	rate, known := currency.Rate(from, to)
	s.writeJSON(w, http.StatusOK, ConvertResponse{
		Amount: amount,
		From:   from,
		To:     to,
		Rate:   rate,
		Known:  known,
		Result: currency.Convert(amount, from, to),
	})
}

type activityRequest struct {
	Time     string `json:"time"`
	Event    string `json:"event"`
	Location string `json:"location"`
	Remarks  string `json:"remarks"`
}

func (a activityRequest) input() tripstore.ActivityInput {
	return tripstore.ActivityInput{Time: a.Time, Event: a.Event, Location: a.Location, Remarks: a.Remarks}
}

// CreateActivity handles POST /activities.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var body activityRequest
	if !s.decode(w, r, &body) {
		return
	}
	a, ok, err := s.store.CreateActivity(body.input())
	if err != nil {
		s.internal(w, r, err)
		return
	}
	if !ok {
		s.rejected(w, "event is required and time must be HH:MM")
		return
	}
	s.writeJSON(w, http.StatusCreated, a)
}

// UpdateActivity handles PUT /activities/{id}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var body activityRequest
	if !s.decode(w, r, &body) {
		return
	}
	a, ok, err := s.store.UpdateActivity(chi.URLParam(r, "id"), body.input())
	switch {
	case errors.Is(err, tripstore.ErrNotFound):
		s.notFound(w, "activity")
	case err != nil:
		s.internal(w, r, err)
	case !ok:
		s.rejected(w, "event is required and time must be HH:MM")
	default:
		s.writeJSON(w, http.StatusOK, a)
	}
}

// DeleteActivity handles DELETE /activities/{id}.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	found, err := s.store.RemoveActivity(chi.URLParam(r, "id"))
	s.deleted(w, r, found, err, "activity")
}

// listName resolves the {list} URL parameter, answering 404 itself.
func (s *Server) listName(w http.ResponseWriter, r *http.Request) (model.ListName, bool) {
	name, err := model.ParseListName(chi.URLParam(r, "list"))
	if err != nil {
		s.notFound(w, "list")
		return "", false
	}
	return name, true
}

// AddListItem handles POST /lists/{list}.
func (s *Server) AddListItem(w http.ResponseWriter, r *http.Request) {
	name, ok := s.listName(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
		Time string `json:"time"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	item, ok, err := s.store.AddListItem(name, body.Text, body.Time)
	if err != nil {
		s.internal(w, r, err)
		return
	}
	if !ok {
		s.rejected(w, "text is required and time must be HH:MM")
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

// ToggleListItem handles POST /lists/{list}/{id}/toggle.
func (s *Server) ToggleListItem(w http.ResponseWriter, r *http.Request) {
	name, ok := s.listName(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	found, err := s.store.ToggleListItem(name, id)
	if err != nil {
		s.internal(w, r, err)
		return
	}
	if !found {
		s.notFound(w, "item")
		return
	}
	st := s.store.Snapshot()
	item, _ := st.List(name).Find(id)
	s.writeJSON(w, http.StatusOK, item)
}

// DeleteListItem handles DELETE /lists/{list}/{id}.
func (s *Server) DeleteListItem(w http.ResponseWriter, r *http.Request) {
	name, ok := s.listName(w, r)
	if !ok {
		return
	}
	found, err := s.store.RemoveListItem(name, chi.URLParam(r, "id"))
	s.deleted(w, r, found, err, "item")
}

// CreateExpense handles POST /expenses.
func (s *Server) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Item     string  `json:"item"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Method   string  `json:"method"`
		Payer    string  `json:"payer"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	method, err := model.ParsePaymentMethod(body.Method)
	if err != nil {
		s.rejected(w, err.Error())
		return
	}
	e, ok, err := s.store.AddExpense(tripstore.ExpenseInput{
		Item:     body.Item,
		Amount:   body.Amount,
		Currency: body.Currency,
		Method:   method,
		Payer:    body.Payer,
	})
	if err != nil {
		s.internal(w, r, err)
		return
	}
	if !ok {
		s.rejected(w, "item is required and amount must be positive")
		return
	}
	s.writeJSON(w, http.StatusCreated, e)
}

// DeleteExpense handles DELETE /expenses/{id}.
func (s *Server) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	found, err := s.store.RemoveExpense(chi.URLParam(r, "id"))
	s.deleted(w, r, found, err, "expense")
}

func (s *Server) deleted(w http.ResponseWriter, r *http.Request, found bool, err error, what string) {
	switch {
	case err != nil:
		s.internal(w, r, err)
	case !found:
		s.notFound(w, what)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
