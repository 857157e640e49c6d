package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tiliavir/lumina/internal/api"
	"github.com/Tiliavir/lumina/internal/connectivity"
	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/planner"
	"github.com/Tiliavir/lumina/internal/storage"
	"github.com/Tiliavir/lumina/internal/tripstore"
)

const origin = "http://localhost:5173"

type stubFetcher struct {
	calls int
	data  *model.TravelData
	err   error
}

func (f *stubFetcher) Fetch(context.Context, string, *model.Coords) (*model.TravelData, error) {
	f.calls++
	return f.data, f.err
}

type harness struct {
	handler http.Handler
	store   *tripstore.Store
	monitor *connectivity.Monitor
	fetcher *stubFetcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	n := 0
	store := tripstore.Open(storage.NewPersistent(storage.NewMemoryKV(), log), tripstore.Options{
		NewID: func() string { n++; return fmt.Sprintf("id-%d", n) },
	})
	monitor := connectivity.New(true, log)
	f := &stubFetcher{data: &model.TravelData{
		Weather:        "Warm",
		UTCOffset:      "UTC-3",
		ItineraryTable: model.ItineraryTable{Morning: "m", Afternoon: "a", Evening: "e"},
		HotelInfo:      "Copacabana",
		TodoList:       []string{"Sugarloaf"},
		ShoppingList:   []string{"Havaianas"},
	}}
	srv := api.NewServer(store, planner.NewSearcher(store, f, monitor, log), monitor, log)
	return &harness{
		handler: api.NewRouter(srv, api.RouterOptions{AllowedOrigins: []string{origin}, MaxBodyBytes: 256}),
		store:   store,
		monitor: monitor,
		fetcher: f,
	}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSearchFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/search", `{"location":"Rio"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeJSON[api.StateResponse](t, rec)
	assert.Equal(t, "Rio", resp.State.Location)
	assert.True(t, resp.Overview.HasData)
	assert.Equal(t, 1, resp.Overview.PendingTasks)
	assert.Equal(t, model.ViewOverview, resp.ActiveView)

	// Going offline blocks the next search before any fetch.
	rec = h.do(t, http.MethodPut, "/connectivity", `{"online":false}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodPost, "/search", `{"location":"Lima"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, planner.MsgOffline, decodeJSON[api.ErrorResponse](t, rec).Error.Message)
	assert.Equal(t, 1, h.fetcher.calls)

	// Offline state disables map embeds.
	require.NoError(t, h.store.SetHotel("Belmond", "12"))
	resp = decodeJSON[api.StateResponse](t, h.do(t, http.MethodGet, "/state", ""))
	require.NotNil(t, resp.Overview.Hotel.Map)
	assert.Empty(t, resp.Overview.Hotel.Map.URL)
}

func TestSearchFailureKeepsData(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/search", `{"location":"Rio"}`).Code)

	h.fetcher.err = errors.New("boom")
	rec := h.do(t, http.MethodPost, "/search", `{"location":"Quito"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, planner.MsgFetchFailed, decodeJSON[api.ErrorResponse](t, rec).Error.Message)
	assert.Equal(t, "Rio", h.store.Snapshot().Location)
}

func TestActivities(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/activities", `{"time":"14:00","event":"Museum","location":"MASP"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[model.Activity](t, rec)
	assert.Equal(t, "id-1", created.ID)

	rec = h.do(t, http.MethodPost, "/activities", `{"time":"14:00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, http.MethodPut, "/activities/id-1", `{"time":"15:30","event":"Museum visit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "15:30", decodeJSON[model.Activity](t, rec).Time)

	rec = h.do(t, http.MethodPut, "/activities/missing", `{"event":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/activities/id-1", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, "/activities/id-1", "").Code)
}

func TestLists(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/lists/prep", `{"text":"Passport"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decodeJSON[model.ListItem](t, rec)
	assert.Equal(t, "08:00", item.Time)

	rec = h.do(t, http.MethodPost, "/lists/prep/"+item.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeJSON[model.ListItem](t, rec).Completed)

	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, "/lists/todo", `{"text":"  "}`).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/lists/packing", `{"text":"Socks"}`).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/lists/todo/nope/toggle", "").Code)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/lists/prep/"+item.ID, "").Code)
	assert.Empty(t, h.store.Snapshot().PrepList)
}

func TestExpenses(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, "/expenses", `{"item":"","amount":10}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, "/expenses", `{"item":"Lunch","amount":0}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, "/expenses", `{"item":"Lunch","amount":5,"method":"cheque"}`).Code)

	rec := h.do(t, http.MethodPost, "/expenses", `{"item":"Lunch","amount":12,"currency":"usd","method":"cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	e := decodeJSON[model.Expense](t, rec)
	assert.Equal(t, "USD", e.Currency)
	assert.Equal(t, model.Cash, e.Method)
	assert.Equal(t, "Me", e.Payer)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/expenses/"+e.ID, "").Code)
}

func TestConvert(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/convert?amount=10&from=usd&to=eur", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[api.ConvertResponse](t, rec)
	assert.True(t, got.Known)
	assert.InDelta(t, 9.2, got.Result, 1e-9)

	got = decodeJSON[api.ConvertResponse](t, h.do(t, http.MethodGet, "/convert?amount=1&from=USD&to=ZZZ", ""))
	assert.False(t, got.Known)
	assert.InDelta(t, 1.1, got.Result, 1e-9)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/convert?amount=lots&from=USD&to=EUR", "").Code)
}

func TestViewAndHotel(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPut, "/view", `{"view":"expenses"}`).Code)
	assert.Equal(t, model.ViewExpenses, h.store.View())
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPut, "/view", `{"view":"gallery"}`).Code)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPut, "/hotel", `{"name":"Fasano","room":"301"}`).Code)
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPut, "/location", `{"location":"Rio"}`).Code)
	st := h.store.Snapshot()
	assert.Equal(t, "Fasano", st.HotelName)
	assert.Equal(t, "301", st.RoomNumber)
	assert.Equal(t, "Rio", st.Location)
}

func TestBadBodies(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, "/hotel", `{nope`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, "/hotel", ``).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPut, "/connectivity", `{}`).Code)

	big := `{"name":"` + strings.Repeat("x", 1024) + `"}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, h.do(t, http.MethodPut, "/hotel", big).Code)
}

func TestCORS(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.True(t, rec.Code == http.StatusNoContent || rec.Code == http.StatusOK, "preflight got %d", rec.Code)
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDraftFlow(t *testing.T) {
	h := newHarness(t)

	// Saving an empty draft is rejected.
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, "/draft", "").Code)

	rec := h.do(t, http.MethodPut, "/draft", `{"event":"Samba class","location":"Lapa","hour":"20","minute":"30"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/draft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeJSON[model.Activity](t, rec)
	assert.Equal(t, "20:30", created.Time)

	draft := decodeJSON[api.DraftResponse](t, h.do(t, http.MethodGet, "/draft", ""))
	assert.Equal(t, tripstore.DefaultDraft(), draft.Draft, "draft resets after save")

	rec = h.do(t, http.MethodPost, "/activities/"+created.ID+"/edit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	draft = decodeJSON[api.DraftResponse](t, rec)
	assert.Equal(t, created.ID, draft.EditingID)
	assert.Equal(t, "Samba class", draft.Draft.Event)

	draft.Draft.Event = "Samba night"
	body, err := json.Marshal(draft.Draft)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPut, "/draft", string(body)).Code)
	rec = h.do(t, http.MethodPost, "/draft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeJSON[model.Activity](t, rec).ID)
	assert.Len(t, h.store.Snapshot().Activities, 1)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/activities/nope/edit", "").Code)
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/draft", "").Code)
}
