package planner_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Tiliavir/lumina/internal/connectivity"
	"github.com/Tiliavir/lumina/internal/gemini"
	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/planner"
	"github.com/Tiliavir/lumina/internal/storage"
	"github.com/Tiliavir/lumina/internal/tripstore"
)

// fakeFetcher counts calls and returns a canned result.
type fakeFetcher struct {
	mu        sync.Mutex
	calls     int
	locations []string
	data      *model.TravelData
	err       error
	block     chan struct{}
	entered   chan struct{}
}

func (f *fakeFetcher) Fetch(_ context.Context, location string, _ *model.Coords) (*model.TravelData, error) {
	f.mu.Lock()
	f.calls++
	f.locations = append(f.locations, location)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.data, f.err
}

func travel(weather string) *model.TravelData {
	return &model.TravelData{
		Weather:        weather,
		UTCOffset:      "UTC+1",
		ItineraryTable: model.ItineraryTable{Morning: "m", Afternoon: "a", Evening: "e"},
		HotelInfo:      "h",
		TodoList:       []string{"t"},
		ShoppingList:   []string{"s"},
	}
}

func setup(t *testing.T, online bool, f gemini.Fetcher, log *zap.Logger) (*planner.Searcher, *tripstore.Store) {
	t.Helper()
	store := tripstore.Open(storage.NewPersistent(storage.NewMemoryKV(), nil), tripstore.Options{})
	return planner.NewSearcher(store, f, connectivity.New(online, nil), log), store
}

func TestSearchOfflineNeverFetches(t *testing.T) {
	f := &fakeFetcher{data: travel("Sunny")}
	s, store := setup(t, false, f, nil)

	ok, err := s.Search(context.Background(), "Paris", nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, connectivity.ErrOffline)
	assert.Zero(t, f.calls)
	assert.Equal(t, "", store.Snapshot().Location)
}

func TestSearchBlankIsNoOp(t *testing.T) {
	f := &fakeFetcher{data: travel("Sunny")}
	s, _ := setup(t, true, f, nil)

	ok, err := s.Search(context.Background(), "   ", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, f.calls)
}

func TestSearchSuccessReplacesData(t *testing.T) {
	f := &fakeFetcher{data: travel("Sunny")}
	s, store := setup(t, true, f, nil)
	store.SetView(model.ViewLists)

	ok, err := s.Search(context.Background(), " Paris ", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	st := store.Snapshot()
	assert.Equal(t, "Paris", st.Location)
	require.NotNil(t, st.AIData)
	assert.Equal(t, "Sunny", st.AIData.Weather)
	assert.Equal(t, model.ViewOverview, store.View())
	assert.False(t, s.Loading())
}

func TestSearchWithCoordsOnly(t *testing.T) {
	f := &fakeFetcher{data: travel("Cloudy")}
	s, store := setup(t, true, f, nil)

	ok, err := s.Search(context.Background(), "", &model.Coords{Lat: 1, Lng: 2})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{planner.CurrentLocationLabel}, f.locations)
	assert.Equal(t, planner.CurrentLocationLabel, store.Snapshot().Location)
}

func TestSearchFailureKeepsPreviousState(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	f := &fakeFetcher{data: travel("Sunny")}
	s, store := setup(t, true, f, zap.New(core))

	_, err := s.Search(context.Background(), "Paris", nil)
	require.NoError(t, err)
	before := store.Snapshot()

	f.data = nil
	f.err = errors.New("dial tcp: connection refused")
	ok, err := s.Search(context.Background(), "Berlin", nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, planner.ErrFetchFailed)
	assert.NotContains(t, err.Error(), "connection refused", "cause must not leak to the user")
	assert.Equal(t, before, store.Snapshot())

	entries := logs.FilterMessage("destination fetch failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Berlin", entries[0].ContextMap()["location"])
	assert.False(t, s.Loading())
}

func TestSearchRejectsConcurrentSearch(t *testing.T) {
	f := &fakeFetcher{
		data:    travel("Sunny"),
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s, _ := setup(t, true, f, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), "Rome", nil)
		done <- err
	}()
	<-f.entered
	assert.True(t, s.Loading())

	_, err := s.Search(context.Background(), "Milan", nil)
	assert.ErrorIs(t, err, planner.ErrSearchInProgress)

	close(f.block)
	require.NoError(t, <-done)
	assert.False(t, s.Loading())
	assert.Equal(t, 1, f.calls)
}

// readOnlyKV serves reads from a MemoryKV and fails every write.
type readOnlyKV struct {
	mem *storage.MemoryKV
}

func (k readOnlyKV) Get(key string) ([]byte, error) { return k.mem.Get(key) }
func (k readOnlyKV) Set(string, []byte) error       { return errors.New("read-only file system") }
func (k readOnlyKV) Delete(string) error            { return errors.New("read-only file system") }

func TestSearchSaveFailureKeepsLocationAndData(t *testing.T) {
	mem := storage.NewMemoryKV()
	seeded := tripstore.Open(storage.NewPersistent(mem, nil), tripstore.Options{})
	require.NoError(t, seeded.ApplySearch("Paris", *travel("Sunny")))

	store := tripstore.Open(storage.NewPersistent(readOnlyKV{mem: mem}, nil), tripstore.Options{})
	f := &fakeFetcher{data: travel("Rain")}
	s := planner.NewSearcher(store, f, connectivity.New(true, nil), nil)

	ok, err := s.Search(context.Background(), "Berlin", nil)
	assert.False(t, ok)
	assert.Error(t, err)
	assert.False(t, s.Loading())

	st := store.Snapshot()
	assert.Equal(t, "Paris", st.Location)
	require.NotNil(t, st.AIData)
	assert.Equal(t, "Sunny", st.AIData.Weather)
}
