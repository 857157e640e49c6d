// Package planner runs destination searches: it gates on connectivity,
// allows one fetch at a time and only touches the trip state on success.
package planner

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Tiliavir/lumina/internal/connectivity"
	"github.com/Tiliavir/lumina/internal/gemini"
	"github.com/Tiliavir/lumina/internal/model"
	"github.com/Tiliavir/lumina/internal/tripstore"
)

var (
	// ErrSearchInProgress is returned while another search is pending.
	ErrSearchInProgress = errors.New("a search is already in progress")
	// ErrFetchFailed is the user-facing error for any fetch failure. The
	// underlying cause is logged, not returned.
	ErrFetchFailed = errors.New("unable to reach destination info")
)

// Messages shown to the user for search failures.
const (
	MsgOffline     = "Search requires an internet connection."
	MsgFetchFailed = "Unable to reach destination info."
	MsgInProgress  = "A search is already in progress."
)

// CurrentLocationLabel is the location recorded for coordinate-only searches.
const CurrentLocationLabel = "My Location"

// Searcher wires the fetcher to the store.
type Searcher struct {
	store   *tripstore.Store
	fetcher gemini.Fetcher
	monitor *connectivity.Monitor
	log     *zap.Logger
	loading atomic.Bool
}

// NewSearcher creates a Searcher.
func NewSearcher(store *tripstore.Store, fetcher gemini.Fetcher, monitor *connectivity.Monitor, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{store: store, fetcher: fetcher, monitor: monitor, log: log}
}

// Loading reports whether a search is in flight.
func (s *Searcher) Loading() bool {
	return s.loading.Load()
}

// Search fetches data for location and stores it. A blank location without
// coordinates is ignored; coordinates alone search for CurrentLocationLabel.
// It reports whether a search was performed.
func (s *Searcher) Search(ctx context.Context, location string, coords *model.Coords) (bool, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		if coords == nil {
			return false, nil
		}
		location = CurrentLocationLabel
	}

	if err := s.monitor.Require(); err != nil {
		return false, err
	}
	if !s.loading.CompareAndSwap(false, true) {
		return false, ErrSearchInProgress
	}
	defer s.loading.Store(false)

	data, err := s.fetcher.Fetch(ctx, location, coords)
	if err != nil {
		s.log.Error("destination fetch failed", zap.String("location", location), zap.Error(err))
		return false, ErrFetchFailed
	}
	if data == nil {
		s.log.Error("destination fetch returned no data", zap.String("location", location))
		return false, ErrFetchFailed
	}

	if err := s.store.ApplySearch(location, *data); err != nil {
		return false, err
	}
	s.log.Info("destination loaded", zap.String("location", location))
	return true, nil
}
