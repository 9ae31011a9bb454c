// Package store holds the authoritative in-memory snapshot of the
// shared-car state and keeps it synchronized with the backing server.
//
// There is one Store per process. Reads always go through Snapshot();
// mutations are sent to the server first and, only after the server
// confirms, the whole snapshot is replaced by a fresh fetch. No
// optimistic local mutation is ever applied, so observers see either
// the pre-mutation or the fully post-mutation state, never something
// in between.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/upforaride/server/internal/client"
	"github.com/upforaride/server/internal/models"
)

// Listener receives the snapshot on subscription and after every
// refresh. Notification after a refresh is unconditional, even when the
// content did not change: simplicity over change-detection.
type Listener func(models.State)

// Store is an observable snapshot of the server state.
type Store struct {
	api    *client.Client
	logger *slog.Logger

	mu        sync.Mutex
	snapshot  models.State
	loaded    bool
	nextToken int
	listeners map[int]Listener
}

// New creates a store over the given API client. The snapshot starts as
// the default empty state until the first successful refresh.
func New(api *client.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:       api,
		logger:    logger,
		snapshot:  models.DefaultState(),
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the most recently fetched state. Before the first
// successful refresh this is the default empty state.
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Loaded reports whether at least one refresh has succeeded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Subscribe registers a listener, invokes it immediately with the
// current snapshot, and returns an unsubscribe closure.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	token := s.nextToken
	s.nextToken++
	s.listeners[token] = fn
	current := s.snapshot
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.listeners, token)
		s.mu.Unlock()
	}
}

// Refresh re-fetches the full snapshot and notifies all listeners. On
// failure the snapshot keeps its last known value and the error is
// returned; no retry is scheduled.
func (s *Store) Refresh(ctx context.Context) error {
	state, err := s.api.GetState(ctx)
	if err != nil {
		s.logger.Error("failed to load state", "error", err)
		return err
	}

	s.mu.Lock()
	s.snapshot = state
	s.loaded = true
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
	return nil
}

// StartRide submits a new ride and refreshes on success.
func (s *Store) StartRide(ctx context.Context, req models.CreateRideRequest) error {
	if err := s.api.CreateRide(ctx, req); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UpdateRide submits a ride update (close or backfill) and refreshes on
// success.
func (s *Store) UpdateRide(ctx context.Context, rideID string, req models.UpdateRideRequest) error {
	if err := s.api.UpdateRide(ctx, rideID, req); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// AddCost submits a cost event and refreshes on success.
func (s *Store) AddCost(ctx context.Context, req models.CreateCostRequest) error {
	if err := s.api.CreateCost(ctx, req); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// AddWearPayment submits a wear payment and refreshes on success.
func (s *Store) AddWearPayment(ctx context.Context, req models.CreateWearPaymentRequest) error {
	if err := s.api.CreateWearPayment(ctx, req); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
