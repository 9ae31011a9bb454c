package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upforaride/server/internal/client"
	"github.com/upforaride/server/internal/models"
)

// fakeBackend is a minimal in-memory stand-in for the API server.
type fakeBackend struct {
	mu     sync.Mutex
	state  models.State
	fail   bool
	writes int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{state: models.DefaultState()}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(f.state)
	})
	mux.HandleFunc("/api/rides", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		var req models.CreateRideRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.state.Rides = append(f.state.Rides, models.Ride{
			ID:        req.ID,
			UserID:    req.UserID,
			StartKm:   req.StartKm,
			StartedAt: time.Now().UTC(),
		})
		f.writes++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.OkResponse{Ok: true})
	})
	mux.HandleFunc("/api/costs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		var req models.CreateCostRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.state.Costs = append(f.state.Costs, models.CostEvent{
			ID: req.ID, UserID: req.UserID, Amount: req.Amount, Type: req.Type,
			CreatedAt: time.Now().UTC(),
		})
		f.writes++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.OkResponse{Ok: true})
	})
	return mux
}

func newTestStore(t *testing.T) (*Store, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	return New(client.New(srv.URL), nil), backend
}

func TestSnapshot_DefaultBeforeFirstLoad(t *testing.T) {
	s, _ := newTestStore(t)

	state := s.Snapshot()
	assert.False(t, s.Loaded())
	assert.Empty(t, state.Rides)
	assert.Equal(t, models.DefaultWearRatePerKm, state.Config.WearRatePerKm)
}

func TestSubscribe_ImmediateAndOnRefresh(t *testing.T) {
	s, backend := newTestStore(t)

	var calls []models.State
	unsub := s.Subscribe(func(st models.State) {
		calls = append(calls, st)
	})
	defer unsub()

	// Immediate notification with the (still default) snapshot.
	require.Len(t, calls, 1)

	backend.mu.Lock()
	backend.state.Rides = append(backend.state.Rides, models.Ride{
		ID: "r1", UserID: "jeroen", StartKm: 100, StartedAt: time.Now().UTC(),
	})
	backend.mu.Unlock()

	require.NoError(t, s.Refresh(context.Background()))
	require.Len(t, calls, 2)
	assert.Len(t, calls[1].Rides, 1)
	assert.True(t, s.Loaded())
}

func TestRefresh_NotifiesEvenWhenUnchanged(t *testing.T) {
	s, _ := newTestStore(t)

	notifications := 0
	defer s.Subscribe(func(models.State) { notifications++ })()

	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.Refresh(context.Background()))

	// 1 immediate + 2 refreshes, no change-detection.
	assert.Equal(t, 3, notifications)
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	s, backend := newTestStore(t)

	backend.mu.Lock()
	backend.state.Rides = []models.Ride{{ID: "r1", UserID: "stijn", StartKm: 10, StartedAt: time.Now().UTC()}}
	backend.mu.Unlock()
	require.NoError(t, s.Refresh(context.Background()))

	backend.mu.Lock()
	backend.fail = true
	backend.mu.Unlock()

	err := s.Refresh(context.Background())
	assert.Error(t, err)

	// Last known snapshot survives.
	assert.Len(t, s.Snapshot().Rides, 1)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s, _ := newTestStore(t)

	notifications := 0
	unsub := s.Subscribe(func(models.State) { notifications++ })
	unsub()

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, notifications) // only the immediate call
}

func TestStartRide_RefreshesAfterConfirmation(t *testing.T) {
	s, backend := newTestStore(t)

	err := s.StartRide(context.Background(), models.CreateRideRequest{
		ID: "r1", UserID: "jeroen", StartKm: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, backend.writes)
	assert.Len(t, s.Snapshot().Rides, 1)
}

func TestAddCost_FailureLeavesSnapshotUntouched(t *testing.T) {
	s, backend := newTestStore(t)
	require.NoError(t, s.Refresh(context.Background()))

	backend.mu.Lock()
	backend.fail = true
	backend.mu.Unlock()

	err := s.AddCost(context.Background(), models.CreateCostRequest{
		ID: "c1", UserID: "jeroen", Amount: 60, Type: models.CostTypeFuel,
	})
	assert.Error(t, err)
	assert.Empty(t, s.Snapshot().Costs)
}
