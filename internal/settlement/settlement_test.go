package settlement

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upforaride/server/internal/models"
)

func kmPtr(v float64) *float64 { return &v }

func ride(user string, participants []string, startKm float64, endKm *float64, startedAt time.Time) models.Ride {
	return models.Ride{
		ID:             user + startedAt.Format("150405"),
		UserID:         user,
		ParticipantIDs: participants,
		StartKm:        startKm,
		EndKm:          endKm,
		StartedAt:      startedAt,
	}
}

func testUsers() []models.User {
	return []models.User{
		{ID: "a", Name: "Anna"},
		{ID: "b", Name: "Bram"},
		{ID: "c", Name: "Cleo"},
	}
}

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestDistanceByUser_InitializesAllUsers(t *testing.T) {
	totals := DistanceByUser(nil, []string{"a", "b", "c"})

	require.Len(t, totals, 3)
	for id, km := range totals {
		assert.Zerof(t, km, "user %s should start at 0", id)
	}
}

func TestDistanceByUser_SkipsInvalidDeltas(t *testing.T) {
	rides := []models.Ride{
		ride("a", nil, 100, nil, t0),                          // open ride
		ride("a", nil, 100, kmPtr(100), t0.Add(time.Hour)),    // zero delta
		ride("a", nil, 100, kmPtr(90), t0.Add(2*time.Hour)),   // negative delta
		ride("a", nil, 100, kmPtr(math.NaN()), t0.Add(3*time.Hour)),
		ride("a", nil, 100, kmPtr(math.Inf(1)), t0.Add(4*time.Hour)),
	}

	totals := DistanceByUser(rides, []string{"a"})
	assert.Zero(t, totals["a"])
}

func TestDistanceByUser_EqualSplitAcrossParticipants(t *testing.T) {
	rides := []models.Ride{
		ride("a", []string{"a", "b", "c"}, 0, kmPtr(90), t0),
	}

	totals := DistanceByUser(rides, []string{"a", "b", "c"})

	assert.Equal(t, 30.0, totals["a"])
	assert.Equal(t, 30.0, totals["b"])
	assert.Equal(t, 30.0, totals["c"])
	assert.Equal(t, 90.0, totals["a"]+totals["b"]+totals["c"])
}

func TestDistanceByUser_FallsBackToInitiator(t *testing.T) {
	// Legacy rides have no participant list; the initiator gets the
	// full distance.
	rides := []models.Ride{
		ride("a", nil, 0, kmPtr(40), t0),
	}

	totals := DistanceByUser(rides, []string{"a", "b"})
	assert.Equal(t, 40.0, totals["a"])
	assert.Zero(t, totals["b"])
}

func TestDistanceByUser_AccumulatesAcrossRides(t *testing.T) {
	rides := []models.Ride{
		ride("a", []string{"a"}, 0, kmPtr(50), t0),
		ride("a", []string{"a", "b"}, 50, kmPtr(150), t0.Add(time.Hour)),
	}

	totals := DistanceByUser(rides, []string{"a", "b"})
	assert.Equal(t, 100.0, totals["a"])
	assert.Equal(t, 50.0, totals["b"])
}

func TestCompute_NoRidesMeansNoFairShare(t *testing.T) {
	state := models.DefaultState()
	state.Costs = []models.CostEvent{
		{ID: "c1", UserID: "a", Amount: 120, Type: models.CostTypeFuel, CreatedAt: t0},
	}

	summaries := Compute(state, testUsers())

	require.Len(t, summaries, 3)
	for _, s := range summaries {
		assert.Zerof(t, s.FairShare, "user %s", s.UserID)
	}
	// The payer's net is their full spend; fair shares only exist once
	// distance has been driven.
	assert.Equal(t, 120.0, summaries[0].VariableNet)
}

func TestCompute_TwoUserEndToEnd(t *testing.T) {
	// A rides 0->100 alone, B rides 100->150 alone, A pays 60 fuel,
	// rate 0.2. A: share 40, net +20. B: share 20, net -20.
	users := []models.User{{ID: "a", Name: "Anna"}, {ID: "b", Name: "Bram"}}
	state := models.State{
		Rides: []models.Ride{
			ride("a", []string{"a"}, 0, kmPtr(100), t0),
			ride("b", []string{"b"}, 100, kmPtr(150), t0.Add(time.Hour)),
		},
		Costs: []models.CostEvent{
			{ID: "c1", UserID: "a", Amount: 60, Type: models.CostTypeFuel, CreatedAt: t0},
		},
		Config: models.AppConfig{WearRatePerKm: 0.2},
	}

	summaries := Compute(state, users)
	require.Len(t, summaries, 2)

	a, b := summaries[0], summaries[1]

	assert.Equal(t, 100.0, a.Km)
	assert.Equal(t, 50.0, b.Km)

	assert.InDelta(t, 40.0, a.FairShare, 1e-9)
	assert.InDelta(t, 20.0, a.VariableNet, 1e-9)
	assert.InDelta(t, 20.0, b.FairShare, 1e-9)
	assert.InDelta(t, -20.0, b.VariableNet, 1e-9)

	assert.InDelta(t, 0, a.VariableNet+b.VariableNet, 1e-9)

	// Wear is per-user, no redistribution.
	assert.InDelta(t, 20.0, a.WearOwed, 1e-9)
	assert.InDelta(t, 10.0, b.WearOwed, 1e-9)
	assert.InDelta(t, -20.0, a.WearNet, 1e-9)
}

func TestCompute_VariableNetsSumToZero(t *testing.T) {
	users := testUsers()
	state := models.State{
		Rides: []models.Ride{
			ride("a", []string{"a", "b"}, 0, kmPtr(37), t0),
			ride("b", []string{"b"}, 37, kmPtr(141), t0.Add(time.Hour)),
			ride("c", []string{"a", "b", "c"}, 141, kmPtr(200), t0.Add(2*time.Hour)),
		},
		Costs: []models.CostEvent{
			{ID: "c1", UserID: "a", Amount: 63.17, Type: models.CostTypeFuel, CreatedAt: t0},
			{ID: "c2", UserID: "b", Amount: 12.50, Type: models.CostTypeOther, CreatedAt: t0},
			{ID: "c3", UserID: "c", Amount: 250, Type: models.CostTypeInsurance, CreatedAt: t0},
		},
		Config: models.AppConfig{WearRatePerKm: 0.2},
	}

	summaries := Compute(state, users)

	var netSum float64
	for _, s := range summaries {
		netSum += s.VariableNet
	}
	assert.InDelta(t, 0, netSum, 1e-9)
}

func TestCompute_NonRosterParticipantsCountTowardTotal(t *testing.T) {
	// A participant id outside the roster keeps its share of the total
	// distance. The roster's fair shares shrink accordingly, so the
	// roster's variable nets no longer sum to zero; the outsider's
	// share of the pool stays unallocated rather than being silently
	// redistributed.
	users := []models.User{{ID: "a", Name: "Anna"}, {ID: "b", Name: "Bram"}}
	state := models.State{
		Rides: []models.Ride{
			ride("a", []string{"a", "ghost"}, 0, kmPtr(100), t0),
		},
		Costs: []models.CostEvent{
			{ID: "c1", UserID: "a", Amount: 60, Type: models.CostTypeFuel, CreatedAt: t0},
		},
		Config: models.AppConfig{WearRatePerKm: 0.2},
	}

	summaries := Compute(state, users)
	require.Len(t, summaries, 2)

	a, b := summaries[0], summaries[1]
	assert.Equal(t, 50.0, a.Km)
	assert.Zero(t, b.Km)
	assert.InDelta(t, 30.0, a.FairShare, 1e-9) // 60 * 50/100, not 60
	assert.InDelta(t, 30.0, a.VariableNet+b.VariableNet, 1e-9)
}

func TestCompute_WearOwedIsExactProduct(t *testing.T) {
	users := []models.User{{ID: "a", Name: "Anna"}}
	state := models.State{
		Rides: []models.Ride{
			ride("a", []string{"a"}, 0, kmPtr(123), t0),
		},
		WearPayments: []models.WearPayment{
			{ID: "w1", UserID: "a", Amount: 10, CreatedAt: t0},
		},
		Config: models.AppConfig{WearRatePerKm: 0.25},
	}

	summaries := Compute(state, users)
	require.Len(t, summaries, 1)

	assert.Equal(t, 123*0.25, summaries[0].WearOwed)
	assert.Equal(t, 10.0, summaries[0].WearPaid)
	assert.Equal(t, 10-123*0.25, summaries[0].WearNet)
}

func TestCompute_OrderMatchesRoster(t *testing.T) {
	users := testUsers()
	summaries := Compute(models.DefaultState(), users)

	require.Len(t, summaries, len(users))
	for i, u := range users {
		assert.Equal(t, u.ID, summaries[i].UserID)
		assert.Equal(t, u.Name, summaries[i].Name)
	}
}
