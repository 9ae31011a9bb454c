package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantIDs_Value(t *testing.T) {
	v, err := ParticipantIDs{"jeroen", "stijn"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["jeroen","stijn"]`, v)

	v, err = ParticipantIDs(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestParticipantIDs_Scan(t *testing.T) {
	var p ParticipantIDs

	require.NoError(t, p.Scan([]byte(`["jeroen","silke"]`)))
	assert.Equal(t, ParticipantIDs{"jeroen", "silke"}, p)

	require.NoError(t, p.Scan(`["hanne"]`))
	assert.Equal(t, ParticipantIDs{"hanne"}, p)

	require.NoError(t, p.Scan(nil))
	assert.Nil(t, p)

	// Malformed legacy values decode to absent, not an error.
	require.NoError(t, p.Scan("not json"))
	assert.Nil(t, p)

	assert.Error(t, p.Scan(42))
}

func TestParticipantIDs_UnmarshalJSON(t *testing.T) {
	var p ParticipantIDs

	require.NoError(t, json.Unmarshal([]byte(`["jeroen","stijn"]`), &p))
	assert.Equal(t, ParticipantIDs{"jeroen", "stijn"}, p)

	// Legacy rows round-trip the array through a text column.
	require.NoError(t, json.Unmarshal([]byte(`"[\"silke\"]"`), &p))
	assert.Equal(t, ParticipantIDs{"silke"}, p)

	assert.Error(t, json.Unmarshal([]byte(`42`), &p))
}

func TestRideParticipants_FallsBackToInitiator(t *testing.T) {
	r := Ride{UserID: "hella"}
	assert.Equal(t, []string{"hella"}, r.Participants())

	r.ParticipantIDs = ParticipantIDs{"hella", "jeroen"}
	assert.Equal(t, []string{"hella", "jeroen"}, r.Participants())
}

func TestCostTypeValid(t *testing.T) {
	assert.True(t, CostTypeFuel.Valid())
	assert.True(t, CostTypeInsurance.Valid())
	assert.True(t, CostTypeOther.Valid())
	assert.False(t, CostType("PARKING").Valid())
	assert.False(t, CostType("").Valid())
}

func TestStateOpenRide(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	endKm := 1100.0

	s := State{Rides: []Ride{
		{ID: "closed", StartKm: 1000, EndKm: &endKm, StartedAt: base},
		{ID: "open-old", StartKm: 1100, StartedAt: base.Add(time.Hour)},
		{ID: "open-new", StartKm: 1150, StartedAt: base.Add(2 * time.Hour)},
	}}

	open := s.OpenRide()
	require.NotNil(t, open)
	assert.Equal(t, "open-new", open.ID)

	last := s.LastRide()
	require.NotNil(t, last)
	assert.Equal(t, "open-new", last.ID)

	empty := State{}
	assert.Nil(t, empty.OpenRide())
	assert.Nil(t, empty.LastRide())

	// Both must be callable on a non-addressable snapshot, e.g. straight
	// off a function result.
	assert.Nil(t, DefaultState().OpenRide())
	assert.Nil(t, DefaultState().LastRide())
}
