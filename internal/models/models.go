package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CostType classifies a variable cost event.
type CostType string

const (
	CostTypeFuel      CostType = "FUEL"
	CostTypeInsurance CostType = "INSURANCE"
	CostTypeOther     CostType = "OTHER"
)

// Valid reports whether the cost type is one of the known values.
func (t CostType) Valid() bool {
	switch t {
	case CostTypeFuel, CostTypeInsurance, CostTypeOther:
		return true
	}
	return false
}

// ParticipantIDs is the set of users sharing a ride's distance. It is
// stored in the database as a JSON array in a text column, and older
// backends may hand it back as an encoded string inside JSON, so both
// the SQL and JSON decoders tolerate either representation.
type ParticipantIDs []string

// Value implements driver.Valuer, serializing the list as JSON text.
func (p ParticipantIDs) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *ParticipantIDs) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return p.decode(v)
	case string:
		return p.decode([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into ParticipantIDs", src)
	}
}

// UnmarshalJSON accepts either a JSON array of ids or a JSON string
// containing an encoded array (legacy rows round-tripped through text).
func (p *ParticipantIDs) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		*p = ids
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		return p.decode([]byte(encoded))
	}

	return fmt.Errorf("participantIds: expected array or encoded string, got %s", data)
}

func (p *ParticipantIDs) decode(data []byte) error {
	if len(data) == 0 {
		*p = nil
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// Tolerate malformed legacy values by treating them as absent;
		// the initiator fallback covers attribution.
		*p = nil
		return nil
	}
	*p = ids
	return nil
}

// Ride is a single vehicle usage interval. A ride is open while EndKm is
// nil; it closes exactly once, either explicitly or implicitly when the
// next ride starts. Closed rides are immutable except for backfilling
// the end location.
type Ride struct {
	ID             string         `db:"id" json:"id"`
	UserID         string         `db:"user_id" json:"userId"`
	ParticipantIDs ParticipantIDs `db:"participant_ids" json:"participantIds"`
	StartKm        float64        `db:"start_km" json:"startKm"`
	EndKm          *float64       `db:"end_km" json:"endKm"`
	StartedAt      time.Time      `db:"started_at" json:"startedAt"`
	EndedAt        *time.Time     `db:"ended_at" json:"endedAt"`
	EndLat         *float64       `db:"end_lat" json:"endLat"`
	EndLng         *float64       `db:"end_lng" json:"endLng"`
}

// Open reports whether the ride has not been closed yet.
func (r *Ride) Open() bool {
	return r.EndKm == nil
}

// Participants returns the ids sharing this ride's distance. Rides
// recorded before participant tracking existed have an empty set; those
// fall back to the initiator alone so historical totals stay stable.
func (r *Ride) Participants() []string {
	if len(r.ParticipantIDs) > 0 {
		return r.ParticipantIDs
	}
	return []string{r.UserID}
}

// CostEvent is money a user actually spent on the vehicle. Immutable
// once created.
type CostEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Amount      float64   `db:"amount" json:"amount"`
	Type        CostType  `db:"type" json:"type"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// WearPayment is money a user contributed toward the wear reserve.
// Immutable once created.
type WearPayment struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AppConfig holds the single current wear rate. The rate is not
// versioned: changing it retroactively changes wear-owed for all past
// rides. That is intentional, see the settlement package.
type AppConfig struct {
	WearRatePerKm float64 `json:"wearRatePerKm"`
}

// DefaultWearRatePerKm applies when the config row is absent.
const DefaultWearRatePerKm = 0.2

// State is the full point-in-time snapshot of the event log as served
// by the store. Consumers receive a copy and never a live reference;
// derived values are recomputed from it on every read.
type State struct {
	Rides        []Ride        `json:"rides"`
	Costs        []CostEvent   `json:"costs"`
	WearPayments []WearPayment `json:"wearPayments"`
	Config       AppConfig     `json:"config"`
}

// DefaultState is the zero snapshot served before the first successful
// load from the backend.
func DefaultState() State {
	return State{
		Rides:        []Ride{},
		Costs:        []CostEvent{},
		WearPayments: []WearPayment{},
		Config:       AppConfig{WearRatePerKm: DefaultWearRatePerKm},
	}
}

// OpenRide returns the most recently started open ride, or nil. The
// value receiver lets callers chain off a fresh snapshot.
func (s State) OpenRide() *Ride {
	var open *Ride
	for i := range s.Rides {
		r := &s.Rides[i]
		if !r.Open() {
			continue
		}
		if open == nil || r.StartedAt.After(open.StartedAt) {
			open = r
		}
	}
	return open
}

// LastRide returns the most recently started ride, or nil.
func (s State) LastRide() *Ride {
	var last *Ride
	for i := range s.Rides {
		r := &s.Rides[i]
		if last == nil || r.StartedAt.After(last.StartedAt) {
			last = r
		}
	}
	return last
}
