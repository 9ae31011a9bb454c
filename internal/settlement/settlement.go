// Package settlement turns the raw ride/cost/payment log into per-user
// balances. Variable costs are redistributed proportionally to each
// user's share of the total attributed distance; the wear reserve is
// tracked per user without redistribution. Everything here is pure
// computation over a snapshot.
package settlement

import (
	"math"

	"github.com/upforaride/server/internal/models"
)

// UserSummary is one user's settle-up line.
type UserSummary struct {
	UserID       string  `json:"userId"`
	Name         string  `json:"name"`
	Km           float64 `json:"km"`
	VariablePaid float64 `json:"variablePaid"`
	FairShare    float64 `json:"fairShare"`
	VariableNet  float64 `json:"variableNet"`
	WearOwed     float64 `json:"wearOwed"`
	WearPaid     float64 `json:"wearPaid"`
	WearNet      float64 `json:"wearNet"`
}

// rideDistance returns the countable distance of a ride, or 0 when the
// ride is open, the delta is not positive, or either reading is not a
// finite number. Zero and negative deltas are untracked, not errors.
func rideDistance(r *models.Ride) float64 {
	if r.EndKm == nil {
		return 0
	}
	d := *r.EndKm - r.StartKm
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0
	}
	return d
}

// addRideShares splits a ride's distance equally among its participants
// and adds each share to the totals map. Rides without a countable
// distance contribute nothing.
func addRideShares(totals map[string]float64, r *models.Ride) {
	d := rideDistance(r)
	if d == 0 {
		return
	}
	participants := r.Participants()
	share := d / float64(len(participants))
	for _, pid := range participants {
		totals[pid] += share
	}
}

// DistanceByUser attributes distance across all rides, equal-split per
// ride among its participants. Every id in userIDs gets an entry, zero
// included, so lookups are always defined. Participants outside the
// roster still accumulate; the caller decides whether to surface them.
func DistanceByUser(rides []models.Ride, userIDs []string) map[string]float64 {
	totals := make(map[string]float64, len(userIDs))
	for _, id := range userIDs {
		totals[id] = 0
	}
	for i := range rides {
		addRideShares(totals, &rides[i])
	}
	return totals
}

// Compute builds one summary per roster user, in roster order.
//
// For each user: fairShare = totalVariableCosts * km / totalKm (0 when
// no distance has been driven at all), variableNet = paid - fairShare,
// wearOwed = km * wearRatePerKm, wearNet = paidToReserve - wearOwed.
// The variableNet column sums to zero across users whenever totalKm > 0
// since every share is an allocation of the same fixed pool.
func Compute(state models.State, users []models.User) []UserSummary {
	kmByUser := DistanceByUser(state.Rides, models.UserIDs(users))

	var totalKm float64
	for _, km := range kmByUser {
		totalKm += km
	}

	var totalVariableCosts float64
	for _, c := range state.Costs {
		totalVariableCosts += c.Amount
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		km := kmByUser[u.ID]

		var variablePaid float64
		for _, c := range state.Costs {
			if c.UserID == u.ID {
				variablePaid += c.Amount
			}
		}

		var fairShare float64
		if totalKm > 0 {
			fairShare = totalVariableCosts * km / totalKm
		}

		var wearPaid float64
		for _, p := range state.WearPayments {
			if p.UserID == u.ID {
				wearPaid += p.Amount
			}
		}

		wearOwed := km * state.Config.WearRatePerKm

		summaries = append(summaries, UserSummary{
			UserID:       u.ID,
			Name:         u.Name,
			Km:           km,
			VariablePaid: variablePaid,
			FairShare:    fairShare,
			VariableNet:  variablePaid - fairShare,
			WearOwed:     wearOwed,
			WearPaid:     wearPaid,
			WearNet:      wearPaid - wearOwed,
		})
	}
	return summaries
}
