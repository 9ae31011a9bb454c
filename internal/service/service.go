package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/upforaride/server/internal/models"
	"github.com/upforaride/server/internal/observability"
	"github.com/upforaride/server/internal/repository"
	"github.com/upforaride/server/internal/settlement"
)

// Service defines all the business logic operations
type Service interface {
	// Snapshot
	GetState(ctx context.Context) (models.State, error)

	// Ride lifecycle
	StartRide(ctx context.Context, req models.CreateRideRequest) (*models.Ride, error)
	UpdateRide(ctx context.Context, rideID string, req models.UpdateRideRequest) (*models.Ride, error)

	// Cost and wear payment entry
	AddCost(ctx context.Context, req models.CreateCostRequest) (*models.CostEvent, error)
	AddWearPayment(ctx context.Context, req models.CreateWearPaymentRequest) (*models.WearPayment, error)

	// Derived views
	Settlement(ctx context.Context) ([]settlement.UserSummary, error)
	UserStats(ctx context.Context, userID string) (*settlement.UserSummary, error)

	// Roster
	Users() []models.User
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo  repository.Repository
	users []models.User
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, users []models.User) Service {
	if len(users) == 0 {
		users = models.DefaultUsers()
	}
	return &DefaultService{
		repo:  repo,
		users: users,
	}
}

func (s *DefaultService) Users() []models.User {
	return s.users
}

func (s *DefaultService) GetState(ctx context.Context) (models.State, error) {
	state, err := s.repo.GetState(ctx)
	if err != nil {
		return state, fmt.Errorf("error loading state: %w", err)
	}
	return state, nil
}

// StartRide opens a new ride. The single-vehicle invariant lives here,
// not in the schema: at most one ride may be open system-wide, so an
// existing open ride is closed first using the new ride's start reading
// as its end reading.
func (s *DefaultService) StartRide(ctx context.Context, req models.CreateRideRequest) (*models.Ride, error) {
	if models.FindUser(s.users, req.UserID) == nil {
		return nil, fmt.Errorf("user %q: %w", req.UserID, ErrNotFound)
	}
	if !validKm(req.StartKm) {
		return nil, validationErrorf("enter a valid km value")
	}
	for _, pid := range req.ParticipantIDs {
		if models.FindUser(s.users, pid) == nil {
			return nil, fmt.Errorf("participant %q: %w", pid, ErrNotFound)
		}
	}

	open, err := s.repo.GetOpenRide(ctx)
	if err != nil {
		return nil, fmt.Errorf("error checking for open ride: %w", err)
	}

	now := time.Now().UTC()

	if open != nil && req.StartKm <= open.StartKm {
		return nil, validationErrorf(
			"current km must be greater than the open ride's start km (%g)", open.StartKm)
	}

	participants := models.ParticipantIDs(req.ParticipantIDs)
	if len(participants) == 0 {
		participants = models.ParticipantIDs{req.UserID}
	}

	ride := &models.Ride{
		ID:             req.ID,
		UserID:         req.UserID,
		ParticipantIDs: participants,
		StartKm:        req.StartKm,
		StartedAt:      now,
	}
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}
	if req.StartedAt != nil {
		ride.StartedAt = req.StartedAt.UTC()
	}

	if open != nil {
		// Close the open ride and insert the new one atomically, using
		// the new ride's start reading as the previous end reading.
		endKm := req.StartKm
		open.EndKm = &endKm
		open.EndedAt = &now
		if err := s.repo.CreateRideClosingOpen(ctx, ride, open); err != nil {
			return nil, fmt.Errorf("error creating ride: %w", err)
		}
		observability.RidesClosedTotal.Inc()
	} else {
		if err := s.repo.CreateRide(ctx, ride); err != nil {
			return nil, fmt.Errorf("error creating ride: %w", err)
		}
	}
	observability.RidesStartedTotal.Inc()

	return ride, nil
}

// UpdateRide applies a partial ride update. An open ride may be closed
// by providing endKm; a closed ride only accepts an end-location
// backfill (participants are fixed at creation, readings once written).
func (s *DefaultService) UpdateRide(ctx context.Context, rideID string, req models.UpdateRideRequest) (*models.Ride, error) {
	ride, err := s.repo.GetRide(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("error getting ride: %w", err)
	}
	if ride == nil {
		return nil, fmt.Errorf("ride %q: %w", rideID, ErrNotFound)
	}

	closedNow := false
	if req.EndKm != nil {
		if !ride.Open() {
			if *req.EndKm != *ride.EndKm {
				return nil, validationErrorf("ride is already closed")
			}
		} else {
			if !validKm(*req.EndKm) || *req.EndKm <= ride.StartKm {
				return nil, validationErrorf(
					"end km must be greater than the ride's start km (%g)", ride.StartKm)
			}
			ride.EndKm = req.EndKm
			endedAt := time.Now().UTC()
			if req.EndedAt != nil {
				endedAt = req.EndedAt.UTC()
			}
			ride.EndedAt = &endedAt
			closedNow = true
		}
	}

	if req.EndLat != nil {
		ride.EndLat = req.EndLat
	}
	if req.EndLng != nil {
		ride.EndLng = req.EndLng
	}

	if err := s.repo.UpdateRide(ctx, ride); err != nil {
		return nil, fmt.Errorf("error updating ride: %w", err)
	}
	if closedNow {
		observability.RidesClosedTotal.Inc()
	}

	return ride, nil
}

func (s *DefaultService) AddCost(ctx context.Context, req models.CreateCostRequest) (*models.CostEvent, error) {
	if models.FindUser(s.users, req.UserID) == nil {
		return nil, fmt.Errorf("user %q: %w", req.UserID, ErrNotFound)
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return nil, validationErrorf("enter a valid amount")
	}
	if !req.Type.Valid() {
		return nil, validationErrorf("unknown cost type %q", req.Type)
	}

	cost := &models.CostEvent{
		ID:     req.ID,
		UserID: req.UserID,
		Amount: req.Amount,
		Type:   req.Type,
	}
	if req.Description != "" {
		desc := req.Description
		cost.Description = &desc
	}
	if req.CreatedAt != nil {
		cost.CreatedAt = req.CreatedAt.UTC()
	}

	if err := s.repo.CreateCost(ctx, cost); err != nil {
		return nil, fmt.Errorf("error creating cost: %w", err)
	}
	observability.CostsTotal.Inc()

	return cost, nil
}

func (s *DefaultService) AddWearPayment(ctx context.Context, req models.CreateWearPaymentRequest) (*models.WearPayment, error) {
	if models.FindUser(s.users, req.UserID) == nil {
		return nil, fmt.Errorf("user %q: %w", req.UserID, ErrNotFound)
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return nil, validationErrorf("enter a valid amount")
	}

	payment := &models.WearPayment{
		ID:     req.ID,
		UserID: req.UserID,
		Amount: req.Amount,
	}
	if req.CreatedAt != nil {
		payment.CreatedAt = req.CreatedAt.UTC()
	}

	if err := s.repo.CreateWearPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("error creating wear payment: %w", err)
	}
	observability.WearPaymentsTotal.Inc()

	return payment, nil
}

// Settlement recomputes the full settle-up view from the current
// snapshot. Nothing derived is ever persisted.
func (s *DefaultService) Settlement(ctx context.Context) ([]settlement.UserSummary, error) {
	state, err := s.repo.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading state: %w", err)
	}
	return settlement.Compute(state, s.users), nil
}

// UserStats returns the settle-up line for a single user.
func (s *DefaultService) UserStats(ctx context.Context, userID string) (*settlement.UserSummary, error) {
	if models.FindUser(s.users, userID) == nil {
		return nil, fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}

	summaries, err := s.Settlement(ctx)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].UserID == userID {
			return &summaries[i], nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", userID, ErrNotFound)
}

func validKm(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
