package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/upforaride/server/internal/models"
)

const wearRateKey = "wearRatePerKm"

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// Snapshot
	GetState(ctx context.Context) (models.State, error)

	// Ride operations
	CreateRide(ctx context.Context, ride *models.Ride) error
	CreateRideClosingOpen(ctx context.Context, ride, open *models.Ride) error
	UpdateRide(ctx context.Context, ride *models.Ride) error
	GetRide(ctx context.Context, id string) (*models.Ride, error)
	GetOpenRide(ctx context.Context) (*models.Ride, error)

	// Cost and wear payment operations
	CreateCost(ctx context.Context, cost *models.CostEvent) error
	CreateWearPayment(ctx context.Context, payment *models.WearPayment) error

	// Config operations
	GetWearRate(ctx context.Context) (float64, error)
	SetWearRate(ctx context.Context, rate float64) error
}

// SQLRepository implements the Repository interface over sqlx. Queries
// are written with ? placeholders and rebound for the active driver, so
// the same implementation serves Postgres and SQLite.
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates a new SQL-backed repository
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *SQLRepository) GetDB() *sqlx.DB {
	return r.db
}

// GetState assembles the full snapshot: every ride, cost, and wear
// payment plus the current config. No derived value is read here;
// consumers recompute everything from the raw log.
func (r *SQLRepository) GetState(ctx context.Context) (models.State, error) {
	state := models.DefaultState()

	query := r.db.Rebind(`SELECT * FROM rides ORDER BY started_at ASC`)
	if err := r.db.SelectContext(ctx, &state.Rides, query); err != nil {
		return state, err
	}

	query = r.db.Rebind(`SELECT * FROM costs ORDER BY created_at ASC`)
	if err := r.db.SelectContext(ctx, &state.Costs, query); err != nil {
		return state, err
	}

	query = r.db.Rebind(`SELECT * FROM wear_payments ORDER BY created_at ASC`)
	if err := r.db.SelectContext(ctx, &state.WearPayments, query); err != nil {
		return state, err
	}

	rate, err := r.GetWearRate(ctx)
	if err != nil {
		return state, err
	}
	state.Config.WearRatePerKm = rate

	return state, nil
}

// Ride repository methods
func (r *SQLRepository) insertRide(ctx context.Context, ex sqlx.ExecerContext, ride *models.Ride) error {
	query := r.db.Rebind(`
		INSERT INTO rides (id, user_id, participant_ids, start_km, end_km, started_at, ended_at, end_lat, end_lng)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	// Generate a new UUID if not provided
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}

	if ride.StartedAt.IsZero() {
		ride.StartedAt = time.Now().UTC()
	}

	_, err := ex.ExecContext(ctx, query,
		ride.ID, ride.UserID, ride.ParticipantIDs, ride.StartKm,
		ride.EndKm, ride.StartedAt, ride.EndedAt, ride.EndLat, ride.EndLng)

	return err
}

func (r *SQLRepository) updateRide(ctx context.Context, ex sqlx.ExecerContext, ride *models.Ride) error {
	query := r.db.Rebind(`
		UPDATE rides
		SET user_id = ?, participant_ids = ?, start_km = ?, end_km = ?,
		    started_at = ?, ended_at = ?, end_lat = ?, end_lng = ?
		WHERE id = ?
	`)

	_, err := ex.ExecContext(ctx, query,
		ride.UserID, ride.ParticipantIDs, ride.StartKm, ride.EndKm,
		ride.StartedAt, ride.EndedAt, ride.EndLat, ride.EndLng, ride.ID)

	return err
}

func (r *SQLRepository) CreateRide(ctx context.Context, ride *models.Ride) error {
	return r.insertRide(ctx, r.db, ride)
}

// CreateRideClosingOpen closes the previous open ride and inserts the
// new one in a single transaction. A failed insert therefore never
// leaves the prior ride closed.
func (r *SQLRepository) CreateRideClosingOpen(ctx context.Context, ride, open *models.Ride) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.updateRide(ctx, tx, open); err != nil {
		return err
	}
	if err := r.insertRide(ctx, tx, ride); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLRepository) UpdateRide(ctx context.Context, ride *models.Ride) error {
	return r.updateRide(ctx, r.db, ride)
}

func (r *SQLRepository) GetRide(ctx context.Context, id string) (*models.Ride, error) {
	query := r.db.Rebind(`SELECT * FROM rides WHERE id = ?`)

	var ride models.Ride
	err := r.db.GetContext(ctx, &ride, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Ride not found
		}
		return nil, err
	}

	return &ride, nil
}

// GetOpenRide returns the most recently started ride without an end
// reading, or nil. At most one should exist; ordering makes the query
// deterministic if convention was ever violated by another writer.
func (r *SQLRepository) GetOpenRide(ctx context.Context) (*models.Ride, error) {
	query := r.db.Rebind(`
		SELECT * FROM rides WHERE end_km IS NULL
		ORDER BY started_at DESC LIMIT 1
	`)

	var ride models.Ride
	err := r.db.GetContext(ctx, &ride, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No open ride
		}
		return nil, err
	}

	return &ride, nil
}

// Cost repository methods
func (r *SQLRepository) CreateCost(ctx context.Context, cost *models.CostEvent) error {
	query := r.db.Rebind(`
		INSERT INTO costs (id, user_id, amount, type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	if cost.ID == "" {
		cost.ID = uuid.New().String()
	}

	if cost.CreatedAt.IsZero() {
		cost.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		cost.ID, cost.UserID, cost.Amount, cost.Type, cost.Description, cost.CreatedAt)

	return err
}

// Wear payment repository methods
func (r *SQLRepository) CreateWearPayment(ctx context.Context, payment *models.WearPayment) error {
	query := r.db.Rebind(`
		INSERT INTO wear_payments (id, user_id, amount, created_at)
		VALUES (?, ?, ?, ?)
	`)

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.UserID, payment.Amount, payment.CreatedAt)

	return err
}

// Config repository methods
func (r *SQLRepository) GetWearRate(ctx context.Context) (float64, error) {
	query := r.db.Rebind(`SELECT value FROM config WHERE key = ?`)

	var value string
	err := r.db.GetContext(ctx, &value, query, wearRateKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultWearRatePerKm, nil // Missing row is a tolerated default
		}
		return 0, err
	}

	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return models.DefaultWearRatePerKm, nil // Unparseable value falls back too
	}

	return rate, nil
}

func (r *SQLRepository) SetWearRate(ctx context.Context, rate float64) error {
	query := r.db.Rebind(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`)

	_, err := r.db.ExecContext(ctx, query,
		wearRateKey, strconv.FormatFloat(rate, 'f', -1, 64))

	return err
}
