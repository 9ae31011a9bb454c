package models

import "time"

// Request models
type CreateRideRequest struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId" binding:"required"`
	ParticipantIDs []string   `json:"participantIds"`
	StartKm        float64    `json:"startKm" binding:"required,gt=0"`
	StartedAt      *time.Time `json:"startedAt"`
}

// UpdateRideRequest carries the partial fields of a ride PUT. It serves
// both closing an open ride and backfilling the end location afterwards.
type UpdateRideRequest struct {
	UserID         *string    `json:"userId"`
	ParticipantIDs []string   `json:"participantIds"`
	StartKm        *float64   `json:"startKm"`
	EndKm          *float64   `json:"endKm"`
	StartedAt      *time.Time `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt"`
	EndLat         *float64   `json:"endLat"`
	EndLng         *float64   `json:"endLng"`
}

type CreateCostRequest struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Type        CostType   `json:"type" binding:"required"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"createdAt"`
}

type CreateWearPaymentRequest struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId" binding:"required"`
	Amount    float64    `json:"amount" binding:"required,gt=0"`
	CreatedAt *time.Time `json:"createdAt"`
}

type OdometerOcrRequest struct {
	ImageData string `json:"imageData" binding:"required"`
}

// Response models
type OkResponse struct {
	Ok bool `json:"ok"`
}

type OdometerOcrResponse struct {
	Value      *int64 `json:"value"`
	RawText    string `json:"rawText"`
	DigitsOnly string `json:"digitsOnly"`
	Message    string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
