// Package client is the JSON HTTP client for the car-share API,
// consumed by the snapshot store and the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upforaride/server/internal/models"
)

// Client talks to a running car-share API server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New builds a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("api error: %s %s: %s", method, path, apiErr.Message)
		}
		return fmt.Errorf("api error: %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetState fetches the full snapshot.
func (c *Client) GetState(ctx context.Context) (models.State, error) {
	state := models.DefaultState()
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &state)
	return state, err
}

// CreateRide submits a new ride.
func (c *Client) CreateRide(ctx context.Context, req models.CreateRideRequest) error {
	return c.do(ctx, http.MethodPost, "/api/rides", req, nil)
}

// UpdateRide submits a partial ride update (close or location backfill).
func (c *Client) UpdateRide(ctx context.Context, rideID string, req models.UpdateRideRequest) error {
	return c.do(ctx, http.MethodPut, "/api/rides/"+rideID, req, nil)
}

// CreateCost submits a variable cost event.
func (c *Client) CreateCost(ctx context.Context, req models.CreateCostRequest) error {
	return c.do(ctx, http.MethodPost, "/api/costs", req, nil)
}

// CreateWearPayment submits a wear reserve payment.
func (c *Client) CreateWearPayment(ctx context.Context, req models.CreateWearPaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/api/wear-payments", req, nil)
}

// RecognizeOdometer sends a base64 image to the OCR proxy endpoint.
func (c *Client) RecognizeOdometer(ctx context.Context, imageData string) (models.OdometerOcrResponse, error) {
	var out models.OdometerOcrResponse
	err := c.do(ctx, http.MethodPost, "/api/odometer-ocr",
		models.OdometerOcrRequest{ImageData: imageData}, &out)
	return out, err
}

// Users fetches the roster.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, &out)
	return out, err
}
