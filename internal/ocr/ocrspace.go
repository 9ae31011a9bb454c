// Package ocr proxies odometer photos to the OCR.Space image-to-text
// service and distills its output into an odometer reading.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.ocr.space/parse/image"

// Client performs recognition calls against the OCR.Space parse API.
type Client struct {
	Endpoint string
	APIKey   string
	HTTP     *http.Client
}

// NewClient builds a client with a bounded request timeout. Upstream
// failures and timeouts surface as errors; "no text in the image" does
// not.
func NewClient(apiKey, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		Endpoint: endpoint,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

type parseResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
}

// Recognize submits a base64 JPEG (without the data: prefix) and runs
// the digit heuristic over whatever text comes back.
func (c *Client) Recognize(ctx context.Context, imageData string) (Reading, error) {
	if c.APIKey == "" {
		return Reading{}, fmt.Errorf("ocr: API key not configured")
	}

	form := url.Values{}
	form.Set("base64Image", "data:image/jpeg;base64,"+imageData)
	form.Set("language", "eng")
	form.Set("isOverlayRequired", "false")
	form.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Reading{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("ocr: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("ocr: upstream returned status %d", resp.StatusCode)
	}

	var out parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Reading{}, fmt.Errorf("ocr: decoding response: %w", err)
	}

	var rawText string
	if len(out.ParsedResults) > 0 {
		rawText = out.ParsedResults[0].ParsedText
	}

	return ExtractReading(rawText), nil
}
