package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/playmark/playmark/auth"
	"github.com/playmark/playmark/constant"
	"github.com/playmark/playmark/network"
)

const (
	consumptionPath = "/consumption_events"
	locationPath    = "/media_locations"
)

// HTTPSink posts telemetry as JSON to a backend.
type HTTPSink struct {
	endpoint string
	client   *http.Client

	// token supplies an optional bearer token. A failing lookup sends the request unauthenticated.
	token func() (string, error)
}

// NewHTTPSink creates a sink posting to endpoint, authenticated with the keyring token when one is stored.
func NewHTTPSink(endpoint string) *HTTPSink {
	return &HTTPSink{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   network.Client,
		token:    auth.GetToken,
	}
}

func (h *HTTPSink) Consumption(ctx context.Context, event ConsumptionEvent) error {
	return h.post(ctx, consumptionPath, event)
}

func (h *HTTPSink) Checkpoint(ctx context.Context, checkpoint Checkpoint) error {
	return h.post(ctx, locationPath, checkpoint)
}

func (h *HTTPSink) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	if h.token != nil {
		if token, err := h.token(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
