package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// OrderNotification is the payload accepted by the transactional email
// endpoint for order status change notifications.
type OrderNotification struct {
	Recipient string  `json:"recipient"`
	Name      string  `json:"name"`
	OrderID   string  `json:"order_id"`
	Product   string  `json:"product"`
	Status    string  `json:"status"`
	Total     float64 `json:"total"`
}

// Gateway sends transactional emails. Sends are fire-and-forget from the
// caller's perspective: failures are logged, never propagated to the user.
type Gateway interface {
	SendOrderNotification(n OrderNotification) error
}

// Config holds configuration for the HTTP email gateway
type Config struct {
	EndpointURL string
	APIKey      string
}

// HTTPGateway posts notifications to a hosted transactional email endpoint
type HTTPGateway struct {
	endpointURL string
	apiKey      string
	client      *http.Client
}

// NewHTTPGateway creates a new email gateway client
func NewHTTPGateway(cfg Config) *HTTPGateway {
	return &HTTPGateway{
		endpointURL: cfg.EndpointURL,
		apiKey:      cfg.APIKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendOrderNotification posts the notification payload to the endpoint
func (g *HTTPGateway) SendOrderNotification(n OrderNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.endpointURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// DevGateway logs notifications instead of sending them (development mode)
type DevGateway struct {
	logger *logrus.Logger
}

// NewDevGateway creates a logging-only gateway
func NewDevGateway(logger *logrus.Logger) *DevGateway {
	return &DevGateway{logger: logger}
}

// SendOrderNotification logs the notification that would have been sent
func (g *DevGateway) SendOrderNotification(n OrderNotification) error {
	g.logger.WithFields(logrus.Fields{
		"recipient": n.Recipient,
		"order_id":  n.OrderID,
		"status":    n.Status,
	}).Info("Dev mode: order notification email suppressed")
	return nil
}
