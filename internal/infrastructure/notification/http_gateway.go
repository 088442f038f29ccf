package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultTimeout is used when the SMS config leaves the timeout unset
const DefaultTimeout = 30 * time.Second

// DefaultSenderID is used when the SMS config leaves the sender id unset
const DefaultSenderID = "RENTAL"

// maxResponseBody bounds how much of the provider's reply is read
const maxResponseBody = 4 << 10

var successMarkers = []string{"success", "sent", "accepted"}

// HTTPGateway sends SMS through a provider that takes the message as GET
// query parameters and answers with plain text.
type HTTPGateway struct {
	apiURL     string
	apiKey     string
	senderID   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPGateway creates a new HTTPGateway from the SMS config
func NewHTTPGateway(cfg config.SMSConfig, logger *zap.Logger) (*HTTPGateway, error) {
	if cfg.APIURL == "" || cfg.APIKey == "" {
		return nil, errors.New("sms api_url and api_key are required")
	}
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("invalid sms api_url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	senderID := cfg.SenderID
	if senderID == "" {
		senderID = DefaultSenderID
	}

	return &HTTPGateway{
		apiURL:   cfg.APIURL,
		apiKey:   cfg.APIKey,
		senderID: senderID,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

// Notify sends message to phone. Provider rejections and network failures
// come back as ok=false with a detail; err is only set when the request
// cannot be built.
func (g *HTTPGateway) Notify(ctx context.Context, phone, message string) (bool, string, error) {
	endpoint, err := url.Parse(g.apiURL)
	if err != nil {
		return false, "", fmt.Errorf("invalid sms api_url: %w", err)
	}
	query := endpoint.Query()
	query.Set("api_key", g.apiKey)
	query.Set("recipients", phone)
	query.Set("message", message)
	query.Set("sender_id", g.senderID)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return false, "", fmt.Errorf("failed to create sms request: %w", err)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return false, "SMS request timed out", nil
		}
		return false, fmt.Sprintf("Network error: %v", err), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return false, fmt.Sprintf("Network error: %v", err), nil
	}
	text := strings.TrimSpace(string(body))

	g.logger.Debug("SMS provider responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("SMS failed: HTTP %d: %s", resp.StatusCode, text), nil
	}
	if !isSuccess(text) {
		return false, "SMS failed: " + text, nil
	}
	return true, "SMS sent successfully", nil
}

func isSuccess(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range successMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ rental.Notifier = (*HTTPGateway)(nil)
