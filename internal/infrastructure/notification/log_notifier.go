package notification

import (
	"context"

	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NotConfiguredDetail is reported for every message when SMS is disabled
const NotConfiguredDetail = "SMS gateway not configured"

// LogNotifier stands in for a gateway when SMS is disabled. It logs each
// message and reports it as not delivered.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message
func (n *LogNotifier) Notify(_ context.Context, phone, message string) (bool, string, error) {
	n.logger.Info("SMS disabled, message not sent",
		zap.String("phone", phone),
		zap.Int("length", len(message)))
	return false, NotConfiguredDetail, nil
}

// NewNotifier returns the HTTP gateway when SMS is enabled and a LogNotifier otherwise
func NewNotifier(cfg config.SMSConfig, logger *zap.Logger) (rental.Notifier, error) {
	if !cfg.Enabled {
		return NewLogNotifier(logger), nil
	}
	return NewHTTPGateway(cfg, logger)
}

var _ rental.Notifier = (*LogNotifier)(nil)
