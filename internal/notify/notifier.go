// Package notify delivers administrator alerts for permanent fulfillment
// failures.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Notifier sends a message to an administrator.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// ConflictMessage builds the alert for a provider conflict.
func ConflictMessage(orderID int64, cause error) (subject, message string) {
	subject = fmt.Sprintf("Logistics order conflict for order %d", orderID)
	message = fmt.Sprintf("The logistics provider reported a conflicting order for sales order %d. "+
		"The order was moved to the fulfillment error state and will not be retried.\n\nProvider message: %v", orderID, cause)
	return subject, message
}

// ExhaustedMessage builds the alert for an order that ran out of retries.
func ExhaustedMessage(orderID int64, attempts int) (subject, message string) {
	subject = fmt.Sprintf("Logistics submission failed permanently for order %d", orderID)
	message = fmt.Sprintf("Submission of sales order %d to the logistics provider failed %d times "+
		"and will not be retried. The order was moved to the fulfillment error state.", orderID, attempts)
	return subject, message
}

// LogNotifier writes notifications to the service log. It is the fallback
// when no SMTP sink is configured.
type LogNotifier struct {
	logger *otelzap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *otelzap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification at warn level.
func (n *LogNotifier) Notify(ctx context.Context, subject, message string) error {
	n.logger.Warn("Administrator notification",
		zap.String("subject", subject),
		zap.String("message", message),
	)
	return nil
}

// MockNotifier records notifications for assertions in tests.
type MockNotifier struct {
	mu       sync.Mutex
	Subjects []string
	Err      error
}

// Notify records the subject.
func (m *MockNotifier) Notify(ctx context.Context, subject, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Subjects = append(m.Subjects, subject)
	return nil
}

// Count returns the number of delivered notifications.
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Subjects)
}
