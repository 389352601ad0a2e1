package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host: "mail.example.com",
		Port: 587,
		From: "noreply@example.com",
		To:   "admin@example.com",
	}
}

func TestNewSMTPNotifier_ValidatesConfig(t *testing.T) {
	cases := map[string]func(*SMTPConfig){
		"missing host": func(c *SMTPConfig) { c.Host = "" },
		"zero port":    func(c *SMTPConfig) { c.Port = 0 },
		"port too big": func(c *SMTPConfig) { c.Port = 70000 },
		"missing from": func(c *SMTPConfig) { c.From = "" },
		"missing to":   func(c *SMTPConfig) { c.To = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validSMTPConfig()
			mutate(&cfg)
			_, err := NewSMTPNotifier(cfg)
			assert.Error(t, err)
		})
	}
}

func TestSMTPNotifier_Notify(t *testing.T) {
	n, err := NewSMTPNotifier(validSMTPConfig())
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), "Order 12 failed", "details"))

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"admin@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Order 12 failed\r\n")
	assert.Contains(t, string(gotMsg), "To: admin@example.com\r\n")
	assert.Contains(t, string(gotMsg), "Date: Sun, 01 Mar 2026 12:00:00 +0000\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\ndetails\r\n")
}

func TestSMTPNotifier_SendError(t *testing.T) {
	n, err := NewSMTPNotifier(validSMTPConfig())
	require.NoError(t, err)

	sendErr := errors.New("connection refused")
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return sendErr
	}

	err = n.Notify(context.Background(), "subject", "message")
	assert.ErrorIs(t, err, sendErr)
}

func TestConflictMessage(t *testing.T) {
	subject, message := ConflictMessage(12, errors.New("duplicate reference"))

	assert.Contains(t, subject, "order 12")
	assert.Contains(t, message, "duplicate reference")
	assert.Contains(t, message, "will not be retried")
}

func TestExhaustedMessage(t *testing.T) {
	subject, message := ExhaustedMessage(12, 3)

	assert.Contains(t, subject, "order 12")
	assert.Contains(t, message, "failed 3 times")
}
