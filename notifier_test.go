package auth_test

import (
	"context"
	"testing"

	"github.com/flexilearn/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopNotifier(t *testing.T) {
	ctx := context.Background()
	n := auth.NoopNotifier{}

	assert.NoError(t, n.SendVerification(ctx, "88871@siswa.unimas.my", "tok", "link"))
	assert.NoError(t, n.SendPasswordReset(ctx, "88871@siswa.unimas.my", "tok", "link"))
	assert.NoError(t, n.SendWelcome(ctx, "88871@siswa.unimas.my", "pepe"))
}

func TestLoggingNotifier(t *testing.T) {
	ctx := context.Background()
	n := auth.LoggingNotifier{}

	assert.NoError(t, n.SendVerification(ctx, "88871@siswa.unimas.my", "tok", "link"))
	assert.NoError(t, n.SendPasswordReset(ctx, "88871@siswa.unimas.my", "tok", "link"))
	assert.NoError(t, n.SendWelcome(ctx, "88871@siswa.unimas.my", "pepe"))
}

func TestSMTPNotifierDisabledWithoutCredentials(t *testing.T) {
	n, err := auth.NewSMTPNotifier(auth.SMTPConfig{}, nil)
	require.NoError(t, err)

	// disabled relay drops messages instead of failing the flow
	ctx := context.Background()
	assert.NoError(t, n.SendVerification(ctx, "88871@siswa.unimas.my", "tok", "link"))
	assert.NoError(t, n.SendWelcome(ctx, "88871@siswa.unimas.my", "pepe"))
}

func TestSMTPNotifierRejectsBadAddress(t *testing.T) {
	_, err := auth.NewSMTPNotifier(auth.SMTPConfig{
		Host:        "smtp.example.com:465",
		User:        "mailer",
		Password:    "secret",
		MailAddress: "not-an-address",
	}, nil)
	assert.Error(t, err)
}
