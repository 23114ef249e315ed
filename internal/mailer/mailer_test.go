package mailer

import (
	"context"
	"testing"

	"github.com/mrmbilling/royalty-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailer(t *testing.T) {
	m, err := NewSMTPMailer(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "ledger",
		Password: "secret",
		From:     "ledger@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "ledger@example.com", m.from)
}

func TestNewSMTPMailer_RequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(config.SMTPConfig{Port: 25, From: "ledger@example.com"})
	assert.Error(t, err)
}

func TestSMTPMailer_SendWithoutRecipients(t *testing.T) {
	m, err := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 25, From: "ledger@example.com"})
	require.NoError(t, err)

	err = m.Send(context.Background(), Message{Subject: "Digest"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSMTPMailer_SendRejectsBadAddress(t *testing.T) {
	m, err := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 25, From: "not an address"})
	require.NoError(t, err)

	err = m.Send(context.Background(), Message{To: []string{"ops@example.com"}, Subject: "Digest"})
	assert.ErrorContains(t, err, "invalid sender")
}
