package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dentalcare-api/pkg/config"
)

func TestBuildRequiresRecipientAndSubject(t *testing.T) {
	_, err := Build("clinic@example.com", Message{Subject: "x", TextBody: "y"})
	assert.Error(t, err)

	_, err = Build("clinic@example.com", Message{To: []string{"a@example.com"}, TextBody: "y"})
	assert.Error(t, err)

	_, err = Build("", Message{To: []string{"a@example.com"}, Subject: "x", TextBody: "y"})
	assert.Error(t, err)
}

func TestBuildWritesHeaders(t *testing.T) {
	msg, err := Build("clinic@example.com", Message{
		To:       []string{" ana@example.com ", ""},
		Subject:  "Cita confirmada",
		TextBody: "Le esperamos",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ana@example.com"}, msg.GetHeader("To"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Cita confirmada")
}

func TestSendDisabled(t *testing.T) {
	c := New(config.NotificationConfig{Enabled: false})
	err := c.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrDisabled)
}
