package email

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:8080/api/v1/auth/verify-email?token=a%2Bb",
		VerificationURL("http://localhost:8080/", "a+b"))
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("LectureAlert <no-reply@example.com>", "sam@example.com", "Hi", "<p>x</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: LectureAlert <no-reply@example.com>\r\nTo: sam@example.com\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>x</p>"))
}

func TestSendVerificationEmail_WithoutCredentialsLogsLink(t *testing.T) {
	var buf bytes.Buffer
	sender := NewSMTPSender(SMTPConfig{BaseURL: "http://app.test"}, zerolog.New(&buf))

	require.NoError(t, sender.SendVerificationEmail("sam@example.com", "Sam", "tok"))
	assert.Contains(t, buf.String(), "http://app.test/api/v1/auth/verify-email?token=tok")
}

func TestGenerateVerificationToken(t *testing.T) {
	a, err := GenerateVerificationToken()
	require.NoError(t, err)
	b, err := GenerateVerificationToken()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}
