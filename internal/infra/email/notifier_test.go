package email

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFailureMessage(t *testing.T) {
	msg := string(FailureMessage("noreply@truthlens.local", "user@example.com", "run-1", "clip.mp4", "unsupported media"))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@truthlens.local\r\nTo: user@example.com\r\n"))
	assert.Contains(t, msg, "Subject: TruthLens - Media Analysis Failed [Run run-1]")
	assert.Contains(t, msg, "Media: clip.mp4")
	assert.Contains(t, msg, "Error: unsupported media")
}

func TestNotifyFailure_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	n := NewSMTPNotifier("127.0.0.1", port, "noreply@truthlens.local", zap.NewNop())
	err = n.NotifyFailure(context.Background(), "user@example.com", "run-1", "clip.mp4", "boom")
	assert.Error(t, err)
}
