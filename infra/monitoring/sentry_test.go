package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/gridsched/core/monitoring"
)

func TestNewSentryMonitorDisabled(t *testing.T) {
	m, err := NewSentryMonitor(coremon.Config{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitorBadDSN(t *testing.T) {
	_, err := NewSentryMonitor(coremon.Config{DSN: "ftp://key@example.com/1"})
	assert.Error(t, err)
}

func TestNewSentryMonitor(t *testing.T) {
	m, err := NewSentryMonitor(coremon.Config{DSN: "https://key@example.com/1", Environment: "test"})
	require.NoError(t, err)
	assert.IsType(t, &sentryMonitor{}, m)
	m.CaptureException(nil, nil)
}
