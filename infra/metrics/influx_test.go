package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/gridsched/core/metrics"
	"github.com/kilianp07/gridsched/core/model"
)

type lineRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (l *lineRecorder) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		l.mu.Lock()
		l.bodies = append(l.bodies, strings.TrimSpace(string(b)))
		l.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (l *lineRecorder) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, b := range l.bodies {
		out = append(out, strings.Split(b, "\n")...)
	}
	return out
}

func TestInfluxSinkRecordInterval(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()

	ev := sampleInterval()
	ev.Time = time.Unix(1700000000, 0)
	require.NoError(t, sink.RecordInterval(ev))

	lines := rec.lines()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "dispatch_interval,"))
	assert.Contains(t, lines[0], "run_id=run-1")
	assert.Contains(t, lines[0], "cost=350")
	assert.Contains(t, lines[0], "optimal_cost=340")
	assert.True(t, strings.HasPrefix(lines[1], "unit_output,"))
	assert.Contains(t, lines[1], "unit=A")
	assert.Contains(t, lines[2], "dispatch_mw=20")
	assert.True(t, strings.HasSuffix(lines[0], "1700000000000000000"))
}

func TestInfluxSinkRecordOutageAndSummary(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()

	now := time.Now()
	require.NoError(t, sink.RecordOutage(coremetrics.OutageEvent{RunID: "r", Alert: model.OutageAlert{Unit: "Coal Plant A", Previous: model.StatusOn, Block: 12, Time: now}}))
	require.NoError(t, sink.RecordSummary(coremetrics.SummaryEvent{RunID: "r", Intervals: 3, TotalCost: 10, Time: now}))

	lines := rec.lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "forced_outage,"))
	assert.Contains(t, lines[0], `unit=Coal\ Plant\ A`)
	assert.Contains(t, lines[0], `previous="ON"`)
	assert.Contains(t, lines[0], "block=12i")
	assert.True(t, strings.HasPrefix(lines[1], "daily_summary,"))
	assert.Contains(t, lines[1], "intervals=3i")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	_, isInflux := sink.(*InfluxSink)
	assert.False(t, isInflux, "expected NopSink on failing health check")
	assert.True(t, called, "health endpoint not called")
}
