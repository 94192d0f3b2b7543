package control

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridsched/infra/logger"
	"github.com/kilianp07/gridsched/infra/mqtt"
	"github.com/kilianp07/gridsched/simulator"
)

type doneToken struct{ err error }

func (d doneToken) Wait() bool                     { return true }
func (d doneToken) WaitTimeout(time.Duration) bool { return true }
func (d doneToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d doneToken) Error() error                   { return d.err }

type fakeClient struct {
	mu           sync.Mutex
	subscribed   chan string
	handler      paho.MessageHandler
	subErr       error
	unsubscribed bool
	disconnected bool
}

func (f *fakeClient) IsConnected() bool   { return true }
func (f *fakeClient) Connect() paho.Token { return doneToken{} }
func (f *fakeClient) Disconnect(uint)     { f.mu.Lock(); f.disconnected = true; f.mu.Unlock() }
func (f *fakeClient) Unsubscribe(...string) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = true
	return doneToken{}
}

func (f *fakeClient) Subscribe(topic string, _ byte, cb paho.MessageHandler) paho.Token {
	if f.subErr != nil {
		return doneToken{err: f.subErr}
	}
	f.mu.Lock()
	f.handler = cb
	f.mu.Unlock()
	f.subscribed <- topic
	return doneToken{}
}

type fakeMessage struct{ payload []byte }

func (fakeMessage) Duplicate() bool   { return false }
func (fakeMessage) Qos() byte         { return 0 }
func (fakeMessage) Retained() bool    { return false }
func (fakeMessage) Topic() string     { return "gridsched/commands" }
func (fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte { return m.payload }
func (fakeMessage) Ack()              {}

type queue struct {
	got []simulator.Command
}

func (q *queue) Enqueue(a simulator.Action, unit string) error {
	if unit == "Z" {
		return errors.New("unknown unit")
	}
	q.got = append(q.got, simulator.Command{Action: a, Unit: unit})
	return nil
}

func withFakeClient(t *testing.T, f *fakeClient) {
	t.Helper()
	orig := newClient
	newClient = func(*paho.ClientOptions) subscriber { return f }
	t.Cleanup(func() { newClient = orig })
}

func TestConfigDefaults(t *testing.T) {
	c := Config{Enabled: true, MQTT: mqtt.Config{Broker: "tcp://localhost:1883", TopicPrefix: "plant/"}}
	c.SetDefaults()
	assert.Equal(t, "plant/commands", c.Topic)
	assert.NoError(t, c.Validate())

	off := Config{}
	off.SetDefaults()
	assert.Empty(t, off.Topic)
	assert.NoError(t, off.Validate())

	assert.Error(t, Config{Enabled: true}.Validate(), "broker required")
	assert.Error(t, Config{Pace: -time.Second}.Validate())
}

func TestHandle(t *testing.T) {
	q := &queue{}
	l := &Listener{target: q, log: logger.NopLogger{}}
	require.NoError(t, l.Handle([]byte(`{"action":"OUTAGE","unit":"Gas Plant B"}`)))
	require.Len(t, q.got, 1)
	assert.Equal(t, simulator.ActionOutage, q.got[0].Action)
	assert.Equal(t, "Gas Plant B", q.got[0].Unit)

	assert.Error(t, l.Handle([]byte(`not json`)))
	assert.Error(t, l.Handle([]byte(`{"action":"explode","unit":"A"}`)))
	assert.Error(t, l.Handle([]byte(`{"action":"on","unit":"Z"}`)))
	assert.Len(t, q.got, 1)
}

func TestListenerStart(t *testing.T) {
	f := &fakeClient{subscribed: make(chan string, 1)}
	withFakeClient(t, f)
	q := &queue{}
	l, err := NewListener(Config{MQTT: mqtt.Config{Broker: "tcp://localhost:1883"}}, q)
	require.NoError(t, err)
	assert.Equal(t, "gridsched/commands", l.Topic())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	select {
	case topic := <-f.subscribed:
		assert.Equal(t, "gridsched/commands", topic)
	case <-time.After(time.Second):
		t.Fatal("listener did not subscribe")
	}

	accepted := testutil.ToFloat64(commandsTotal.WithLabelValues("accepted"))
	rejected := testutil.ToFloat64(commandsTotal.WithLabelValues("rejected"))
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(nil, fakeMessage{payload: []byte(`{"action":"off","unit":"Coal Plant A"}`)})
	h(nil, fakeMessage{payload: []byte(`{}`)})
	assert.Equal(t, accepted+1, testutil.ToFloat64(commandsTotal.WithLabelValues("accepted")))
	assert.Equal(t, rejected+1, testutil.ToFloat64(commandsTotal.WithLabelValues("rejected")))
	require.Len(t, q.got, 1)
	assert.Equal(t, simulator.ActionOff, q.got[0].Action)

	cancel()
	require.NoError(t, <-done)
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.True(t, f.unsubscribed)
	assert.True(t, f.disconnected)
}

func TestListenerSubscribeError(t *testing.T) {
	withFakeClient(t, &fakeClient{subErr: errors.New("denied")})
	l, err := NewListener(Config{MQTT: mqtt.Config{Broker: "tcp://localhost:1883"}}, &queue{})
	require.NoError(t, err)
	err = l.Start(context.Background())
	assert.ErrorContains(t, err, "denied")
}

func TestNewListenerRequiresTarget(t *testing.T) {
	_, err := NewListener(Config{MQTT: mqtt.Config{Broker: "tcp://localhost:1883"}}, nil)
	assert.Error(t, err)
}
