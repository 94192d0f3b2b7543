// Package control receives operator commands over MQTT while a day is
// being simulated.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridsched/infra/logger"
	"github.com/kilianp07/gridsched/infra/mqtt"
	"github.com/kilianp07/gridsched/simulator"
)

// Config enables the command channel.
type Config struct {
	Enabled bool        `json:"enabled"`
	MQTT    mqtt.Config `json:"mqtt"`
	// Topic defaults to <topic_prefix>/commands.
	Topic string `json:"topic"`
	// Pace spaces the blocks in wall-clock time so commands can land
	// between them.
	Pace time.Duration `json:"pace"`
}

// SetDefaults fills the broker defaults and the command topic.
func (c *Config) SetDefaults() {
	if !c.Enabled {
		return
	}
	c.MQTT.SetDefaults()
	if c.Topic == "" {
		c.Topic = c.MQTT.TopicPrefix + "/commands"
	}
}

// Validate checks the broker settings when the channel is enabled.
func (c Config) Validate() error {
	if c.Pace < 0 {
		return fmt.Errorf("control: pace must not be negative")
	}
	if !c.Enabled {
		return nil
	}
	return c.MQTT.Validate()
}

// Target queues decoded commands, typically a simulator.Runner.
type Target interface {
	Enqueue(action simulator.Action, unit string) error
}

type subscriber interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

var newClient = func(opts *paho.ClientOptions) subscriber {
	return paho.NewClient(opts)
}

var commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gridsched_control_commands_total",
	Help: "Operator commands received over MQTT",
}, []string{"result"})

func init() {
	prometheus.MustRegister(commandsTotal)
}

type message struct {
	Action string `json:"action"`
	Unit   string `json:"unit"`
}

// Listener subscribes to the command topic and forwards every valid
// command to its target.
type Listener struct {
	cli    subscriber
	topic  string
	qos    byte
	target Target
	log    logger.Logger
}

// NewListener connects to the broker.
func NewListener(cfg Config, target Target) (*Listener, error) {
	if target == nil {
		return nil, fmt.Errorf("control: nil target")
	}
	cfg.Enabled = true
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := mqtt.NewClientOptions(cfg.MQTT)
	if err != nil {
		return nil, err
	}
	// the publisher sink may share the same settings
	opts.SetClientID(cfg.MQTT.ClientID + "-control")
	log := logger.New("control")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli := newClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Listener{cli: cli, topic: cfg.Topic, qos: cfg.MQTT.QoS, target: target, log: log}, nil
}

// Topic returns the subscribed topic.
func (l *Listener) Topic() string { return l.topic }

// Start subscribes and blocks until ctx is done, then disconnects.
func (l *Listener) Start(ctx context.Context) error {
	if token := l.cli.Subscribe(l.topic, l.qos, l.onMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", l.topic, token.Error())
	}
	l.log.Infof("listening for commands on %s", l.topic)
	<-ctx.Done()
	if l.cli.IsConnected() {
		l.cli.Unsubscribe(l.topic).Wait()
		l.cli.Disconnect(250)
	}
	return nil
}

func (l *Listener) onMessage(_ paho.Client, msg paho.Message) {
	if err := l.Handle(msg.Payload()); err != nil {
		commandsTotal.WithLabelValues("rejected").Inc()
		l.log.Warnf("command rejected: %v", err)
		return
	}
	commandsTotal.WithLabelValues("accepted").Inc()
}

// Handle decodes a {"action": "...", "unit": "..."} payload and queues it.
func (l *Listener) Handle(payload []byte) error {
	var m message
	if err := json.Unmarshal(payload, &m); err != nil {
		return fmt.Errorf("decode command: %w", err)
	}
	action, err := simulator.ParseAction(m.Action)
	if err != nil {
		return err
	}
	if err := l.target.Enqueue(action, m.Unit); err != nil {
		return err
	}
	l.log.Infow("command queued", map[string]any{"action": action, "unit": m.Unit})
	return nil
}
