package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

const (
	defaultPrefix     = "smartcare"
	defaultQoS        = byte(0)
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250
)

// Config captures the broker settings.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// client is the subset of paho.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher sends every generated sample to <prefix>/<user_id>/vitals.
type Publisher struct {
	client client
	prefix string
	log    zerolog.Logger
}

// Connect dials the broker and returns a ready Publisher.
func Connect(cfg Config, log zerolog.Logger) (*Publisher, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})

	c := paho.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}

	return newPublisher(c, cfg.TopicPrefix, log), nil
}

func newPublisher(c client, prefix string, log zerolog.Logger) *Publisher {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Publisher{client: c, prefix: prefix, log: log}
}

type message struct {
	UserID string `json:"userId"`
	domain.Sample
}

// Publish encodes sample as JSON and waits for the broker acknowledgement
// or ctx, whichever comes first.
func (p *Publisher) Publish(ctx context.Context, userID string, sample domain.Sample) error {
	payload, err := json.Marshal(message{UserID: userID, Sample: sample})
	if err != nil {
		return fmt.Errorf("mqtt encode: %w", err)
	}

	topic := p.Topic(userID)
	token := p.client.Publish(topic, defaultQoS, false, payload)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Topic returns the topic samples for userID are published on.
func (p *Publisher) Topic(userID string) string {
	return p.prefix + "/" + userID + "/vitals"
}

func (p *Publisher) Close() {
	p.client.Disconnect(disconnectQuiesce)
	p.log.Info().Msg("mqtt publisher disconnected")
}
