package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func doneToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	sent  []published
	token paho.Token
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	c.sent = append(c.sent, published{topic: topic, payload: payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) {}

func TestPublisher_Topic(t *testing.T) {
	cases := []struct {
		prefix string
		want   string
	}{
		{"", "smartcare/u1/vitals"},
		{"smartcare", "smartcare/u1/vitals"},
		{"/clinic/a/", "clinic/a/u1/vitals"},
	}
	for _, tc := range cases {
		p := newPublisher(&fakeClient{}, tc.prefix, zerolog.Nop())
		assert.Equal(t, tc.want, p.Topic("u1"), "prefix %q", tc.prefix)
	}
}

func TestPublisher_PublishEncodesSample(t *testing.T) {
	c := &fakeClient{token: doneToken(nil)}
	p := newPublisher(c, "smartcare", zerolog.Nop())
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), "u1", domain.Sample{HeartRate: 72, SpO2: 98, Temperature: 36.7, Timestamp: ts})
	require.NoError(t, err)

	require.Len(t, c.sent, 1)
	assert.Equal(t, "smartcare/u1/vitals", c.sent[0].topic)

	var got map[string]any
	require.NoError(t, json.Unmarshal(c.sent[0].payload, &got))
	assert.Equal(t, "u1", got["userId"])
	assert.EqualValues(t, 72, got["heartRate"])
	assert.EqualValues(t, 98, got["spo2"])
	assert.EqualValues(t, 36.7, got["temperature"])
}

func TestPublisher_PublishBrokerError(t *testing.T) {
	c := &fakeClient{token: doneToken(errors.New("not connected"))}
	p := newPublisher(c, "", zerolog.Nop())

	err := p.Publish(context.Background(), "u1", domain.Sample{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smartcare/u1/vitals")
}

func TestPublisher_PublishHonoursContext(t *testing.T) {
	c := &fakeClient{token: &fakeToken{done: make(chan struct{})}}
	p := newPublisher(c, "", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, "u1", domain.Sample{})

	assert.ErrorIs(t, err, context.Canceled)
}
