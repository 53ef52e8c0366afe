package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroker struct {
	channel string
	message interface{}
}

func (b *recordingBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.channel, b.message = channel, message
	return nil
}

func (b *recordingBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }

func (b *recordingBroker) Close() error { return nil }

func TestChannelPublisherWrapsEnvelope(t *testing.T) {
	broker := &recordingBroker{}
	pub := NewChannelPublisher(broker, "bedboard:events")

	require.NoError(t, pub.Publish(context.Background(), "patients:admitted", map[string]string{"name": "Jane"}))
	assert.Equal(t, "bedboard:events", broker.channel)

	data, err := json.Marshal(broker.message)
	require.NoError(t, err)

	msg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "patients:admitted", msg.Type)
	assert.JSONEq(t, `{"name":"Jane"}`, string(msg.Payload))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
