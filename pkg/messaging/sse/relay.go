package sse

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging"
)

// Relay copies every message arriving on channel from source into the hub so
// that stream clients of this instance see events published by any instance.
// It returns once ctx is done or the source subscription ends.
func Relay(ctx context.Context, source messaging.Broker, hub *Hub, channel string, logger zerolog.Logger) error {
	msgs, err := source.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	go func() {
		for data := range msgs {
			hub.Broadcast(channel, data)
		}
		logger.Debug().Str("channel", channel).Msg("event relay stopped")
	}()
	return nil
}
