package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging"
)

const clientBuffer = 64

// Hub is an in-process broker that fans messages out to every subscriber of
// a channel. A subscriber whose buffer is full is dropped rather than
// stalling the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[chan []byte]struct{}
	closed  bool
	gauge   prometheus.Gauge
}

var _ messaging.Broker = (*Hub)(nil)

// NewHub creates a hub. gauge may be nil.
func NewHub(gauge prometheus.Gauge) *Hub {
	return &Hub{
		clients: make(map[string]map[chan []byte]struct{}),
		gauge:   gauge,
	}
}

func (h *Hub) Publish(_ context.Context, channel string, message interface{}) error {
	var data []byte
	switch m := message.(type) {
	case []byte:
		data = m
	default:
		var err error
		if data, err = json.Marshal(message); err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
	}
	h.Broadcast(channel, data)
	return nil
}

// Broadcast delivers data to every current subscriber of channel.
func (h *Hub) Broadcast(channel string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[channel] {
		select {
		case client <- data:
		default:
			h.removeLocked(channel, client)
		}
	}
}

// Subscribe registers a client until ctx is done. The returned channel is
// closed when the client is removed.
func (h *Hub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	client := make(chan []byte, clientBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, fmt.Errorf("hub is closed")
	}
	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan []byte]struct{})
	}
	h.clients[channel][client] = struct{}{}
	if h.gauge != nil {
		h.gauge.Inc()
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		h.removeLocked(channel, client)
		h.mu.Unlock()
	}()

	return client, nil
}

// Subscribers returns the number of clients attached to channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[channel])
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel, clients := range h.clients {
		for client := range clients {
			h.removeLocked(channel, client)
		}
	}
	h.closed = true
	return nil
}

func (h *Hub) removeLocked(channel string, client chan []byte) {
	clients, ok := h.clients[channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client)
	if len(clients) == 0 {
		delete(h.clients, channel)
	}
	if h.gauge != nil {
		h.gauge.Dec()
	}
}
