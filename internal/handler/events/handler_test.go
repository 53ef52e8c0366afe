package events

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/messaging/sse"
)

const channel = "bedboard:events"

// readEvent returns the next "event:" name from an SSE stream.
func readEvent(t *testing.T, lines <-chan string) (string, string) {
	t.Helper()
	var name string
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed")
			switch {
			case strings.HasPrefix(line, "event:"):
				name = strings.TrimPrefix(line, "event:")
			case strings.HasPrefix(line, "data:") && name != "":
				return name, strings.TrimPrefix(line, "data:")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestStreamDeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := sse.NewHub(nil)
	defer hub.Close()

	h := NewHandler(hub, channel, zerolog.Nop())
	engine := gin.New()
	engine.GET("/events", h.Stream)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"), resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	name, _ := readEvent(t, lines)
	assert.Equal(t, "connected", name)
	require.Eventually(t, func() bool { return hub.Subscribers(channel) == 1 }, time.Second, 5*time.Millisecond)

	publisher := messaging.NewChannelPublisher(hub, channel)
	require.NoError(t, publisher.Publish(ctx, model.EventPatientsDischarged, model.DischargedEvent{}))

	name, data := readEvent(t, lines)
	assert.Equal(t, model.EventPatientsDischarged, name)
	assert.Contains(t, data, "patientId")

	cancel()
	assert.Eventually(t, func() bool { return hub.Subscribers(channel) == 0 }, time.Second, 5*time.Millisecond)
}

func TestStreamHeartbeat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := sse.NewHub(nil)
	defer hub.Close()

	h := NewHandler(hub, channel, zerolog.Nop())
	h.heartbeat = 10 * time.Millisecond
	engine := gin.New()
	engine.GET("/events", h.Stream)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	name, _ := readEvent(t, lines)
	require.Equal(t, "connected", name)
	name, _ = readEvent(t, lines)
	assert.Equal(t, "ping", name)
}

type failingSubscriber struct{}

func (failingSubscriber) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("hub closed")
}

func TestStreamSubscribeFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(failingSubscriber{}, channel, zerolog.Nop())
	engine := gin.New()
	engine.GET("/events", h.Stream)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
