package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
	"github.com/riskibarqy/game-lobby/internal/domain/liveevent"
)

type sseClient struct {
	resp    *http.Response
	scanner *bufio.Scanner
}

func openStream(t *testing.T, baseURL, pin string) *sseClient {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, baseURL+"/v1/competitions/"+pin+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	return &sseClient{
		resp:    resp,
		scanner: bufio.NewScanner(resp.Body),
	}
}

// nextEvent reads frames until a data line arrives, skipping heartbeats.
func (c *sseClient) nextEvent(t *testing.T) liveevent.Event {
	t.Helper()

	done := make(chan liveevent.Event, 1)
	go func() {
		for c.scanner.Scan() {
			line := c.scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var event liveevent.Event
			if err := sonic.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
				continue
			}
			done <- event
			return
		}
	}()

	select {
	case event := <-done:
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for sse event")
		return liveevent.Event{}
	}
}

func waitSubscribers(t *testing.T, f *apiFixture, pin string, want int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return f.broadcaster.SubscriberCount(pin) == want
	}, 3*time.Second, 10*time.Millisecond)
}

func TestStreamEventsDeliversJoin(t *testing.T) {
	f := newAPIFixture(t)
	f.seedCompetition(t, "111111", competition.StateRegistration)

	server := httptest.NewServer(f.router)
	t.Cleanup(server.Close)

	stream := openStream(t, server.URL, "111111")
	waitSubscribers(t, f, "111111", 1)

	rec := f.do(t, http.MethodPost, "/v1/competitions/111111/teams", "player-token", `{"teamName":"Alpha"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	event := stream.nextEvent(t)
	assert.Equal(t, liveevent.ReasonTeamJoined, event.Reason)
	assert.Equal(t, "111111", event.Pin)
	assert.Equal(t, "Alpha", event.TeamName)
	assert.NotEmpty(t, event.TeamID)
}

func TestStreamEventsTopicIsolation(t *testing.T) {
	f := newAPIFixture(t)
	f.seedCompetition(t, "111111", competition.StateRegistration)
	f.seedCompetition(t, "222222", competition.StateRegistration)

	server := httptest.NewServer(f.router)
	t.Cleanup(server.Close)

	stream := openStream(t, server.URL, "222222")
	waitSubscribers(t, f, "222222", 1)

	// A join in one competition must not reach the other's stream.
	rec := f.do(t, http.MethodPost, "/v1/competitions/111111/teams", "player-token", `{"teamName":"Alpha"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/competitions/222222/teams", "organizer-token", `{"teamName":"Beta"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	event := stream.nextEvent(t)
	assert.Equal(t, "222222", event.Pin)
	assert.Equal(t, "Beta", event.TeamName)
}

func TestStreamEventsUnknownPin(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/competitions/999999/events", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamEventsSubscriberCleanup(t *testing.T) {
	f := newAPIFixture(t)
	f.seedCompetition(t, "111111", competition.StateRegistration)

	server := httptest.NewServer(f.router)
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/v1/competitions/111111/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	waitSubscribers(t, f, "111111", 1)

	// Dropping the connection releases the subscriber slot and the topic.
	cancel()
	waitSubscribers(t, f, "111111", 0)
}
