package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/riskibarqy/game-lobby/internal/config"
	"github.com/riskibarqy/game-lobby/internal/platform/logging"
)

// Graceful shutdown must not wait out connected event streams: stream
// handlers only return once the broadcaster closes their channel, so the
// broadcaster has to go down before the HTTP drain starts.
func TestShutdownClosesLiveStreams(t *testing.T) {
	cfg := config.Config{
		AppEnv:                config.EnvDev,
		HTTPAddr:              "127.0.0.1:0",
		EventBufferSize:       4,
		AccountBaseURL:        "http://127.0.0.1:1",
		AccountIntrospectPath: "/v1/auth/introspect",
		CORSAllowedOrigins:    []string{"*"},
	}

	application, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = application.Server.Serve(ln) }()

	// The dev seed provides competition pin 123456.
	resp, err := http.Get("http://" + ln.Addr().String() + "/v1/competitions/123456/events")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	deadline := time.Now().Add(3 * time.Second)
	for application.broadcaster.SubscriberCount("123456") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the stream to subscribe")
		}
		time.Sleep(10 * time.Millisecond)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("graceful shutdown with a connected stream: %v", err)
	}

	buf := make([]byte, 1)
	if _, err := resp.Body.Read(buf); err == nil {
		t.Fatal("expected stream to be closed after shutdown")
	}
}
