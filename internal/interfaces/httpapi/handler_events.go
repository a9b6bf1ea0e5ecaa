package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/game-lobby/internal/domain/liveevent"
	"github.com/riskibarqy/game-lobby/internal/usecase"
)

const heartbeatInterval = 15 * time.Second

// StreamEvents serves the live event feed for one competition over SSE.
// Events are ephemeral: subscribers only see joins that happen while they are
// connected.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamEvents")
	defer span.End()

	pin := strings.TrimSpace(r.PathValue("pin"))
	status, err := h.joinService.CheckPin(ctx, pin)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !status.Exists {
		writeError(ctx, w, fmt.Errorf("%w: competition pin=%s", usecase.ErrNotFound, pin))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: streaming unsupported by connection", usecase.ErrDependencyUnavailable))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.broadcaster.Subscribe(pin)
	defer sub.Close()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-sub.Events():
			if !open {
				// Disconnected as a slow consumer or the broadcaster shut
				// down.
				return
			}
			if err := h.writeEvent(w, event); err != nil {
				h.logger.WarnContext(ctx, "write sse event failed", "pin", pin, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) writeEvent(w http.ResponseWriter, event liveevent.Event) error {
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal live event: %w", err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("event: ")
	_, _ = buf.WriteString(string(event.Reason))
	_, _ = buf.WriteString("\ndata: ")
	_, _ = buf.Write(payload)
	_, _ = buf.WriteString("\n\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write sse frame: %w", err)
	}

	return nil
}
