package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"PriceCast/internal/domain/models"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/forecasts"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestHubBroadcastsForecasts(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)

	f := &models.Forecast{Symbol: "AAPL", Stage: models.StageDone}
	f.SetValue(201.5)
	if err := h.Publish(context.Background(), f); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got models.Forecast
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Symbol != "AAPL" || got.Value == nil || *got.Value != 201.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if h.Clients() != 0 {
		t.Fatalf("clients = %d after close", h.Clients())
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to be closed")
	}
	if err := h.Publish(context.Background(), &models.Forecast{Symbol: "X"}); err != nil {
		t.Fatalf("Publish after close: %v", err)
	}
}
