package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer upgrades incoming requests and echoes every message back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			mt, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSDialer(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	dialer := &WSDialer{HandshakeTimeout: 5 * time.Second}
	conn, err := dialer.Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	msg := []byte(`{"kind":"points-updated","payload":{"total":10}}`)
	if err := conn.Write(msg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := conn.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(msg) {
		t.Errorf("echo = %q, want %q", got, msg)
	}
}

func TestWSDialerFailure(t *testing.T) {
	dialer := &WSDialer{HandshakeTimeout: 500 * time.Millisecond}
	if _, err := dialer.Dial(context.Background(), "ws://127.0.0.1:1/live"); err == nil {
		t.Error("expected dial error for unreachable endpoint")
	}
}

func TestConnClose(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	dialer := &WSDialer{}
	conn, err := dialer.Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Idempotent.
	if err := conn.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := conn.Write([]byte("x")); err == nil {
		t.Error("expected write-after-close to fail")
	}
}
