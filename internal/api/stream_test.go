package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.PlanEventsWSHandler))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func wsRoundTrip(t *testing.T, conn *websocket.Conn, send wsMessage, wantType string) {
	t.Helper()
	if err := conn.WriteJSON(send); err != nil {
		t.Fatalf("write %s: %v", send.Type, err)
	}
	var got wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read after %s: %v", send.Type, err)
	}
	if got.Type != wantType {
		t.Fatalf("got %s, want %s", got.Type, wantType)
	}
}

func TestPlanEventsWSStream(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s)

	wsRoundTrip(t, conn, wsMessage{Type: "connection_init"}, "connection_ack")

	if err := conn.WriteJSON(wsMessage{Type: "subscribe", ID: "1"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	// The ping round trip proves the subscribe was processed.
	wsRoundTrip(t, conn, wsMessage{Type: "ping"}, "pong")

	s.Broker.Publish(TopicAll, PlanEvent{Type: "plan.created", Data: map[string]any{"planId": "p1"}})

	var got wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Type != "next" || got.ID != "1" {
		t.Fatalf("got %+v, want next for subscription 1", got)
	}
}

// A plan creation publishes to the firehose and the plan topic at once, so a
// client holding both subscriptions has two goroutines writing to its
// connection simultaneously. The writes must be serialized.
func TestPlanEventsWSConcurrentSubscriptions(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s)

	wsRoundTrip(t, conn, wsMessage{Type: "connection_init"}, "connection_ack")
	if err := conn.WriteJSON(wsMessage{Type: "subscribe", ID: "all"}); err != nil {
		t.Fatalf("subscribe all: %v", err)
	}
	if err := conn.WriteJSON(wsMessage{Type: "subscribe", ID: "one", Payload: []byte(`{"planId":"p42"}`)}); err != nil {
		t.Fatalf("subscribe one: %v", err)
	}
	wsRoundTrip(t, conn, wsMessage{Type: "ping"}, "pong")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			evt := PlanEvent{Type: "plan.created", Data: map[string]any{"planId": "p42"}}
			s.Broker.Publish(TopicAll, evt)
			s.Broker.Publish("p42", evt)
		}
	}()

	seen := map[string]bool{}
	deadline := time.Now().Add(3 * time.Second)
	for !(seen["all"] && seen["one"]) {
		_ = conn.SetReadDeadline(deadline)
		var got wsMessage
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read with subscriptions %v: %v", seen, err)
		}
		if got.Type == "next" {
			seen[got.ID] = true
		}
	}
	<-done

	// The connection must still be usable after the burst. Buffered next
	// frames may still arrive ahead of the pong.
	if err := conn.WriteJSON(wsMessage{Type: "ping"}); err != nil {
		t.Fatalf("ping after burst: %v", err)
	}
	for {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got wsMessage
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read after burst: %v", err)
		}
		if got.Type == "pong" {
			break
		}
		if got.Type != "next" {
			t.Fatalf("unexpected frame after burst: %+v", got)
		}
	}
}
