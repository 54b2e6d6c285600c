package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/session"
)

func dialWS(t *testing.T, s *Server, clientID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scrape/" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) session.Event {
	t.Helper()
	var ev session.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func TestScrapeWSStreamsEvents(t *testing.T) {
	scrape := func(ctx context.Context, id string, req models.SearchRequest, sink session.Sink) (session.Summary, error) {
		sink(session.StartedEvent("Searching..."))
		sink(session.FetchingPageEvent(1, 0))
		sink(session.CompletedEvent(2, 2))
		return session.Summary{TotalJobs: 2, NewJobs: 2}, nil
	}
	s, _ := newTestServer(t, scrape)
	conn := dialWS(t, s, "client-1")

	if err := conn.WriteJSON(models.SearchRequest{Keywords: "golang", ResultsWanted: 2}); err != nil {
		t.Fatalf("send request: %v", err)
	}

	if ev := readEvent(t, conn); ev.Type != session.EventStarted {
		t.Fatalf("first event = %s, want started", ev.Type)
	}
	if ev := readEvent(t, conn); ev.Type != session.EventFetchingPage || ev.Page != 1 {
		t.Fatalf("unexpected second event: %+v", ev)
	}

	final := readEvent(t, conn)
	if final.Type != session.EventCompleted {
		t.Fatalf("final event = %s, want completed", final.Type)
	}
	if *final.TotalJobs != 2 || *final.NewJobs != 2 {
		t.Fatalf("unexpected totals: %+v", final)
	}

	// Server closes the stream after the terminal event.
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection close after terminal event")
	}
}

func TestScrapeWSInvalidRequest(t *testing.T) {
	scrape := func(ctx context.Context, id string, req models.SearchRequest, sink session.Sink) (session.Summary, error) {
		t.Errorf("scrape must not run for invalid input")
		return session.Summary{}, nil
	}
	s, _ := newTestServer(t, scrape)
	conn := dialWS(t, s, "client-1")

	if err := conn.WriteJSON(models.SearchRequest{Keywords: "  "}); err != nil {
		t.Fatalf("send request: %v", err)
	}

	if ev := readEvent(t, conn); ev.Type != session.EventError {
		t.Fatalf("expected error event, got %+v", ev)
	}
}

func TestScrapeWSDisconnectCancelsScrape(t *testing.T) {
	cancelled := make(chan struct{})
	scrape := func(ctx context.Context, id string, req models.SearchRequest, sink session.Sink) (session.Summary, error) {
		sink(session.StartedEvent("Searching..."))
		<-ctx.Done()
		close(cancelled)
		return session.Summary{}, ctx.Err()
	}
	s, _ := newTestServer(t, scrape)
	conn := dialWS(t, s, "client-1")

	if err := conn.WriteJSON(models.SearchRequest{Keywords: "golang"}); err != nil {
		t.Fatalf("send request: %v", err)
	}
	if ev := readEvent(t, conn); ev.Type != session.EventStarted {
		t.Fatalf("expected started event, got %+v", ev)
	}

	conn.Close()

	select {
	case <-cancelled:
	case <-time.After(3 * time.Second):
		t.Fatalf("client disconnect should cancel the running scrape")
	}
}
