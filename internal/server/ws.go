package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients connect from arbitrary origins, same as the REST CORS policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// handleScrapeWS streams scrape progress over a websocket. The client sends
// one search request as JSON; events flow back until a terminal event or
// until the client disconnects, which cancels the scrape.
func (s *Server) handleScrapeWS(c *gin.Context) {
	clientID := c.Param("client_id")
	log := s.log.With().Str("client", clientID).Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req models.SearchRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.Warn().Err(err).Msg("bad search request")
		writeEvent(conn, session.ErrorEvent("invalid search request"))
		return
	}
	if err := req.Validate(); err != nil {
		writeEvent(conn, session.ErrorEvent(err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, err := s.registry.Open(clientID, cancel)
	if err != nil {
		writeEvent(conn, session.ErrorEvent("a scrape is already running for this client"))
		return
	}
	defer s.registry.Close(clientID)

	go func() {
		sink := func(ev session.Event) { s.registry.Publish(clientID, ev) }
		if _, err := s.runScrape(ctx, clientID, req, sink); err != nil {
			log.Debug().Err(err).Msg("scrape ended with error")
		}
	}()

	// Detect client disconnect: any read error cancels the running scrape.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if err := writeEvent(conn, ev); err != nil {
				log.Debug().Err(err).Msg("event write failed")
				return
			}
			if ev.Terminal() {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev session.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(ev)
}
