// Package server exposes the scraper over HTTP: REST endpoints for stored
// jobs and a websocket endpoint streaming live scrape progress.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/scraper"
	"github.com/AlvinSugijanto/job-scraper/internal/session"
	"github.com/AlvinSugijanto/job-scraper/internal/store"
)

// scrapeFunc runs one scrape session to completion, delivering progress to
// sink. Swapped out in tests.
type scrapeFunc func(ctx context.Context, id string, req models.SearchRequest, sink session.Sink) (session.Summary, error)

type Config struct {
	Addr    string
	Store   *store.Store
	Scraper *scraper.LinkedIn
	Logger  zerolog.Logger
}

type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	store      *store.Store
	registry   *session.Registry
	runScrape  scrapeFunc
	log        zerolog.Logger
}

func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	s := &Server{
		router:   router,
		store:    cfg.Store,
		registry: session.NewRegistry(),
		log:      cfg.Logger,
	}
	s.runScrape = func(ctx context.Context, id string, req models.SearchRequest, sink session.Sink) (session.Summary, error) {
		if cfg.Scraper == nil {
			return session.Summary{}, errors.New("no scraper configured")
		}
		sess := session.New(id, req, session.Deps{
			Fetcher: cfg.Scraper,
			Parser:  scraper.NewParser(cfg.Scraper.BaseURL()),
			Store:   cfg.Store,
			Sink:    sink,
			Logger:  cfg.Logger,
		}, session.DefaultOptions())
		return sess.Run(ctx)
	}

	s.setupRoutes()
	s.httpServer = &http.Server{Addr: cfg.Addr, Handler: router}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHealth)
	s.router.GET("/jobs", s.handleScrape)
	s.router.POST("/jobs/search", s.handleSearch)
	s.router.GET("/jobs/stored", s.handleListStored)
	s.router.GET("/jobs/stored/:id", s.handleGetStored)
	s.router.DELETE("/jobs/stored/:id", s.handleDeleteStored)
	s.router.DELETE("/jobs/stored", s.handleDeleteAll)
	s.router.GET("/ws/scrape/:client_id", s.handleScrapeWS)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
