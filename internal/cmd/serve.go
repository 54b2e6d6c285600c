package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlvinSugijanto/job-scraper/internal/server"
)

type ServeCmd struct {
	Addr    string `help:"Listen address." env:"JOBSCRAPER_ADDR"`
	DB      string `help:"Database path override." env:"JOBSCRAPER_DB_PATH"`
	Proxies string `help:"Comma-separated proxy URLs." env:"JOBSCRAPER_PROXIES"`
}

const shutdownTimeout = 10 * time.Second

func (s *ServeCmd) Run(ctx *Context) error {
	linkedIn, err := buildScraper(ctx, s.Proxies)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, s.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Config{
		Addr:    firstNonEmpty(s.Addr, ctx.Config.Addr),
		Store:   st,
		Scraper: linkedIn,
		Logger:  ctx.Logger,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-runCtx.Done():
	}

	ctx.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
