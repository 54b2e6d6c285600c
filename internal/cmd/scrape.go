package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/muesli/termenv"

	"github.com/AlvinSugijanto/job-scraper/internal/config"
	"github.com/AlvinSugijanto/job-scraper/internal/export"
	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/network"
	"github.com/AlvinSugijanto/job-scraper/internal/scraper"
	"github.com/AlvinSugijanto/job-scraper/internal/session"
	"github.com/AlvinSugijanto/job-scraper/internal/store"
)

type ScrapeCmd struct {
	Keywords string `arg:"" help:"Search keywords."`

	Location     string `help:"Job location." env:"JOBSCRAPER_DEFAULT_LOCATION"`
	Distance     int    `help:"Search radius in miles."`
	JobType      string `help:"Job type filter." enum:",full_time,part_time,internship,contract,temporary" default:""`
	Remote       bool   `help:"Remote-only roles."`
	EasyApply    bool   `help:"Easy Apply listings only."`
	Hours        int    `help:"Jobs posted in the last N hours."`
	Results      int    `help:"Maximum results." env:"JOBSCRAPER_DEFAULT_RESULTS"`
	Descriptions bool   `help:"Fetch full job descriptions (slower)."`

	Format  string `help:"Output format: csv, json, md, tsv, table." enum:",csv,json,md,tsv,table" default:""`
	Links   string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output  string `name:"output" short:"o" help:"Write output to a file."`
	Proxies string `help:"Comma-separated proxy URLs." env:"JOBSCRAPER_PROXIES"`
	DB      string `help:"Database path override." env:"JOBSCRAPER_DB_PATH"`
}

func (s *ScrapeCmd) Run(ctx *Context) error {
	req := models.SearchRequest{
		Keywords:          s.Keywords,
		Location:          firstNonEmpty(s.Location, ctx.Config.DefaultLocation),
		Distance:          s.Distance,
		JobType:           models.JobType(s.JobType),
		IsRemote:          s.Remote,
		EasyApply:         s.EasyApply,
		HoursOld:          s.Hours,
		ResultsWanted:     defaultInt(s.Results, ctx.Config.DefaultResults),
		FetchDescriptions: s.Descriptions,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	linkedIn, err := buildScraper(ctx, s.Proxies)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, s.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New("", req, session.Deps{
		Fetcher: linkedIn,
		Parser:  scraper.NewParser(linkedIn.BaseURL()),
		Store:   st,
		Sink:    ctx.UI.RenderEvent,
		Logger:  ctx.Logger,
	}, session.DefaultOptions())

	summary, err := sess.Run(runCtx)
	if err != nil {
		if runCtx.Err() != nil {
			return fmt.Errorf("scrape cancelled")
		}
		return err
	}

	return writeResults(ctx, summary.Jobs, s.Format, s.Links, s.Output)
}

func buildScraper(ctx *Context, proxiesFlag string) (*scraper.LinkedIn, error) {
	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 10*time.Minute)
		if err != nil {
			return nil, err
		}
	}

	client, err := network.NewClient(rotator)
	if err != nil {
		return nil, err
	}
	return scraper.NewLinkedIn(client, ctx.Config.BaseURL), nil
}

func openStore(ctx *Context, dbFlag string) (*store.Store, error) {
	cfg := ctx.Config
	if strings.TrimSpace(dbFlag) != "" {
		cfg.DBPath = dbFlag
	}
	path, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

func writeResults(ctx *Context, jobs []models.Job, formatFlag, linksFlag, outputPath string) error {
	format, err := resolveFormat(ctx, formatFlag, outputPath)
	if err != nil {
		return err
	}

	writer := ctx.Out
	if strings.TrimSpace(outputPath) != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(linksFlag, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	return export.WriteJobs(writer, jobs, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	})
}

func resolveFormat(ctx *Context, formatFlag string, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if formatFlag != "" {
		return parseFormat(formatFlag)
	}
	if outputPath != "" {
		return export.FormatCSV, nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md", "markdown":
		return export.FormatMarkdown, nil
	case "tsv":
		return export.FormatTSV, nil
	case "table", "":
		return export.FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
