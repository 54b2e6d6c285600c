package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/AlvinSugijanto/job-scraper/internal/config"
	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/network"
	"github.com/AlvinSugijanto/job-scraper/internal/scraper"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Probe each configured proxy against a live search page."`
}

// ProxyCheckCmd runs one search-page fetch through every configured proxy
// and reports the outcome the scrape engine would see: ok, rate_limited,
// transient, exhausted or fatal.
type ProxyCheckCmd struct {
	Keywords string `help:"Probe search keywords." default:"software engineer"`
	Timeout  int    `help:"Timeout in seconds." default:"15"`
}

type ProxyCheckResult struct {
	Proxy     string `json:"proxy"`
	Outcome   string `json:"outcome"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies("")
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	req := models.SearchRequest{Keywords: p.Keywords, ResultsWanted: 1}
	if err := req.Validate(); err != nil {
		return err
	}

	results := make([]ProxyCheckResult, 0, len(proxies))
	for _, proxy := range proxies {
		results = append(results, p.probe(ctx, proxy, req))
	}

	return writeProxyResults(ctx, results)
}

// probe fetches the first search page through a single proxy, classifying
// the response exactly as a scrape session would.
func (p *ProxyCheckCmd) probe(ctx *Context, proxy string, req models.SearchRequest) ProxyCheckResult {
	result := ProxyCheckResult{Proxy: proxy}

	rotator, err := network.NewRotator([]string{proxy}, 5*time.Minute)
	if err != nil {
		result.Outcome = "invalid"
		result.Error = err.Error()
		return result
	}
	client, err := network.NewClient(rotator)
	if err != nil {
		result.Outcome = "invalid"
		result.Error = err.Error()
		return result
	}
	linkedIn := scraper.NewLinkedIn(client, ctx.Config.BaseURL)

	probeCtx, cancel := context.WithTimeout(context.Background(), time.Duration(p.Timeout)*time.Second)
	defer cancel()

	start := time.Now()
	page := linkedIn.FetchPage(probeCtx, req, 0)
	result.LatencyMS = time.Since(start).Milliseconds()
	result.Outcome = page.Status.String()
	if page.Err != nil {
		result.Error = page.Err.Error()
	}
	return result
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if ctx.PlainText {
		for _, res := range results {
			line := []string{res.Proxy, res.Outcome, fmt.Sprintf("%d", res.LatencyMS), res.Error}
			fmt.Fprintln(ctx.Out, strings.Join(line, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\toutcome\tlatency_ms\terror")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", res.Proxy, res.Outcome, res.LatencyMS, res.Error)
	}
	return tw.Flush()
}
