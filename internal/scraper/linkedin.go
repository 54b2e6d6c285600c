package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/network"
	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"
)

const DefaultBaseURL = "https://www.linkedin.com"

const searchPath = "/jobs-guest/jobs/api/seeMoreJobPostings/search"

var defaultHeaders = map[string]string{
	"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"accept-language": "en-US,en;q=0.9",
	"cache-control":   "max-age=0",
}

// LinkedIn fetches guest search result pages and job detail pages. It never
// retries; every response is classified into a PageResult for the caller.
type LinkedIn struct {
	client  *network.Client
	baseURL string
}

func NewLinkedIn(client *network.Client, baseURL string) *LinkedIn {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &LinkedIn{client: client, baseURL: baseURL}
}

func (l *LinkedIn) BaseURL() string {
	return l.baseURL
}

func (l *LinkedIn) FetchPage(ctx context.Context, req models.SearchRequest, offset int) PageResult {
	return l.fetch(ctx, BuildSearchURL(l.baseURL, req, offset))
}

func (l *LinkedIn) FetchJobDetail(ctx context.Context, jobID string) PageResult {
	return l.fetch(ctx, JobViewURL(l.baseURL, jobID))
}

func (l *LinkedIn) fetch(ctx context.Context, target string) PageResult {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return PageResult{Status: StatusFatal, Err: err}
	}
	for key, value := range defaultHeaders {
		req.Header.Set(key, value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		// Transport failures (timeouts included) are retryable.
		return PageResult{Status: StatusTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 429:
		return PageResult{Status: StatusRateLimited}
	case resp.StatusCode == 404 || resp.StatusCode == 410:
		return PageResult{Status: StatusExhausted}
	case resp.StatusCode >= 500:
		return PageResult{Status: StatusTransient, Err: fmt.Errorf("http %d", resp.StatusCode)}
	case resp.StatusCode >= 300:
		return PageResult{Status: StatusFatal, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return PageResult{Status: StatusFatal, Err: err}
	}
	return PageResult{Status: StatusOK, Doc: doc}
}

// BuildSearchURL encodes a request into the guest search URL. The same
// request and offset always produce the same URL.
func BuildSearchURL(base string, req models.SearchRequest, offset int) string {
	values := url.Values{}
	values.Set("keywords", req.Keywords)
	values.Set("location", req.Location)
	values.Set("start", strconv.Itoa(offset))
	values.Set("pageNum", "0")

	if req.Distance > 0 {
		values.Set("distance", strconv.Itoa(req.Distance))
	}
	if code := req.JobType.Code(); code != "" {
		values.Set("f_JT", code)
	}
	if req.IsRemote {
		values.Set("f_WT", "2")
	}
	if req.EasyApply {
		values.Set("f_AL", "true")
	}
	if req.HoursOld > 0 {
		values.Set("f_TPR", fmt.Sprintf("r%d", req.HoursOld*3600))
	}

	return base + searchPath + "?" + values.Encode()
}

func JobViewURL(base string, jobID string) string {
	return fmt.Sprintf("%s/jobs/view/%s", base, jobID)
}
