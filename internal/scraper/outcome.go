package scraper

import "github.com/PuerkitoBio/goquery"

// Status classifies one page fetch. The session owns all retry policy; the
// fetcher only reports what happened.
type Status int

const (
	StatusOK Status = iota
	StatusRateLimited
	StatusExhausted
	StatusTransient
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRateLimited:
		return "rate_limited"
	case StatusExhausted:
		return "exhausted"
	case StatusTransient:
		return "transient"
	case StatusFatal:
		return "fatal"
	}
	return "unknown"
}

// PageResult is the outcome of a single fetch. Doc is set only for StatusOK;
// Err is set for StatusTransient and StatusFatal.
type PageResult struct {
	Status Status
	Doc    *goquery.Document
	Err    error
}
