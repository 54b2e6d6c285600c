package scraper

import (
	"errors"
	"html"
	"strings"
	"time"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/PuerkitoBio/goquery"
)

var ErrMalformedPage = errors.New("malformed page")

// Parser binds the pure parsing functions to a base URL so callers can hold
// a single parsing dependency.
type Parser struct {
	baseURL string
}

func NewParser(baseURL string) Parser {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Parser{baseURL: baseURL}
}

func (p Parser) ParseJobCards(doc *goquery.Document) ([]models.Job, error) {
	return ParseJobCards(doc, p.baseURL)
}

func (p Parser) ParseJobDetail(doc *goquery.Document) (JobDetail, error) {
	return ParseJobDetail(doc)
}

// ParseJobCards extracts candidate records from a search result document.
// Cards missing an id or title are skipped rather than emitted half-filled.
// An empty slice means an empty results page.
func ParseJobCards(doc *goquery.Document, baseURL string) ([]models.Job, error) {
	if doc == nil {
		return nil, ErrMalformedPage
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var jobs []models.Job
	doc.Find("div.base-search-card").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a.base-card__full-link").Attr("href")
		id := jobIDFromHref(href)
		if id == "" {
			return
		}

		title := cleanText(s.Find("span.sr-only").First().Text())
		if title == "" {
			return
		}

		companyLink := s.Find("h4.base-search-card__subtitle a").First()
		companyURL, _ := companyLink.Attr("href")

		job := models.Job{
			ID:         id,
			Title:      title,
			Company:    cleanText(companyLink.Text()),
			CompanyURL: stripQuery(companyURL),
			Location:   cleanText(s.Find("span.job-search-card__location").First().Text()),
			Salary:     cleanText(s.Find("span.job-search-card__salary-info").First().Text()),
			JobURL:     JobViewURL(baseURL, id),
		}

		if datetime, ok := s.Find("time.job-search-card__listdate").Attr("datetime"); ok {
			if _, err := time.Parse("2006-01-02", datetime); err == nil {
				job.DatePosted = datetime
			}
		}

		jobs = append(jobs, job)
	})

	return jobs, nil
}

// JobDetail holds the extras only available on a job's own page.
type JobDetail struct {
	DescriptionHTML string
	WorkType        string
}

// ParseJobDetail extracts the full description and the remote/hybrid work
// type from a job detail document.
func ParseJobDetail(doc *goquery.Document) (JobDetail, error) {
	if doc == nil {
		return JobDetail{}, ErrMalformedPage
	}

	var detail JobDetail
	markup := doc.Find("div.show-more-less-html__markup").First()
	if markup.Length() > 0 {
		if outer, err := goquery.OuterHtml(markup); err == nil {
			detail.DescriptionHTML = strings.TrimSpace(outer)
		}
	}

	doc.Find("div.job-details-fit-level-preferences button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(cleanText(s.Text()))
		switch {
		case strings.Contains(text, "remote"):
			detail.WorkType = "remote"
			return false
		case strings.Contains(text, "hybrid"):
			detail.WorkType = "hybrid"
			return false
		}
		return true
	})

	return detail, nil
}

func jobIDFromHref(href string) string {
	href = stripQuery(href)
	if href == "" {
		return ""
	}
	idx := strings.LastIndex(href, "-")
	if idx < 0 || idx+1 >= len(href) {
		return ""
	}
	return href[idx+1:]
}

func stripQuery(href string) string {
	if i := strings.IndexByte(href, '?'); i >= 0 {
		return href[:i]
	}
	return href
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}
