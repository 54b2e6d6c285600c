package models

import "time"

// Job is a normalized LinkedIn posting. The external id is the site-assigned
// key used for deduplication across runs.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	CompanyURL     string    `json:"company_url,omitempty"`
	Location       string    `json:"location"`
	Salary         string    `json:"salary,omitempty"`
	DatePosted     string    `json:"date_posted,omitempty"`
	JobURL         string    `json:"job_url"`
	JobType        string    `json:"job_type,omitempty"`
	WorkType       string    `json:"work_type,omitempty"`
	Description    string    `json:"description,omitempty"`
	SearchKeywords string    `json:"search_keywords,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}
