package models

import (
	"fmt"
	"strings"
)

// JobType is the LinkedIn employment-type filter.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
	JobTypeTemporary  JobType = "temporary"
)

const (
	DefaultResultsWanted = 25
	MaxResultsWanted     = 100
)

// SearchRequest captures one scrape run's inputs. It is validated once and
// never mutated after a session starts.
type SearchRequest struct {
	Keywords          string  `json:"keywords"`
	Location          string  `json:"location,omitempty"`
	Distance          int     `json:"distance,omitempty"`
	JobType           JobType `json:"job_type,omitempty"`
	IsRemote          bool    `json:"is_remote,omitempty"`
	EasyApply         bool    `json:"easy_apply,omitempty"`
	HoursOld          int     `json:"hours_old,omitempty"`
	ResultsWanted     int     `json:"results_wanted,omitempty"`
	FetchDescriptions bool    `json:"fetch_descriptions,omitempty"`
}

// Validate normalizes the request in place and reports the first invalid field.
func (r *SearchRequest) Validate() error {
	r.Keywords = strings.TrimSpace(r.Keywords)
	if r.Keywords == "" {
		return fmt.Errorf("keywords is required")
	}
	r.Location = strings.TrimSpace(r.Location)

	if r.ResultsWanted == 0 {
		r.ResultsWanted = DefaultResultsWanted
	}
	if r.ResultsWanted < 1 || r.ResultsWanted > MaxResultsWanted {
		return fmt.Errorf("results_wanted must be between 1 and %d", MaxResultsWanted)
	}
	if r.Distance < 0 {
		return fmt.Errorf("distance must be positive")
	}
	if r.HoursOld < 0 {
		return fmt.Errorf("hours_old must be positive")
	}
	if r.JobType != "" && !r.JobType.Valid() {
		return fmt.Errorf("unknown job_type: %s", r.JobType)
	}
	return nil
}

func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract, JobTypeTemporary:
		return true
	}
	return false
}

// Code returns the LinkedIn f_JT query code for the job type.
func (t JobType) Code() string {
	switch t {
	case JobTypeFullTime:
		return "F"
	case JobTypePartTime:
		return "P"
	case JobTypeInternship:
		return "I"
	case JobTypeContract:
		return "C"
	case JobTypeTemporary:
		return "T"
	}
	return ""
}
