package session

import "fmt"

// EventType discriminates progress messages on the wire.
type EventType string

const (
	EventStarted      EventType = "started"
	EventFetchingPage EventType = "fetching_page"
	EventRateLimit    EventType = "rate_limit"
	EventParsing      EventType = "parsing"
	EventCompleted    EventType = "completed"
	EventError        EventType = "error"
)

// Event is one progress message. Events are emitted in strictly increasing
// order within a session and a session ends with exactly one terminal event
// (completed or error) unless the subscriber is already gone.
type Event struct {
	Type        EventType `json:"type"`
	Message     string    `json:"message,omitempty"`
	Page        int       `json:"page,omitempty"`
	JobsFound   *int      `json:"jobs_found,omitempty"`
	WaitSeconds int       `json:"wait_seconds,omitempty"`
	Current     int       `json:"current,omitempty"`
	Total       int       `json:"total,omitempty"`
	TotalJobs   *int      `json:"total_jobs,omitempty"`
	NewJobs     *int      `json:"new_jobs,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventCompleted || e.Type == EventError
}

func StartedEvent(message string) Event {
	return Event{Type: EventStarted, Message: message}
}

func FetchingPageEvent(page int, jobsFound int) Event {
	return Event{Type: EventFetchingPage, Page: page, JobsFound: intPtr(jobsFound)}
}

func RateLimitEvent(waitSeconds int) Event {
	return Event{
		Type:        EventRateLimit,
		WaitSeconds: waitSeconds,
		Message:     fmt.Sprintf("Rate limited, waiting %ds...", waitSeconds),
	}
}

func ParsingEvent(current int, total int) Event {
	return Event{Type: EventParsing, Current: current, Total: total}
}

func CompletedEvent(totalJobs int, newJobs int) Event {
	return Event{
		Type:      EventCompleted,
		TotalJobs: intPtr(totalJobs),
		NewJobs:   intPtr(newJobs),
		Message:   fmt.Sprintf("Completed! Found %d jobs (%d new)", totalJobs, newJobs),
	}
}

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

func intPtr(v int) *int {
	return &v
}
