package service

import "time"

// Reply is what the proxy sends back after talking to upstream.
type Reply struct {
	Status  int
	Body    []byte // always valid JSON
	Outcome string // models.Outcome*
}

// AuditFilter supports history filtering by time range and outcome.
type AuditFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Outcome string    // "" or one of models.Outcome*
}
