package models

import "time"

// Outcomes recorded for a single proxy invocation.
const (
	OutcomeOK               = "OK"
	OutcomeUpstreamError    = "UPSTREAM_ERROR"
	OutcomeUpstreamNonJSON  = "UPSTREAM_NON_JSON"
	OutcomeInvalidDate      = "INVALID_DATE"
	OutcomeProxyFailure     = "PROXY_FAILURE"
	OutcomeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ProxyEvent is a single audit entry. It never carries referral data.
type ProxyEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Outcome    string    `json:"outcome"`     // OK | UPSTREAM_ERROR | UPSTREAM_NON_JSON | INVALID_DATE | PROXY_FAILURE | METHOD_NOT_ALLOWED
	Status     int       `json:"status"`      // status returned to the caller
	DurationMs int64     `json:"duration_ms"` // wall time of the invocation
	MinDate    *int64    `json:"min_date,omitempty"`
	MaxDate    *int64    `json:"max_date,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}
