package models

import "time"

type ProxyStats struct {
	Total       int            `json:"total"`
	ByOutcome   map[string]int `json:"by_outcome"`
	LastEventAt time.Time      `json:"last_event_at,omitempty"`
}
