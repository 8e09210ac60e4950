package referral_proxy

// ReferralQuery is the inbound POST body sent by the frontend.
// Dates are calendar dates (YYYY-MM-DD); empty means no bound.
type ReferralQuery struct {
	MinDate string `json:"minDate,omitempty" example:"2025-08-01"`
	MaxDate string `json:"maxDate,omitempty" example:"2025-08-31"`
}

// UpstreamPayload is the body posted to the Shock referrals API.
type UpstreamPayload struct {
	APIKey  string `json:"apiKey"`
	MinDate *int64 `json:"minDate,omitempty"` // epoch ms
	MaxDate *int64 `json:"maxDate,omitempty"` // epoch ms
}

// Redacted returns a copy safe for logging.
func (p UpstreamPayload) Redacted() UpstreamPayload {
	if p.APIKey != "" {
		p.APIKey = "***"
	}
	return p
}
