package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"referral_proxy"
	"referral_proxy/internal/logger"
	"referral_proxy/internal/models"
)

const (
	errNonJSONResponse = "Shock API returned non-JSON response"

	// rawBodyPreviewChars bounds the raw text echoed back for non-JSON replies.
	rawBodyPreviewChars = 500
	// logBodyPreviewChars bounds the upstream body written to logs.
	logBodyPreviewChars = 1000
)

// errNullResponse marks a JSON null reply, which carries neither data nor an
// error object to relay.
var errNullResponse = errors.New("Shock API returned null")

type ReferralService struct {
	client UpstreamPoster
	apiKey string
	log    *logger.Logger
}

func NewReferralService(client UpstreamPoster, apiKey string, log *logger.Logger) *ReferralService {
	return &ReferralService{client: client, apiKey: apiKey, log: log}
}

// BuildPayload injects the API key and converts the optional dates to epoch
// milliseconds. Empty dates are omitted; the first unparsable one yields a
// *DateFormatError.
func (s *ReferralService) BuildPayload(q referral_proxy.ReferralQuery) (referral_proxy.UpstreamPayload, error) {
	p := referral_proxy.UpstreamPayload{APIKey: s.apiKey}

	fields := []struct {
		name  string
		value string
		dst   **int64
	}{
		{"minDate", q.MinDate, &p.MinDate},
		{"maxDate", q.MaxDate, &p.MaxDate},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		ms, err := DateToEpochMillis(f.value)
		if err != nil {
			return referral_proxy.UpstreamPayload{}, &DateFormatError{Field: f.name, Value: f.value}
		}
		*f.dst = &ms
	}
	return p, nil
}

// Forward performs the single upstream call and maps its reply. A returned
// error means upstream could not be reached at all.
func (s *ReferralService) Forward(ctx context.Context, p referral_proxy.UpstreamPayload) (Reply, error) {
	if s.log != nil {
		s.log.Infow("upstream_request", "payload", p.Redacted())
	}

	resp, err := s.client.Post(ctx, p)
	if err != nil {
		return Reply{}, err
	}

	if s.log != nil {
		s.log.Infow("upstream_response",
			"status", resp.StatusCode,
			"body", truncateRunes(string(resp.Body), logBodyPreviewChars),
		)
	}
	return classify(resp.StatusCode, resp.Body)
}

type nonJSONBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// classify maps an upstream status and body onto the proxy reply. A JSON
// null body is an error and surfaces as a proxy failure.
func classify(status int, raw []byte) (Reply, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		body, _ := json.Marshal(nonJSONBody{
			Error:  errNonJSONResponse,
			Status: status,
			Body:   truncateRunes(string(raw), rawBodyPreviewChars),
		})
		return Reply{Status: statusOr(status, http.StatusInternalServerError), Body: body, Outcome: models.OutcomeUpstreamNonJSON}, nil
	}
	if parsed == nil {
		return Reply{}, errNullResponse
	}

	if !isSuccess(status) || reportsError(parsed) {
		return Reply{Status: statusOr(status, http.StatusBadRequest), Body: raw, Outcome: models.OutcomeUpstreamError}, nil
	}
	return Reply{Status: http.StatusOK, Body: raw, Outcome: models.OutcomeOK}, nil
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

func statusOr(status, fallback int) int {
	if status == 0 {
		return fallback
	}
	return status
}

// reportsError is a best-effort check for business errors returned with a
// success status: a truthy "error" field, or a "message" mentioning "error".
func reportsError(parsed any) bool {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return false
	}
	if truthy(obj["error"]) {
		return true
	}
	msg, ok := obj["message"].(string)
	return ok && strings.Contains(msg, "error")
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
