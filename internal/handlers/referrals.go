package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"referral_proxy"
	"referral_proxy/internal/models"
	"referral_proxy/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errMethodNotAllowed = "Method not allowed - use POST"
	errProxyFailed      = "Proxy failed to connect to Shock API"

	jsonContentType = "application/json; charset=utf-8"
	maxBodySize     = 1 << 20 // 1 MiB
)

// @Summary      Proxy referrals
// @Description  Forwards the optional date range to the Shock referrals API with the server-side API key. Dates are YYYY-MM-DD and sent upstream as epoch milliseconds; omitted dates mean lifetime data. Upstream JSON is relayed verbatim.
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Param        body  body      referral_proxy.ReferralQuery  false  "Date range"
// @Success      200   {object}  map[string]interface{}  "upstream body"
// @Failure      400   {object}  map[string]string
// @Failure      405   {object}  map[string]string
// @Failure      500   {object}  map[string]interface{}
// @Router       /api/proxy [post]
func (h *Handler) proxyReferrals(c *gin.Context) {
	start := time.Now()

	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": errMethodNotAllowed})
		h.record(c, start, models.ProxyEvent{
			Outcome: models.OutcomeMethodNotAllowed,
			Status:  http.StatusMethodNotAllowed,
			Detail:  c.Request.Method,
		})
		return
	}

	q, err := bindReferralQuery(c)
	if err != nil {
		h.proxyFailure(c, start, err, referral_proxy.UpstreamPayload{})
		return
	}

	payload, err := h.services.Referrals.BuildPayload(q)
	if err != nil {
		var dfe *service.DateFormatError
		if errors.As(err, &dfe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": dfe.Error()})
			h.record(c, start, models.ProxyEvent{
				Outcome: models.OutcomeInvalidDate,
				Status:  http.StatusBadRequest,
				Detail:  dfe.Field,
			})
			return
		}
		h.proxyFailure(c, start, err, referral_proxy.UpstreamPayload{})
		return
	}

	reply, err := h.services.Referrals.Forward(c.Request.Context(), payload)
	if err != nil {
		h.proxyFailure(c, start, err, payload)
		return
	}

	c.Data(reply.Status, jsonContentType, reply.Body)
	h.record(c, start, models.ProxyEvent{
		Outcome: reply.Outcome,
		Status:  reply.Status,
		MinDate: payload.MinDate,
		MaxDate: payload.MaxDate,
	})
}

// bindReferralQuery decodes the JSON body. An empty body means no filters.
func bindReferralQuery(c *gin.Context) (referral_proxy.ReferralQuery, error) {
	var q referral_proxy.ReferralQuery
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(&q); err != nil && !errors.Is(err, io.EOF) {
		return referral_proxy.ReferralQuery{}, err
	}
	return q, nil
}

func (h *Handler) proxyFailure(c *gin.Context, start time.Time, err error, p referral_proxy.UpstreamPayload) {
	if h.log != nil {
		h.log.Errorw("proxy_failed", "err", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   errProxyFailed,
		"message": err.Error(),
	})
	h.record(c, start, models.ProxyEvent{
		Outcome: models.OutcomeProxyFailure,
		Status:  http.StatusInternalServerError,
		MinDate: p.MinDate,
		MaxDate: p.MaxDate,
		Detail:  err.Error(),
	})
}

// record appends to the audit trail; failures are logged and never change
// the response already written.
func (h *Handler) record(c *gin.Context, start time.Time, e models.ProxyEvent) {
	if h.services.Audit == nil {
		return
	}
	e.DurationMs = time.Since(start).Milliseconds()
	if err := h.services.Audit.Record(c.Request.Context(), e); err != nil && h.log != nil {
		h.log.Warnw("audit_record_failed", "err", err, "outcome", e.Outcome)
	}
}
