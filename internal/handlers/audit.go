package handlers

import (
	"net/http"
	"strings"
	"time"

	"referral_proxy/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errRange       = "'from' must be <= 'to'"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List audit events
// @Description  Filter proxy invocations by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is end-of-day inclusive.
// @Tags         audit
// @Produce      json
// @Param        from     query   string  false  "Start of range"  example(2025-08-01)
// @Param        to       query   string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        outcome  query   string  false  "Outcome"  Enums(OK,UPSTREAM_ERROR,UPSTREAM_NON_JSON,INVALID_DATE,PROXY_FAILURE,METHOD_NOT_ALLOWED)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/audit [get]
// @Security     BearerAuth
func (h *Handler) getAudit(c *gin.Context) {
	var (
		from, to time.Time
		outcome  = strings.ToUpper(strings.TrimSpace(c.Query("outcome")))
		err      error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = service.ParseDate(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = service.ParseDate(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errRange})
		return
	}

	events, err := h.services.Audit.List(c.Request.Context(), service.AuditFilter{
		From:    from,
		To:      to,
		Outcome: outcome,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "audit_list_failed", "failed to load audit events", err,
			"from", from, "to", to, "outcome", outcome)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
