package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-assistant/internal/domain/audit"
	"github.com/yanqian/faq-assistant/internal/domain/query"
)

// ProcessQuery answers a question using semantic matching over the FAQ corpus.
func (h *Handler) ProcessQuery(c *gin.Context) {
	var req query.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.querySvc.Process(c.Request.Context(), req)
	if err != nil {
		abortDomainError(c, err, "query_failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetQuery returns a single processed query with its context snapshot.
func (h *Handler) GetQuery(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	rec, err := h.querySvc.Get(c.Request.Context(), id)
	if err != nil {
		abortDomainError(c, err, "query_failed")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListQueries returns query history, optionally filtered by user.
func (h *Handler) ListQueries(c *gin.Context) {
	filters := query.Filters{
		Limit:  parseIntQuery(c, "limit"),
		Offset: parseIntQuery(c, "offset"),
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "userId must be an integer", err))
			return
		}
		filters.UserID = &userID
	}

	records, err := h.querySvc.List(c.Request.Context(), filters)
	if err != nil {
		abortDomainError(c, err, "query_failed")
		return
	}
	if records == nil {
		records = []query.Record{}
	}

	c.JSON(http.StatusOK, gin.H{"queries": records})
}

// Analytics reports aggregate audit statistics and recent audit entries.
func (h *Handler) Analytics(c *gin.Context) {
	filters := audit.Filters{Limit: parseIntQuery(c, "limit")}
	if raw := c.Query("queryId"); raw != "" {
		queryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "queryId must be an integer", err))
			return
		}
		filters.QueryID = queryID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "from must be RFC3339", err))
			return
		}
		filters.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "to must be RFC3339", err))
			return
		}
		filters.To = to
	}

	report, err := h.querySvc.Analytics(c.Request.Context(), filters)
	if err != nil {
		abortDomainError(c, err, "analytics_failed")
		return
	}
	if report.Logs == nil {
		report.Logs = []audit.Entry{}
	}

	c.JSON(http.StatusOK, report)
}

func parseIntQuery(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
