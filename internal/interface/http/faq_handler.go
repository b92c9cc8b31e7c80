package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-assistant/internal/domain/faq"
)

// CreateFAQ adds a knowledge base entry and generates its embedding.
func (h *Handler) CreateFAQ(c *gin.Context) {
	var req faq.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	rec, err := h.faqSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortDomainError(c, err, "faq_failed")
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// GetFAQ returns one knowledge base entry.
func (h *Handler) GetFAQ(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	rec, err := h.faqSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortDomainError(c, err, "faq_failed")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListFAQs returns knowledge base entries, optionally filtered by category.
func (h *Handler) ListFAQs(c *gin.Context) {
	records, err := h.faqSvc.List(c.Request.Context(), faq.Filters{
		Category: c.Query("category"),
		Limit:    parseIntQuery(c, "limit"),
	})
	if err != nil {
		abortDomainError(c, err, "faq_failed")
		return
	}
	if records == nil {
		records = []faq.Record{}
	}

	c.JSON(http.StatusOK, gin.H{"faqs": records})
}

// UpdateFAQ applies a partial update, regenerating the embedding when the
// question or answer text changed.
func (h *Handler) UpdateFAQ(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	var req faq.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	rec, err := h.faqSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		abortDomainError(c, err, "faq_failed")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// DeleteFAQ removes a knowledge base entry.
func (h *Handler) DeleteFAQ(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	if err := h.faqSvc.Delete(c.Request.Context(), id); err != nil {
		abortDomainError(c, err, "faq_failed")
		return
	}

	c.Status(http.StatusNoContent)
}
