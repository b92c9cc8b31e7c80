package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-assistant/internal/domain/session"
)

// CreateSession opens a session for a user.
func (h *Handler) CreateSession(c *gin.Context) {
	var req session.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	s, err := h.sessionSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortDomainError(c, err, "session_failed")
		return
	}

	c.JSON(http.StatusCreated, s)
}

// GetSession returns an unexpired session by id.
func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.sessionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortDomainError(c, err, "session_failed")
		return
	}

	c.JSON(http.StatusOK, s)
}

// UpdateSession replaces the session's data payload.
func (h *Handler) UpdateSession(c *gin.Context) {
	var req struct {
		Data map[string]any `json:"sessionData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	s, err := h.sessionSvc.Update(c.Request.Context(), c.Param("id"), req.Data)
	if err != nil {
		abortDomainError(c, err, "session_failed")
		return
	}

	c.JSON(http.StatusOK, s)
}

// ExtendSession pushes the session expiry forward.
func (h *Handler) ExtendSession(c *gin.Context) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	s, err := h.sessionSvc.Extend(c.Request.Context(), c.Param("id"), req.Minutes)
	if err != nil {
		abortDomainError(c, err, "session_failed")
		return
	}

	c.JSON(http.StatusOK, s)
}

// CleanupSessions removes expired sessions and reports how many went away.
func (h *Handler) CleanupSessions(c *gin.Context) {
	removed, err := h.sessionSvc.CleanupExpired(c.Request.Context())
	if err != nil {
		abortDomainError(c, err, "session_failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// DeleteSession closes a session.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessionSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortDomainError(c, err, "session_failed")
		return
	}

	c.Status(http.StatusNoContent)
}
