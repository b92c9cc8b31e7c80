package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-assistant/internal/domain/session"
	"github.com/yanqian/faq-assistant/internal/domain/user"
)

// CreateUser registers a user account.
func (h *Handler) CreateUser(c *gin.Context) {
	var req user.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	u, err := h.userSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortDomainError(c, err, "user_failed")
		return
	}

	c.JSON(http.StatusCreated, u)
}

// GetUser returns one user account.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	u, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortDomainError(c, err, "user_failed")
		return
	}

	c.JSON(http.StatusOK, u)
}

// ListUsers returns user accounts with pagination.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context(), user.Filters{
		Limit:  parseIntQuery(c, "limit"),
		Offset: parseIntQuery(c, "offset"),
	})
	if err != nil {
		abortDomainError(c, err, "user_failed")
		return
	}
	if users == nil {
		users = []user.User{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUser applies a partial update to a user account.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	var req user.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	u, err := h.userSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		abortDomainError(c, err, "user_failed")
		return
	}

	c.JSON(http.StatusOK, u)
}

// DeleteUser removes a user account and invalidates its cached state.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id); err != nil {
		abortDomainError(c, err, "user_failed")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUserSessions returns a user's active sessions.
func (h *Handler) ListUserSessions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be an integer", err))
		return
	}

	sessions, err := h.sessionSvc.ListByUser(c.Request.Context(), id)
	if err != nil {
		abortDomainError(c, err, "session_failed")
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
