package http

import (
	"log/slog"

	"github.com/yanqian/faq-assistant/internal/domain/faq"
	"github.com/yanqian/faq-assistant/internal/domain/query"
	"github.com/yanqian/faq-assistant/internal/domain/session"
	"github.com/yanqian/faq-assistant/internal/domain/user"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	querySvc   query.Service
	faqSvc     faq.Service
	userSvc    user.Service
	sessionSvc session.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(querySvc query.Service, faqSvc faq.Service, userSvc user.Service, sessionSvc session.Service, logger *slog.Logger) *Handler {
	return &Handler{
		querySvc:   querySvc,
		faqSvc:     faqSvc,
		userSvc:    userSvc,
		sessionSvc: sessionSvc,
		logger:     logger.With("component", "http.handler"),
	}
}
