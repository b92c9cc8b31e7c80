package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/faq-assistant/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// abortDomainError translates a domain error code into the HTTP response.
func abortDomainError(c *gin.Context, err error, fallbackCode string) {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "not_found"):
		status = http.StatusNotFound
		code = "not_found"
	case apperrors.IsCode(err, "conflict"):
		status = http.StatusConflict
		code = "conflict"
	}
	abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
