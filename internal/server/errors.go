package server

import (
	"errors"
	"net/http"

	recorddomain "github.com/fixwell/docforge/internal/record/domain"
	renderdomain "github.com/fixwell/docforge/internal/render/domain"
	"github.com/fixwell/docforge/internal/render/transform"
	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"github.com/gin-gonic/gin"
)

// APIError is the wire shape of every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

func invalidRequestError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

var validationErrors = []error{
	templatedomain.ErrInvalidID,
	templatedomain.ErrInvalidName,
	templatedomain.ErrInvalidDocumentType,
	templatedomain.ErrInvalidRenderEngine,
	templatedomain.ErrInvalidPaperSize,
	templatedomain.ErrInvalidOrientation,
	templatedomain.ErrInvalidElements,
	templatedomain.ErrInvalidColumnWidths,
	recorddomain.ErrInvalidID,
	transform.ErrInvalidStyle,
}

var notFoundErrors = []error{
	templatedomain.ErrNotFound,
	recorddomain.ErrRecordNotFound,
	renderdomain.ErrTemplateNotFound,
	renderdomain.ErrRecordNotFound,
}

// AbortWithError maps domain sentinels onto HTTP statuses and writes the
// JSON error envelope. Unknown errors become opaque 500s.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": APIError{
				Code:    sentinel.Error(),
				Message: sentinel.Error(),
			}})
			return
		}
	}
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": APIError{
				Code:    sentinel.Error(),
				Message: sentinel.Error(),
			}})
			return
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": APIError{
		Code:    "internal_error",
		Message: "internal error",
	}})
}
