package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fixwell/docforge/internal/notify"
	renderdomain "github.com/fixwell/docforge/internal/render/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Render Document
// @Description  Render a stored record through a template as PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        templateId   path   string  true   "Template ID"
// @Param        dataId       path   string  true   "Record ID"
// @Param        style        query  string  false  "Audience style"
// @Param        disposition  query  string  false  "inline or attachment"
// @Success      200  {file}  binary
// @Router       /documents/{templateId}/{dataId}/render [get]
func (s *Server) RenderDocument(c *gin.Context) {
	style, err := styleFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.renderSvc.Render(c.Request.Context(), renderdomain.Request{
		TemplateID: strings.TrimSpace(c.Param("templateId")),
		RecordID:   strings.TrimSpace(c.Param("dataId")),
		Style:      style,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	disposition := "inline"
	if strings.TrimSpace(c.Query("disposition")) == "attachment" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

type emailDocumentRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
}

// @Summary      Email Document
// @Description  Render a document and hand it to outbound delivery
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        templateId  path  string                true  "Template ID"
// @Param        dataId      path  string                true  "Record ID"
// @Param        request     body  emailDocumentRequest  true  "Delivery Request"
// @Success      200  {object}  map[string]any
// @Router       /documents/{templateId}/{dataId}/email [post]
func (s *Server) EmailDocument(c *gin.Context) {
	var req emailDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		AbortWithError(c, newValidationError("recipient", "required", "recipient is required"))
		return
	}

	style, err := styleFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.renderSvc.Render(c.Request.Context(), renderdomain.Request{
		TemplateID: strings.TrimSpace(c.Param("templateId")),
		RecordID:   strings.TrimSpace(c.Param("dataId")),
		Style:      style,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = result.Filename
	}
	if err := s.mailer.Send(c.Request.Context(), recipient, subject, notify.Attachment{
		Filename:    result.Filename,
		ContentType: result.ContentType,
		Content:     result.Content,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"recipient": recipient,
		"filename":  result.Filename,
		"bytes":     len(result.Content),
	}})
}
