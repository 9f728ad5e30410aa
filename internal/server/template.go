package server

import (
	"net/http"
	"strings"

	templatedomain "github.com/fixwell/docforge/internal/template/domain"
	"github.com/gin-gonic/gin"
)

// @Summary      Create Template
// @Description  Create a new document template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        request body templatedomain.CreateRequest true "Create Template Request"
// @Success      200  {object}  templatedomain.Response
// @Router       /templates [post]
func (s *Server) CreateTemplate(c *gin.Context) {
	var req templatedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.templateSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Templates
// @Description  List document templates
// @Tags         templates
// @Produce      json
// @Param        name           query  string  false  "Name"
// @Param        document_type  query  string  false  "Document Type"
// @Param        is_default     query  bool    false  "Default only"
// @Success      200  {object}  []templatedomain.Response
// @Router       /templates [get]
func (s *Server) ListTemplates(c *gin.Context) {
	var query templatedomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.templateSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Template
// @Description  Get template by ID
// @Tags         templates
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  templatedomain.Response
// @Router       /templates/{id} [get]
func (s *Server) GetTemplate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.templateSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Template
// @Description  Update template details or layout
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Template ID"
// @Param        request  body  templatedomain.UpdateRequest  true  "Update Template Request"
// @Success      200  {object}  templatedomain.Response
// @Router       /templates/{id} [patch]
func (s *Server) UpdateTemplate(c *gin.Context) {
	var req templatedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.templateSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Set Default Template
// @Description  Mark the template as the default for its document type
// @Tags         templates
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  templatedomain.Response
// @Router       /templates/{id}/default [post]
func (s *Server) SetDefaultTemplate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.templateSvc.SetDefault(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
