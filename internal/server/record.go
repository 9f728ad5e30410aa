package server

import (
	"net/http"
	"strings"

	"github.com/fixwell/docforge/internal/render/transform"
	"github.com/gin-gonic/gin"
)

// styleFromQuery reads ?style= and falls back to the customer copy.
func styleFromQuery(c *gin.Context) (transform.Style, error) {
	raw := strings.TrimSpace(c.Query("style"))
	if raw == "" {
		return transform.DefaultStyle, nil
	}
	style := transform.Style(raw)
	if !style.Valid() {
		return "", transform.ErrInvalidStyle
	}
	return style, nil
}

// @Summary      Get Invoice View
// @Description  Invoice record transformed for an audience, as JSON
// @Tags         records
// @Produce      json
// @Param        id     path   string  true   "Invoice ID"
// @Param        style  query  string  false  "Audience style"
// @Success      200  {object}  map[string]any
// @Router       /records/invoices/{id} [get]
func (s *Server) GetInvoiceView(c *gin.Context) {
	style, err := styleFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.recordSvc.GetInvoice(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	view, err := s.transformer.Transform(record, style)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// @Summary      Get Repair Job View
// @Description  Repair job record transformed for an audience, as JSON
// @Tags         records
// @Produce      json
// @Param        id     path   string  true   "Repair Ticket ID"
// @Param        style  query  string  false  "Audience style"
// @Success      200  {object}  map[string]any
// @Router       /records/repair-jobs/{id} [get]
func (s *Server) GetRepairJobView(c *gin.Context) {
	style, err := styleFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.recordSvc.GetRepairJob(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	view, err := s.transformer.Transform(record, style)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}
