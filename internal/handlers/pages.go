package handlers

import (
	"net/http"

	"cogscreen/internal/models"
	"cogscreen/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageHandler serves the catalog pages.
type PageHandler struct {
	log     *zap.Logger
	catalog *models.Catalog
}

func NewPageHandler(log *zap.Logger, catalog *models.Catalog) *PageHandler {
	return &PageHandler{log: log, catalog: catalog}
}

func (h *PageHandler) Index(c *gin.Context) {
	categories, groups := h.catalog.ByCategory()
	render(c, "Assessments", views.Index(categories, groups))
}

func (h *PageHandler) Test(c *gin.Context) {
	a, ok := h.catalog.Find(c.Param("id"))
	if !ok {
		c.String(http.StatusNotFound, "Unknown assessment")
		return
	}
	render(c, a.Title, views.TestPage(a))
}

// render wraps component in the layout with the request's CSRF token and CSP
// nonce.
func render(c *gin.Context, title string, component templ.Component) {
	csrfToken := c.GetString(CSRFTokenContextKey)
	cspNonce := c.GetString(CSPNonceContextKey)

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := views.Layout(title, csrfToken, cspNonce).Render(
		templ.WithChildren(c.Request.Context(), component),
		c.Writer,
	)
	if err != nil {
		_ = c.Error(err)
	}
}
