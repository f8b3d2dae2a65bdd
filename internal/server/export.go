package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneeighty/connect/internal/export"
)

// ExportCSV streams the current organization table as a CSV download.
func (s *Server) ExportCSV(c *gin.Context) {
	orgs, err := s.organizationSvc.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(s.clk.Now())+`"`)
	c.Status(http.StatusOK)

	if err := export.WriteCSV(c.Writer, orgs); err != nil {
		s.log.Warn("csv download aborted", zap.Error(err))
	}
}
