package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartRun executes a full aggregation run and blocks until it
// finishes. Concurrent requests each get their own run; nothing
// serializes them.
func (s *Server) StartRun(c *gin.Context) {
	result, err := s.pipeline.Run(c.Request.Context())
	if err != nil {
		s.log.Error("aggregation run failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
