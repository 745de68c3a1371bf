package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) dashboardSnapshot(c *gin.Context) {
	snap, err := s.dashboard.Snapshot(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) dashboardTrend(c *gin.Context) {
	points, err := s.dashboard.Trend(c.Request.Context(), c.Query("mode"), c.Query("freq"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
