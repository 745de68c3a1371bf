package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listActivities(c *gin.Context) {
	events, err := s.activities.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) clearActivities(c *gin.Context) {
	if err := s.activities.Clear(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
