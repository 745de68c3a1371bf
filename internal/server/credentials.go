package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
)

// credentialsView is what the API returns for the credential store. The
// private API token never leaves the server in full.
type credentialsView struct {
	APIToken    string `json:"apiToken"`
	EntryPoint  string `json:"entryPoint"`
	EntryID     string `json:"entryId"`
	PublicToken string `json:"publicToken"`
	APIBaseURL  string `json:"apiBaseUrl"`
	Configured  bool   `json:"configured"`
}

func viewOf(creds credsdomain.Credentials) credentialsView {
	return credentialsView{
		APIToken:    maskToken(creds.APIToken),
		EntryPoint:  creds.EntryPoint,
		EntryID:     creds.EntryID,
		PublicToken: creds.PublicToken,
		APIBaseURL:  creds.APIBaseURL,
		Configured:  creds.IsConfigured(),
	}
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func (s *Server) getConfig(c *gin.Context) {
	creds, err := s.credentials.Get(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(creds))
}

func (s *Server) updateConfig(c *gin.Context) {
	var patch credsdomain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := s.credentials.Set(c.Request.Context(), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(creds))
}

func (s *Server) clearConfig(c *gin.Context) {
	if err := s.credentials.Clear(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) configStatus(c *gin.Context) {
	configured, err := s.credentials.IsConfigured(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": configured})
}
