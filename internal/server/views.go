package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"duitsplit/internal/auth"
)

func (s *Server) owedToMe(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	balances, err := s.views.OwedToMe(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": balances})
}

func (s *Server) owedByMe(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	balances, err := s.views.OwedByMe(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": balances})
}

func (s *Server) owedToMeByBill(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	groups, err := s.views.OwedToMeByBill(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": groups})
}

func (s *Server) owedByMeByBill(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	groups, err := s.views.OwedByMeByBill(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": groups})
}

func (s *Server) completedOwedByMe(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	groups, err := s.views.CompletedOwedByMe(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": groups})
}

func (s *Server) completedOwedToMe(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	groups, err := s.views.CompletedOwedToMe(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": groups})
}
