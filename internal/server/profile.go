package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"duitsplit/internal/auth"
	"duitsplit/internal/service"
)

func (s *Server) createUser(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, created, err := s.profiles.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, user)
}

func (s *Server) checkUser(c *gin.Context) {
	exists, err := s.profiles.CheckUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (s *Server) getProfile(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	user, err := s.profiles.Get(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	user, err := s.profiles.Update(c.Request.Context(), principal, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getPINStatus(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	set, masked, err := s.profiles.PINStatus(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pin_set": set, "pin": masked})
}

func (s *Server) updatePIN(c *gin.Context) {
	var req service.UpdatePINRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.profiles.UpdatePIN(c.Request.Context(), principal, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "PIN updated"})
}

func (s *Server) verifyPIN(c *gin.Context) {
	var req struct {
		PIN string `json:"pin" binding:"required,pin"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.profiles.VerifyPIN(c.Request.Context(), principal, req.PIN); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "PIN verified"})
}
