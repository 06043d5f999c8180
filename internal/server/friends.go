package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"duitsplit/internal/auth"
)

func (s *Server) searchUsers(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	results, err := s.friends.Search(c.Request.Context(), principal, c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}

func (s *Server) sendFriendRequest(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	f, err := s.friends.Request(c.Request.Context(), principal, req.ReceiverID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) acceptFriendRequest(c *gin.Context) {
	var req struct {
		RequesterID string `json:"requester_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	f, err := s.friends.Accept(c.Request.Context(), principal, req.RequesterID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) cancelFriendship(c *gin.Context) {
	var req struct {
		RequesterID string `json:"requester_id" binding:"required"`
		ReceiverID  string `json:"receiver_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.friends.Cancel(c.Request.Context(), principal, req.RequesterID, req.ReceiverID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friendship removed"})
}

func (s *Server) incomingFriendRequests(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	reqs, err := s.friends.IncomingRequests(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (s *Server) outgoingFriendRequests(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	reqs, err := s.friends.OutgoingRequests(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (s *Server) listFriends(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	friends, err := s.friends.Friends(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
