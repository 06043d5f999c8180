package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"duitsplit/internal/auth"
	"duitsplit/internal/service"
)

func (s *Server) createBill(c *gin.Context) {
	var req service.CreateBillRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	bill, err := s.bills.Create(c.Request.Context(), principal, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func (s *Server) billCandidates(c *gin.Context) {
	principal := auth.PrincipalFromContext(c.Request.Context())
	candidates, err := s.bills.Candidates(c.Request.Context(), principal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

func (s *Server) billDetails(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	details, err := s.bills.Details(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (s *Server) billWithTotals(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	view, err := s.bills.WithTotals(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) unpaidParticipants(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	unpaid, err := s.bills.UnpaidParticipants(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unpaid": unpaid})
}

func (s *Server) billReceipt(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	receipt, err := s.bills.Receipt(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (s *Server) assignParticipants(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	var req struct {
		ParticipantIDs []string `json:"participants" binding:"required,min=1"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.bills.AssignParticipants(c.Request.Context(), principal, billID, req.ParticipantIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participants added"})
}

func (s *Server) setBillVisibility(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	var req struct {
		Visible *bool `json:"is_visible" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.bills.SetVisibility(c.Request.Context(), principal, billID, *req.Visible); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Visibility updated"})
}

func (s *Server) softDeleteBill(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.bills.SoftDelete(c.Request.Context(), principal, billID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted"})
}

func (s *Server) hardDeleteBill(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.bills.HardDelete(c.Request.Context(), principal, billID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bill permanently deleted"})
}
