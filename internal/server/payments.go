package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"duitsplit/internal/auth"
	"duitsplit/internal/service"
)

func (s *Server) requestPayment(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	var req service.RequestPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.payments.Request(c.Request.Context(), principal, billID, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment request sent"})
}

func (s *Server) requestAllPayments(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	var req service.RequestAllRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.payments.RequestAll(c.Request.Context(), principal, billID, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment requests sent"})
}

func (s *Server) payBill(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	resp, err := s.payments.Pay(c.Request.Context(), principal, billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) settlePayment(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	var req struct {
		PayerID string `json:"payer_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.payments.Settle(c.Request.Context(), principal, billID, req.PayerID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment settled"})
}

func (s *Server) settleAllPayments(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.payments.SettleAll(c.Request.Context(), principal, billID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All payments settled"})
}

func (s *Server) pendingApprovals(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	pending, err := s.payments.PendingApprovals(c.Request.Context(), principal, billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (s *Server) approvePayment(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	var req struct {
		PayerID string `json:"payer_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	settlement, err := s.payments.Approve(c.Request.Context(), principal, billID, req.PayerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

func (s *Server) approveAllPayments(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	n, err := s.payments.ApproveAll(c.Request.Context(), principal, billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": n})
}
