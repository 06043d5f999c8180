package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"duitsplit/internal/auth"
	"duitsplit/internal/service"
)

func (s *Server) addExpense(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	var req service.AddExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	expense, err := s.expenses.Add(c.Request.Context(), principal, billID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (s *Server) listExpenses(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	expenses, err := s.expenses.List(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (s *Server) convertExpense(c *gin.Context) {
	expenseID, ok := pathID(c, "expenseId")
	if !ok {
		return
	}
	var req service.ConvertExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	expense, err := s.expenses.Convert(c.Request.Context(), principal, expenseID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (s *Server) deleteExpense(c *gin.Context) {
	expenseID, ok := pathID(c, "expenseId")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	if err := s.expenses.Delete(c.Request.Context(), principal, expenseID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

func (s *Server) equalSplit(c *gin.Context) {
	expenseID, ok := pathID(c, "expenseId")
	if !ok {
		return
	}
	var req service.EqualSplitRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	splits, err := s.splits.EqualSplit(c.Request.Context(), principal, expenseID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"splits": splits})
}

func (s *Server) customSplit(c *gin.Context) {
	expenseID, ok := pathID(c, "expenseId")
	if !ok {
		return
	}
	var req service.CustomSplitRequest
	if !bindJSON(c, &req) {
		return
	}
	principal := auth.PrincipalFromContext(c.Request.Context())
	splits, err := s.splits.CustomSplit(c.Request.Context(), principal, expenseID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"splits": splits})
}

func (s *Server) listSplits(c *gin.Context) {
	expenseID, ok := pathID(c, "expenseId")
	if !ok {
		return
	}
	splits, err := s.splits.Splits(c.Request.Context(), expenseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"splits": splits})
}

func (s *Server) generateSettlements(c *gin.Context) {
	billID, ok := pathID(c, "billId")
	if !ok {
		return
	}
	// Split keys arrive as JSON object keys, so they bind as strings.
	var body struct {
		Splits   map[string]map[string]float64 `json:"splits" binding:"required"`
		Currency string                        `json:"currency"`
	}
	if !bindJSON(c, &body) {
		return
	}
	splits := make(map[int64]map[string]float64, len(body.Splits))
	for key, shares := range body.Splits {
		expenseID, err := strconv.ParseInt(key, 10, 64)
		if err != nil || expenseID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid expense id: " + key})
			return
		}
		splits[expenseID] = shares
	}

	principal := auth.PrincipalFromContext(c.Request.Context())
	resp, err := s.splits.GenerateSettlements(c.Request.Context(), principal, billID, service.GenerateSettlementsRequest{
		Splits:   splits,
		Currency: body.Currency,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
