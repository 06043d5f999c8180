// Package server exposes the application services over a JSON REST
// API.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"duitsplit/internal/auth"
	"duitsplit/internal/middleware"
	"duitsplit/internal/service"
	"duitsplit/internal/storage"
)

// Server holds the wired services behind the HTTP handlers.
type Server struct {
	friends  *service.FriendService
	profiles *service.ProfileService
	bills    *service.BillService
	expenses *service.ExpenseService
	splits   *service.SplitService
	payments *service.PaymentService
	views    *service.ViewService

	jwtManager *auth.JWTManager
	redis      *redis.Client
	rateLimit  int
}

// Option configures optional server features.
type Option func(*Server)

// WithJWT enables Bearer token principal resolution alongside the
// identity header.
func WithJWT(m *auth.JWTManager) Option {
	return func(s *Server) { s.jwtManager = m }
}

// WithRateLimit enables the redis-backed per-principal rate limiter.
func WithRateLimit(client *redis.Client, requestsPerMinute int) Option {
	return func(s *Server) {
		s.redis = client
		s.rateLimit = requestsPerMinute
	}
}

// New builds a Server over the given store.
func New(store storage.Store, opts ...Option) *Server {
	s := &Server{
		friends:  service.NewFriendService(store),
		profiles: service.NewProfileService(store),
		bills:    service.NewBillService(store),
		expenses: service.NewExpenseService(store),
		splits:   service.NewSplitService(store),
		payments: service.NewPaymentService(store),
		views:    service.NewViewService(store),
	}
	for _, opt := range opts {
		opt(s)
	}
	registerValidations()
	return s
}

// registerValidations adds the custom binding validators used by
// request structs.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) < 2 || len(code) > 4 {
			return false
		}
		for _, r := range code {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	})
	v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return auth.ValidatePIN(fl.Field().String()) == nil
	})
}

// Router wires middleware and routes into a gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	router.GET("/api/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.Principal(s.jwtManager))
	if s.redis != nil {
		api.Use(middleware.RateLimit(s.redis, s.rateLimit))
	}

	api.POST("/users", s.createUser)
	api.GET("/users/:userId/exists", s.checkUser)

	api.GET("/friends", s.listFriends)
	api.GET("/friends/search", s.searchUsers)
	api.POST("/friends/requests", s.sendFriendRequest)
	api.PUT("/friends/requests/accept", s.acceptFriendRequest)
	api.GET("/friends/requests/incoming", s.incomingFriendRequests)
	api.GET("/friends/requests/outgoing", s.outgoingFriendRequests)
	api.DELETE("/friends", s.cancelFriendship)

	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.updateProfile)
	api.GET("/profile/pin", s.getPINStatus)
	api.PUT("/profile/pin", s.updatePIN)
	api.POST("/profile/pin/verify", s.verifyPIN)

	api.POST("/bills", s.createBill)
	api.GET("/bills/candidates", s.billCandidates)
	api.GET("/bills/:billId", s.billDetails)
	api.GET("/bills/:billId/totals", s.billWithTotals)
	api.GET("/bills/:billId/unpaid", s.unpaidParticipants)
	api.GET("/bills/:billId/receipt", s.billReceipt)
	api.POST("/bills/:billId/participants", s.assignParticipants)
	api.PUT("/bills/:billId/visibility", s.setBillVisibility)
	api.DELETE("/bills/:billId", s.softDeleteBill)
	api.DELETE("/bills/:billId/permanent", s.hardDeleteBill)

	api.POST("/bills/:billId/expenses", s.addExpense)
	api.GET("/bills/:billId/expenses", s.listExpenses)
	api.PUT("/expenses/:expenseId/convert", s.convertExpense)
	api.DELETE("/expenses/:expenseId", s.deleteExpense)

	api.POST("/expenses/:expenseId/split/equal", s.equalSplit)
	api.POST("/expenses/:expenseId/split/custom", s.customSplit)
	api.GET("/expenses/:expenseId/splits", s.listSplits)
	api.POST("/bills/:billId/settlements", s.generateSettlements)

	api.POST("/bills/:billId/request", s.requestPayment)
	api.POST("/bills/:billId/request-all", s.requestAllPayments)
	api.POST("/bills/:billId/pay", s.payBill)
	api.POST("/bills/:billId/settle", s.settlePayment)
	api.POST("/bills/:billId/settle-all", s.settleAllPayments)
	api.GET("/bills/:billId/approvals", s.pendingApprovals)
	api.POST("/bills/:billId/approve", s.approvePayment)
	api.POST("/bills/:billId/approve-all", s.approveAllPayments)

	api.GET("/views/owed-to-me", s.owedToMe)
	api.GET("/views/owed-by-me", s.owedByMe)
	api.GET("/views/owed-to-me/bills", s.owedToMeByBill)
	api.GET("/views/owed-by-me/bills", s.owedByMeByBill)
	api.GET("/views/completed/paid", s.completedOwedByMe)
	api.GET("/views/completed/collected", s.completedOwedToMe)

	return router
}
