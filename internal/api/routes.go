package api

import (
	"net/http"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/payments"
	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	Users       service.UserService
	Bookings    service.BookingService
	Classes     service.ClassService
	PlanRequest service.PlanRequestService
	Ledger      service.LedgerService
	Dashboard   service.DashboardService
	Assistant   service.AssistantService
	Webhooks    *payments.Verifier
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users, svc.Auth, svc.Ledger)
	bookingHandler := NewBookingHandler(svc.Bookings)
	classHandler := NewClassHandler(svc.Classes)
	planHandler := NewPlanRequestHandler(svc.PlanRequest)
	webhookHandler := NewWebhookHandler(svc.Webhooks, svc.Ledger)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, svc.Assistant)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authMiddleware, authHandler.Refresh)
		}

		// Authenticated by signature, not by bearer token
		apiV1.POST("/webhooks/payments", webhookHandler.PaymentWebhook)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/dashboard", dashboardHandler.GetDashboard)
		protected.POST("/assistant/chat", dashboardHandler.Chat)

		// --- Users ---
		usersGroup := protected.Group("/users")
		{
			usersGroup.GET("/me", userHandler.GetMe)
			usersGroup.PATCH("/me", userHandler.UpdateMe)
			usersGroup.POST("/me/password", userHandler.ChangePassword)
			usersGroup.GET("/:id", userHandler.GetUser)
		}

		// --- Trainers ---
		protected.GET("/trainers", userHandler.ListTrainers)
		protected.GET("/trainers/:id/availability", bookingHandler.GetAvailability)

		// --- Private sessions ---
		sessionsGroup := protected.Group("/sessions")
		{
			sessionsGroup.POST("", RoleMiddleware(domain.RoleMember, domain.RoleAdmin), bookingHandler.ReserveSession)
			sessionsGroup.GET("", bookingHandler.ListSessions)
			sessionsGroup.POST("/:id/cancel", bookingHandler.CancelSession)
			sessionsGroup.POST("/:id/complete", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), bookingHandler.CompleteSession)
		}

		// --- Group classes ---
		classesGroup := protected.Group("/classes")
		{
			classesGroup.POST("", RoleMiddleware(domain.RoleAdmin), classHandler.CreateClass)
			classesGroup.GET("", classHandler.ListClasses)
			classesGroup.GET("/:id", classHandler.GetClass)
			classesGroup.POST("/:id/enroll", RoleMiddleware(domain.RoleMember, domain.RoleAdmin), classHandler.Enroll)
			classesGroup.POST("/:id/attendance", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), classHandler.MarkAttendance)
		}

		// --- Plan requests ---
		plansGroup := protected.Group("/plan-requests")
		{
			plansGroup.POST("", RoleMiddleware(domain.RoleMember, domain.RoleAdmin), planHandler.CreatePlanRequest)
			plansGroup.GET("", planHandler.ListPlanRequests)
			plansGroup.GET("/:id", planHandler.GetPlanRequest)
			plansGroup.PATCH("/:id", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), planHandler.UpdatePlanRequest)
			plansGroup.POST("/:id/send", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), planHandler.SendPlan)
			plansGroup.POST("/:id/attachment", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), planHandler.CreateAttachmentURL)
		}

		// --- Admin ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.POST("/trainers", userHandler.CreateTrainer)
			adminGroup.DELETE("/users/:id", userHandler.DeleteUser)
			adminGroup.POST("/members/:id/sessions", userHandler.GrantSessions)
		}
	}
}
