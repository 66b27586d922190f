package routes

import (
	"net/http"
	"time"

	"nursesrent/handlers"
	"nursesrent/metrics"
	"nursesrent/middleware"
	"nursesrent/models"
	"nursesrent/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterWebhookRoutes registers one endpoint per webhook channel. They sit outside the
// rate limiter and take no bearer token; the signature authenticates them.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/property-booking-webhook", hb.Webhook.Handle(models.ChannelPropertyBooking))
	r.POST("/host/subscribe-webhook", hb.Webhook.Handle(models.ChannelHostSubscription))
	r.POST("/subscribe/nurse", hb.Webhook.Handle(models.ChannelNurseSubscription))
}

// RegisterAccountRoutes registers the signup, signin and payment account endpoints of role.
func RegisterAccountRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, role models.Role, prefix string) {
	group := api.Group(prefix)
	{
		group.POST("/signup", hb.Auth.SignUp(role))
		group.POST("/signin", hb.Auth.SignIn(role))

		protected := group.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.AuthService), middleware.RequireRole(role))
		protected.POST("/signout", hb.Auth.SignOut)
		protected.GET("/me", hb.Account.Me)
		protected.POST("/verify-email/request", hb.Verify.RequestCode)
		protected.POST("/verify-email", hb.Verify.Confirm)
		protected.POST("/connect-payments", middleware.RequireVerified(), hb.Account.ConnectPayments)
		protected.POST("/subscription-plan", hb.Checkout.SubscriptionPlan)
		protected.POST("/subscribe/checkout-session", middleware.RequireVerified(), hb.Checkout.SubscriptionSession)

		if role == models.RoleHost {
			protected.DELETE("/subscription", hb.Account.CancelSubscription)
			protected.DELETE("/me", hb.Account.DeleteHost)
			protected.GET("/properties", hb.Property.ListMine)
		}
	}
}

// RegisterPropertyRoutes registers listing endpoints.
func RegisterPropertyRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	properties := api.Group("/properties")
	{
		properties.GET("/:id", hb.Property.Get)
		properties.POST("", middleware.JWTAuthMiddleware(hb.AuthService), middleware.RequireRole(models.RoleHost), hb.Property.Create)
	}
}

// RegisterBookingRoutes registers booking request and booking endpoints.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	nurse := middleware.RequireRole(models.RoleNurse)
	host := middleware.RequireRole(models.RoleHost)

	requests := api.Group("/booking-requests")
	{
		requests.Use(middleware.JWTAuthMiddleware(hb.AuthService))
		requests.GET("", hb.Booking.ListRequests)
		requests.POST("", nurse, hb.Booking.CreateRequest)
		requests.PATCH("/:id", nurse, hb.Booking.UpdateRequest)
		requests.DELETE("/:id", nurse, hb.Booking.DeleteRequest)
		requests.POST("/:id/checkout-session", nurse, middleware.RequireVerified(), hb.Checkout.RequestSession)
		requests.PATCH("/:id/approve", host, hb.Booking.ApproveRequest)
		requests.PATCH("/:id/reject", host, hb.Booking.RejectRequest)
		requests.PATCH("/:id/archive", host, hb.Booking.SetRequestArchived(true))
		requests.PATCH("/:id/restore", host, hb.Booking.SetRequestArchived(false))
	}

	bookings := api.Group("/bookings")
	{
		bookings.Use(middleware.JWTAuthMiddleware(hb.AuthService))
		bookings.GET("", hb.Booking.ListBookings)
		bookings.POST("/checkout-session/:propertyId", nurse, middleware.RequireVerified(), hb.Checkout.PropertySession)
		bookings.PATCH("/:id/check-in", host, hb.Booking.CheckIn)
		bookings.PATCH("/:id/check-out", host, hb.Booking.CheckOut)
		bookings.PATCH("/:id/archive", hb.Booking.SetArchived(true))
		bookings.PATCH("/:id/restore", hb.Booking.SetArchived(false))
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus(), "message": "Hi, I'm NursesRent"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, maxRequestsPerMin int) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, hb)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(maxRequestsPerMin, utils.GetLogger()))
	RegisterAccountRoutes(api, hb, models.RoleHost, "/hosts")
	RegisterAccountRoutes(api, hb, models.RoleNurse, "/nurses")
	RegisterPropertyRoutes(api, hb)
	RegisterBookingRoutes(api, hb)
}
