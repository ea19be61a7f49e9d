package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tandaro-api/internal/domain/user"
	"tandaro-api/internal/handler/api"
	"tandaro-api/internal/handler/middleware"
	"tandaro-api/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth              *api.AuthHandler
	Vehicle           *api.VehicleHandler
	Booking           *api.BookingHandler
	AdminReservation  *api.AdminReservationHandler
	Driver            *api.DriverHandler
	DriverApplication *api.DriverApplicationHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, handlers Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		// Public catalog and calendar; no authentication required.
		vehicles := apiGroup.Group("/vehicles")
		{
			addRoutes(vehicles, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Vehicle.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Vehicle.Get},
				{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Vehicle.Availability},
				{Method: http.MethodGet, Path: "/:id/calendar", Handler: h.Vehicle.Calendar},
			})
		}

		// Public application form for prospective drivers.
		apiGroup.POST("/driver-applications", h.DriverApplication.Apply)

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Booking.Create},
				{Method: http.MethodGet, Path: "", Handler: h.Booking.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Booking.Cancel},
			})
		}

		driver := apiGroup.Group("/driver")
		driver.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(user.RoleDriver))
		{
			addRoutes(driver, []route{
				{Method: http.MethodGet, Path: "/jobs", Handler: h.Driver.ListJobs},
				{Method: http.MethodPost, Path: "/jobs/:id/start", Handler: h.Driver.StartJob},
				{Method: http.MethodPost, Path: "/jobs/:id/complete", Handler: h.Driver.CompleteJob},
				{Method: http.MethodGet, Path: "/ws", Handler: h.Driver.Events},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/reservations", Handler: h.AdminReservation.List},
				{Method: http.MethodGet, Path: "/reservations/:id", Handler: h.AdminReservation.Get},
				{Method: http.MethodPost, Path: "/reservations/:id/confirm", Handler: h.AdminReservation.Confirm},
				{Method: http.MethodPost, Path: "/reservations/:id/start", Handler: h.AdminReservation.Start},
				{Method: http.MethodPost, Path: "/reservations/:id/complete", Handler: h.AdminReservation.Complete},
				{Method: http.MethodPost, Path: "/reservations/:id/cancel", Handler: h.AdminReservation.Cancel},
				{Method: http.MethodPut, Path: "/reservations/:id/amounts", Handler: h.AdminReservation.SetAmounts},
				{Method: http.MethodPost, Path: "/reservations/:id/payments", Handler: h.AdminReservation.RecordPayment},
				{Method: http.MethodPost, Path: "/reservations/:id/mark-paid", Handler: h.AdminReservation.MarkFullyPaid},
				{Method: http.MethodPost, Path: "/reservations/:id/assign", Handler: h.AdminReservation.Assign},
				{Method: http.MethodPost, Path: "/reservations/:id/unassign", Handler: h.AdminReservation.Unassign},
				{Method: http.MethodPost, Path: "/reservations/bulk-assign", Handler: h.AdminReservation.BulkAssign},
				{Method: http.MethodGet, Path: "/drivers", Handler: h.AdminReservation.ListDrivers},

				{Method: http.MethodGet, Path: "/vehicles", Handler: h.Vehicle.AdminList},
				{Method: http.MethodPost, Path: "/vehicles", Handler: h.Vehicle.Create},
				{Method: http.MethodPatch, Path: "/vehicles/:id", Handler: h.Vehicle.Update},
				{Method: http.MethodDelete, Path: "/vehicles/:id", Handler: h.Vehicle.Delete},

				{Method: http.MethodGet, Path: "/driver-applications", Handler: h.DriverApplication.List},
				{Method: http.MethodGet, Path: "/driver-applications/:id", Handler: h.DriverApplication.Get},
				{Method: http.MethodPost, Path: "/driver-applications/:id/approve", Handler: h.DriverApplication.Approve},
				{Method: http.MethodPost, Path: "/driver-applications/:id/reject", Handler: h.DriverApplication.Reject},
				{Method: http.MethodDelete, Path: "/driver-applications/:id", Handler: h.DriverApplication.Delete},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
