package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/hostel-api/api/swagger"
	"github.com/noah-isme/hostel-api/internal/handler"
	"github.com/noah-isme/hostel-api/internal/middleware"
	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/service"
	"github.com/noah-isme/hostel-api/pkg/config"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hostel-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hostel-api/pkg/middleware/requestid"
	"github.com/noah-isme/hostel-api/pkg/response"
)

type routeHandlers struct {
	auth         *handler.AuthHandler
	users        *handler.UserHandler
	rooms        *handler.RoomHandler
	assignments  *handler.AssignmentHandler
	registration *handler.RegistrationHandler
	requests     *handler.RequestHandler
	announcement *handler.AnnouncementHandler
	dashboard    *handler.DashboardHandler
	reports      *handler.ReportHandler
	metrics      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, tokens middleware.TokenValidator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(tokens)
	staff := middleware.RequireStaff()
	admin := middleware.RequireRoles(models.RoleAdmin)
	student := middleware.RequireRoles(models.RoleStudent)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.auth.Signup)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", auth, h.auth.Logout)
	authGroup.POST("/change-password", auth, h.auth.ChangePassword)
	authGroup.GET("/me", auth, h.auth.Me)

	// Signed tokens authorise these downloads so they can be linked directly.
	api.GET("/registrations/:id/photo", h.registration.Photo)
	if h.reports != nil {
		api.GET("/export/:token", h.reports.Download)
	}

	secured := api.Group("")
	secured.Use(auth)

	secured.GET("/metrics/summary", admin, h.metrics.Summary)
	secured.GET("/dashboard/summary", staff, h.dashboard.Summary)

	users := secured.Group("/users")
	users.GET("", admin, h.users.List)
	users.GET("/:id", middleware.RequireSelfOr(models.RoleAdmin), h.users.Get)
	users.POST("", admin, h.users.Create)
	users.PUT("/:id", admin, h.users.Update)
	users.DELETE("/:id", admin, h.users.Delete)

	rooms := secured.Group("/rooms", staff)
	rooms.GET("", h.rooms.List)
	rooms.POST("", h.rooms.Create)
	rooms.GET("/:id", h.rooms.Get)
	rooms.PUT("/:id", h.rooms.Update)
	rooms.GET("/:id/occupancy", h.rooms.Occupancy)
	rooms.GET("/:id/furniture", h.rooms.ListFurniture)
	rooms.POST("/:id/furniture", h.rooms.CreateFurniture)
	rooms.POST("/:id/assignments", h.assignments.Assign)
	rooms.GET("/:id/assignments", h.assignments.RoomHistory)
	rooms.POST("/:id/vacate", h.assignments.Vacate)

	secured.PUT("/furniture/:id", staff, h.rooms.UpdateFurniture)
	secured.DELETE("/furniture/:id", staff, h.rooms.DeleteFurniture)

	secured.POST("/assignments/conflicts", staff, h.assignments.Conflicts)
	secured.DELETE("/assignments/:id", staff, h.assignments.End)

	selfOrStaff := middleware.RequireSelfOr(models.RoleStaff, models.RoleAdmin)
	secured.GET("/students/:id/assignment", selfOrStaff, h.assignments.StudentCurrent)
	secured.GET("/students/:id/assignments", selfOrStaff, h.assignments.StudentHistory)

	registrations := secured.Group("/registrations")
	registrations.POST("", student, h.registration.Submit)
	registrations.GET("/me", student, h.registration.Mine)
	registrations.PUT("/me", student, h.registration.UpdateMine)
	registrations.POST("/me/photo", student, h.registration.UploadPhoto)
	registrations.GET("", staff, h.registration.List)
	registrations.GET("/:id", staff, h.registration.Get)
	registrations.POST("/:id/review", staff, h.registration.Review)
	registrations.POST("/:id/graduate", staff, h.registration.Graduate)

	requests := secured.Group("/requests")
	requests.POST("", student, h.requests.Create)
	requests.GET("", h.requests.List)
	requests.GET("/:id", h.requests.Get)
	requests.PATCH("/:id/status", staff, h.requests.UpdateStatus)

	announcements := secured.Group("/announcements")
	announcements.GET("", h.announcement.List)
	announcements.POST("", staff, h.announcement.Create)
	announcements.PUT("/:id", staff, h.announcement.Update)
	announcements.DELETE("/:id", staff, h.announcement.Delete)

	if h.reports != nil {
		reports := secured.Group("/reports", staff)
		reports.POST("", h.reports.Create)
		reports.GET("", h.reports.List)
		reports.GET("/:id", h.reports.Status)
	} else {
		secured.Any("/reports", func(c *gin.Context) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "reports are disabled"))
		})
	}

	return r
}
