package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/alqalam-institute/registry-api/internal/handler"
	"github.com/alqalam-institute/registry-api/internal/middleware"
	"github.com/alqalam-institute/registry-api/internal/service"
	"github.com/alqalam-institute/registry-api/pkg/config"
	"github.com/alqalam-institute/registry-api/pkg/logger"
	corsmiddleware "github.com/alqalam-institute/registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/alqalam-institute/registry-api/pkg/middleware/requestid"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Department   *handler.DepartmentHandler
	Student      *handler.StudentHandler
	Subject      *handler.SubjectHandler
	Term         *handler.TermHandler
	Registration *handler.RegistrationHandler
	Offering     *handler.OfferingHandler
	Assignment   *handler.AssignmentHandler
	Period       *handler.PeriodHandler
	Timetable    *handler.TimetableHandler
	Bootstrap    *handler.BootstrapHandler
	Portal       *handler.PortalHandler
}

// Deps carries the shared infrastructure the router wires in: probes for
// readiness, the metrics registry and the portal session verifier.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Cache   *redis.Client
	Metrics *service.MetricsService
	Portal  *service.PortalService
}

// Setup builds the gin engine with all routes and middleware attached.
func Setup(deps Deps, handlers *Handlers) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := deps.DB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		status := gin.H{"status": "ready"}
		if deps.Cache != nil {
			if err := deps.Cache.Ping(c.Request.Context()).Err(); err != nil {
				status["cache"] = "unavailable"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	public := r.Group("/public")
	{
		public.POST("/student-dashboard", handlers.Portal.Login)
		public.GET("/schedule", handlers.Portal.Schedule)

		session := public.Group("")
		session.Use(middleware.PortalSession(deps.Portal))
		session.GET("/me", handlers.Portal.Dashboard)
	}

	admin := r.Group(deps.Config.APIPrefix)
	admin.Use(middleware.BasicAuth(deps.Config.AdminAuth))
	{
		admin.GET("/bootstrap", handlers.Bootstrap.Get)

		admin.GET("/departments", handlers.Department.List)
		admin.POST("/departments", handlers.Department.Create)
		admin.GET("/departments/:id", handlers.Department.Get)
		admin.PUT("/departments/:id", handlers.Department.Update)
		admin.DELETE("/departments/:id", handlers.Department.Delete)

		admin.GET("/students", handlers.Student.List)
		admin.POST("/students", handlers.Student.Create)
		admin.GET("/students/:id", handlers.Student.Get)
		admin.PUT("/students/:id", handlers.Student.Update)
		admin.DELETE("/students/:id", handlers.Student.Delete)

		admin.GET("/subjects", handlers.Subject.List)
		admin.POST("/subjects", handlers.Subject.Create)
		admin.POST("/subjects/bulk", handlers.Subject.Bulk)
		admin.GET("/subjects/:id", handlers.Subject.Get)
		admin.PUT("/subjects/:id", handlers.Subject.Update)
		admin.DELETE("/subjects/:id", handlers.Subject.Delete)

		admin.GET("/terms", handlers.Term.List)
		admin.POST("/terms", handlers.Term.Create)
		admin.GET("/terms/:id", handlers.Term.Get)
		admin.PUT("/terms/:id", handlers.Term.Update)
		admin.DELETE("/terms/:id", handlers.Term.Delete)

		admin.GET("/registrations", handlers.Registration.List)
		admin.POST("/registrations/register", handlers.Registration.Register)
		admin.POST("/registrations/unregister", handlers.Registration.Unregister)
		admin.GET("/registrations/export", handlers.Registration.Export)

		admin.GET("/terms/:id/subjects", handlers.Offering.List)
		admin.POST("/terms/:id/subjects/assign", handlers.Offering.Assign)
		admin.POST("/terms/:id/subjects/unassign", handlers.Offering.Unassign)

		admin.GET("/terms/:id/students/:studentId/subjects", handlers.Assignment.List)
		admin.POST("/terms/:id/students/:studentId/subjects/assign", handlers.Assignment.Assign)
		admin.POST("/terms/:id/students/:studentId/subjects/unassign", handlers.Assignment.Unassign)
		admin.PUT("/terms/:id/students/:studentId/subjects/:subjectId/grade", handlers.Assignment.SetGrade)

		admin.GET("/periods", handlers.Period.List)
		admin.PUT("/periods/:id", handlers.Period.Update)

		admin.GET("/terms/:id/timetable", handlers.Timetable.List)
		admin.POST("/terms/:id/timetable", handlers.Timetable.Create)
		admin.GET("/terms/:id/timetable/export", handlers.Timetable.Export)
		admin.PUT("/timetable/:entryId", handlers.Timetable.Update)
		admin.DELETE("/timetable/:entryId", handlers.Timetable.Delete)
	}

	return r
}
