// internal/router/router.go
package router

import (
	"net/http"
	"strconv"
	"time"

	"cogscreen/internal/analysis"
	"cogscreen/internal/config"
	"cogscreen/internal/handlers"
	"cogscreen/internal/live"
	"cogscreen/internal/models"
	"cogscreen/internal/report"
	"cogscreen/internal/repository"
	"cogscreen/internal/telemetry"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Log      *zap.Logger
	Config   *config.Config
	Store    *repository.Store
	Hub      *live.Hub
	Metrics  *telemetry.Metrics
	Catalog  *models.Catalog
	Reports  *report.Renderer
	Analyzer *analysis.Analyzer
	// AssetsDir is the resolved directory served under /assets. Empty
	// disables static files.
	AssetsDir string
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	retry := int(time.Until(info.ResetTime).Seconds()) + 1
	c.Header("Retry-After", strconv.Itoa(retry))
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

func Setup(d Deps) *gin.Engine {
	log := d.Log
	conf := d.Config

	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(d.Metrics.Middleware())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	// Operational endpoints carry no session.
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "subjects": d.Store.Len(), "clients": d.Hub.Clients()})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	if d.AssetsDir != "" {
		router.Static("/assets", d.AssetsDir)
	}

	store := cookie.NewStore([]byte(conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(conf.Sessions.MaxAge.Seconds()),
	})

	app := router.Group("/")
	app.Use(sessions.Sessions(conf.Sessions.CookieName, store))

	// --- Now that sessions are initialized, other middleware can use them ---
	app.Use(NonceMiddleware())
	app.Use(CSRFProtection())
	app.Use(ContentSecurityPolicy())
	app.Use(SubjectMiddleware(log, d.Store))

	// Handlers and routes
	pageHandler := handlers.NewPageHandler(log, d.Catalog)
	resultsHandler := handlers.NewResultsHandler(log, d.Reports)
	sessionHandler := handlers.NewSessionHandler()
	attentionHandler := handlers.NewAttentionHandler(log, d.Hub)
	memoryHandler := handlers.NewMemoryHandler(log, d.Metrics)
	problemHandler := handlers.NewProblemHandler(log, d.Metrics)
	reportHandler := handlers.NewReportHandler(log, d.Reports)
	analysisHandler := handlers.NewAnalysisHandler(log, d.Analyzer, d.Reports, d.Metrics, func() int64 {
		if c := config.Get(); c != nil {
			return c.Analysis.MaxSampleBytes
		}
		return conf.Analysis.MaxSampleBytes
	})

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  conf.RateLimit.Rate,
		Limit: conf.RateLimit.Limit,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	app.GET("/", pageHandler.Index)
	app.GET("/tests/:id", pageHandler.Test)
	app.GET("/results", resultsHandler.ShowResults)

	api := app.Group("/api")
	{
		api.GET("/session", sessionHandler.Show)
		api.GET("/reports/:test", reportHandler.Show)

		attentionRoutes := api.Group("/attention")
		{
			attentionRoutes.GET("", attentionHandler.State)
			attentionRoutes.GET("/ws", attentionHandler.Live)
			attentionRoutes.POST("/start", attentionHandler.Start)
			attentionRoutes.POST("/click", attentionHandler.Click)
			attentionRoutes.POST("/stop", attentionHandler.Stop)
		}

		memoryRoutes := api.Group("/memory")
		{
			memoryRoutes.GET("", memoryHandler.State)
			memoryRoutes.POST("/start", memoryHandler.Start)
			memoryRoutes.POST("/select", memoryHandler.Select)
			memoryRoutes.POST("/stop", memoryHandler.Stop)
		}

		problemRoutes := api.Group("/problem")
		{
			problemRoutes.GET("", problemHandler.State)
			problemRoutes.POST("/start", problemHandler.Start)
			problemRoutes.POST("/answer", problemHandler.Answer)
			problemRoutes.POST("/stop", problemHandler.Stop)
		}

		api.POST("/handwriting/analyze", limiter, analysisHandler.Handwriting)
		api.POST("/speech/analyze", limiter, analysisHandler.Speech)
	}

	return router
}
