package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/glasspane/preview/internal/api/http"
	"github.com/glasspane/preview/internal/api/middleware"
	"github.com/glasspane/preview/internal/bridge"
	"github.com/glasspane/preview/internal/config"
	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/monitoring"
	"github.com/glasspane/preview/internal/overlay"
	"github.com/glasspane/preview/internal/preview"
	"github.com/glasspane/preview/internal/vfs"
	"github.com/glasspane/preview/internal/ws"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	table    *vfs.Table
	registry *preview.HandleRegistry
	engine   *preview.Engine
	ws       *ws.Handler
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, log *logging.Logger) (*Server, error) {
	table := vfs.NewTable()
	registry := preview.NewHandleRegistry()

	// each server carries its own metric registry so restarts and tests never
	// collide on registration
	promReg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(promReg)

	overlaySync := overlay.NewSync(table, log)
	selector := overlay.NewSelector()

	s := &Server{
		table:    table,
		registry: registry,
		metrics:  metrics,
		log:      log,
	}

	var passthrough bridge.Passthrough
	if cfg.Bridge.AllowPassthrough {
		passthrough = bridge.NewRestyPassthrough()
	}

	s.engine = preview.NewEngine(table, registry, log, preview.Options{
		Root:        cfg.Preview.Root,
		Debounce:    cfg.Preview.Debounce,
		BridgeRPS:   cfg.Bridge.RequestsPerSecond,
		BridgeBurst: cfg.Bridge.Burst,
		Passthrough: passthrough,
		OnInstall: func(gen *preview.Generation) {
			res := gen.Result
			metrics.RecordGeneration(res.Rewrites, res.Placeholder, res.Elapsed)
			metrics.SetHandlesLive(registry.LiveCount())
			if s.ws != nil {
				s.ws.BroadcastGeneration(gen)
			}
		},
		BridgeObserver: metrics.RecordBridgeRequest,
	})

	s.ws = ws.NewHandler(table, s.engine, overlaySync, selector, metrics, log)
	selector.SetListener(s.ws.BroadcastSelection)

	handlers := apihttp.NewHandlers(table, registry, s.engine, overlaySync, selector, metrics, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	// Project files
	router.GET("/files", handlers.ListFiles)
	router.POST("/files", handlers.MergeFiles)
	router.GET("/files/*path", handlers.ReadFile)
	router.PUT("/files/*path", handlers.WriteFile)
	router.DELETE("/files/*path", handlers.DeleteFile)
	router.POST("/import",
		middleware.GlobalRateLimit(middleware.DefaultImportRateLimitConfig()),
		handlers.ImportArchive)

	// Preview
	router.GET("/preview", handlers.GetPreview)
	router.GET("/preview/document", handlers.GetPreviewDocument)
	router.POST("/preview/root", handlers.SetPreviewRoot)
	router.GET(preview.HandleURLPrefix+":id", handlers.GetAsset)

	// Overlay
	router.POST("/overlay/fragments", handlers.InsertFragment)
	router.POST("/overlay/regions/:id/commit", handlers.CommitEdit)
	router.POST("/overlay/regions/:id/format", handlers.FormatRegion)
	router.GET("/overlay/selection", handlers.GetSelection)
	router.POST("/overlay/selection", handlers.SetSelection)
	router.DELETE("/overlay/selection", handlers.ClearSelection)

	// WebSocket
	router.GET("/stream", s.ws.HandleConnection)

	s.router = router

	seedStarter(table, log)
	s.engine.Start()

	return s, nil
}

// Run starts the server
func (s *Server) Run(addr string) error {
	s.log.Info("starting preview engine", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close tears down the live generation, releases its handles and stops the
// metric tickers.
func (s *Server) Close() error {
	s.engine.Close()
	s.metrics.Close()
	return nil
}
