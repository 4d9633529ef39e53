// Package server exposes the scan engine over HTTP. It is a thin layer:
// every operation maps onto one scanner, seeder, or store call.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ndmitriev/docsweep/internal/rules"
	"github.com/ndmitriev/docsweep/internal/scanner"
	"github.com/ndmitriev/docsweep/internal/seed"
	"github.com/ndmitriev/docsweep/internal/storage"
)

// Options configures the server.
type Options struct {
	// Addr is the listen address for Run.
	Addr string

	// ScanInterval enables the periodic scan scheduler when positive.
	ScanInterval time.Duration

	// SeedCount and SeedDefectRate are the defaults for the seed endpoint.
	SeedCount      int
	SeedDefectRate float64
}

// Server wires the scanner, rule registry, and store into a gin router.
type Server struct {
	store    storage.Store
	registry *rules.Registry
	scanner  *scanner.Scanner
	opts     Options
	log      *logrus.Logger
	router   *gin.Engine
	cron     *cron.Cron
}

// New creates a Server. The logger must not be nil.
func New(store storage.Store, registry *rules.Registry, sc *scanner.Scanner, log *logrus.Logger, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:    store,
		registry: registry,
		scanner:  sc,
		opts:     opts,
		log:      log,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/scan/:entity", s.handleScan)
		v1.GET("/status/:entity", s.handleStatus)
		v1.GET("/reports", s.handleReports)
		v1.DELETE("/reports", s.handleCleanup)
		v1.POST("/seed/:entity", s.handleSeed)
		v1.GET("/rules", s.handleRules)
	}

	s.router = router
	return s
}

// Router exposes the underlying handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the scheduler (when configured) and serves HTTP until the
// context is canceled.
func (s *Server) Run(ctx context.Context) error {
	if s.opts.ScanInterval > 0 {
		s.startScheduler()
		defer s.cron.Stop()
	}

	srv := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.WithField("addr", s.opts.Addr).Info("http server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// startScheduler registers a periodic scan over every configured entity
// type. An overlap with a running scan surfaces as ErrScanInProgress and is
// logged, not retried; the next tick covers it.
func (s *Server) startScheduler() {
	s.cron = cron.New()
	interval := s.opts.ScanInterval

	s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		for _, entityType := range s.registry.EntityTypes() {
			report, err := s.scanner.Scan(context.Background(), entityType)
			if err != nil {
				if errors.Is(err, scanner.ErrScanInProgress) {
					s.log.WithField("entity_type", entityType).Warn("scheduled scan skipped: scan in progress")
					continue
				}
				s.log.WithField("entity_type", entityType).WithError(err).Error("scheduled scan failed")
				continue
			}
			s.log.WithFields(logrus.Fields{
				"entity_type": entityType,
				"documents":   report.TotalDocuments,
				"found":       report.InconsistenciesFound,
				"repaired":    report.RepairsApplied,
				"deleted":     report.DocumentsDeleted,
			}).Info("scheduled scan completed")
		}
	}))

	s.cron.Start()
	s.log.WithField("interval", interval.String()).Info("scan scheduler started")
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request handled")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleScan(c *gin.Context) {
	entityType := c.Param("entity")

	report, err := s.scanner.Scan(c.Request.Context(), entityType)
	if err != nil {
		if errors.Is(err, scanner.ErrScanInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) handleStatus(c *gin.Context) {
	entityType := c.Param("entity")

	status, err := s.store.GetStatus(c.Request.Context(), entityType)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no status recorded for entity type " + entityType})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) handleReports(c *gin.Context) {
	filter := storage.ReportFilter{
		EntityType: c.Query("entity"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	reports, err := s.store.QueryReports(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

func (s *Server) handleCleanup(c *gin.Context) {
	raw := c.DefaultQuery("days", "30")
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := s.store.DeleteReportsOlderThan(c.Request.Context(), cutoff, c.Query("entity"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (s *Server) handleSeed(c *gin.Context) {
	entityType := c.Param("entity")

	count := s.opts.SeedCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a non-negative integer"})
			return
		}
		count = n
	}

	defectRate := s.opts.SeedDefectRate
	if raw := c.Query("defect_rate"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "defect_rate must be between 0 and 1"})
			return
		}
		defectRate = f
	}

	gen := seed.New(time.Now().UnixNano())
	written, err := gen.Populate(c.Request.Context(), s.store, entityType, count, defectRate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entity_type": entityType, "seeded": written})
}

func (s *Server) handleRules(c *gin.Context) {
	entityTypes := s.registry.EntityTypes()
	sets := make(map[string]*rules.RuleSet, len(entityTypes))
	for _, name := range entityTypes {
		sets[name] = s.registry.Get(name)
	}
	c.JSON(http.StatusOK, gin.H{"entity_types": entityTypes, "rules": sets})
}
