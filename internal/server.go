package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/routinestats/internal/analytics"
	analyticsmcp "github.com/2beens/routinestats/internal/analytics/mcp"
	"github.com/2beens/routinestats/internal/auth"
	"github.com/2beens/routinestats/internal/config"
	"github.com/2beens/routinestats/internal/db"
	"github.com/2beens/routinestats/internal/eventlog"
	"github.com/2beens/routinestats/internal/kafkabus"
	"github.com/2beens/routinestats/internal/middleware"
	"github.com/2beens/routinestats/internal/reminders"
	"github.com/2beens/routinestats/internal/telemetry/metrics"
	"github.com/2beens/routinestats/internal/telemetry/tracing"
	"github.com/2beens/routinestats/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	rateLimiter  middleware.RequestRateLimiter
	tokenChecker *auth.TokenChecker

	eventService     *eventlog.Service
	snapshotLoader   *analytics.SnapshotLoader
	analyticsService *analytics.Service
	planner          *reminders.Planner

	// kafka, nil when disabled
	kafkaBus        *kafkabus.Bus
	consumers       []*kafkabus.Consumer
	kafkaPublishers []io.Closer

	workersCancel context.CancelFunc
	workersWg     sync.WaitGroup

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	APITokenHash            string
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, dbPool); err != nil {
			return nil, fmt.Errorf("migrate db: %w", err)
		}
		log.Debugln("db schema migrated")
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("routinestats", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "routinestats", rdb)
	if err != nil {
		return nil, err
	}

	eventService := eventlog.NewService(eventlog.NewRepo(dbPool), metricsManager)

	s := &Server{
		config:       cfg,
		dbPool:       dbPool,
		redisClient:  rdb,
		rateLimiter:  redis_rate.NewLimiter(rdb),
		tokenChecker: auth.NewTokenChecker(params.APITokenHash, auth.DefaultMemoTTL),
		versionInfo:  params.VersionInfo,
		eventService: eventService,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	var plans, alerts *kafkabus.Publisher
	if cfg.KafkaEnabled {
		s.kafkaBus = kafkabus.NewBus(cfg.KafkaBrokers, cfg.KafkaGroupID)
		plans = kafkabus.NewPublisher(cfg.KafkaRemindersTopic, s.kafkaBus.Writer(cfg.KafkaRemindersTopic))
		alerts = kafkabus.NewPublisher(cfg.KafkaAlertsTopic, s.kafkaBus.Writer(cfg.KafkaAlertsTopic))
		s.kafkaPublishers = append(s.kafkaPublishers, plans, alerts)
		s.consumers = []*kafkabus.Consumer{
			kafkabus.NewConsumer(
				cfg.KafkaEventsTopic,
				kafkabus.RecordKindEvent,
				s.kafkaBus.Reader(cfg.KafkaEventsTopic),
				eventService,
				rdb,
				metricsManager,
			),
			kafkabus.NewConsumer(
				cfg.KafkaFeedbackTopic,
				kafkabus.RecordKindFeedback,
				s.kafkaBus.Reader(cfg.KafkaFeedbackTopic),
				eventService,
				rdb,
				metricsManager,
			),
		}
		log.Debugf("kafka enabled, brokers: %v", cfg.KafkaBrokers)
	}

	s.wireAnalytics(plans, alerts)

	return s, nil
}

// wireAnalytics connects the snapshot cache, the analytics service and the
// reminder planner to the event log.
func (s *Server) wireAnalytics(plans, alerts *kafkabus.Publisher) {
	cfg := s.config

	s.snapshotLoader = analytics.NewSnapshotLoader(s.eventService, cfg.SnapshotCacheTTL())
	s.eventService.OnChange(s.snapshotLoader.Invalidate)

	s.analyticsService = analytics.NewService(
		s.snapshotLoader,
		analytics.Defaults{
			Days:                    cfg.DefaultWindowDays,
			BaselineDays:            cfg.BaselineDays,
			OutlierThresholdMinutes: cfg.OutlierThresholdMinutes,
			FeedbackDays:            cfg.FeedbackWindowDays,
			AdjustmentDays:          cfg.AdjustmentWindowDays,
		},
		cfg.Location(),
	)

	leadTime := time.Duration(cfg.ReminderLeadMinutes) * time.Minute
	// a nil *Publisher must not end up in the planner as a non-nil interface
	if plans != nil && alerts != nil {
		s.planner = reminders.NewPlanner(s.analyticsService, plans, alerts, leadTime, s.metricsManager)
	} else {
		s.planner = reminders.NewPlanner(s.analyticsService, nil, nil, leadTime, s.metricsManager)
	}
	s.eventService.OnEventLogged(s.planner.OnEventLogged)
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", s.handleRoot).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS").Name("health")
	r.HandleFunc("/version", s.handleVersion).Methods("GET", "OPTIONS").Name("version")

	eventlogHandler := eventlog.NewHandler(s.eventService)
	eventlogHandler.SetupRoutes(r, s.rateLimiter, s.metricsManager, s.config.WriteRateLimitPerMin)

	analyticsHandler := analytics.NewHandler(s.analyticsService)
	analyticsHandler.SetupRoutes(r)

	mcpServer := analyticsmcp.NewServer(s.analyticsService)
	r.PathPrefix("/mcp").Handler(analyticsmcp.NewHTTPHandler(mcpServer)).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.tokenChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "routinestats")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.dbPool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.dbPool.Ping(ctx); err != nil {
			log.Errorf("health check, ping db: %s", err)
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	pkg.WriteTextResponseOK(w, "ok")
}

// startWorkers runs the background loops: retention cleanup, reminder planning
// and the kafka consumers.
func (s *Server) startWorkers(ctx context.Context) {
	ctx, s.workersCancel = context.WithCancel(ctx)

	cfg := s.config
	s.goWorker(func() {
		s.eventService.RunRetention(ctx, cfg.RetentionCleanupInterval(), eventlog.RetentionPolicy{
			EventRetentionDays:    cfg.EventRetentionDays,
			FeedbackRetentionDays: cfg.FeedbackRetentionDays,
		})
	})

	if s.kafkaBus == nil {
		return
	}

	s.goWorker(func() {
		s.planner.Run(ctx, cfg.ReminderPlanInterval())
	})
	for _, consumer := range s.consumers {
		s.goWorker(func() {
			if err := consumer.Run(ctx); err != nil {
				log.Errorf("kafka consumer stopped: %s", err)
			}
		})
	}
}

func (s *Server) goWorker(fn func()) {
	s.workersWg.Add(1)
	go func() {
		defer s.workersWg.Done()
		fn()
	}()
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.startWorkers(ctx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.workersCancel != nil {
		s.workersCancel()
		s.workersWg.Wait()
		log.Debugln("background workers stopped")
	}

	for _, consumer := range s.consumers {
		if err := consumer.Close(); err != nil {
			log.Errorf("failed to close kafka consumer: %s", err)
		}
	}
	for _, publisher := range s.kafkaPublishers {
		if err := publisher.Close(); err != nil {
			log.Errorf("failed to close kafka publisher: %s", err)
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
