// server runs the HTTP application server and the ops gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditpkg "smallbiz-erp/backend/internal/audit"
	auditrepo "smallbiz-erp/backend/internal/audit/repository"
	"smallbiz-erp/backend/internal/config"
	"smallbiz-erp/backend/internal/db"
	healthhandler "smallbiz-erp/backend/internal/health/handler"
	identityrepo "smallbiz-erp/backend/internal/identity/repository"
	identityservice "smallbiz-erp/backend/internal/identity/service"
	"smallbiz-erp/backend/internal/policy/engine"
	"smallbiz-erp/backend/internal/security"
	"smallbiz-erp/backend/internal/server"
	"smallbiz-erp/backend/internal/session"
	sessionrepo "smallbiz-erp/backend/internal/session/repository"
	"smallbiz-erp/backend/internal/telemetry"
	telemetryotel "smallbiz-erp/backend/internal/telemetry/otel"
	"smallbiz-erp/backend/internal/telemetry/producer"
	userrepo "smallbiz-erp/backend/internal/user/repository"
)

const (
	healthInterval       = 10 * time.Second
	sessionPurgeInterval = time.Hour
	shutdownTimeout      = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("telemetry: emitting to kafka topic %s", kafkaProducer.Topic())
	}
	events := telemetry.Multi(emitters...)

	codec, err := security.NewSessionCodec([]byte(cfg.SessionSecret), cfg.SessionTTL())
	if err != nil {
		log.Fatalf("session codec: %v", err)
	}
	cookies := session.NewCookieStore(cfg.IsProduction())
	sessions := sessionrepo.NewPostgresRepository(conn)
	users := userrepo.NewPostgresRepository(conn)
	identities := identityrepo.NewPostgresRepository(conn)
	auth := identityservice.NewAuthService(users, identities, identities, sessions, security.NewHasher(cfg.BcryptCost), codec)

	evaluator, err := engine.New(ctx, cfg.RoutePolicyEngine, engine.DefaultRouteTable())
	if err != nil {
		log.Fatalf("route policy: %v", err)
	}
	var policyChecker healthhandler.PolicyChecker
	if pc, ok := evaluator.(healthhandler.PolicyChecker); ok {
		policyChecker = pc
	}
	checker := healthhandler.NewChecker(conn, policyChecker)

	audits := auditrepo.NewPostgresRepository(conn)
	router, err := server.NewRouter(server.Deps{
		Codec:       codec,
		Cookies:     cookies,
		Verifier:    session.NewVerifier(codec, cookies, sessions),
		Evaluator:   evaluator,
		Auth:        auth,
		Health:      checker,
		Repos:       server.NewPostgresRepositories(conn),
		AuditLogger: auditpkg.NewLogger(audits, nil),
		AuditReader: audits,
		Events:      events,
		Tracer:      providers.Tracer(),
		Meter:       providers.Meter(),
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	healthSrv := healthhandler.NewGRPCServer()
	go checker.Watch(ctx, healthSrv, healthInterval)
	opsSrv := server.NewOpsServer(healthSrv, logger, events)
	lis, err := net.Listen("tcp", cfg.OpsGRPCAddr)
	if err != nil {
		log.Fatalf("ops listen: %v", err)
	}
	go func() {
		log.Printf("ops gRPC server listening on %s", cfg.OpsGRPCAddr)
		if err := opsSrv.Serve(lis); err != nil {
			log.Printf("ops serve: %v", err)
		}
	}()

	go purgeExpiredSessions(ctx, sessions)

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	opsSrv.GracefulStop()

	// Let in-flight async emits finish before closing their sinks.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("server stopped")
}

// purgeExpiredSessions deletes sessions past their expiry once per sessionPurgeInterval.
func purgeExpiredSessions(ctx context.Context, sessions *sessionrepo.PostgresRepository) {
	t := time.NewTicker(sessionPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := sessions.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("session purge: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("session purge: removed %d expired sessions", n)
			}
		}
	}
}
