package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workspace-control-plane/backend/internal/audit"
	auditrepo "workspace-control-plane/backend/internal/audit/repository"
	"workspace-control-plane/backend/internal/config"
	"workspace-control-plane/backend/internal/db"
	"workspace-control-plane/backend/internal/event"
	identityservice "workspace-control-plane/backend/internal/identity/service"
	invitationrepo "workspace-control-plane/backend/internal/invitation/repository"
	invitationservice "workspace-control-plane/backend/internal/invitation/service"
	memberrepo "workspace-control-plane/backend/internal/member/repository"
	memberservice "workspace-control-plane/backend/internal/member/service"
	"workspace-control-plane/backend/internal/notify"
	orgrepo "workspace-control-plane/backend/internal/organization/repository"
	rolerepo "workspace-control-plane/backend/internal/role/repository"
	"workspace-control-plane/backend/internal/security"
	"workspace-control-plane/backend/internal/server"
	"workspace-control-plane/backend/internal/server/middleware"
	"workspace-control-plane/backend/internal/telemetry/otel"
	userrepo "workspace-control-plane/backend/internal/user/repository"
)

const serviceName = "workspace-control-plane"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.Env != "production")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	slog.SetDefault(providers.NewSlogLogger(serviceName))

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	privPEM, err := security.LoadPEM(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	pubPEM, err := security.LoadPEM(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	signer, err := security.ParsePrivateKey(string(privPEM))
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	pub, err := security.ParsePublicKey(string(pubPEM))
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	var emitter event.Emitter
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		kafkaEmitter, err := event.NewKafkaEmitter(brokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		emitter = kafkaEmitter
		defer kafkaEmitter.Close()
	}

	var notifier invitationservice.Notifier
	if cfg.MailAPIKey != "" {
		notifier = notify.NewMailClient(cfg.MailAPIKey, cfg.MailBaseURL, cfg.MailSender)
	}

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(pool), middleware.IPFromContext)

	users := userrepo.NewPostgresRepository(pool)
	orgs := orgrepo.NewPostgresRepository(pool)
	roles := rolerepo.NewPostgresRepository(pool)
	members := memberrepo.NewPostgresRepository(pool)
	invitations := invitationrepo.NewPostgresRepository(pool)

	hasher := security.NewHasher(cfg.BcryptCost)
	authService := identityservice.NewAuthService(users, hasher, tokens, auditLogger, emitter)
	memberService := memberservice.NewService(members, roles)
	invitationService := invitationservice.NewService(
		invitations, orgs, users, roles,
		notifier, auditLogger, emitter, cfg.InvitationTTL(),
	)

	router := server.New(server.Deps{
		ServiceName:  serviceName,
		Tokens:       tokens,
		Auth:         authService,
		Invitations:  invitationService,
		Members:      memberService,
		Roles:        roles,
		HealthPinger: pool,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}

	// Give in-flight async event emits time to finish before the emitter closes.
	time.Sleep(event.ShutdownDrainDuration)

	// Fresh deadline: the server shutdown and the drain sleep may have spent
	// most of shutdownCtx, and the exporters still need time to flush.
	telemetryCtx, cancelTelemetry := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelTelemetry()
	if err := providers.Shutdown(telemetryCtx); err != nil {
		slog.Error("telemetry shutdown", "error", err)
	}
}
