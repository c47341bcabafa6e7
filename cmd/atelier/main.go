package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/atelier/internal/application/auth"
	"github.com/amirhosseinghanipour/atelier/internal/application/authz"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/application/project"
	"github.com/amirhosseinghanipour/atelier/internal/application/task"
	"github.com/amirhosseinghanipour/atelier/internal/application/workspace"
	"github.com/amirhosseinghanipour/atelier/internal/config"
	infraauth "github.com/amirhosseinghanipour/atelier/internal/infrastructure/auth"
	httprouter "github.com/amirhosseinghanipour/atelier/internal/infrastructure/http"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/lockout"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/persistence/postgres"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/queue"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/security"
	"github.com/amirhosseinghanipour/atelier/internal/infrastructure/webhook"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	workspaceMemberRepo := postgres.NewWorkspaceMemberRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	projectMemberRepo := postgres.NewProjectMemberRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)

	var events ports.EventPublisher
	var worker *queue.Worker
	if redisClient != nil {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		enqueuer := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer enqueuer.Close()
		events = enqueuer
		worker = queue.NewWorker(asynqOpt, log)
		go func() {
			if err := worker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		events = queue.NewNoopPublisher()
	}

	// Handlers log audit events themselves and forward to the webhook when
	// one is configured. The task service has no logger, so without a
	// webhook its audit records fall back to the structured log.
	var emitter ports.WebhookEmitter
	taskAudit := ports.WebhookEmitter(webhook.NewLogEmitter(log))
	if cfg.Audit.WebhookURL != "" {
		httpEmitter := webhook.NewHTTPEmitter(cfg.Audit.WebhookURL)
		emitter = httpEmitter
		taskAudit = httpEmitter
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	pemBytes, err := cfg.LoadJWTPrivateKey()
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	privateKey, err := infraauth.LoadRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("parse JWT private key")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	lockoutStore := lockout.NewMemoryStore(cfg.Lockout.MaxAttempts, cfg.Lockout.CooldownSeconds)

	registerUC := auth.NewRegisterUser(userRepo, hasher)
	loginUC := auth.NewLogin(userRepo, sessionRepo, hasher, issuer, lockoutStore, cfg.JWT.AccessExpiry)
	refreshUC := auth.NewRefresh(userRepo, sessionRepo, issuer, cfg.JWT.AccessExpiry)
	logoutUC := auth.NewLogout(sessionRepo)
	changePasswordUC := auth.NewChangePassword(userRepo, sessionRepo, hasher)
	listSessionsUC := auth.NewListSessions(sessionRepo)
	authenticateUC := auth.NewAuthenticate(issuer, userRepo)
	adminUsersUC := auth.NewAdminUsers(userRepo, sessionRepo, hasher)

	evaluator := authz.NewEvaluator(workspaceMemberRepo, projectMemberRepo,
		authz.WithObserver(func(action authz.Action, allowed bool) {
			middleware.RecordAuthzDecision(string(action), allowed)
		}))
	workspaceSvc := workspace.NewService(workspaceRepo, workspaceMemberRepo, userRepo, evaluator)
	projectSvc := project.NewService(projectRepo, projectMemberRepo, workspaceRepo, workspaceMemberRepo, userRepo, evaluator)
	taskSvc := task.NewService(taskRepo, projectRepo, workspaceMemberRepo, evaluator, events, taskAudit)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.Server.RateLimitPerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Server.SecureDev))
	requireJWT := middleware.NewAuthValidator(authenticateUC).Handler

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:      handlers.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, changePasswordUC, listSessionsUC, emitter, log),
		HealthHandler:    healthHandler,
		UsersHandler:     handlers.NewUsersHandler(userRepo, log),
		WorkspaceHandler: handlers.NewWorkspaceHandler(workspaceSvc, emitter, log),
		ProjectHandler:   handlers.NewProjectHandler(projectSvc, log),
		TaskHandler:      handlers.NewTaskHandler(taskSvc, log),
		AdminHandler:     handlers.NewAdminHandler(adminUsersUC, workspaceSvc, emitter, log),
		RequireJWT:       requireJWT,
		Log:              log,
		Secure:           secureMiddleware,
		IPRateLimit:      ipLimit,
		Metrics:          true,
	})

	// Periodic purge of sessions past the retention window.
	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -cfg.Sessions.RetentionDays)
				n, err := sessionRepo.PurgeExpired(purgeCtx, cutoff)
				if err != nil {
					log.Warn().Err(err).Msg("session purge failed")
					continue
				}
				if n > 0 {
					log.Info().Int64("purged", n).Msg("expired sessions removed")
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if worker != nil {
		worker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
