package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"memberhub/internal/app/idempotency"
	appoutbox "memberhub/internal/app/outbox"
	authsvc "memberhub/internal/app/services/auth"
	contentsvc "memberhub/internal/app/services/content"
	groupssvc "memberhub/internal/app/services/groups"
	inboxsvc "memberhub/internal/app/services/inbox"
	moderationsvc "memberhub/internal/app/services/moderation"
	planssvc "memberhub/internal/app/services/plans"
	profilessvc "memberhub/internal/app/services/profiles"
	updatessvc "memberhub/internal/app/services/updates"
	domainauth "memberhub/internal/domain/auth"
	domaincomment "memberhub/internal/domain/comment"
	domaincourse "memberhub/internal/domain/course"
	domaingroup "memberhub/internal/domain/group"
	domaininbox "memberhub/internal/domain/inbox"
	domainmember "memberhub/internal/domain/member"
	domainplan "memberhub/internal/domain/plan"
	domainupdate "memberhub/internal/domain/update"
	"memberhub/internal/infra/broker/kafka"
	"memberhub/internal/infra/config"
	mongostore "memberhub/internal/infra/db/mongo"
	ginserver "memberhub/internal/infra/http/gin"
	"memberhub/internal/infra/obs"
	"memberhub/internal/infra/outbox"
	"memberhub/internal/infra/security"
	"memberhub/internal/infra/storage/memory"
	"memberhub/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	if err := app.seedAdmin(ctx, cfg, logger); err != nil {
		logger.Warn("admin seed failed", "error", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *outbox.Worker
	producer *kafka.Producer
	mongo    *mongostore.Client
	auth     *authsvc.Service
	members  domainmember.Repository
}

type storageSet struct {
	members  domainmember.Repository
	sessions domainauth.SessionStore
	inbox    interface {
		domaininbox.Repository
		domaininbox.MessageRepository
	}
	updates     domainupdate.Repository
	receipts    domainupdate.ReceiptStore
	comments    domaincomment.Repository
	courses     domaincourse.Repository
	groups      domaingroup.Repository
	plans       domainplan.Repository
	salesPage   domainplan.SalesPageStore
	idempotency idempotency.Store
	outbox      appoutbox.Outbox
}

func buildApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	var stores storageSet
	if cfg.MongoURI != "" {
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.mongo = client
		stores = mongoStores(client)
		logger.Info("storage configured", "backend", "mongo", "database", cfg.MongoDB)
	} else {
		stores = memoryStores()
		logger.Warn("MONGO_URI not set, using in-memory storage")
	}
	app.members = stores.members

	if len(cfg.KafkaBrokers) > 0 && app.mongo != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, err
		}
		app.producer = producer
		app.worker = &outbox.Worker{
			Store:       outbox.NewStore(app.mongo.DB),
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			ID:          uuid.NewString(),
			Backoff:     cfg.RetryBackoff,
		}
		logger.Info("event publishing configured", "brokers", cfg.KafkaBrokers)
	} else if len(cfg.KafkaBrokers) > 0 {
		logger.Warn("KAFKA_BROKERS set without Mongo, outbox worker disabled")
	}

	var avatars s3.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return nil, err
		}
		avatars = client
	}

	app.auth = &authsvc.Service{
		Members:    stores.members,
		Sessions:   stores.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	profileService := &profilessvc.Service{
		Members:  stores.members,
		Sessions: stores.sessions,
		Avatars:  avatars,
		Logger:   logger,
	}
	inboxService := &inboxsvc.Service{
		Conversations: stores.inbox,
		MessageLog:    stores.inbox,
		Members:       stores.members,
		Outbox:        stores.outbox,
		Idempotency:   stores.idempotency,
		Logger:        logger,
	}
	updatesService := &updatessvc.Service{
		Updates:  stores.updates,
		Receipts: stores.receipts,
		Members:  stores.members,
		Outbox:   stores.outbox,
		Logger:   logger,
	}
	moderationService := &moderationsvc.Service{
		Comments: stores.comments,
		Members:  stores.members,
		Outbox:   stores.outbox,
		Logger:   logger,
	}
	contentService := &contentsvc.Service{Courses: stores.courses, Logger: logger}
	groupService := &groupssvc.Service{Groups: stores.groups, Members: stores.members, Logger: logger}
	planService := &planssvc.Service{Plans: stores.plans, SalesPage: stores.salesPage, Logger: logger}

	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: app.auth, Logger: logger},
		Profile:        ginserver.ProfileHandler{Service: profileService, Logger: logger},
		Inbox:          ginserver.InboxHandler{Service: inboxService, Logger: logger},
		Updates:        ginserver.UpdatesHandler{Service: updatesService, Logger: logger},
		Moderation:     ginserver.ModerationHandler{Service: moderationService, Logger: logger},
		Courses:        ginserver.CourseHandler{Service: contentService, Logger: logger},
		Groups:         ginserver.GroupHandler{Service: groupService, Logger: logger},
		Plans:          ginserver.PlanHandler{Service: planService, Logger: logger},
		Admin:          ginserver.AdminHandler{Service: profileService, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: app.auth, Logger: logger}.Handle,
	}
	return app, nil
}

func mongoStores(client *mongostore.Client) storageSet {
	db := client.DB
	return storageSet{
		members:     mongostore.NewMemberRepository(db),
		sessions:    mongostore.NewSessionStore(db),
		inbox:       mongostore.NewInboxRepository(db),
		updates:     mongostore.NewUpdateRepository(db),
		receipts:    mongostore.NewReceiptStore(db),
		comments:    mongostore.NewCommentRepository(db),
		courses:     mongostore.NewCourseRepository(db),
		groups:      mongostore.NewGroupRepository(db),
		plans:       mongostore.NewPlanRepository(db),
		salesPage:   mongostore.NewSalesPageStore(db),
		idempotency: mongostore.NewIdempotencyStore(db),
		outbox:      outbox.NewStore(db),
	}
}

func memoryStores() storageSet {
	inboxRepo := memory.NewInboxRepository()
	return storageSet{
		members:     memory.NewMemberRepository(),
		sessions:    memory.NewSessionStore(),
		inbox:       inboxRepo,
		updates:     memory.NewUpdateRepository(),
		receipts:    memory.NewReceiptStore(),
		comments:    memory.NewCommentRepository(),
		courses:     memory.NewCourseRepository(),
		groups:      memory.NewGroupRepository(),
		plans:       memory.NewPlanRepository(),
		salesPage:   memory.NewSalesPageStore(),
		idempotency: memory.NewIdempotencyStore(),
		outbox:      memory.NewOutbox(),
	}
}

// seedAdmin makes sure the configured admin account exists and carries the
// admin role. Existing accounts are promoted, never recreated.
func (a *application) seedAdmin(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	existing, err := a.members.ByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		if existing.HasRole(domainmember.RoleAdmin) {
			return nil
		}
		existing.Roles = append(existing.Roles, domainmember.RoleAdmin)
		if err := a.members.Save(ctx, existing); err != nil {
			return err
		}
		logger.Info("existing account promoted to admin", "member_id", existing.ID)
		return nil
	}
	if !errors.Is(err, domainmember.ErrNotFound) {
		return err
	}
	hash, err := security.BcryptHasher{}.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	m, err := domainmember.New(domainmember.CreateParams{
		ID:           domainmember.ID(uuid.NewString()),
		Email:        cfg.AdminEmail,
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: hash,
		Roles:        []domainmember.Role{domainmember.RoleAdmin, domainmember.RoleMember},
	})
	if err != nil {
		return err
	}
	if err := a.members.Save(ctx, m); err != nil {
		return err
	}
	logger.Info("admin account seeded", "member_id", m.ID)
	return nil
}

func (a *application) ready() error {
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return a.mongo.Ping(ctx)
	}
	return nil
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Close(ctx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
