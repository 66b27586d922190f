package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nursesrent/config"
	"nursesrent/cron"
	"nursesrent/database"
	bookingRepo "nursesrent/database/repository/booking"
	bookingRequestRepo "nursesrent/database/repository/bookingrequest"
	checkoutSessionRepo "nursesrent/database/repository/checkoutsession"
	entitlementRepo "nursesrent/database/repository/entitlement"
	"nursesrent/database/repository/memory"
	pricingRepo "nursesrent/database/repository/pricing"
	propertyRepo "nursesrent/database/repository/property"
	subscriptionRepo "nursesrent/database/repository/subscription"
	userRepo "nursesrent/database/repository/user"
	webhookEventRepo "nursesrent/database/repository/webhookevent"
	"nursesrent/handlers"
	"nursesrent/metrics"
	"nursesrent/models"
	"nursesrent/routes"
	"nursesrent/services/auth"
	"nursesrent/services/booking"
	"nursesrent/services/checkout"
	"nursesrent/services/ledger"
	"nursesrent/services/notification"
	"nursesrent/services/property"
	"nursesrent/services/reconcile"
	"nursesrent/services/tasks"
	"nursesrent/services/user"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// stores is the persistence layer selected by STORE_DRIVER.
type stores struct {
	users         userRepo.UserRepository
	properties    propertyRepo.PropertyRepository
	requests      bookingRequestRepo.BookingRequestRepository
	bookings      bookingRepo.BookingRepository
	subscriptions subscriptionRepo.SubscriptionRepository
	pricing       pricingRepo.PricingRepository
	sessions      checkoutSessionRepo.CheckoutSessionRepository
	events        webhookEventRepo.WebhookEventRepository
	entitlements  entitlementRepo.Store
}

func mongoStores(db *mongo.Database) stores {
	return stores{
		users:         userRepo.NewMongoUserRepo(db),
		properties:    propertyRepo.NewMongoPropertyRepo(db),
		requests:      bookingRequestRepo.NewMongoBookingRequestRepo(db),
		bookings:      bookingRepo.NewMongoBookingRepo(db),
		subscriptions: subscriptionRepo.NewMongoSubscriptionRepo(db),
		pricing:       pricingRepo.NewMongoPricingRepo(db),
		sessions:      checkoutSessionRepo.NewMongoCheckoutSessionRepo(db),
		events:        webhookEventRepo.NewMongoWebhookEventRepo(db),
		entitlements:  entitlementRepo.NewMongoEntitlementStore(db),
	}
}

func memoryStores() stores {
	s := memory.New()
	return stores{
		users:         s.Users(),
		properties:    s.Properties(),
		requests:      s.BookingRequests(),
		bookings:      s.Bookings(),
		subscriptions: s.Subscriptions(),
		pricing:       s.Pricing(),
		sessions:      s.CheckoutSessions(),
		events:        s.WebhookEvents(),
		entitlements:  s.Entitlements(),
	}
}

func pricingSeeds(cfg config.Config) []models.SubscriptionPricing {
	return []models.SubscriptionPricing{
		{
			UserRole:    models.RoleHost,
			Amount:      cfg.HostSubscriptionAmount,
			Interval:    cfg.HostSubscriptionInterval,
			Currency:    cfg.Currency,
			ProductName: "Host subscription",
			Recurring:   models.PricingRecurring,
		},
		{
			UserRole:    models.RoleNurse,
			Amount:      cfg.NurseSubscriptionAmount,
			Currency:    cfg.Currency,
			ProductName: "Nurse subscription",
			Recurring:   models.PricingOneTime,
		},
	}
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET must be set")
	}

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	// Persistence, cache and queue. The memory driver runs without Mongo or Redis.
	var (
		st         stores
		authCache  auth.SessionCache = auth.NoopSessionCache{}
		codes      utils.CodeStore   = utils.NewMemoryCodeStore()
		locker     reconcile.Locker
		scheduler  tasks.Scheduler
		worker     *asynq.Server
		notifier   = notification.NewLogNotificationService(logger)
		redisConns []*redis.Client
	)
	if cfg.StoreDriver == "memory" {
		logger.Warn("main: using the in-memory store, data is lost on restart")
		st = memoryStores()
		scheduler = &tasks.InlineScheduler{Notifier: notifier, Logger: logger}
	} else {
		database.InitDB()
		st = mongoStores(database.Database())

		utils.InitRedis()
		redisConns = []*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}
		authCache = auth.NewRedisSessionCache(utils.GetAuthCacheClient())
		codes = utils.NewRedisCodeStore(utils.GetAuthCacheClient())
		locker = reconcile.NewRedisLocker(utils.GetCacheClient())

		if cfg.TaskQueueEnabled {
			redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
			asynqScheduler := tasks.NewAsynqScheduler(redisOpts)
			defer asynqScheduler.Close()
			scheduler = asynqScheduler
			worker = cron.InitNotificationWorker(redisOpts, notifier)
		} else {
			scheduler = &tasks.InlineScheduler{Notifier: notifier, Logger: logger}
		}
	}
	utils.StartHealthMonitor(bgCtx, redisConns, database.MongoClient)

	// Payment ledger.
	paymentLedger := ledger.NewResilient(
		ledger.NewStripeLedger(cfg.StripeKey, logger),
		ledger.ResilienceConfig{
			Timeout:          cfg.LedgerTimeout,
			MaxRetries:       cfg.LedgerMaxRetries,
			FailureThreshold: cfg.BreakerFailureThreshold,
		},
		metrics.NewLedger(metrics.Registry),
		logger,
	)
	fees := ledger.FeePolicy{Percent: cfg.ApplicationFeePercent}

	// services.
	authService := auth.NewAuthService(st.users, auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn), authCache, cfg.RequireEmailVerification)

	verifier := &auth.EmailVerifier{Repo: st.users, Codes: codes, Sender: notifier, Cache: authCache, Logger: logger}

	checkoutService := &checkout.DefaultCheckoutService{
		Users:       st.users,
		Properties:  st.properties,
		Requests:    st.requests,
		Pricing:     st.pricing,
		Sessions:    st.sessions,
		Ledger:      paymentLedger,
		Fees:        fees,
		Currency:    cfg.Currency,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger,
	}
	seedCtx, cancelSeed := context.WithTimeout(bgCtx, 10*time.Second)
	if err := checkoutService.SeedPricing(seedCtx, pricingSeeds(cfg)); err != nil {
		logger.Error("main: failed to seed subscription pricing", zap.Error(err))
	}
	cancelSeed()

	bookingService := &booking.DefaultBookingService{
		Users:        st.users,
		Properties:   st.properties,
		Requests:     st.requests,
		Bookings:     st.bookings,
		Entitlements: st.entitlements,
		Scheduler:    scheduler,
		Logger:       logger,
	}
	userService := &user.DefaultUserService{
		Repo:          st.users,
		Subscriptions: st.subscriptions,
		Entitlements:  st.entitlements,
		Ledger:        paymentLedger,
		Tokens:        authService,
		Logger:        logger,
	}
	engine := reconcile.NewEngine(reconcile.Config{
		Secrets:         config.WebhookSecrets(),
		Fees:            fees,
		StoreMaxRetries: cfg.StoreMaxRetries,
	}, reconcile.Deps{
		Users:        st.users,
		Properties:   st.properties,
		Requests:     st.requests,
		Bookings:     st.bookings,
		Sessions:     st.sessions,
		Events:       st.events,
		Entitlements: st.entitlements,
		Ledger:       paymentLedger,
		Scheduler:    scheduler,
		Locker:       locker,
		Metrics:      metrics.NewWebhook(metrics.Registry),
	}, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		AuthService: authService,
		Auth:        handlers.NewAuthHandler(authService),
		Verify:      handlers.NewVerificationHandler(verifier),
		Account:     handlers.NewAccountHandler(userService),
		Property:    handlers.NewPropertyHandler(property.NewPropertyService(st.properties, logger)),
		Checkout:    handlers.NewCheckoutHandler(checkoutService),
		Booking:     handlers.NewBookingHandler(bookingService),
		Webhook:     handlers.NewWebhookHandler(engine),
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	routes.RegisterRoutes(router, handlerBundle, cfg.MaxRequestsPerMin)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	cancelBg()
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Errorf("main: failed to disconnect from MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
