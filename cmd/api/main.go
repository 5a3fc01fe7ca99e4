package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oklog/ulid/v2"

	"github.com/sellerdesk/api/internal/graphql"
	"github.com/sellerdesk/api/internal/handlers"
	"github.com/sellerdesk/api/internal/platform/auth"
	"github.com/sellerdesk/api/internal/platform/config"
	pfirestore "github.com/sellerdesk/api/internal/platform/firestore"
	"github.com/sellerdesk/api/internal/platform/observability"
	"github.com/sellerdesk/api/internal/platform/secrets"
	platformstorage "github.com/sellerdesk/api/internal/platform/storage"
	"github.com/sellerdesk/api/internal/repositories"
	firestoreRepo "github.com/sellerdesk/api/internal/repositories/firestore"
	"github.com/sellerdesk/api/internal/repositories/memory"
	"github.com/sellerdesk/api/internal/services"
	"github.com/sellerdesk/api/internal/wizard"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets(requiredSecretNames(envValues)...),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(envValues, startedAt)

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	credentialsFile := strings.TrimSpace(cfg.Firebase.CredentialsFile)
	if credentialsFile == "" {
		logger.Fatal("firebase credentials file is required for storage url signing")
	}
	signer, err := platformstorage.NewServiceAccountSignerFromFile(credentialsFile)
	if err != nil {
		logger.Fatal("failed to load storage signer credentials", zap.Error(err))
	}
	signedURLClient, err := platformstorage.NewClient(signer)
	if err != nil {
		logger.Fatal("failed to initialise signed url client", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier, auth.WithUserGetter(firebaseVerifier))

	catalogRepo, err := firestoreRepo.NewCatalogRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise catalog repository", zap.Error(err))
	}
	categoryRepo, err := firestoreRepo.NewCategoryRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise category repository", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Catalog:    catalogRepo,
		Categories: categoryRepo,
		Clock:      time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}
	categoryService, err := services.NewCategoryService(services.CategoryServiceDeps{
		Categories: categoryRepo,
		Clock:      time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise category service", zap.Error(err))
	}

	mediaService, err := services.NewMediaService(services.MediaServiceDeps{
		Storage:   signedURLClient,
		Bucket:    cfg.Storage.MediaBucket,
		SignedTTL: cfg.Storage.SignedURLTTL,
		Clock:     time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise media service", zap.Error(err))
	}

	seed := memory.Seed{}
	if cfg.Features.EnableSeedFixtures {
		seed, err = memory.LoadSeed()
		if err != nil {
			logger.Fatal("failed to load seed fixtures", zap.Error(err))
		}
	}
	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders: memory.NewOrderRepository(seed.Orders),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}
	customerService, err := services.NewCustomerService(services.CustomerServiceDeps{
		Customers: memory.NewCustomerRepository(seed.Customers),
		Messages:  memory.NewMessageRepository(seed.Messages),
		Reviews:   memory.NewReviewRepository(seed.Reviews),
		Disputes:  memory.NewDisputeRepository(seed.Disputes),
		Clock:     time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise customer service", zap.Error(err))
	}
	var marketingService services.MarketingService
	if cfg.Features.EnableMarketing {
		marketingService, err = services.NewMarketingService(services.MarketingServiceDeps{
			Campaigns:      memory.NewCampaignRepository(seed.Campaigns),
			Discounts:      memory.NewDiscountRepository(seed.Discounts),
			Promotions:     memory.NewPromotionRepository(seed.Promotions),
			Advertisements: memory.NewAdvertisementRepository(seed.Advertisements),
		})
		if err != nil {
			logger.Fatal("failed to initialise marketing service", zap.Error(err))
		}
	}

	systemService, err := newSystemService(firestoreClient, fetcher, buildInfo)
	if err != nil {
		logger.Warn("health: system service init failed", zap.Error(err))
	}

	graphqlHandler, err := graphql.NewHandler(graphql.HandlerDeps{
		Catalog:  catalogService,
		Category: categoryService,
	})
	if err != nil {
		logger.Fatal("failed to initialise graphql handler", zap.Error(err))
	}

	wizardDeps, err := newWizardDeps(logger, cfg, envValues, catalogService, categoryService, mediaService)
	if err != nil {
		logger.Fatal("failed to initialise wizard dependencies", zap.Error(err))
	}
	sessionManager := wizard.NewManager(wizardDeps,
		wizard.WithIdleTTL(cfg.Wizard.SessionTTL),
		wizard.WithSweepInterval(cfg.Wizard.SweepInterval),
	)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go sessionManager.Run(sweepCtx)

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithRateLimits(cfg.RateLimits),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(systemService)),
		handlers.WithGraphQLHandler(graphqlHandler),
		handlers.WithGraphQLMiddlewares(authenticator.RequireFirebaseAuth(auth.RoleSeller, auth.RoleStaff, auth.RoleAdmin)),
		handlers.WithWizardRoutes(handlers.NewWizardHandlers(authenticator, sessionManager).Routes),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(authenticator, orderService).Routes),
		handlers.WithCustomerRoutes(handlers.NewCustomerHandlers(authenticator, customerService).Routes),
		handlers.WithMarketingRoutes(handlers.NewMarketingHandlers(authenticator, marketingService).Routes),
		handlers.WithMediaRoutes(handlers.NewMediaHandlers(authenticator, mediaService).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("sellerdesk api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	sweepCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newWizardDeps wires the session collaborators. Mutations normally travel to
// the commerce GraphQL endpoint; API_COMMERCE_MODE=local short-circuits them
// into the in-process catalog for single-binary deployments.
func newWizardDeps(
	logger *zap.Logger,
	cfg config.Config,
	env map[string]string,
	catalog services.CatalogService,
	categories services.CategoryService,
	media services.MediaService,
) (wizard.SessionDeps, error) {
	uploader, err := services.NewWizardUploadAdapter(media, ulid.Make().String(), func() string {
		return ulid.Make().String()
	})
	if err != nil {
		return wizard.SessionDeps{}, err
	}

	deps := wizard.SessionDeps{
		Uploader: uploader,
		Notifier: zapNotifier{logger: logger.Named("wizard")},
	}

	if strings.EqualFold(strings.TrimSpace(env["API_COMMERCE_MODE"]), "local") {
		catalogAdapter, err := services.NewWizardCatalogAdapter(catalog)
		if err != nil {
			return wizard.SessionDeps{}, err
		}
		categoryAdapter, err := services.NewWizardCategoryAdapter(categories)
		if err != nil {
			return wizard.SessionDeps{}, err
		}
		deps.Dispatcher = catalogAdapter
		deps.Products = catalogAdapter
		deps.Categories = categoryAdapter
		return deps, nil
	}

	client, err := graphql.NewClient(cfg.Commerce.GraphQLEndpoint,
		graphql.WithStaticToken(cfg.Commerce.AuthToken),
		graphql.WithClientTimeout(cfg.Commerce.Timeout),
	)
	if err != nil {
		return wizard.SessionDeps{}, err
	}
	deps.Dispatcher = client
	deps.Products = client
	deps.Categories = client
	return deps, nil
}

// zapNotifier surfaces wizard notices in the server log. A future web client
// can subscribe to these through a push channel instead.
type zapNotifier struct {
	logger *zap.Logger
}

func (n zapNotifier) Notify(notice wizard.Notice) {
	if n.logger == nil {
		return
	}
	switch notice.Level {
	case wizard.NoticeError:
		n.logger.Warn("wizard notice", zap.String("message", notice.Message))
	default:
		n.logger.Info("wizard notice", zap.String("message", notice.Message))
	}
}

func buildInfoFromEnv(env map[string]string, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(env["API_BUILD_VERSION"])
	if version == "" {
		version = "dev"
	}
	environment := strings.TrimSpace(env["API_ENVIRONMENT"])
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		Environment: environment,
		StartedAt:   started,
	}
}

func newSystemService(client *firestore.Client, fetcher *secrets.Fetcher, build services.BuildInfo) (services.SystemService, error) {
	probes := make([]repositories.Probe, 0, 2)
	if client != nil {
		c := client
		probes = append(probes, repositories.Probe{
			Name:    "firestore",
			Timeout: 1500 * time.Millisecond,
			Run: func(ctx context.Context) error {
				iter := c.Collections(ctx)
				_, err := iter.Next()
				if errors.Is(err, iterator.Done) {
					return nil
				}
				return err
			},
		})
	}
	if fetcher != nil {
		const healthReference = "secret://system/healthz?version=latest"
		probes = append(probes, repositories.Probe{
			Name:    "secretManager",
			Timeout: time.Second,
			Run: func(ctx context.Context) error {
				_, err := fetcher.Resolve(ctx, healthReference)
				if err == nil {
					return nil
				}
				if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
					return nil
				}
				return err
			},
		})
	}
	if len(probes) == 0 {
		return nil, errors.New("health: no dependency probes configured")
	}
	repo, err := repositories.NewHealthRepository(probes)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		Health: repo,
		Clock:  time.Now,
		Build:  build,
	})
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		if env == nil {
			return ""
		}
		return strings.TrimSpace(env[key])
	}

	envLabel := strings.ToLower(lookup("API_ENVIRONMENT"))
	if envLabel == "" {
		envLabel = "local"
	}
	defaultProject := lookup("API_SECRET_DEFAULT_PROJECT_ID")
	if defaultProject == "" {
		defaultProject = lookup("API_FIREBASE_PROJECT_ID")
	}
	fallbackPath := lookup("API_SECRET_FALLBACK_FILE")
	if fallbackPath == "" {
		fallbackPath = ".secrets.local"
	}

	opts := []secrets.Option{
		secrets.WithEnvironment(envLabel),
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithFallbackFile(fallbackPath),
	}
	if defaultProject != "" {
		opts = append(opts, secrets.WithDefaultProject(defaultProject))
	}
	if credentialsFile := lookup("API_FIREBASE_CREDENTIALS_FILE"); credentialsFile != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(credentialsFile)))
	}

	return secrets.NewFetcher(ctx, opts...)
}

func requiredSecretNames(env map[string]string) []string {
	token := ""
	if env != nil {
		token = strings.TrimSpace(env["API_COMMERCE_AUTH_TOKEN"])
	}
	if strings.HasPrefix(token, "secret://") || strings.HasPrefix(token, "sm://") {
		return []string{"Commerce.AuthToken"}
	}
	return nil
}
