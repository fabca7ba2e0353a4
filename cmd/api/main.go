package main

import (
	"context"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"persianconnect/internal/adapter/api"
	"persianconnect/internal/adapter/api/handler"
	apimiddleware "persianconnect/internal/adapter/api/middleware"
	"persianconnect/internal/adapter/api/router"
	kvrepository "persianconnect/internal/adapter/repository"
	"persianconnect/internal/domain/service"
	"persianconnect/internal/infrastructure/firebase"
	"persianconnect/internal/infrastructure/kv"
	"persianconnect/internal/infrastructure/websocket"
	"persianconnect/internal/usecase"
	"persianconnect/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
	}
	defer redisClient.Close()

	store := kv.NewRedisStore(redisClient)

	userRepo := kvrepository.NewKVUserRepository(store)
	listingRepo := kvrepository.NewKVListingRepository(store)
	paymentRepo := kvrepository.NewKVPaymentRepository(store)
	chatRepo := kvrepository.NewKVChatRepository(store)

	identityClient := firebase.NewAuthClient(fbAuth, cfg.FirebaseApiKey)
	paymentGateway := service.NewStripePaymentService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	authUseCase := usecase.NewAuthUseCase(userRepo, identityClient, cfg.AdminAllowlist)
	listingUseCase := usecase.NewListingUseCase(listingRepo)
	paymentUseCase := usecase.NewPaymentUseCase(
		paymentRepo,
		listingRepo,
		paymentGateway,
		cfg.AdPostingPrice,
		cfg.AdBoostPrice,
		cfg.Currency,
		cfg.CheckoutSuccessURL,
		cfg.CheckoutCancelURL,
	)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, listingRepo, wsManager)
	adminUseCase := usecase.NewAdminUseCase(userRepo, listingRepo, paymentRepo)

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware()

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authUseCase),
		Listing:   handler.NewListingHandler(listingUseCase),
		Payment:   handler.NewPaymentHandler(paymentUseCase),
		Chat:      handler.NewChatHandler(chatUseCase),
		Admin:     handler.NewAdminHandler(adminUseCase, listingUseCase),
		Health:    handler.NewHealthHandler(),
		WebSocket: handler.NewWebSocketHandler(wsManager, authUseCase),
	}

	router.Setup(e, handlers, authMiddleware, adminMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
