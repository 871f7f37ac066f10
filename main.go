package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MRaysa/AI-chatbot-server/config"
	"github.com/MRaysa/AI-chatbot-server/firebase"
	"github.com/MRaysa/AI-chatbot-server/handlers"
	"github.com/MRaysa/AI-chatbot-server/llm"
	"github.com/MRaysa/AI-chatbot-server/logger"
	"github.com/MRaysa/AI-chatbot-server/middleware"
	"github.com/MRaysa/AI-chatbot-server/mongodb"
	"github.com/MRaysa/AI-chatbot-server/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	development := cfg.GinMode != "release"
	if err := logger.Init(development, logger.LogLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	verifier, err := firebase.NewVerifier(initCtx, cfg)
	if err != nil {
		logger.Get().Fatal("failed to initialize firebase", zap.Error(err))
	}

	store, err := mongodb.Connect(initCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Get().Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(initCtx); err != nil {
		logger.Get().Fatal("failed to create indexes", zap.Error(err))
	}

	generator := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	ledger := services.NewStripeLedger(cfg.StripeSecretKey, cfg.ClientURL)

	authService := services.NewAuthService(verifier, store)
	chatService := services.NewChatService(store, store, generator)
	billingService := services.NewBillingService(store, store, ledger)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)
	streamHandler := handlers.NewStreamHandler(chatService, verifier)
	stripeHandler := handlers.NewStripeHandler(billingService)

	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})
	router.Use(middleware.RequestLogger(logger.Get()))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.ClientURL))

	requireAuth := middleware.RequireAuth(verifier)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Welcome to AI Chat Boot API",
			"version": "1.0.0",
		})
	})

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success":   true,
				"message":   "AI Chat Boot API is running",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/verify", authHandler.VerifyToken)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.POST("/signout", requireAuth, authHandler.SignOut)
		}

		chats := api.Group("/chats", requireAuth)
		{
			chats.POST("", chatHandler.CreateChat)
			chats.GET("", chatHandler.GetUserChats)
			chats.GET("/:chatId/messages", chatHandler.GetChatMessages)
			chats.POST("/:chatId/messages", chatHandler.SendMessage)
			chats.PATCH("/:chatId", chatHandler.UpdateChatTitle)
			chats.DELETE("/:chatId", chatHandler.DeleteChat)
		}
		// Websocket auth uses a query token, so the stream route skips the
		// bearer middleware.
		api.GET("/chats/:chatId/ws", streamHandler.HandleChatStream)

		users := api.Group("/users", requireAuth)
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
		}

		stripeGroup := api.Group("/stripe")
		{
			stripeGroup.POST("/create-checkout-session", requireAuth, stripeHandler.CreateCheckoutSession)
			stripeGroup.POST("/webhook", middleware.StripeWebhookVerifier(cfg.StripeWebhookSecret), stripeHandler.HandleWebhook)
			stripeGroup.GET("/subscription", requireAuth, stripeHandler.GetSubscription)
			stripeGroup.POST("/cancel-subscription", requireAuth, stripeHandler.CancelSubscription)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Get().Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Get().Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Get().Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error("server forced to shutdown", zap.Error(err))
	}
}
