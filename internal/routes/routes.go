package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/servicioshogar/ServiciosHogarBack/internal/config"
	"github.com/servicioshogar/ServiciosHogarBack/internal/handlers"
	"github.com/servicioshogar/ServiciosHogarBack/internal/middleware"
	"github.com/servicioshogar/ServiciosHogarBack/internal/repository"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
	chatws "github.com/servicioshogar/ServiciosHogarBack/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	customerProfileRepo := repository.NewCustomerProfileRepository(db)
	providerProfileRepo := repository.NewProviderProfileRepository(db)
	requestRepo := repository.NewServiceRequestRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	creditsRepo := repository.NewCreditsRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	authHandler := handlers.NewAuthHandler(
		db,
		userRepo,
		customerProfileRepo,
		providerProfileRepo,
		cfg.JWTSecret,
	)
	onboardingHandler := handlers.NewOnboardingHandler(customerProfileRepo, providerProfileRepo)
	profileService := services.NewProfileService(customerProfileRepo, providerProfileRepo)
	profileHandler := handlers.NewProfileHandler(profileService, customerProfileRepo, providerProfileRepo)
	matchingService := services.NewMatchingService(providerProfileRepo)
	reviewService := services.NewReviewService(db, reviewRepo, requestRepo)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	providerDiscoveryHandler := handlers.NewProviderDiscoveryHandler(
		providerProfileRepo,
		customerProfileRepo,
		matchingService,
		reviewService,
	)
	requestService := services.NewRequestService(
		db,
		requestRepo,
		conversationRepo,
		creditsRepo,
		userRepo,
		providerProfileRepo,
		customerProfileRepo,
	)
	requestHandler := handlers.NewRequestHandler(requestService)
	creditService := services.NewCreditService(creditsRepo)
	creditsHandler := handlers.NewCreditsHandler(creditService)
	gateway := services.NewMercadoPagoService(cfg.MPAccessToken)
	paymentService := services.NewPaymentService(db, purchaseRepo, gateway, cfg.MPWebhookSecret)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	chatHub := chatws.NewHub()
	go chatHub.Run()
	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// Webhook stays outside auth: Mercado Pago signs it with its own secret.
	api.Post("/payments/mp/webhook", paymentHandler.Webhook)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	customers := authProtected.Group("/customers")
	customers.Post("/onboarding", onboardingHandler.CustomerOnboarding)
	customers.Get("/profile", profileHandler.GetCustomerProfile)
	customers.Put("/profile", profileHandler.UpdateCustomerProfile)

	providers := authProtected.Group("/providers")
	providers.Get("", providerDiscoveryHandler.ListProviders)
	providers.Post("/onboarding", onboardingHandler.ProviderOnboarding)
	providers.Get("/profile", profileHandler.GetProviderProfile)
	providers.Put("/profile", profileHandler.UpdateProviderProfile)
	providers.Get("/recommended", providerDiscoveryHandler.GetRecommendedProviders)
	providers.Get("/:id", providerDiscoveryHandler.GetProviderDetail)
	providers.Get("/:id/reviews", reviewHandler.ListProviderReviews)

	requests := authProtected.Group("/requests")
	requests.Post("", requestHandler.CreateRequest)
	requests.Get("", requestHandler.ListRequests)
	requests.Get("/:id", requestHandler.GetRequest)
	requests.Put("/:id/status", requestHandler.UpdateStatus)
	requests.Post("/:id/unlock", requestHandler.UnlockContact)
	requests.Post("/:id/review", reviewHandler.CreateReview)
	requests.Get("/:id/review", reviewHandler.GetRequestReview)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)
	conversations.Put("/:id/read", chatHandler.MarkRead)

	payments := authProtected.Group("/payments")
	payments.Post("/mp/create", paymentHandler.CreatePurchase)
	payments.Get("/purchases", paymentHandler.ListPurchases)

	credits := authProtected.Group("/credits")
	credits.Get("/balance", creditsHandler.GetBalance)
	credits.Get("/packages", creditsHandler.ListPackages)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
