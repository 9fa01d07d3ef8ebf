package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-backend/internal/auth"
	"chat-backend/internal/chat"
	"chat-backend/internal/db"
	"chat-backend/internal/handlers"
	"chat-backend/internal/middleware"
	"chat-backend/internal/observability"
	"chat-backend/internal/repositories"
	"chat-backend/internal/ws"
)

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		log.Fatalf("invalid TOKEN_TTL: %v", err)
	}
	secret := []byte(getEnv("JWT_SECRET", "supersecretkey"))

	if amqpURL := getEnv("AMQP_URL", ""); amqpURL != "" {
		publisher, err := observability.NewAMQPPublisher(amqpURL, getEnv("AUDIT_EXCHANGE", "chat_events"))
		if err != nil {
			log.Printf("amqp disabled: %v", err)
		} else {
			observability.SetPublisher(publisher)
			defer publisher.Close()
		}
	}

	userRepo := repositories.NewUserRepo(database)
	friendRepo := repositories.NewFriendRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	verifier := auth.NewVerifier(secret, tokenTTL, userRepo)
	authorizer := chat.NewAuthorizer(groupRepo)

	hub := ws.NewHub()
	dispatcher := ws.NewDispatcher(hub, messageRepo)

	accountHandler := handlers.NewAccountHandler(userRepo, verifier)
	friendHandler := handlers.NewFriendHandler(friendRepo, userRepo)
	groupHandler := handlers.NewGroupHandler(groupRepo, userRepo)
	chatHandler := handlers.NewChatHandler(friendRepo, groupRepo, messageRepo, authorizer, dispatcher)
	wsHandler := ws.NewHandler(hub, dispatcher, verifier, authorizer)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/register", accountHandler.Register)
	router.POST("/token", accountHandler.Login)
	router.GET("/me", authMiddleware, accountHandler.Me)
	router.POST("/profile/update", authMiddleware, accountHandler.UpdateProfile)
	router.GET("/users/search", authMiddleware, accountHandler.SearchUsers)

	router.POST("/friends/add", authMiddleware, friendHandler.AddFriend)
	router.POST("/friends/accept", authMiddleware, friendHandler.AcceptFriend)
	router.GET("/friends/list", authMiddleware, friendHandler.ListFriends)

	router.POST("/groups/create", authMiddleware, groupHandler.CreateGroup)
	router.POST("/groups/add_member", authMiddleware, groupHandler.AddMember)
	router.GET("/groups/list", authMiddleware, groupHandler.ListGroups)

	router.GET("/chats/list", authMiddleware, chatHandler.ListChats)
	router.GET("/messages/:chat_id", authMiddleware, chatHandler.GetMessages)
	router.POST("/messages/delete", authMiddleware, chatHandler.DeleteMessage)

	router.GET("/ws/:chat_id", wsHandler.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, getEnv("DEBUG_ROUTES", "") == "true")

	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8083"),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	hub.CloseAll()
	srv.Close()
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
