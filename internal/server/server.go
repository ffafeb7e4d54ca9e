package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/discord"
	"taskboard/internal/handler"
	"taskboard/internal/hub"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/storage"

	"cloud.google.com/go/firestore"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	Engine    *gin.Engine
	Firestore *firestore.Client
	Hub       *hub.Hub
	Config    *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	// Setup Firestore
	client, err := repository.NewFirestoreClient(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to Firestore: %w", err)
	}
	log.Println("✅ Connected to Firestore")

	// Setup blob storage
	blobs, err := storage.NewAttachmentStore(ctx, cfg.AttachmentBucket, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to blob storage: %w", err)
	}
	log.Println("✅ Connected to blob storage")

	// Setup the event hub
	eventHub := hub.NewHub()
	go eventHub.Run()

	// Setup Gin
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, auth.PrincipalHeader)
	r.Use(cors.New(corsCfg))

	// Initialize repositories
	taskRepo := repository.NewTaskRepository(client)
	userRepo := repository.NewUserRepository(client)

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(taskRepo, eventHub)
	commentHandler := handler.NewCommentHandler(taskRepo, eventHub)
	orderHandler := handler.NewOrderHandler(taskRepo, eventHub)
	userHandler := handler.NewUserHandler(userRepo)
	attachmentHandler := handler.NewAttachmentHandler(taskRepo, blobs, eventHub)
	negotiateHandler := handler.NewNegotiateHandler(cfg.HubSecret, cfg.HubURL, eventHub)

	api := r.Group("/api")

	// Public routes
	api.GET("/getTasks", taskHandler.GetTasks)
	api.GET("/getArchivedTasks", taskHandler.GetArchivedTasks)
	api.GET("/getUsers", userHandler.GetUsers)
	api.GET("/negotiate", negotiateHandler.Negotiate)
	api.POST("/negotiate", negotiateHandler.Negotiate)
	api.GET("/hub/tasks", negotiateHandler.ServeHub)
	api.POST("/getRoles", userHandler.GetRoles)

	// The interactions webhook authenticates with its own signature scheme.
	if cfg.DiscordPublicKey != "" {
		followup := discord.NewFollowupClient(cfg.DiscordAppID)
		discordHandler, err := handler.NewDiscordHandler(userRepo, taskRepo, eventHub, followup, cfg.DiscordPublicKey)
		if err != nil {
			return nil, fmt.Errorf("❌ failed to initialize Discord handler: %w", err)
		}
		api.POST("/discord-interactions", discordHandler.Interactions)
	} else {
		log.Println("⚠️  DISCORD_PUBLIC_KEY not set, Discord integration disabled")
	}

	// Protected routes - require the platform identity header and board
	// membership
	authorized := api.Group("/")
	authorized.Use(middleware.PrincipalAuthMiddleware(), middleware.RequireRole(auth.RoleBoardUser))
	{
		// Task routes
		authorized.POST("/createTask", taskHandler.Create)
		authorized.PUT("/updateTask/:id", taskHandler.Update)
		authorized.DELETE("/deleteTask/:id", taskHandler.Delete)
		authorized.POST("/signalResponsible/:id", taskHandler.SignalResponsible)

		// Comment routes
		authorized.POST("/addComment/:id", commentHandler.Add)
		authorized.DELETE("/deleteComment/:id", commentHandler.Delete)

		// Board-wide batch routes
		authorized.POST("/updateOrder", orderHandler.UpdateOrder)
		authorized.POST("/updateProjectColor", orderHandler.UpdateProjectColor)

		// User routes
		authorized.POST("/addUser", userHandler.AddUser)

		// Attachment routes
		authorized.POST("/uploadAttachment/:id", attachmentHandler.Upload)
		authorized.DELETE("/tasks/attachments/:blobName", attachmentHandler.Delete)
		authorized.POST("/getAttachmentSasUrl/:id", attachmentHandler.SignedURL)
	}

	return &Server{
		Engine:    r,
		Firestore: client,
		Hub:       eventHub,
		Config:    cfg,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	if err := s.Firestore.Close(); err != nil {
		log.Printf("⚠️  Failed to close Firestore client: %v", err)
	}

	log.Println("✅ Server exited properly")
}
