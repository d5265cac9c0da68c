package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"snapgram/internal/chat"
	"snapgram/internal/config"
	"snapgram/internal/db"
	myMiddleware "snapgram/internal/middleware"
	"snapgram/internal/user"
)

// directory adapts the user service to the chat package's directory lookup.
type directory struct {
	users *user.Service
}

func (d *directory) Resolve(ctx context.Context, id string) (*chat.Contact, error) {
	p, err := d.users.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return &chat.Contact{ID: p.ID, Name: p.Name, Username: p.Username, ImageURL: p.ImageURL}, nil
}

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// 2. Connect to Database (Platform Layer)
	database, err := db.NewDatabase(cfg.DBDSN)
	if err != nil {
		log.Fatalf("❌ Failed to connect to DB: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database Schema Initialized")

	// 3. Connect to Redis (Platform Layer)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// 4. Initialize User Feature
	userRepo := user.NewRepository(database.Conn)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	// 5. Initialize Chat Feature
	chatStore := chat.NewRepository(database.Conn)
	dir := &directory{users: userService}
	contacts := chat.NewContactService(chatStore, dir)
	broker := chat.NewRedisBroker(redisClient)

	hub := chat.NewHub(chatStore, dir, broker)
	go hub.Run()
	go hub.ConsumeBroker(context.Background())

	chatHandler := chat.NewHandler(hub, chatStore, contacts)

	authMiddleware := myMiddleware.NewAuthMiddleware(userService)

	// 6. Define Routes
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public Routes
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)

	// Protected Routes (Require JWT)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handle)
		r.Get("/api/users/search", userHandler.SearchUsers)

		// WebSocket (Real-time)
		r.Get("/ws", chatHandler.ServeWs)

		// Chat history + non-realtime send
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.PostMessage)
			r.Get("/chattedUsers/{userId}", chatHandler.GetChattedUsers)
			r.Get("/{otherUserId}", chatHandler.GetHistory)
		})
	})

	log.Printf("🚀 Server starting on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}
