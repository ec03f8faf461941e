package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"gameplanAPI/handlers"
	"gameplanAPI/internal/notification"
	"gameplanAPI/middleware"
	"gameplanAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	loc                 *time.Location
	userService         *services.UserService
	gameService         *services.GameService
	eventService        *services.EventService
	calendarService     *services.CalendarService
	friendshipService   *services.FriendshipService
	accessService       *services.AccessService
	shareService        *services.ShareService
	notificationService *services.NotificationService
	reminderService     *services.ReminderService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	var err error
	loc, err = time.LoadLocation(tz)
	if err != nil {
		log.Fatal("Invalid TIMEZONE:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	userService = services.NewUserService(dbPool)
	gameService = services.NewGameService(dbPool)
	eventService = services.NewEventService(dbPool, loc)
	calendarService = services.NewCalendarService(eventService, loc)
	friendshipService = services.NewFriendshipService(dbPool)
	accessService = services.NewAccessService(friendshipService)
	shareService = services.NewShareService(dbPool)
	notificationService = services.NewNotificationService(dbPool)
	reminderService = services.NewReminderService(dbPool, notificationService, loc)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		reminderService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	gameHandler := handlers.NewGameHandler(gameService)
	eventHandler := handlers.NewEventHandler(eventService, accessService, loc)
	calendarHandler := handlers.NewCalendarHandler(calendarService, accessService, shareService, loc)
	friendHandler := handlers.NewFriendHandler(friendshipService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)
	standardRouter.Use(middleware.CapabilityMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "gameplan-api"}`))
	}).Methods("GET")

	// Share links land here; the capability cookie is minted and the visitor
	// is redirected to the shared calendar.
	standardRouter.HandleFunc("/calendar/access", calendarHandler.AccessCalendar).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Calendar views take anonymous visitors too: a share capability alone is
	// enough, so auth here is optional and the access gate decides.
	viewer := api.PathPrefix("").Subrouter()
	viewer.Use(middleware.OptionalAuthMiddleware)

	viewer.HandleFunc("/calendar/{userID}/export.ics", calendarHandler.ExportICS).Methods("GET")
	viewer.HandleFunc("/calendar/{userID}", calendarHandler.GetMonth).Methods("GET")
	viewer.HandleFunc("/events/{id}", eventHandler.GetEvent).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/change-password", userHandler.ChangePassword).Methods("PUT")
	protected.HandleFunc("/user/search", userHandler.SearchUsers).Methods("GET")

	protected.HandleFunc("/games", gameHandler.ListGames).Methods("GET")
	protected.HandleFunc("/games", gameHandler.CreateGame).Methods("POST")
	protected.HandleFunc("/games/currently-playing", gameHandler.CurrentlyPlaying).Methods("GET")
	protected.HandleFunc("/games/{id}", gameHandler.GetGame).Methods("GET")
	protected.HandleFunc("/games/{id}", gameHandler.UpdateGame).Methods("PUT")
	protected.HandleFunc("/games/{id}", gameHandler.DeleteGame).Methods("DELETE")

	protected.HandleFunc("/events", eventHandler.CreateEvent).Methods("POST")
	protected.HandleFunc("/events/{id}", eventHandler.DeleteEvent).Methods("DELETE")
	protected.HandleFunc("/todo", eventHandler.TodayEvents).Methods("GET")

	protected.HandleFunc("/calendar/share", calendarHandler.CreateShareLink).Methods("POST")

	protected.HandleFunc("/friends", friendHandler.GetFriends).Methods("GET")
	protected.HandleFunc("/friends/requests", friendHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/friends/requests", friendHandler.PendingRequests).Methods("GET")
	protected.HandleFunc("/friends/requests/{id}/accept", friendHandler.AcceptRequest).Methods("PUT")
	protected.HandleFunc("/friends/requests/{id}", friendHandler.DeclineRequest).Methods("DELETE")
	protected.HandleFunc("/friends/{id}", friendHandler.RemoveFriend).Methods("DELETE")

	protected.HandleFunc("/notifications", notificationHandler.ListNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.UnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/unregister-device", notificationHandler.UnregisterDevice).Methods("POST")

	// Daily reminder scan at 08:00 service time.
	scheduler := cron.New(cron.WithLocation(loc))
	scheduler.AddFunc("0 8 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := reminderService.ScanToday(ctx)
		if err != nil {
			log.Printf("Reminder scan failed: %v", err)
		}
		middleware.CountRemindersQueued(n)
	})
	scheduler.Start()

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	scheduler.Stop()
	reminderService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
