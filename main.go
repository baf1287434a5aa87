package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"tictactoe-arena/handlers"
	"tictactoe-arena/middleware"
	"tictactoe-arena/realtime"
	"tictactoe-arena/services"
	"tictactoe-arena/storage"
	"tictactoe-arena/utils"
	"tictactoe-arena/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	dsn := utils.MustGetEnv("DATABASE_URL")
	redisURL := utils.MustGetEnv("REDIS_URL")
	gameServiceToken := utils.MustGetEnv("GAME_SERVICE_TOKEN")
	authServiceURL := utils.MustGetEnv("AUTH_SERVICE_URL")
	httpAddr := utils.GetEnv("HTTP_ADDR", ":5200")
	socketAddr := utils.GetEnv("SOCKET_ADDR", ":5201")
	allowedOrigins := utils.SplitList(utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000"))
	tickRate := utils.GetEnvInt("TICK_RATE", realtime.DefaultTickRate)
	turnDuration := utils.GetEnvDuration("TURN_DURATION", services.DefaultTurnDuration)
	idleTTL := utils.GetEnvDuration("IDLE_MATCH_TTL", realtime.DefaultIdleMatchTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.OpenPostgres(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := storage.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	rdb, err := storage.OpenRedis(ctx, redisURL)
	if err != nil {
		log.Fatal("failed to connect to redis:", err)
	}
	defer rdb.Close()

	var avatars services.AvatarBucket
	bucket, err := utils.NewR2BucketFromEnv(ctx)
	if err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	if bucket != nil {
		avatars = bucket
	} else {
		log.Println("⚠️  R2 not configured, avatar uploads disabled")
	}

	accountStore := storage.NewAccountStore(db)
	streakService := services.NewStreakService(storage.NewObjectStore(db))
	scoreService := services.NewScoreService(storage.NewRankingStore(rdb))
	leaderboardService := services.NewLeaderboardService(scoreService, streakService, accountStore)
	accountService := services.NewAccountService(accountStore, scoreService, streakService, avatars)
	authClient := services.NewAuthServiceClient(authServiceURL, gameServiceToken)

	clock := clockwork.NewRealClock()
	sched, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		log.Fatal("failed to create scheduler:", err)
	}

	matchHandler := services.NewMatchHandler(streakService, scoreService, clock, turnDuration)
	registry := realtime.NewRegistry(ctx, matchHandler, sched, clock, tickRate)
	if err := registry.StartReaper(idleTTL); err != nil {
		log.Fatal("failed to schedule match reaper:", err)
	}
	sched.Start()

	matchmaker := services.NewMatchmakerService(registry)

	if syncServiceURL := utils.GetEnv("SYNC_SERVICE_URL", ""); syncServiceURL != "" {
		workers.NewProfileSyncWorker(accountStore, syncServiceURL, "/api/v1/public/profiles", gameServiceToken).Start(ctx)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL not set, profile sync disabled")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware(gameServiceToken))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ","),
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Name, X-Device-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	secured := handlers.Secured(app, accountService)
	handlers.SetupMatchRoutes(secured, matchmaker, registry)
	handlers.SetupLeaderboardRoutes(secured, leaderboardService)
	handlers.SetupAccountRoutes(secured, accountService)

	socketServer := &http.Server{
		Addr:              socketAddr,
		Handler:           realtime.NewSocketServer(registry, accountService, allowedOrigins).Handler(middleware.SocketAuth(authClient)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := app.Listen(httpAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
	go func() {
		if err := socketServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Socket server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", httpAddr)
	log.Printf("✅ Match sockets on %s/ws (tick rate %d/s, turn %s)", socketAddr, tickRate, turnDuration)
	log.Printf("✅ CORS configured for origins: %v", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := socketServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Socket server shutdown: %v", err)
	}
	registry.Close()
	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown: %v", err)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
}
