package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/sattegames/satta-services/configs"
	mongodb "github.com/sattegames/satta-services/internal/db"
	"github.com/sattegames/satta-services/internal/gamesvc/broker"
	"github.com/sattegames/satta-services/internal/gamesvc/db"
	handlers "github.com/sattegames/satta-services/internal/gamesvc/handlers"
	"github.com/sattegames/satta-services/internal/gamesvc/service"
	"github.com/sattegames/satta-services/internal/gamesvc/store"
	"github.com/sattegames/satta-services/internal/gamesvc/timer"
	nats "github.com/sattegames/satta-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

// finished rooms stay queryable in the archive for a week
const archiveRetention = 7 * 24 * time.Hour

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	userStore := store.NewUserStore(dbpool)
	userService := service.NewUserService(userStore)

	balanceStore := store.NewBalanceStore(dbpool)
	walletService := service.NewWalletService(balanceStore)

	roomStore := store.NewRoomStore(dbpool)
	roomPlayerStore := store.NewRoomPlayerStore(dbpool)

	// mongo archive for finished rooms
	var archiveStore service.Archiver
	if os.Getenv("MONGODB_URI") != "" {
		mdb, cancelMongo, err := mongodb.ConnectToDB()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer cancelMongo()
		if err := mongodb.CreateTTLIndexForCollection(mdb, "room_archive"); err != nil {
			log.Fatalf("Failed to create archive TTL index: %v", err)
		}
		archiveStore = store.NewArchiveStore(mdb, archiveRetention)
		log.Printf("mongo connection established successfully")
	} else {
		log.Warn("MONGODB_URI not set, finished rooms will not be archived")
	}

	roomService := service.NewRoomService(walletService, roomStore, roomPlayerStore, archiveStore)

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// optional payout notifications for operators
	var notifier *broker.TelegramNotifier
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatIDs := parseChatIDs(os.Getenv("TELEGRAM_CHAT_IDS"))
		notifier, err = broker.NewTelegramNotifier(token, chatIDs)
		if err != nil {
			log.Errorf("Error: unable to create telegram notifier %v", err)
		}
	}

	// init room message broker with the per-turn clock
	timers := timer.NewManager()
	b := broker.NewBroker(n.Conn, userService, walletService, roomService, timers, notifier)

	// subscribe to socket service
	topic := "socket.service"
	sub, err := b.SubscribSocketService(topic)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler()
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GAME_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}

func parseChatIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Errorf("Invalid TELEGRAM_CHAT_IDS entry %q: %v", part, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
