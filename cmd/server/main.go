package main

import (
	"context"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"tradewatch/internal/bot"
	"tradewatch/internal/cache"
	"tradewatch/internal/config"
	"tradewatch/internal/db"
	"tradewatch/internal/domain"
	"tradewatch/internal/handler"
	"tradewatch/internal/mirror"
	"tradewatch/internal/monitor"
	"tradewatch/internal/repository"
	"tradewatch/internal/service"
	"tradewatch/internal/telegram"
	"tradewatch/internal/vision"
	"tradewatch/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	tele "gopkg.in/telebot.v3"

	_ "tradewatch/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newChannelRepoFunc     = repository.NewChannelRepository
	newSignalRepoFunc      = repository.NewSignalRepository
	newMirrorFunc          = mirror.NewMirror
	newTelegramBotFunc     = newTelegramBot
	newChannelServiceFunc  = service.NewChannelService
	newSignalServiceFunc   = service.NewSignalService
	registerBotFunc        = bot.Register
	startBotFunc           = func(b *tele.Bot) { go b.Start() }
	stopBotFunc            = func(b *tele.Bot) { b.Stop() }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           TradeWatch API
// @version         1.0
// @description     Harvests trading signals from Telegram channels.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	channelRepo := newChannelRepoFunc(db.Pool, tracer)
	signalRepo := newSignalRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := channelRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run channel migrations: %v", err)
		}
		if err := signalRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run signal migrations: %v", err)
		}
	}

	signalMirror := newMirrorFunc(cache.Client, tracer)

	// Image signal extraction: vision first, OCR fallback
	var querier vision.ImageQuerier
	if cfg.OpenAIAPIKey != "" {
		querier = vision.NewOpenAIVision(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	var ocr vision.TextExtractor
	if cfg.OCREnabled {
		ocr = vision.NewTesseractOCR()
	}
	imageResolver := vision.NewResolver(querier, ocr)

	// One bot serves operator commands and the channel-post transport
	teleBot := newTelegramBotFunc(cfg.TelegramBotToken)

	supervisor := monitor.NewSupervisor(monitor.Deps{
		Transport: telegram.NewTransport(teleBot),
		Store:     newMonitorStore(channelRepo, signalRepo),
		Mirror:    signalMirror,
		Images:    imageResolver,
		Backfill:  cfg.BackfillLimit,
	})

	channelService := newChannelServiceFunc(tracer, channelRepo, supervisor)
	signalService := newSignalServiceFunc(tracer, signalRepo)

	alerts := registerBotFunc(teleBot, channelService, signalService)
	supervisor.SetNotifier(alerts)
	if teleBot != nil {
		startBotFunc(teleBot)
	}

	if db.Pool != nil && teleBot != nil {
		resumeActiveChannels(ctx, channelRepo, supervisor)
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, channelService, signalService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("tradewatch"))
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    httpAddrFromEnv(),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()
	supervisor.StopAll()
	if teleBot != nil {
		stopBotFunc(teleBot)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func httpAddrFromEnv() string {
	port := os.Getenv("PORT")
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func newTelegramBot(token string) *tele.Bot {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	log.Println("Telegram bot ready")
	return b
}

// monitorStore joins the two repositories behind the single store interface
// the monitors consume.
type monitorStore struct {
	channels *repository.ChannelRepository
	signals  *repository.SignalRepository
}

func newMonitorStore(channels *repository.ChannelRepository, signals *repository.SignalRepository) monitor.SignalStore {
	return &monitorStore{channels: channels, signals: signals}
}

func (s *monitorStore) InsertSignal(ctx context.Context, sig *domain.Signal) (int64, error) {
	return s.signals.InsertSignal(ctx, sig)
}

func (s *monitorStore) UpdateChannelStatus(ctx context.Context, channelID int64, state domain.ChannelState, errText string) error {
	return s.channels.UpdateChannelStatus(ctx, channelID, state, errText)
}

func resumeActiveChannels(ctx context.Context, repo *repository.ChannelRepository, sup *monitor.Supervisor) {
	channels, err := repo.ListChannels(ctx)
	if err != nil {
		log.Printf("failed to list channels for resume: %v", err)
		return
	}
	for _, ch := range channels {
		if ch.IsActive {
			log.Printf("resuming monitor for channel %d (@%s)", ch.ID, ch.Username)
			sup.StartChannel(ch.ID, ch.Username, ch.Name)
		}
	}
}
