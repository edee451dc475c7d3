package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ddex3/Shaked-Discord-Ticket-System/internal/api/http"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/api/http/handlers"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/bot"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/config"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/events"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/observability"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/persistence"
	platformdiscord "github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform/discord"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/repository"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/service"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create discord session", zap.Error(err))
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	noteRepo := repository.NewStaffNoteRepository(pool)
	configRepo := repository.NewGuildConfigRepository(pool)
	logRepo := repository.NewTicketLogRepository(pool)
	leaderboardRepo := repository.NewLeaderboardRepository(pool)

	platformClient := platformdiscord.NewAdapter(dg)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	audit := service.NewAuditService(logRepo, logger)
	audit.Register(dispatcher)

	transcripts := service.NewTranscriptService(platformClient, logger)
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		NoteRepo:    noteRepo,
		ConfigRepo:  configRepo,
		Platform:    platformClient,
		Transcripts: transcripts,
		Dispatcher:  dispatcher,
		Logger:      logger,
		CloseGrace:  cfg.Ticket.CloseGrace(),
	})
	leaderboard := service.NewLeaderboardService(service.LeaderboardDependencies{
		RegistrationRepo: leaderboardRepo,
		TicketRepo:       ticketRepo,
		Platform:         platformClient,
		Logger:           logger,
		Interval:         cfg.Ticket.LeaderboardInterval(),
		TopN:             cfg.Ticket.LeaderboardTopN,
	})
	defer leaderboard.Close()
	help := service.NewHelpService(bot.Catalog())
	sessions := session.NewStore(redis.Client, cfg.Ticket.HelpSessionTTL(), logger)

	router := bot.NewRouter(bot.RouterDependencies{
		Tickets:     tickets,
		Leaderboard: leaderboard,
		Help:        help,
		Sessions:    sessions,
		Platform:    platformClient,
		Metrics:     metrics,
		Logger:      logger,
		BotName:     cfg.App.Name,
	})
	dg.AddHandler(router.HandleInteraction)
	dg.AddHandler(func(s *discordgo.Session, _ *discordgo.Ready) {
		logger.Info("gateway ready", zap.String("user", s.State.User.Username))

		if err := bot.RegisterCommands(s, cfg.Discord.GuildID); err != nil {
			logger.Error("command registration failed", zap.Error(err))
		}
		if err := leaderboard.Restore(ctx); err != nil {
			logger.Error("leaderboard restore failed", zap.Error(err))
		}
	})

	if err := dg.Open(); err != nil {
		logger.Fatal("failed to open gateway connection", zap.Error(err))
	}
	defer dg.Close()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, func() error {
			if dg.State == nil || dg.State.User == nil {
				return errors.New("gateway session not established")
			}
			return nil
		}),
		Metrics: handlers.NewMetricsHandler(metrics),
	})
	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("ops listener stopped", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
