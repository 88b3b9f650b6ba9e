package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greymere/keeper-api/internal/clients/narrator"
	"github.com/greymere/keeper-api/internal/config"
	"github.com/greymere/keeper-api/internal/engine/assembly"
	"github.com/greymere/keeper-api/internal/engine/skillcheck"
	"github.com/greymere/keeper-api/internal/engine/transition"
	"github.com/greymere/keeper-api/internal/handlers/api"
	turnorch "github.com/greymere/keeper-api/internal/orchestrators/turn"
	"github.com/greymere/keeper-api/internal/pkg/clock"
	"github.com/greymere/keeper-api/internal/pkg/idgen"
	"github.com/greymere/keeper-api/internal/realtime"
	"github.com/greymere/keeper-api/internal/redis"
	"github.com/greymere/keeper-api/internal/relay"
	"github.com/greymere/keeper-api/internal/repositories/actiondraft"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/character"
	"github.com/greymere/keeper-api/internal/repositories/npc"
	"github.com/greymere/keeper-api/internal/repositories/player"
	"github.com/greymere/keeper-api/internal/repositories/realm"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	"github.com/greymere/keeper-api/internal/repositories/session"
	turnrepo "github.com/greymere/keeper-api/internal/repositories/turn"
	"github.com/greymere/keeper-api/internal/repositories/world"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	Long:  `Start the keeper API HTTP server with the configured document stores and narrator endpoints.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Two stores: worlds and players are shared reference data, the
	// rest is per-deployment narrative state.
	systemStore, err := redis.NewClient(cfg.SystemRedisAddr, &redis.Options{DB: cfg.SystemRedisDB})
	if err != nil {
		return fmt.Errorf("failed to connect to system store: %w", err)
	}
	defer func() { _ = systemStore.Close() }()

	gameStore, err := redis.NewClient(cfg.GameRecordsRedisAddr, &redis.Options{DB: cfg.GameRecordsRedisDB})
	if err != nil {
		return fmt.Errorf("failed to connect to gamerecords store: %w", err)
	}
	defer func() { _ = gameStore.Close() }()

	clk := clock.New()

	worldRepo, err := world.NewRedis(&world.Config{Client: systemStore})
	if err != nil {
		return err
	}
	playerRepo, err := player.NewRedis(&player.Config{Client: systemStore})
	if err != nil {
		return err
	}
	realmRepo, err := realm.NewRedis(&realm.Config{Client: gameStore})
	if err != nil {
		return err
	}
	campaignRepo, err := campaign.NewRedis(&campaign.Config{Client: gameStore})
	if err != nil {
		return err
	}
	chapterRepo, err := chapter.NewRedis(&chapter.Config{Client: gameStore})
	if err != nil {
		return err
	}
	sceneRepo, err := scene.NewRedis(&scene.Config{Client: gameStore})
	if err != nil {
		return err
	}
	turnRepo, err := turnrepo.NewRedis(&turnrepo.Config{Client: gameStore})
	if err != nil {
		return err
	}
	characterRepo, err := character.NewRedis(&character.Config{Client: gameStore})
	if err != nil {
		return err
	}
	npcRepo, err := npc.NewRedis(&npc.Config{Client: gameStore})
	if err != nil {
		return err
	}
	sessionRepo, err := session.NewRedis(&session.Config{Client: gameStore})
	if err != nil {
		return err
	}
	draftRepo, err := actiondraft.NewRedis(&actiondraft.Config{Client: gameStore})
	if err != nil {
		return err
	}

	assembler, err := assembly.New(&assembly.Config{
		TurnRepo:         turnRepo,
		SceneRepo:        sceneRepo,
		ChapterRepo:      chapterRepo,
		CampaignRepo:     campaignRepo,
		RealmRepo:        realmRepo,
		CharacterRepo:    characterRepo,
		NPCRepo:          npcRepo,
		Lore:             assembly.NoopLore{},
		Clock:            clk,
		Logger:           logger,
		MaxPreviousTurns: cfg.MaxPreviousTurns,
		MaxCharacters:    cfg.MaxCharacters,
		MaxLoreChunks:    cfg.MaxLoreChunks,
	})
	if err != nil {
		return fmt.Errorf("failed to create assembly engine: %w", err)
	}

	skillChecks, err := skillcheck.New(&skillcheck.Config{
		Roller: skillcheck.ToolkitRoller{},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create skill check engine: %w", err)
	}

	transitions, err := transition.New(&transition.Config{
		SceneRepo:    sceneRepo,
		ChapterRepo:  chapterRepo,
		CampaignRepo: campaignRepo,
		SceneIDs:     idgen.NewPrefixed("scene"),
		ChapterIDs:   idgen.NewPrefixed("chapter"),
		Clock:        clk,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create transition engine: %w", err)
	}

	narratorClient, err := narrator.New(&narrator.Config{
		TurnWebhookURL:    cfg.TurnWebhookURL(),
		OracleWebhookURL:  cfg.OracleWebhookURL(),
		DispatchTimeout:   cfg.DispatchTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create narrator client: %w", err)
	}

	hub, err := realtime.NewHub(&realtime.Config{
		Oracle: narratorClient,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create realtime hub: %w", err)
	}

	sessionRelay, err := relay.New(&relay.Config{
		Hub:    hub,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}

	turns, err := turnorch.NewOrchestrator(&turnorch.Config{
		TurnRepo:      turnRepo,
		SceneRepo:     sceneRepo,
		ChapterRepo:   chapterRepo,
		CharacterRepo: characterRepo,
		Assembler:     assembler,
		SkillChecks:   skillChecks,
		Transitions:   transitions,
		Narrator:      narratorClient,
		Relay:         sessionRelay,
		Clock:         clk,
		CallbackURL:   cfg.CallbackURL,
		Async:         cfg.AsyncTurnProcessing,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create turn orchestrator: %w", err)
	}

	handler, err := api.NewHandler(&api.Config{
		WorldRepo:     worldRepo,
		RealmRepo:     realmRepo,
		CampaignRepo:  campaignRepo,
		ChapterRepo:   chapterRepo,
		SceneRepo:     sceneRepo,
		TurnRepo:      turnRepo,
		CharacterRepo: characterRepo,
		NPCRepo:       npcRepo,
		PlayerRepo:    playerRepo,
		SessionRepo:   sessionRepo,
		DraftRepo:     draftRepo,
		Turns:         turns,
		Oracle:        narratorClient,
		Clock:         clk,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	router := handler.Router()
	router.Handle("/ws", hub)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "async_turns", cfg.AsyncTurnProcessing)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case err := <-errChan:
		return err
	}
}
