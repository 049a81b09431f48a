package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pmalov/spravka/internal/agent"
	"github.com/pmalov/spravka/internal/ai"
	"github.com/pmalov/spravka/internal/config"
	"github.com/pmalov/spravka/internal/db"
	"github.com/pmalov/spravka/internal/docsource"
	"github.com/pmalov/spravka/internal/embedcache"
	"github.com/pmalov/spravka/internal/handler"
	"github.com/pmalov/spravka/internal/index"
	"github.com/pmalov/spravka/internal/ingest"
	"github.com/pmalov/spravka/internal/job"
	"github.com/pmalov/spravka/internal/repo"
	"github.com/pmalov/spravka/internal/schedule"
	"github.com/pmalov/spravka/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "spravka",
		Short: "spravka RAG assistant backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the assistant server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			conn, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "wipe the vector collection so the next run re-ingests the documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			conn, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			deleted, err := repo.NewChunkRepo(conn).DeleteCollection(context.Background(), cfg.RAG.Collection)
			if err != nil {
				return fmt.Errorf("delete collection: %w", err)
			}
			logutil.GetLogger(context.Background()).Info("collection wiped",
				zap.String("collection", cfg.RAG.Collection), zap.Int64("chunks_deleted", deleted))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reindexCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("collection", cfg.RAG.Collection),
		zap.String("provider", cfg.AI.Provider),
		zap.String("source", cfg.RAG.Source.Type),
	)

	historyRepo := repo.NewHistoryRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)

	chatProvider, err := ai.NewChatProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init chat provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	chatter := ai.NewChatter(chatProvider, cfg.AI.ChatModel)
	embedder := embedcache.WrapLruCacheToEmbedder(
		ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel),
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTL)*time.Minute,
	)

	idx := index.New(chunkRepo, embedder, cfg.RAG.Collection, cfg.RAG.TopK)
	source, err := docsource.New(cfg.RAG.Source)
	if err != nil {
		return fmt.Errorf("init document source: %w", err)
	}
	splitter := ingest.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	knowledge := service.NewKnowledgeService(idx, source, splitter)

	tool := agent.NewRetrieverTool(idx)
	orchestrator := agent.NewOrchestrator(chatter, tool,
		cfg.RAG.MaxToolRounds, time.Duration(cfg.AI.Timeout)*time.Second)
	chatService := service.NewChatService(historyRepo, orchestrator, cfg.RAG.HistoryKeep)

	pruneJob := job.NewHistoryPruneJob(historyRepo, cfg.RAG.HistoryKeep)
	if err := pruneJob.Run(ctx); err != nil {
		logutil.GetLogger(ctx).Warn("startup history prune failed", zap.Error(err))
	}
	scheduler := schedule.NewScheduler()
	if err := scheduler.Schedule(pruneJob, cfg.PruneSpec); err != nil {
		return fmt.Errorf("schedule prune job: %w", err)
	}

	ready := &atomic.Bool{}
	gin.SetMode(gin.ReleaseMode)
	engine := handler.NewRouter(
		handler.NewChatHandler(chatService, ready),
		handler.RouterOptions{RateLimitWindow: time.Second},
	)
	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: engine,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	// Requests get a 503 until the knowledge base is confirmed populated.
	if err := knowledge.Setup(sigCtx); err != nil {
		_ = server.Close()
		return fmt.Errorf("knowledge setup: %w", err)
	}
	ready.Store(true)
	scheduler.Start(sigCtx)
	logutil.GetLogger(ctx).Info("service ready")

	<-sigCtx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
