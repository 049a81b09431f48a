package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database  DatabaseConfig   `json:"database"`
	Port      int              `json:"port"`
	LogConfig logger.LogConfig `json:"log_config"`
	AI        AIConfig         `json:"ai"`
	RAG       RAGConfig        `json:"rag"`
	PruneSpec string           `json:"prune_spec"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	Data           interface{} `json:"data"`
	ChatModel      string      `json:"chat_model"`
	EmbedModel     string      `json:"embed_model"`
	Timeout        int         `json:"timeout"`
	EmbedCacheSize int         `json:"embed_cache_size"`
	EmbedCacheTTL  int         `json:"embed_cache_ttl_minutes"`
}

type RAGConfig struct {
	ChunkSize     int          `json:"chunk_size"`
	ChunkOverlap  int          `json:"chunk_overlap"`
	TopK          int          `json:"top_k"`
	HistoryKeep   int          `json:"history_keep"`
	Collection    string       `json:"collection"`
	MaxToolRounds int          `json:"max_tool_rounds"`
	Source        SourceConfig `json:"source"`
}

type SourceConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.ChatModel == "" {
		return nil, fmt.Errorf("ai.chat_model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 120
	}
	if cfg.AI.EmbedCacheSize == 0 {
		cfg.AI.EmbedCacheSize = 10000
	}
	if cfg.AI.EmbedCacheTTL == 0 {
		cfg.AI.EmbedCacheTTL = 120
	}
	applyRAGDefaults(&cfg.RAG)
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("rag.chunk_overlap must be smaller than rag.chunk_size")
	}
	if cfg.RAG.Source.Type == "" {
		return nil, fmt.Errorf("rag.source.type is required")
	}
	if cfg.PruneSpec == "" {
		cfg.PruneSpec = "0 3 * * *"
	}
	return &cfg, nil
}

func applyRAGDefaults(rag *RAGConfig) {
	if rag.ChunkSize == 0 {
		rag.ChunkSize = 1000
	}
	if rag.ChunkOverlap == 0 {
		rag.ChunkOverlap = 150
	}
	if rag.TopK == 0 {
		rag.TopK = 5
	}
	if rag.HistoryKeep == 0 {
		rag.HistoryKeep = 14
	}
	if rag.Collection == "" {
		rag.Collection = "helpdesk_docs"
	}
	if rag.MaxToolRounds == 0 {
		rag.MaxToolRounds = 6
	}
}
