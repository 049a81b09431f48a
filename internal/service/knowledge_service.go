package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pmalov/spravka/internal/docsource"
	"github.com/pmalov/spravka/internal/ingest"
	"github.com/pmalov/spravka/internal/pkg/errs"
)

// VectorIndex is the slice of the index the knowledge setup uses.
type VectorIndex interface {
	Count(ctx context.Context) (int64, error)
	Populate(ctx context.Context, chunks []string) error
}

// KnowledgeService owns one-time corpus ingestion at startup.
type KnowledgeService struct {
	index    VectorIndex
	source   docsource.Source
	splitter *ingest.Splitter
}

func NewKnowledgeService(index VectorIndex, source docsource.Source, splitter *ingest.Splitter) *KnowledgeService {
	return &KnowledgeService{
		index:    index,
		source:   source,
		splitter: splitter,
	}
}

// Setup populates the vector index when it is empty and is a no-op when
// it already holds chunks. An empty document source against an empty
// index is fatal: the service refuses to start with nothing to answer
// from. Wiping the collection to force re-ingestion is the reindex
// command's job.
func (s *KnowledgeService) Setup(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	count, err := s.index.Count(ctx)
	if err != nil {
		return fmt.Errorf("count indexed chunks: %w", err)
	}
	if count > 0 {
		logger.Info("knowledge base already populated, skipping ingestion", zap.Int64("chunks", count))
		return nil
	}
	docs, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	chunks := ingest.BuildCorpus(ctx, s.splitter, docs)
	if len(chunks) == 0 {
		return fmt.Errorf("document source produced no chunks: %w", errs.ErrEmptyCorpus)
	}
	if err := s.index.Populate(ctx, chunks); err != nil {
		return fmt.Errorf("populate index: %w", err)
	}
	return nil
}
