package index

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pmalov/spravka/internal/ai"
	"github.com/pmalov/spravka/internal/model"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"

	insertBatchSize = 100
)

// ChunkStore is the slice of the chunk repository the index needs.
type ChunkStore interface {
	Count(ctx context.Context, collection string) (int64, error)
	InsertBatch(ctx context.Context, collection string, chunks []model.DocumentChunk) error
	SearchNearest(ctx context.Context, collection string, embedding []float32, k int) ([]model.ScoredChunk, error)
}

// Index ties an embedder to a pgvector collection and exposes the two
// operations the rest of the system needs: bulk population at startup and
// nearest-neighbour search at question time.
type Index struct {
	store      ChunkStore
	embedder   ai.IEmbedder
	collection string
	topK       int
}

func New(store ChunkStore, embedder ai.IEmbedder, collection string, topK int) *Index {
	return &Index{
		store:      store,
		embedder:   embedder,
		collection: collection,
		topK:       topK,
	}
}

func (idx *Index) Count(ctx context.Context) (int64, error) {
	return idx.store.Count(ctx, idx.collection)
}

// Populate embeds every chunk and writes them in batches. Chunk ids are
// positional so a re-run of the same corpus overwrites in place.
func (idx *Index) Populate(ctx context.Context, chunks []string) error {
	logger := logutil.GetLogger(ctx)
	batch := make([]model.DocumentChunk, 0, insertBatchSize)
	for i, content := range chunks {
		embedding, err := idx.embedder.Embed(ctx, content, taskDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		batch = append(batch, model.DocumentChunk{
			ChunkID:   fmt.Sprintf("chunk_%d", i),
			Content:   content,
			Embedding: embedding,
		})
		if len(batch) == insertBatchSize {
			if err := idx.store.InsertBatch(ctx, idx.collection, batch); err != nil {
				return fmt.Errorf("insert batch ending at chunk %d: %w", i, err)
			}
			logger.Info("indexed batch", zap.Int("done", i+1), zap.Int("total", len(chunks)))
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := idx.store.InsertBatch(ctx, idx.collection, batch); err != nil {
			return fmt.Errorf("insert final batch: %w", err)
		}
	}
	logger.Info("index populated", zap.String("collection", idx.collection), zap.Int("chunks", len(chunks)))
	return nil
}

// Search embeds the query and returns the contents of the nearest chunks,
// nearest first. An empty result is not an error.
func (idx *Index) Search(ctx context.Context, query string) ([]string, error) {
	embedding, err := idx.embedder.Embed(ctx, query, taskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	scored, err := idx.store.SearchNearest(ctx, idx.collection, embedding, idx.topK)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(scored))
	for _, chunk := range scored {
		texts = append(texts, chunk.Content)
	}
	return texts, nil
}
