package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/pmalov/spravka/internal/model"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Count(ctx context.Context, collection string) (int64, error) {
	const query = `SELECT COUNT(*) FROM document_chunks WHERE collection = $1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, collection).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// InsertBatch upserts one ingestion batch. Upsert-by-id keeps repeated
// ingestion runs from tripping over the positional chunk ids.
func (r *ChunkRepo) InsertBatch(ctx context.Context, collection string, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	const query = `
		INSERT INTO document_chunks (collection, chunk_id, content, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, chunk_id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			ctime = EXCLUDED.ctime
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, query,
			collection,
			chunk.ChunkID,
			chunk.Content,
			pgvector.NewVector(chunk.Embedding),
			now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk %s: %w", chunk.ChunkID, err)
		}
	}
	return tx.Commit()
}

// SearchNearest returns the k chunks closest to the query embedding by
// cosine distance, nearest first. An empty collection yields an empty
// slice, not an error.
func (r *ChunkRepo) SearchNearest(ctx context.Context, collection string, embedding []float32, k int) ([]model.ScoredChunk, error) {
	const query = `
		SELECT chunk_id, content, embedding <=> $2 AS distance
		FROM document_chunks
		WHERE collection = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, collection, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ScoredChunk
	for rows.Next() {
		var chunk model.ScoredChunk
		if err := rows.Scan(&chunk.ChunkID, &chunk.Content, &chunk.Distance); err != nil {
			return nil, err
		}
		results = append(results, chunk)
	}
	return results, rows.Err()
}

// DeleteCollection wipes a collection so the next startup re-ingests the
// corpus. Exposed through the reindex CLI command; the server itself never
// calls it.
func (r *ChunkRepo) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	const query = `DELETE FROM document_chunks WHERE collection = $1`
	res, err := r.db.ExecContext(ctx, query, collection)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
